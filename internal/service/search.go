package service

import (
	"context"

	"github.com/atinyakov/FaultKeeper/internal/models"
	"github.com/atinyakov/FaultKeeper/internal/search"
	"github.com/atinyakov/FaultKeeper/internal/validation"
)

// Search ranks locale-resolved faults with a search.Engine.
type Search struct {
	faults    *FaultRepository
	models    *ModelRepository
	engine    *search.Engine
	validator *validation.Validator
}

// NewSearch creates a Search. A nil engine uses the default rules.
func NewSearch(faults *FaultRepository, modelRepo *ModelRepository, engine *search.Engine, v *validation.Validator) *Search {
	if engine == nil {
		engine = search.NewEngine()
	}
	if v == nil {
		v = validation.New()
	}
	return &Search{faults: faults, models: modelRepo, engine: engine, validator: v}
}

// Rank returns the faults matching f with their scores, most relevant first.
// Scoring runs on text resolved for the context locale.
func (s *Search) Rank(ctx context.Context, f search.Filters) ([]search.Result, error) {
	if err := s.validator.Validate(f); err != nil {
		return nil, err
	}

	brandID := f.BrandID
	if f.ModelID != "" {
		m, err := s.models.GetByID(ctx, f.ModelID)
		if err != nil {
			return nil, err
		}
		if m == nil || (brandID != "" && m.BrandID != brandID) {
			return []search.Result{}, nil
		}
		// Brand-wide faults only apply to models of their own brand.
		brandID = m.BrandID
	}

	candidates, err := s.faults.ByBrand(ctx, brandID)
	if err != nil {
		return nil, err
	}
	return s.engine.Rank(candidates, f), nil
}

// SearchFaults is Rank without scores.
func (s *Search) SearchFaults(ctx context.Context, f search.Filters) ([]models.FaultCode, error) {
	results, err := s.Rank(ctx, f)
	if err != nil {
		return nil, err
	}
	return search.Faults(results), nil
}
