package repository

import (
	"cmp"
	"context"
	"slices"

	"github.com/atinyakov/FaultKeeper/internal/dataset"
	"github.com/atinyakov/FaultKeeper/internal/models"
)

// StaticCatalog serves the catalog from an in-memory dataset. It never fails
// except for caller cancellation.
type StaticCatalog struct {
	data *dataset.Catalog
}

// NewStaticCatalog creates a catalog over data. The dataset must not be
// modified afterwards.
func NewStaticCatalog(data *dataset.Catalog) *StaticCatalog {
	if data == nil {
		data = &dataset.Catalog{}
	}
	return &StaticCatalog{data: data}
}

// ListBrands returns every brand in dataset order.
func (s *StaticCatalog) ListBrands(ctx context.Context) ([]models.BrandRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return filter(s.data.Brands, func(models.BrandRecord) bool { return true }), nil
}

// GetBrand returns the brand with the given id, or nil.
func (s *StaticCatalog) GetBrand(ctx context.Context, id string) (*models.BrandRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return find(s.data.Brands, func(b models.BrandRecord) bool { return b.ID == id }), nil
}

// ListModels returns the models of brandID, or all models when brandID is empty.
func (s *StaticCatalog) ListModels(ctx context.Context, brandID string) ([]models.ModelRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return filter(s.data.Models, func(m models.ModelRecord) bool {
		return brandID == "" || m.BrandID == brandID
	}), nil
}

// GetModel returns the model with the given id, or nil.
func (s *StaticCatalog) GetModel(ctx context.Context, id string) (*models.ModelRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return find(s.data.Models, func(m models.ModelRecord) bool { return m.ID == id }), nil
}

// ListFaults returns the faults of brandID, or all faults when brandID is empty.
func (s *StaticCatalog) ListFaults(ctx context.Context, brandID string) ([]models.FaultRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return filter(s.data.Faults, func(f models.FaultRecord) bool {
		return brandID == "" || f.BrandID == brandID
	}), nil
}

// GetFault returns the fault with the given id, or nil.
func (s *StaticCatalog) GetFault(ctx context.Context, id string) (*models.FaultRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return find(s.data.Faults, func(f models.FaultRecord) bool { return f.ID == id }), nil
}

// GetFaults returns the listed faults in dataset order. Unknown ids are skipped.
func (s *StaticCatalog) GetFaults(ctx context.Context, ids []string) ([]models.FaultRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return filter(s.data.Faults, func(f models.FaultRecord) bool {
		return slices.Contains(ids, f.ID)
	}), nil
}

// ListSteps returns the steps of faultID ordered by step order, or all steps when faultID is empty.
func (s *StaticCatalog) ListSteps(ctx context.Context, faultID string) ([]models.StepRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	steps := filter(s.data.Steps, func(st models.StepRecord) bool {
		return faultID == "" || st.FaultID == faultID
	})
	slices.SortStableFunc(steps, func(a, b models.StepRecord) int {
		return cmp.Or(
			cmp.Compare(a.FaultID, b.FaultID),
			cmp.Compare(a.Order, b.Order),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return steps, nil
}

// GetStep returns the step with the given id, or nil.
func (s *StaticCatalog) GetStep(ctx context.Context, id string) (*models.StepRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return find(s.data.Steps, func(st models.StepRecord) bool { return st.ID == id }), nil
}

func filter[T any](items []T, keep func(T) bool) []T {
	var out []T
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func find[T any](items []T, match func(T) bool) *T {
	for _, it := range items {
		if match(it) {
			v := it
			return &v
		}
	}
	return nil
}
