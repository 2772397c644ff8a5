package service

import (
	"cmp"
	"context"
	"slices"

	"github.com/atinyakov/FaultKeeper/internal/i18n"
	"github.com/atinyakov/FaultKeeper/internal/models"
	"github.com/atinyakov/FaultKeeper/internal/search"
)

// CatalogSource is the raw catalog the entity repositories read from. The
// Postgres repository, the static dataset and the fallback decorator all
// satisfy it. Get methods return nil, nil for unknown ids.
type CatalogSource interface {
	ListBrands(ctx context.Context) ([]models.BrandRecord, error)
	GetBrand(ctx context.Context, id string) (*models.BrandRecord, error)
	ListModels(ctx context.Context, brandID string) ([]models.ModelRecord, error)
	GetModel(ctx context.Context, id string) (*models.ModelRecord, error)
	ListFaults(ctx context.Context, brandID string) ([]models.FaultRecord, error)
	GetFault(ctx context.Context, id string) (*models.FaultRecord, error)
	GetFaults(ctx context.Context, ids []string) ([]models.FaultRecord, error)
	ListSteps(ctx context.Context, faultID string) ([]models.StepRecord, error)
	GetStep(ctx context.Context, id string) (*models.StepRecord, error)
}

// localizer turns raw records into entities for one locale.
type localizer struct {
	res *i18n.Resolver
	loc i18n.Locale
}

func newLocalizer(ctx context.Context, res *i18n.Resolver) localizer {
	return localizer{res: res, loc: i18n.FromContext(ctx)}
}

func (l localizer) list(v i18n.List) []string {
	out := l.res.List(v, l.loc)
	if out == nil {
		return []string{}
	}
	return out
}

func (l localizer) fault(r models.FaultRecord) models.FaultCode {
	return models.FaultCode{
		ID:           r.ID,
		BrandID:      r.BrandID,
		ModelID:      r.ModelID,
		Code:         r.Code,
		Title:        l.res.Text(r.Title, l.loc),
		Severity:     r.Severity,
		Summary:      l.res.Text(r.Summary, l.loc),
		Causes:       l.list(r.Causes),
		SafetyNotice: l.res.OptionalText(r.SafetyNotice, l.loc),
		LastVerified: r.LastVerified,
	}
}

func (l localizer) step(r models.StepRecord) models.ResolutionStep {
	return models.ResolutionStep{
		ID:                   r.ID,
		FaultID:              r.FaultID,
		Order:                r.Order,
		Instruction:          l.res.Text(r.Instruction, l.loc),
		EstimatedMinutes:     r.EstimatedMinutes,
		RequiresProfessional: r.RequiresProfessional,
		Tools:                l.list(r.Tools),
		ImageRef:             r.ImageRef,
	}
}

func brand(r models.BrandRecord) models.Brand {
	return models.Brand{ID: r.ID, Name: r.Name, Aliases: slices.Clone(r.Aliases), Country: r.Country}
}

func model(r models.ModelRecord) models.BoilerModel {
	return models.BoilerModel{ID: r.ID, BrandID: r.BrandID, Name: r.Name, Years: r.Years}
}

func mapAll[R, E any](records []R, fn func(R) E) []E {
	out := make([]E, len(records))
	for i, r := range records {
		out[i] = fn(r)
	}
	return out
}

func mapOne[R, E any](r *R, err error, fn func(R) E) (*E, error) {
	if err != nil || r == nil {
		return nil, err
	}
	e := fn(*r)
	return &e, nil
}

// BrandRepository serves brands. Brand names are not localized.
type BrandRepository struct {
	src CatalogSource
}

// NewBrandRepository creates a BrandRepository over src.
func NewBrandRepository(src CatalogSource) *BrandRepository {
	return &BrandRepository{src: src}
}

// GetByID returns the brand, or nil when the id is unknown.
func (r *BrandRepository) GetByID(ctx context.Context, id string) (*models.Brand, error) {
	rec, err := r.src.GetBrand(ctx, id)
	return mapOne(rec, err, brand)
}

// ListAll returns every brand in catalog order.
func (r *BrandRepository) ListAll(ctx context.Context) ([]models.Brand, error) {
	recs, err := r.src.ListBrands(ctx)
	if err != nil {
		return nil, err
	}
	return mapAll(recs, brand), nil
}

// FindByName returns the first brand whose id, name or alias equals name after
// normalization, or nil.
func (r *BrandRepository) FindByName(ctx context.Context, name string) (*models.Brand, error) {
	q := search.Normalize(name)
	if q == "" {
		return nil, nil
	}
	recs, err := r.src.ListBrands(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range recs {
		if search.Normalize(b.ID) == q || search.Normalize(b.Name) == q ||
			slices.ContainsFunc(b.Aliases, func(a string) bool { return search.Normalize(a) == q }) {
			out := brand(b)
			return &out, nil
		}
	}
	return nil, nil
}

// ModelRepository serves boiler models.
type ModelRepository struct {
	src CatalogSource
}

// NewModelRepository creates a ModelRepository over src.
func NewModelRepository(src CatalogSource) *ModelRepository {
	return &ModelRepository{src: src}
}

// GetByID returns the model, or nil when the id is unknown.
func (r *ModelRepository) GetByID(ctx context.Context, id string) (*models.BoilerModel, error) {
	rec, err := r.src.GetModel(ctx, id)
	return mapOne(rec, err, model)
}

// ListAll returns every model in catalog order.
func (r *ModelRepository) ListAll(ctx context.Context) ([]models.BoilerModel, error) {
	return r.ByBrand(ctx, "")
}

// ByBrand returns the models of brandID.
func (r *ModelRepository) ByBrand(ctx context.Context, brandID string) ([]models.BoilerModel, error) {
	recs, err := r.src.ListModels(ctx, brandID)
	if err != nil {
		return nil, err
	}
	return mapAll(recs, model), nil
}

// FaultRepository serves fault codes resolved to the context locale.
type FaultRepository struct {
	src CatalogSource
	res *i18n.Resolver
}

// NewFaultRepository creates a FaultRepository over src.
func NewFaultRepository(src CatalogSource, res *i18n.Resolver) *FaultRepository {
	return &FaultRepository{src: src, res: res}
}

// GetByID returns the fault, or nil when the id is unknown.
func (r *FaultRepository) GetByID(ctx context.Context, id string) (*models.FaultCode, error) {
	rec, err := r.src.GetFault(ctx, id)
	return mapOne(rec, err, newLocalizer(ctx, r.res).fault)
}

// ListAll returns every fault in catalog order.
func (r *FaultRepository) ListAll(ctx context.Context) ([]models.FaultCode, error) {
	return r.ByBrand(ctx, "")
}

// ByBrand returns the faults of brandID in catalog order.
func (r *FaultRepository) ByBrand(ctx context.Context, brandID string) ([]models.FaultCode, error) {
	recs, err := r.src.ListFaults(ctx, brandID)
	if err != nil {
		return nil, err
	}
	return mapAll(recs, newLocalizer(ctx, r.res).fault), nil
}

// ByModel returns the faults that apply to modelID: those tied to it and the
// brand-wide faults of its brand. An unknown model has no faults.
func (r *FaultRepository) ByModel(ctx context.Context, modelID string) ([]models.FaultCode, error) {
	m, err := r.src.GetModel(ctx, modelID)
	if err != nil || m == nil {
		return nil, err
	}
	all, err := r.ByBrand(ctx, m.BrandID)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(f models.FaultCode) bool {
		return !f.AppliesToModel(modelID)
	}), nil
}

// GetMany returns the listed faults keyed by id. Unknown ids are absent.
func (r *FaultRepository) GetMany(ctx context.Context, ids []string) (map[string]models.FaultCode, error) {
	recs, err := r.src.GetFaults(ctx, ids)
	if err != nil {
		return nil, err
	}
	l := newLocalizer(ctx, r.res)
	out := make(map[string]models.FaultCode, len(recs))
	for _, rec := range recs {
		out[rec.ID] = l.fault(rec)
	}
	return out, nil
}

// StepRepository serves resolution steps resolved to the context locale.
type StepRepository struct {
	src CatalogSource
	res *i18n.Resolver
}

// NewStepRepository creates a StepRepository over src.
func NewStepRepository(src CatalogSource, res *i18n.Resolver) *StepRepository {
	return &StepRepository{src: src, res: res}
}

// GetByID returns the step, or nil when the id is unknown.
func (r *StepRepository) GetByID(ctx context.Context, id string) (*models.ResolutionStep, error) {
	rec, err := r.src.GetStep(ctx, id)
	return mapOne(rec, err, newLocalizer(ctx, r.res).step)
}

// ListAll returns every step ordered by fault id, then step order.
func (r *StepRepository) ListAll(ctx context.Context) ([]models.ResolutionStep, error) {
	return r.ByFault(ctx, "")
}

// ByFault returns the steps of faultID in ascending order. Ties are broken by id.
func (r *StepRepository) ByFault(ctx context.Context, faultID string) ([]models.ResolutionStep, error) {
	recs, err := r.src.ListSteps(ctx, faultID)
	if err != nil {
		return nil, err
	}
	steps := mapAll(recs, newLocalizer(ctx, r.res).step)
	slices.SortStableFunc(steps, func(a, b models.ResolutionStep) int {
		return cmp.Or(
			cmp.Compare(a.FaultID, b.FaultID),
			cmp.Compare(a.Order, b.Order),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return steps, nil
}
