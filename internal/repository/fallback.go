package repository

import (
	"context"

	"github.com/atinyakov/FaultKeeper/internal/models"
	"go.uber.org/zap"
)

// Op names a catalog operation that may fall back to the static dataset.
type Op string

// Catalog operations.
const (
	OpListBrands Op = "ListBrands"
	OpGetBrand   Op = "GetBrand"
	OpListModels Op = "ListModels"
	OpGetModel   Op = "GetModel"
	OpListFaults Op = "ListFaults"
	OpGetFault   Op = "GetFault"
	OpGetFaults  Op = "GetFaults"
	OpListSteps  Op = "ListSteps"
	OpGetStep    Op = "GetStep"
)

// CatalogOps lists every catalog operation.
var CatalogOps = []Op{
	OpListBrands, OpGetBrand, OpListModels, OpGetModel,
	OpListFaults, OpGetFault, OpGetFaults, OpListSteps, OpGetStep,
}

// Fallback decorates a primary catalog with a static one. When the primary is
// missing or an allowed operation fails, the failure is logged and the static
// dataset answers instead. Caller cancellation is never masked.
//
// Only public catalog data may be wrapped: favorites and access state have no
// static copy and must surface their failures.
type Fallback struct {
	primary Catalog
	static  Catalog
	allow   map[Op]bool
	log     *zap.Logger
}

// NewFallback wraps primary. With no ops every catalog operation may fall back.
// A nil primary means the remote source is not configured.
func NewFallback(primary, static Catalog, log *zap.Logger, ops ...Op) *Fallback {
	if log == nil {
		log = zap.NewNop()
	}
	if len(ops) == 0 {
		ops = CatalogOps
	}
	allow := make(map[Op]bool, len(ops))
	for _, op := range ops {
		allow[op] = true
	}
	return &Fallback{primary: primary, static: static, allow: allow, log: log}
}

func run[T any](ctx context.Context, f *Fallback, op Op, call func(Catalog) (T, error)) (T, error) {
	if f.primary == nil {
		if !f.allow[op] {
			var zero T
			return zero, ErrUnavailable
		}
		f.log.Debug("catalog source not configured, serving static dataset", zap.String("op", string(op)))
		return call(f.static)
	}

	v, err := call(f.primary)
	if err == nil || !f.allow[op] || ctx.Err() != nil {
		return v, err
	}
	f.log.Warn("catalog source failed, serving static dataset",
		zap.String("op", string(op)),
		zap.Error(err),
	)
	return call(f.static)
}

// ListBrands implements Catalog.
func (f *Fallback) ListBrands(ctx context.Context) ([]models.BrandRecord, error) {
	return run(ctx, f, OpListBrands, func(c Catalog) ([]models.BrandRecord, error) {
		return c.ListBrands(ctx)
	})
}

// GetBrand implements Catalog.
func (f *Fallback) GetBrand(ctx context.Context, id string) (*models.BrandRecord, error) {
	return run(ctx, f, OpGetBrand, func(c Catalog) (*models.BrandRecord, error) {
		return c.GetBrand(ctx, id)
	})
}

// ListModels implements Catalog.
func (f *Fallback) ListModels(ctx context.Context, brandID string) ([]models.ModelRecord, error) {
	return run(ctx, f, OpListModels, func(c Catalog) ([]models.ModelRecord, error) {
		return c.ListModels(ctx, brandID)
	})
}

// GetModel implements Catalog.
func (f *Fallback) GetModel(ctx context.Context, id string) (*models.ModelRecord, error) {
	return run(ctx, f, OpGetModel, func(c Catalog) (*models.ModelRecord, error) {
		return c.GetModel(ctx, id)
	})
}

// ListFaults implements Catalog.
func (f *Fallback) ListFaults(ctx context.Context, brandID string) ([]models.FaultRecord, error) {
	return run(ctx, f, OpListFaults, func(c Catalog) ([]models.FaultRecord, error) {
		return c.ListFaults(ctx, brandID)
	})
}

// GetFault implements Catalog.
func (f *Fallback) GetFault(ctx context.Context, id string) (*models.FaultRecord, error) {
	return run(ctx, f, OpGetFault, func(c Catalog) (*models.FaultRecord, error) {
		return c.GetFault(ctx, id)
	})
}

// GetFaults implements Catalog.
func (f *Fallback) GetFaults(ctx context.Context, ids []string) ([]models.FaultRecord, error) {
	return run(ctx, f, OpGetFaults, func(c Catalog) ([]models.FaultRecord, error) {
		return c.GetFaults(ctx, ids)
	})
}

// ListSteps implements Catalog.
func (f *Fallback) ListSteps(ctx context.Context, faultID string) ([]models.StepRecord, error) {
	return run(ctx, f, OpListSteps, func(c Catalog) ([]models.StepRecord, error) {
		return c.ListSteps(ctx, faultID)
	})
}

// GetStep implements Catalog.
func (f *Fallback) GetStep(ctx context.Context, id string) (*models.StepRecord, error) {
	return run(ctx, f, OpGetStep, func(c Catalog) (*models.StepRecord, error) {
		return c.GetStep(ctx, id)
	})
}
