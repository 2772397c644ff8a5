package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/FaultKeeper/internal/models"
	"github.com/atinyakov/FaultKeeper/internal/search"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BrandService looks up brands.
type BrandService interface {
	ListAll(ctx context.Context) ([]models.Brand, error)
	GetByID(ctx context.Context, id string) (*models.Brand, error)
}

// ModelService looks up boiler models.
type ModelService interface {
	ByBrand(ctx context.Context, brandID string) ([]models.BoilerModel, error)
	GetByID(ctx context.Context, id string) (*models.BoilerModel, error)
}

// SearchService filters and ranks fault codes.
type SearchService interface {
	Rank(ctx context.Context, f search.Filters) ([]search.Result, error)
	SearchFaults(ctx context.Context, f search.Filters) ([]models.FaultCode, error)
}

// CatalogHandler serves the public catalog. None of its routes need a user.
type CatalogHandler struct {
	Brands BrandService
	Models ModelService
	Search SearchService
	Log    *zap.Logger
}

// ListBrands handles GET /api/brands.
func (h *CatalogHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.Brands.ListAll(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, brands)
}

// GetBrand handles GET /api/brands/{id}.
func (h *CatalogHandler) GetBrand(w http.ResponseWriter, r *http.Request) {
	b, err := h.Brands.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if b == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// ListBrandModels handles GET /api/brands/{id}/models.
func (h *CatalogHandler) ListBrandModels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	b, err := h.Brands.GetByID(ctx, id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if b == nil {
		notFound(w)
		return
	}
	ms, err := h.Models.ByBrand(ctx, id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, ms)
}

// GetModel handles GET /api/models/{id}.
func (h *CatalogHandler) GetModel(w http.ResponseWriter, r *http.Request) {
	m, err := h.Models.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if m == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// ListFaults handles GET /api/faults?brandId=&modelId=. Faults are listed in
// catalog order without scoring.
func (h *CatalogHandler) ListFaults(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	faults, err := h.Search.SearchFaults(r.Context(), search.Filters{
		BrandID: q.Get("brandId"),
		ModelID: q.Get("modelId"),
	})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, faults)
}

// SearchFaults handles GET /api/search?q=&brandId=&modelId=.
func (h *CatalogHandler) SearchFaults(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	results, err := h.Search.Rank(r.Context(), search.Filters{
		Q:       q.Get("q"),
		BrandID: q.Get("brandId"),
		ModelID: q.Get("modelId"),
	})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
