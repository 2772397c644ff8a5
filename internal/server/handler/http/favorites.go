package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/FaultKeeper/internal/middleware"
	"github.com/atinyakov/FaultKeeper/internal/models"
	"github.com/atinyakov/FaultKeeper/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FavoritesService manages the caller's saved faults.
type FavoritesService interface {
	Add(ctx context.Context, userID, faultID string) (service.AddResult, error)
	Remove(ctx context.Context, userID, faultID string) (service.RemoveResult, error)
	List(ctx context.Context, userID string) ([]models.FaultCode, error)
	IsFavorited(ctx context.Context, userID, faultID string) (bool, error)
	Count(ctx context.Context, userID string) (int, error)
}

// FavoritesHandler serves /api/favorites. The router mounts it behind
// AccountHandler.RequirePro.
type FavoritesHandler struct {
	Favorites FavoritesService
	Log       *zap.Logger
}

// List handles GET /api/favorites.
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	faults, err := h.Favorites.List(ctx, middleware.GetUserIDFromContext(ctx))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, faults)
}

// Count handles GET /api/favorites/count.
func (h *FavoritesHandler) Count(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	n, err := h.Favorites.Count(ctx, middleware.GetUserIDFromContext(ctx))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

// Get handles GET /api/favorites/{faultId}.
func (h *FavoritesHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ok, err := h.Favorites.IsFavorited(ctx, middleware.GetUserIDFromContext(ctx), chi.URLParam(r, "faultId"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"favorited": ok})
}

// Put handles PUT /api/favorites/{faultId}. It answers 201 when the favorite
// was created and 200 when it already existed.
func (h *FavoritesHandler) Put(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.Favorites.Add(ctx, middleware.GetUserIDFromContext(ctx), chi.URLParam(r, "faultId"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

// Delete handles DELETE /api/favorites/{faultId}.
func (h *FavoritesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.Favorites.Remove(ctx, middleware.GetUserIDFromContext(ctx), chi.URLParam(r, "faultId"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
