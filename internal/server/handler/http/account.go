package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/FaultKeeper/internal/access"
	"github.com/atinyakov/FaultKeeper/internal/middleware"
	"github.com/atinyakov/FaultKeeper/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AccountService exposes the caller's plan and quota.
type AccountService interface {
	State(ctx context.Context, userID string) (access.State, error)
	Upgrade(ctx context.Context, userID string) (access.State, error)
	Downgrade(ctx context.Context, userID string) (access.State, error)
	RequirePro(ctx context.Context, userID string) error
}

// DetailService serves gated fault pages.
type DetailService interface {
	Get(ctx context.Context, userID, faultID string) (*service.FaultDetail, error)
}

// AccountView is the JSON form of access.State.
type AccountView struct {
	access.State
	Remaining int  `json:"remaining"`
	CanAccess bool `json:"canAccess"`
}

func accountView(s access.State) AccountView {
	return AccountView{State: s, Remaining: s.Remaining(), CanAccess: s.CanAccess()}
}

// AccountHandler serves the caller's access state and gated fault pages.
type AccountHandler struct {
	Access AccountService
	Detail DetailService
	Log    *zap.Logger
}

// GetAccount handles GET /api/account.
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.Access.State)
}

// Upgrade handles POST /api/account/upgrade. Payment is mocked.
func (h *AccountHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.Access.Upgrade)
}

// Downgrade handles POST /api/account/downgrade.
func (h *AccountHandler) Downgrade(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.Access.Downgrade)
}

func (h *AccountHandler) respond(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (access.State, error)) {
	s, err := fn(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, accountView(s))
}

// GetFault handles GET /api/faults/{id}. Each successful read of a new fault
// costs a free user one unit of the daily quota.
func (h *AccountHandler) GetFault(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := h.Detail.Get(ctx, middleware.GetUserIDFromContext(ctx), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		*service.FaultDetail
		Access AccountView `json:"access"`
	}{page, accountView(page.Access)})
}

// RequirePro rejects callers that are not on the pro plan with 403.
func (h *AccountHandler) RequirePro(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := h.Access.RequirePro(ctx, middleware.GetUserIDFromContext(ctx)); err != nil {
			writeError(w, h.Log, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
