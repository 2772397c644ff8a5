package http_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/atinyakov/FaultKeeper/internal/access"
	"github.com/atinyakov/FaultKeeper/internal/models"
	"github.com/atinyakov/FaultKeeper/internal/search"
	handler "github.com/atinyakov/FaultKeeper/internal/server/handler/http"
	"github.com/atinyakov/FaultKeeper/internal/service"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeBrands struct {
	ListAllFunc func(ctx context.Context) ([]models.Brand, error)
	GetByIDFunc func(ctx context.Context, id string) (*models.Brand, error)
}

func (f *fakeBrands) ListAll(ctx context.Context) ([]models.Brand, error) { return f.ListAllFunc(ctx) }
func (f *fakeBrands) GetByID(ctx context.Context, id string) (*models.Brand, error) {
	return f.GetByIDFunc(ctx, id)
}

type fakeSearch struct {
	RankFunc func(ctx context.Context, f search.Filters) ([]search.Result, error)
}

func (f *fakeSearch) Rank(ctx context.Context, q search.Filters) ([]search.Result, error) {
	return f.RankFunc(ctx, q)
}
func (f *fakeSearch) SearchFaults(ctx context.Context, q search.Filters) ([]models.FaultCode, error) {
	rs, err := f.RankFunc(ctx, q)
	return search.Faults(rs), err
}

type fakeAccount struct {
	StateFunc func(ctx context.Context, userID string) (access.State, error)
}

func (f *fakeAccount) State(ctx context.Context, userID string) (access.State, error) {
	return f.StateFunc(ctx, userID)
}
func (f *fakeAccount) Upgrade(ctx context.Context, userID string) (access.State, error) {
	return f.StateFunc(ctx, userID)
}
func (f *fakeAccount) Downgrade(ctx context.Context, userID string) (access.State, error) {
	return f.StateFunc(ctx, userID)
}
func (f *fakeAccount) RequirePro(ctx context.Context, userID string) error {
	_, err := f.StateFunc(ctx, userID)
	return err
}

func fakeRouter(brands *fakeBrands, s *fakeSearch, acc *fakeAccount, log *zap.Logger) http.Handler {
	return handler.NewRouter(
		&handler.CatalogHandler{Brands: brands, Search: s, Log: log},
		&handler.AccountHandler{Access: acc, Log: log},
		&handler.FavoritesHandler{Log: log},
		secret,
		log,
	)
}

func TestCatalogHandler_StorageFailureIsGeneric500(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	brands := &fakeBrands{
		ListAllFunc: func(context.Context) ([]models.Brand, error) {
			return nil, errors.New("pq: connection refused")
		},
	}
	srv := fakeRouter(brands, nil, nil, zap.New(core))

	rec := do(t, srv, http.MethodGet, "/api/brands", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"temporarily unavailable, please retry"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "pq")
	assert.Equal(t, 1, logs.FilterMessage("request failed").Len())
}

func TestCatalogHandler_PassesQueryFilters(t *testing.T) {
	var got search.Filters
	s := &fakeSearch{
		RankFunc: func(_ context.Context, f search.Filters) ([]search.Result, error) {
			got = f
			return []search.Result{{Fault: models.FaultCode{ID: "eca-e05"}, Score: 8}}, nil
		},
	}
	srv := fakeRouter(nil, s, nil, zap.NewNop())

	rec := do(t, srv, http.MethodGet, "/api/search?q=e05&brandId=eca&modelId=eca-proteus", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, search.Filters{Q: "e05", BrandID: "eca", ModelID: "eca-proteus"}, got)
	assert.Contains(t, rec.Body.String(), `"id":"eca-e05"`)
	assert.Contains(t, rec.Body.String(), `"score":8`)

	rec = do(t, srv, http.MethodGet, "/api/faults?q=ignored&brandId=eca", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, search.Filters{BrandID: "eca"}, got)
}

func TestAccountHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"quota", service.ErrQuotaExceeded, http.StatusPaymentRequired},
		{"upgrade", service.ErrUpgradeRequired, http.StatusForbidden},
		{"unauthenticated", service.ErrUnauthenticated, http.StatusUnauthorized},
		{"not found", service.ErrNotFound, http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &fakeAccount{
				StateFunc: func(context.Context, string) (access.State, error) {
					return access.State{}, tt.err
				},
			}
			srv := fakeRouter(nil, nil, acc, zap.NewNop())

			rec := do(t, srv, http.MethodGet, "/api/account", alice)

			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestAccountHandler_ReportsRemaining(t *testing.T) {
	acc := &fakeAccount{
		StateFunc: func(_ context.Context, userID string) (access.State, error) {
			return access.State{UserID: userID, Plan: models.PlanFree, QuotaUsed: 4, QuotaLimit: 10, LastResetDate: "2024-03-01"}, nil
		},
	}
	srv := fakeRouter(nil, nil, acc, zap.NewNop())

	rec := do(t, srv, http.MethodGet, "/api/account", alice)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"userId":"`+alice+`","plan":"free","quotaUsed":4,"quotaLimit":10,"lastResetDate":"2024-03-01","remaining":6,"canAccess":true}`, rec.Body.String())
}

func TestAuthenticate_RejectsBadToken(t *testing.T) {
	srv := fakeRouter(nil, nil, nil, zap.NewNop())

	rec := do(t, srv, http.MethodGet, "/api/account", "", "Authorization", "Bearer not-a-jwt")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
