package service_test

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/atinyakov/FaultKeeper/internal/access"
	"github.com/atinyakov/FaultKeeper/internal/dataset"
	"github.com/atinyakov/FaultKeeper/internal/i18n"
	"github.com/atinyakov/FaultKeeper/internal/models"
	"github.com/atinyakov/FaultKeeper/internal/repository"
)

const (
	userA = "0b8f8a4e-6d1c-4a55-9b8e-1f3f6a2d9c11"
	userB = "6a1d3a9e-2b7f-4c0e-8d5a-3f9e1c2b4a77"
)

func trCtx() context.Context {
	return i18n.WithLocale(context.Background(), i18n.TR)
}

func staticSource() *repository.StaticCatalog {
	return repository.NewStaticCatalog(dataset.MustLoad())
}

func dictResolver(t *testing.T) *i18n.Resolver {
	t.Helper()
	d, err := dataset.Dictionary()
	if err != nil {
		t.Fatalf("load dictionary: %v", err)
	}
	return i18n.NewResolver(d.Translate)
}

// mockSource embeds a working catalog and lets a test override single calls.
type mockSource struct {
	*repository.StaticCatalog
	ListFaultsFunc func(ctx context.Context, brandID string) ([]models.FaultRecord, error)
	GetFaultFunc   func(ctx context.Context, id string) (*models.FaultRecord, error)
	GetFaultsFunc  func(ctx context.Context, ids []string) ([]models.FaultRecord, error)
	ListStepsFunc  func(ctx context.Context, faultID string) ([]models.StepRecord, error)
}

func (m *mockSource) ListFaults(ctx context.Context, brandID string) ([]models.FaultRecord, error) {
	if m.ListFaultsFunc != nil {
		return m.ListFaultsFunc(ctx, brandID)
	}
	return m.StaticCatalog.ListFaults(ctx, brandID)
}

func (m *mockSource) GetFault(ctx context.Context, id string) (*models.FaultRecord, error) {
	if m.GetFaultFunc != nil {
		return m.GetFaultFunc(ctx, id)
	}
	return m.StaticCatalog.GetFault(ctx, id)
}

func (m *mockSource) GetFaults(ctx context.Context, ids []string) ([]models.FaultRecord, error) {
	if m.GetFaultsFunc != nil {
		return m.GetFaultsFunc(ctx, ids)
	}
	return m.StaticCatalog.GetFaults(ctx, ids)
}

func (m *mockSource) ListSteps(ctx context.Context, faultID string) ([]models.StepRecord, error) {
	if m.ListStepsFunc != nil {
		return m.ListStepsFunc(ctx, faultID)
	}
	return m.StaticCatalog.ListSteps(ctx, faultID)
}

// memAccess is an in-memory AccessRepository.
type memAccess struct {
	mu     sync.Mutex
	states map[string]access.State
	err    error
	calls  int
}

func newMemAccess() *memAccess {
	return &memAccess{states: map[string]access.State{}}
}

func (m *memAccess) Mutate(_ context.Context, userID string, initial access.State, fn func(access.State) access.State) (access.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return access.State{}, m.err
	}
	cur, ok := m.states[userID]
	if !ok {
		cur = initial
	}
	next := fn(cur)
	m.states[userID] = next
	return next, nil
}

// memFavorites is an in-memory FavoritesRepository keeping insertion order.
type memFavorites struct {
	mu    sync.Mutex
	items []models.Favorite
	err   error
	calls int
}

func (m *memFavorites) Add(_ context.Context, userID, faultID string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return false, m.err
	}
	if m.index(userID, faultID) >= 0 {
		return false, nil
	}
	m.items = append(m.items, models.Favorite{UserID: userID, FaultID: faultID, CreatedAt: at})
	return true, nil
}

func (m *memFavorites) Remove(_ context.Context, userID, faultID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return false, m.err
	}
	i := m.index(userID, faultID)
	if i < 0 {
		return false, nil
	}
	m.items = slices.Delete(m.items, i, i+1)
	return true, nil
}

func (m *memFavorites) List(_ context.Context, userID string) ([]models.Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Favorite
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.items[i].UserID == userID {
			out = append(out, m.items[i])
		}
	}
	return out, nil
}

func (m *memFavorites) Exists(_ context.Context, userID, faultID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.index(userID, faultID) >= 0, m.err
}

func (m *memFavorites) Count(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	n := 0
	for _, f := range m.items {
		if f.UserID == userID {
			n++
		}
	}
	return n, m.err
}

func (m *memFavorites) index(userID, faultID string) int {
	return slices.IndexFunc(m.items, func(f models.Favorite) bool {
		return f.UserID == userID && f.FaultID == faultID
	})
}
