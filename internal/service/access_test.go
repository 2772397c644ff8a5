package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atinyakov/FaultKeeper/internal/models"
	"github.com/atinyakov/FaultKeeper/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newGate(limit int) (*service.AccessGate, *memAccess, *clock) {
	repo := newMemAccess()
	c := &clock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	return service.NewAccessGate(repo, limit, time.UTC).WithClock(c.now), repo, c
}

func TestAuthorizeChargesOncePerContent(t *testing.T) {
	gate, _, _ := newGate(10)
	ctx := context.Background()

	for range 3 {
		s, err := gate.Authorize(ctx, userA, "baymak-e03")
		require.NoError(t, err)
		assert.Equal(t, 1, s.QuotaUsed)
	}

	s, err := gate.Authorize(ctx, userA, "bosch-ea")
	require.NoError(t, err)
	assert.Equal(t, 2, s.QuotaUsed)
	assert.Equal(t, 8, s.Remaining())
}

func TestAuthorizeDeniesAtLimit(t *testing.T) {
	gate, _, _ := newGate(2)
	ctx := context.Background()

	_, err := gate.Authorize(ctx, userA, "a")
	require.NoError(t, err)
	_, err = gate.Authorize(ctx, userA, "b")
	require.NoError(t, err)

	s, err := gate.Authorize(ctx, userA, "c")
	assert.ErrorIs(t, err, service.ErrQuotaExceeded)
	assert.Equal(t, 2, s.QuotaUsed)
	assert.False(t, s.CanAccess())

	// Already paid for today.
	_, err = gate.Authorize(ctx, userA, "a")
	assert.NoError(t, err)

	// Other users are unaffected.
	_, err = gate.Authorize(ctx, userB, "c")
	assert.NoError(t, err)
}

func TestAuthorizeResetsOnNewDay(t *testing.T) {
	gate, _, c := newGate(1)
	ctx := context.Background()

	_, err := gate.Authorize(ctx, userA, "a")
	require.NoError(t, err)
	_, err = gate.Authorize(ctx, userA, "b")
	require.ErrorIs(t, err, service.ErrQuotaExceeded)

	c.advance(24 * time.Hour)
	s, err := gate.Authorize(ctx, userA, "b")
	require.NoError(t, err)
	assert.Equal(t, 1, s.QuotaUsed)
	assert.Equal(t, "2024-03-02", s.LastResetDate)

	// A re-read of yesterday's content is charged again.
	_, err = gate.Authorize(ctx, userA, "a")
	assert.ErrorIs(t, err, service.ErrQuotaExceeded)
}

func TestUpgradeKeepsUsageAndUnlocks(t *testing.T) {
	gate, repo, _ := newGate(10)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		_, err := gate.Authorize(ctx, userA, id)
		require.NoError(t, err)
	}
	_, err := gate.Authorize(ctx, userA, "k")
	require.ErrorIs(t, err, service.ErrQuotaExceeded)

	s, err := gate.Upgrade(ctx, userA)
	require.NoError(t, err)
	assert.Equal(t, models.PlanPro, s.Plan)
	assert.Equal(t, 10, s.QuotaUsed)
	assert.True(t, s.CanAccess())

	s, err = gate.Authorize(ctx, userA, "k")
	require.NoError(t, err)
	assert.Equal(t, 10, s.QuotaUsed)
	assert.NoError(t, gate.RequirePro(ctx, userA))
	assert.Equal(t, 10, repo.states[userA].QuotaUsed)
}

func TestDowngradeClearsUsage(t *testing.T) {
	gate, _, _ := newGate(10)
	ctx := context.Background()

	_, err := gate.Upgrade(ctx, userA)
	require.NoError(t, err)
	_, err = gate.Authorize(ctx, userA, "a")
	require.NoError(t, err)

	s, err := gate.Downgrade(ctx, userA)
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, s.Plan)
	assert.Zero(t, s.QuotaUsed)
	assert.ErrorIs(t, gate.RequirePro(ctx, userA), service.ErrUpgradeRequired)
}

func TestStateOfNewUser(t *testing.T) {
	gate, _, _ := newGate(7)

	s, err := gate.State(context.Background(), userA)
	require.NoError(t, err)
	assert.Equal(t, userA, s.UserID)
	assert.Equal(t, models.PlanFree, s.Plan)
	assert.Equal(t, 7, s.QuotaLimit)
	assert.Equal(t, "2024-03-01", s.LastResetDate)
}

func TestGateRejectsBadInput(t *testing.T) {
	gate, repo, _ := newGate(10)
	ctx := context.Background()

	_, err := gate.Authorize(ctx, "", "a")
	assert.ErrorIs(t, err, service.ErrUnauthenticated)

	_, err = gate.Authorize(ctx, "bob", "a")
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = gate.Authorize(ctx, userA, "Not An Id")
	assert.ErrorIs(t, err, service.ErrValidation)

	assert.Zero(t, repo.calls)
}

func TestGateSurfacesStoreErrors(t *testing.T) {
	gate, repo, _ := newGate(10)
	repo.err = errors.New("db down")

	_, err := gate.Authorize(context.Background(), userA, "a")
	assert.EqualError(t, err, "db down")

	err = gate.RequirePro(context.Background(), userA)
	assert.EqualError(t, err, "db down")
}
