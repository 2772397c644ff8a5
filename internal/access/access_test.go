package access

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/FaultKeeper/internal/models"
)

func TestCanAccessFreeQuotaBoundary(t *testing.T) {
	const limit = 10
	for used := 0; used <= limit+3; used++ {
		assert.Equal(t, used < limit, CanAccess(models.PlanFree, used, limit), "used=%d", used)
	}
}

func TestCanAccessProIgnoresQuota(t *testing.T) {
	for _, used := range []int{0, 9, 10, 11, 1000} {
		assert.True(t, CanAccess(models.PlanPro, used, 10), "used=%d", used)
	}
	assert.True(t, CanAccess(models.PlanPro, 5, 0))
}

func TestUpgradeKeepsQuotaUsed(t *testing.T) {
	s := State{Plan: models.PlanFree, QuotaUsed: 10, QuotaLimit: 10}
	require.False(t, s.CanAccess())

	up := UpgradeToPro(s)
	assert.True(t, up.CanAccess())
	assert.Equal(t, 10, up.QuotaUsed)
	assert.Equal(t, models.PlanFree, s.Plan, "argument must not change")

	again := UpgradeToPro(up)
	assert.Equal(t, models.PlanPro, again.Plan)
}

func TestDowngradeResetsQuota(t *testing.T) {
	s := State{Plan: models.PlanPro, QuotaUsed: 42, QuotaLimit: 10, Charged: []string{"f1"}}
	down := DowngradeToFree(s)
	assert.Equal(t, models.PlanFree, down.Plan)
	assert.Zero(t, down.QuotaUsed)
	assert.Empty(t, down.Charged)
	assert.True(t, down.CanAccess())
	assert.Equal(t, 42, s.QuotaUsed)
}

func TestIncrementQuotaHasNoCeiling(t *testing.T) {
	s := State{Plan: models.PlanFree, QuotaUsed: 10, QuotaLimit: 10}
	s = IncrementQuota(s)
	assert.Equal(t, 11, s.QuotaUsed)
	assert.False(t, s.CanAccess())
	assert.Zero(t, s.Remaining())
}

func TestCheckAndResetQuotaDayRollover(t *testing.T) {
	s := State{Plan: models.PlanFree, QuotaUsed: 7, QuotaLimit: 10, LastResetDate: "2024-03-01", Charged: []string{"a"}}

	next := CheckAndResetQuota(s, "2024-03-02")
	assert.Zero(t, next.QuotaUsed)
	assert.Equal(t, "2024-03-02", next.LastResetDate)
	assert.Empty(t, next.Charged)

	next = IncrementQuota(next)
	same := CheckAndResetQuota(next, "2024-03-02")
	assert.Equal(t, next, same, "second call on the same day is a no-op")
	assert.Equal(t, 1, same.QuotaUsed)
}

func TestResetDailyQuota(t *testing.T) {
	s := State{Plan: models.PlanFree, QuotaUsed: 3, LastResetDate: "2024-03-01"}
	r := ResetDailyQuota(s, "2024-03-01")
	assert.Zero(t, r.QuotaUsed)
	assert.Equal(t, "2024-03-01", r.LastResetDate)
}

func TestChargeOncePerContent(t *testing.T) {
	s := New("u1", 10, "2024-03-01")

	s, charged := Charge(s, "fault-1")
	assert.True(t, charged)
	assert.Equal(t, 1, s.QuotaUsed)

	s, charged = Charge(s, "fault-1")
	assert.False(t, charged)
	assert.Equal(t, 1, s.QuotaUsed)

	s, charged = Charge(s, "fault-2")
	assert.True(t, charged)
	assert.Equal(t, 2, s.QuotaUsed)
	assert.Equal(t, []string{"fault-1", "fault-2"}, s.Charged)
}

func TestChargeDoesNotAlias(t *testing.T) {
	base := State{Plan: models.PlanFree, QuotaLimit: 10, Charged: make([]string, 1, 4)}
	base.Charged[0] = "x"

	a, _ := Charge(base, "a")
	b, _ := Charge(base, "b")
	assert.Equal(t, []string{"x", "a"}, a.Charged)
	assert.Equal(t, []string{"x", "b"}, b.Charged)
	assert.Len(t, base.Charged, 1)
}

func TestChargeSkipsPro(t *testing.T) {
	s := State{Plan: models.PlanPro, QuotaUsed: 3, QuotaLimit: 10}
	next, charged := Charge(s, "fault-1")
	assert.False(t, charged)
	assert.Equal(t, s, next)
	assert.Equal(t, -1, next.Remaining())
}

func TestToday(t *testing.T) {
	now := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-01", Today(now, nil))

	istanbul := time.FixedZone("TRT", 3*60*60)
	assert.Equal(t, "2024-03-02", Today(now, istanbul))
}

func TestNew(t *testing.T) {
	s := New("u1", 5, "2024-03-01")
	assert.Equal(t, models.PlanFree, s.Plan)
	assert.Equal(t, 5, s.Remaining())
	assert.True(t, s.CanAccess())
}
