// Package access implements the freemium plan and daily quota rules as pure
// functions over an immutable State snapshot.
package access

import (
	"slices"
	"time"

	"github.com/atinyakov/FaultKeeper/internal/models"
)

// DateLayout is the calendar-day format of State.LastResetDate.
const DateLayout = "2006-01-02"

// State is a user's plan and quota usage. Reducers never modify their argument.
type State struct {
	UserID        string      `json:"userId"`
	Plan          models.Plan `json:"plan"`
	QuotaUsed     int         `json:"quotaUsed"`
	QuotaLimit    int         `json:"quotaLimit"`
	LastResetDate string      `json:"lastResetDate"`
	// Charged holds the content ids billed on LastResetDate.
	Charged []string `json:"-"`
}

// New returns the state of a user that has never been seen: free plan, nothing used.
func New(userID string, limit int, today string) State {
	return State{
		UserID:        userID,
		Plan:          models.PlanFree,
		QuotaLimit:    limit,
		LastResetDate: today,
	}
}

// Today formats now as a calendar day in loc (UTC when loc is nil).
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(DateLayout)
}

// CanAccess is the single gate predicate: pro always passes, free passes while under the limit.
func CanAccess(plan models.Plan, quotaUsed, quotaLimit int) bool {
	return plan == models.PlanPro || quotaUsed < quotaLimit
}

// CanAccess evaluates the gate predicate for s.
func (s State) CanAccess() bool {
	return CanAccess(s.Plan, s.QuotaUsed, s.QuotaLimit)
}

// Remaining returns how many gated reads are left today, or -1 for unlimited plans.
func (s State) Remaining() int {
	if s.Plan == models.PlanPro {
		return -1
	}
	return max(s.QuotaLimit-s.QuotaUsed, 0)
}

// UpgradeToPro moves s to the pro plan. Quota usage is kept.
func UpgradeToPro(s State) State {
	s.Plan = models.PlanPro
	s.Charged = slices.Clone(s.Charged)
	return s
}

// DowngradeToFree moves s to the free plan and clears today's usage.
func DowngradeToFree(s State) State {
	s.Plan = models.PlanFree
	s.QuotaUsed = 0
	s.Charged = nil
	return s
}

// IncrementQuota adds one read. There is no ceiling: usage above the limit keeps denying access.
func IncrementQuota(s State) State {
	s.QuotaUsed++
	s.Charged = slices.Clone(s.Charged)
	return s
}

// ResetDailyQuota clears usage and records today as the reset date.
func ResetDailyQuota(s State, today string) State {
	s.QuotaUsed = 0
	s.LastResetDate = today
	s.Charged = nil
	return s
}

// CheckAndResetQuota resets s when its last reset happened on another day.
// Repeated calls on the same day return s unchanged.
func CheckAndResetQuota(s State, today string) State {
	if s.LastResetDate == today {
		return s
	}
	return ResetDailyQuota(s, today)
}

// HasCharged reports whether contentID was already billed on LastResetDate.
func (s State) HasCharged(contentID string) bool {
	return slices.Contains(s.Charged, contentID)
}

// Charge bills contentID to a free user once per day. It reports whether the
// quota was incremented; pro users and already-billed content are never charged.
func Charge(s State, contentID string) (State, bool) {
	if s.Plan == models.PlanPro || s.HasCharged(contentID) {
		return s, false
	}
	next := IncrementQuota(s)
	next.Charged = append(next.Charged, contentID)
	return next, true
}
