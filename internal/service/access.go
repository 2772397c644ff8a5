package service

import (
	"context"
	"time"

	"github.com/atinyakov/FaultKeeper/internal/access"
	"github.com/atinyakov/FaultKeeper/internal/models"
	"github.com/atinyakov/FaultKeeper/internal/validation"
)

// AccessRepository persists access state. Mutate must apply fn atomically
// with respect to other calls for the same user.
type AccessRepository interface {
	Mutate(ctx context.Context, userID string, initial access.State, fn func(access.State) access.State) (access.State, error)
}

// AccessGate applies the plan and quota rules to gated reads. Repository
// failures are returned as is; account state never falls back.
type AccessGate struct {
	repo      AccessRepository
	limit     int
	loc       *time.Location
	now       func() time.Time
	validator *validation.Validator
}

// NewAccessGate creates a gate granting limit gated reads per calendar day in loc.
func NewAccessGate(repo AccessRepository, limit int, loc *time.Location) *AccessGate {
	if loc == nil {
		loc = time.UTC
	}
	return &AccessGate{
		repo:      repo,
		limit:     limit,
		loc:       loc,
		now:       time.Now,
		validator: validation.New(),
	}
}

// WithClock replaces the gate's clock. It is meant for tests.
func (g *AccessGate) WithClock(now func() time.Time) *AccessGate {
	g.now = now
	return g
}

type accessRequest struct {
	UserID    string `json:"userId" validate:"required,uuid"`
	ContentID string `json:"contentId" validate:"omitempty,catalogid"`
}

func (g *AccessGate) mutate(ctx context.Context, req accessRequest, fn func(access.State) access.State) (access.State, error) {
	if req.UserID == "" {
		return access.State{}, ErrUnauthenticated
	}
	if err := g.validator.Validate(req); err != nil {
		return access.State{}, err
	}
	today := access.Today(g.now(), g.loc)
	return g.repo.Mutate(ctx, req.UserID, access.New(req.UserID, g.limit, today), func(s access.State) access.State {
		s.QuotaLimit = g.limit
		return fn(access.CheckAndResetQuota(s, today))
	})
}

// Authorize is the single charging point for gated reads. It resets the
// quota on a new day, denies with ErrQuotaExceeded when CanAccess fails and
// otherwise charges a free user once per content id per day. Content already
// charged today stays readable.
func (g *AccessGate) Authorize(ctx context.Context, userID, contentID string) (access.State, error) {
	denied := false
	s, err := g.mutate(ctx, accessRequest{UserID: userID, ContentID: contentID}, func(s access.State) access.State {
		if s.HasCharged(contentID) {
			return s
		}
		if !s.CanAccess() {
			denied = true
			return s
		}
		next, _ := access.Charge(s, contentID)
		return next
	})
	if err != nil {
		return access.State{}, err
	}
	if denied {
		return s, ErrQuotaExceeded
	}
	return s, nil
}

// State returns the user's current state, applying a pending daily reset.
func (g *AccessGate) State(ctx context.Context, userID string) (access.State, error) {
	return g.mutate(ctx, accessRequest{UserID: userID}, func(s access.State) access.State { return s })
}

// Upgrade moves the user to the pro plan. Payment is not processed.
func (g *AccessGate) Upgrade(ctx context.Context, userID string) (access.State, error) {
	return g.mutate(ctx, accessRequest{UserID: userID}, access.UpgradeToPro)
}

// Downgrade moves the user to the free plan and clears today's usage.
func (g *AccessGate) Downgrade(ctx context.Context, userID string) (access.State, error) {
	return g.mutate(ctx, accessRequest{UserID: userID}, access.DowngradeToFree)
}

// RequirePro returns ErrUpgradeRequired unless the user is on the pro plan.
func (g *AccessGate) RequirePro(ctx context.Context, userID string) error {
	s, err := g.State(ctx, userID)
	if err != nil {
		return err
	}
	if s.Plan != models.PlanPro {
		return ErrUpgradeRequired
	}
	return nil
}
