package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/FaultKeeper/internal/access"
	"github.com/lib/pq"
)

// PostgresAccessRepository persists per-user plan and quota state.
type PostgresAccessRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresAccessRepository creates an access repository over db.
func NewPostgresAccessRepository(db *sql.DB) *PostgresAccessRepository {
	return &PostgresAccessRepository{DB: db}
}

// Mutate loads the user's state under a row lock, applies fn and stores the
// result in one transaction. A user without a row is first created from
// initial so the lock always has a row to hold.
func (s *PostgresAccessRepository) Mutate(
	ctx context.Context,
	userID string,
	initial access.State,
	fn func(access.State) access.State,
) (access.State, error) {
	if s.DB == nil {
		return access.State{}, ErrUnavailable
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return access.State{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// The row must exist before the locking read, otherwise two first
	// requests from the same user would both see no row and both write.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_access (user_id, plan, quota_used, quota_limit, last_reset_date, charged, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id) DO NOTHING
	`, userID, string(initial.Plan), initial.QuotaUsed, initial.QuotaLimit, initial.LastResetDate, pq.Array(nonNil(initial.Charged)))
	if err != nil {
		return access.State{}, fmt.Errorf("create access state: %w", err)
	}

	var (
		cur       access.State
		lastReset time.Time
	)
	err = tx.QueryRowContext(ctx, `
		SELECT user_id, plan, quota_used, quota_limit, last_reset_date, charged
		FROM user_access WHERE user_id = $1 FOR UPDATE
	`, userID).Scan(&cur.UserID, &cur.Plan, &cur.QuotaUsed, &cur.QuotaLimit, &lastReset, pq.Array(&cur.Charged))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		cur = initial
		cur.UserID = userID
	case err != nil:
		return access.State{}, fmt.Errorf("load access state: %w", err)
	default:
		cur.LastResetDate = lastReset.Format(access.DateLayout)
	}

	next := fn(cur)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_access (user_id, plan, quota_used, quota_limit, last_reset_date, charged, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			plan = EXCLUDED.plan,
			quota_used = EXCLUDED.quota_used,
			quota_limit = EXCLUDED.quota_limit,
			last_reset_date = EXCLUDED.last_reset_date,
			charged = EXCLUDED.charged,
			updated_at = NOW()
	`, userID, string(next.Plan), next.QuotaUsed, next.QuotaLimit, next.LastResetDate, pq.Array(nonNil(next.Charged)))
	if err != nil {
		return access.State{}, fmt.Errorf("save access state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return access.State{}, fmt.Errorf("commit: %w", err)
	}
	return next, nil
}

// nonNil keeps a nil charged list from being stored as NULL.
func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
