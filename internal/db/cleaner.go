package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartStaleAccountCleaner periodically removes free-plan access rows that
// have not been touched for retention. A removed user starts over as a new
// free user with a fresh quota, so rows whose quota day is still today are
// kept regardless of retention. Pro rows are never removed.
func StartStaleAccountCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	if interval <= 0 {
		log.Error("stale account cleaner disabled", zap.Duration("interval", interval))
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-retention)
				res, err := db.ExecContext(ctx, `
                    DELETE FROM user_access
                     WHERE plan = 'free'
                       AND updated_at < $1
                       AND last_reset_date < CURRENT_DATE
                `, cutoff)
				if err != nil {
					log.Error("failed to clean stale accounts", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned stale accounts", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
