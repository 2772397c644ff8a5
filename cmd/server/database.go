package main

import (
	"context"
	"database/sql"

	"github.com/atinyakov/FaultKeeper/internal/config"
	"github.com/atinyakov/FaultKeeper/internal/dataset"
	"github.com/atinyakov/FaultKeeper/internal/db"
	"go.uber.org/zap"
)

// openDatabase connects, optionally seeds and starts the cleaner. It returns
// nil when no DSN is configured or the database cannot be reached.
func openDatabase(ctx context.Context, options *config.Options, data *dataset.Catalog, log *zap.Logger) *sql.DB {
	if options.DatabaseDSN == "" {
		log.Warn("no database configured, serving the bundled dataset only")
		return nil
	}

	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		log.Error("cannot init database, serving the bundled dataset only", zap.Error(err))
		return nil
	}

	if options.Seed {
		if err := db.Seed(ctx, postgresDB, data); err != nil {
			log.Error("failed to seed database", zap.Error(err))
		} else {
			log.Info("database seeded",
				zap.Int("brands", len(data.Brands)),
				zap.Int("faults", len(data.Faults)),
			)
		}
	}

	db.StartStaleAccountCleaner(ctx, postgresDB,
		options.CleanupInterval.Duration,
		options.StaleAfter.Duration,
		log,
	)
	return postgresDB
}
