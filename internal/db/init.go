// Package db opens the PostgreSQL store, creates its schema and seeds it from
// the bundled dataset.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS brands (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    aliases TEXT[] NOT NULL DEFAULT '{}',
    country TEXT,
    sort_order INT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS boiler_models (
    id TEXT PRIMARY KEY,
    brand_id TEXT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    year_start INT,
    year_end INT,
    sort_order INT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS fault_codes (
    id TEXT PRIMARY KEY,
    brand_id TEXT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
    model_id TEXT REFERENCES boiler_models(id) ON DELETE SET NULL,
    code TEXT NOT NULL,
    title JSONB NOT NULL,
    severity TEXT NOT NULL CHECK (severity IN ('info', 'warning', 'critical')),
    summary JSONB NOT NULL,
    causes JSONB NOT NULL,
    safety_notice JSONB,
    last_verified TIMESTAMPTZ,
    sort_order INT NOT NULL DEFAULT 0,
    UNIQUE (brand_id, code)
);

CREATE TABLE IF NOT EXISTS resolution_steps (
    id TEXT PRIMARY KEY,
    fault_id TEXT NOT NULL REFERENCES fault_codes(id) ON DELETE CASCADE,
    step_order INT NOT NULL,
    instruction JSONB NOT NULL,
    estimated_minutes INT,
    requires_professional BOOLEAN NOT NULL DEFAULT FALSE,
    tools JSONB NOT NULL,
    image_ref TEXT
);

CREATE TABLE IF NOT EXISTS favorites (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL,
    fault_id TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    UNIQUE (user_id, fault_id)
);

CREATE TABLE IF NOT EXISTS user_access (
    user_id UUID PRIMARY KEY,
    plan TEXT NOT NULL CHECK (plan IN ('free', 'pro')),
    quota_used INT NOT NULL DEFAULT 0,
    quota_limit INT NOT NULL,
    last_reset_date DATE NOT NULL,
    charged TEXT[] NOT NULL DEFAULT '{}',
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// InitPostgres connects to dsn and creates any missing tables.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := CreateSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// CreateSchema creates any missing tables on db.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
