package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atinyakov/FaultKeeper/internal/dataset"
	"github.com/lib/pq"
)

// Seed upserts every record of c inside one transaction. Catalog order is
// kept in sort_order so database reads list rows the way the dataset does.
func Seed(ctx context.Context, db *sql.DB, c *dataset.Catalog) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin: %w", err)
	}
	defer tx.Rollback()

	for i, b := range c.Brands {
		aliases := b.Aliases
		if aliases == nil {
			aliases = []string{}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO brands (id, name, aliases, country, sort_order)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name, aliases = EXCLUDED.aliases,
				country = EXCLUDED.country, sort_order = EXCLUDED.sort_order
		`, b.ID, b.Name, pq.Array(aliases), b.Country, i); err != nil {
			return fmt.Errorf("seed brand %s: %w", b.ID, err)
		}
	}

	for i, m := range c.Models {
		var start, end sql.NullInt64
		if m.Years != nil {
			start = sql.NullInt64{Int64: int64(m.Years.Start), Valid: true}
			end = sql.NullInt64{Int64: int64(m.Years.End), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO boiler_models (id, brand_id, name, year_start, year_end, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				brand_id = EXCLUDED.brand_id, name = EXCLUDED.name,
				year_start = EXCLUDED.year_start, year_end = EXCLUDED.year_end,
				sort_order = EXCLUDED.sort_order
		`, m.ID, m.BrandID, m.Name, start, end, i); err != nil {
			return fmt.Errorf("seed model %s: %w", m.ID, err)
		}
	}

	for i, f := range c.Faults {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO fault_codes (id, brand_id, model_id, code, title, severity, summary,
				causes, safety_notice, last_verified, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO UPDATE SET
				brand_id = EXCLUDED.brand_id, model_id = EXCLUDED.model_id,
				code = EXCLUDED.code, title = EXCLUDED.title, severity = EXCLUDED.severity,
				summary = EXCLUDED.summary, causes = EXCLUDED.causes,
				safety_notice = EXCLUDED.safety_notice, last_verified = EXCLUDED.last_verified,
				sort_order = EXCLUDED.sort_order
		`, f.ID, f.BrandID, f.ModelID, f.Code, f.Title, string(f.Severity), f.Summary,
			f.Causes, f.SafetyNotice, f.LastVerified, i); err != nil {
			return fmt.Errorf("seed fault %s: %w", f.ID, err)
		}
	}

	for _, s := range c.Steps {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO resolution_steps (id, fault_id, step_order, instruction, estimated_minutes,
				requires_professional, tools, image_ref)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
				fault_id = EXCLUDED.fault_id, step_order = EXCLUDED.step_order,
				instruction = EXCLUDED.instruction, estimated_minutes = EXCLUDED.estimated_minutes,
				requires_professional = EXCLUDED.requires_professional,
				tools = EXCLUDED.tools, image_ref = EXCLUDED.image_ref
		`, s.ID, s.FaultID, s.Order, s.Instruction, s.EstimatedMinutes,
			s.RequiresProfessional, s.Tools, s.ImageRef); err != nil {
			return fmt.Errorf("seed step %s: %w", s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit: %w", err)
	}
	return nil
}
