package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/atinyakov/FaultKeeper/internal/i18n"
	"github.com/atinyakov/FaultKeeper/internal/models"
	"github.com/lib/pq"
)

// Catalog is the raw, unresolved catalog contract shared by the Postgres and
// static sources. Get methods return nil, nil for unknown ids; empty filter
// arguments mean "all".
type Catalog interface {
	ListBrands(ctx context.Context) ([]models.BrandRecord, error)
	GetBrand(ctx context.Context, id string) (*models.BrandRecord, error)
	ListModels(ctx context.Context, brandID string) ([]models.ModelRecord, error)
	GetModel(ctx context.Context, id string) (*models.ModelRecord, error)
	ListFaults(ctx context.Context, brandID string) ([]models.FaultRecord, error)
	GetFault(ctx context.Context, id string) (*models.FaultRecord, error)
	GetFaults(ctx context.Context, ids []string) ([]models.FaultRecord, error)
	ListSteps(ctx context.Context, faultID string) ([]models.StepRecord, error)
	GetStep(ctx context.Context, id string) (*models.StepRecord, error)
}

// PostgresCatalogRepository reads the fault catalog from PostgreSQL.
type PostgresCatalogRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresCatalogRepository creates a catalog repository over db.
func NewPostgresCatalogRepository(db *sql.DB) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{DB: db}
}

const (
	brandColumns = `id, name, aliases, country`
	modelColumns = `id, brand_id, name, year_start, year_end`
	faultColumns = `id, brand_id, model_id, code, title, severity, summary, causes, safety_notice, last_verified`
	stepColumns  = `id, fault_id, step_order, instruction, estimated_minutes, requires_professional, tools, image_ref`
)

// ListBrands returns every brand in catalog order.
func (s *PostgresCatalogRepository) ListBrands(ctx context.Context) ([]models.BrandRecord, error) {
	if s.DB == nil {
		return nil, ErrUnavailable
	}
	rows, err := s.DB.QueryContext(ctx, `SELECT `+brandColumns+` FROM brands ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("ListBrands: %w", err)
	}
	return collect(rows, scanBrand)
}

// GetBrand returns the brand with the given id, or nil when it does not exist.
func (s *PostgresCatalogRepository) GetBrand(ctx context.Context, id string) (*models.BrandRecord, error) {
	if s.DB == nil {
		return nil, ErrUnavailable
	}
	row := s.DB.QueryRowContext(ctx, `SELECT `+brandColumns+` FROM brands WHERE id = $1`, id)
	return one(row, scanBrand, "GetBrand")
}

// ListModels returns the models of brandID, or all models when brandID is empty.
func (s *PostgresCatalogRepository) ListModels(ctx context.Context, brandID string) ([]models.ModelRecord, error) {
	if s.DB == nil {
		return nil, ErrUnavailable
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+modelColumns+` FROM boiler_models
		WHERE ($1 = '' OR brand_id = $1)
		ORDER BY sort_order, id
	`, brandID)
	if err != nil {
		return nil, fmt.Errorf("ListModels: %w", err)
	}
	return collect(rows, scanModel)
}

// GetModel returns the model with the given id, or nil when it does not exist.
func (s *PostgresCatalogRepository) GetModel(ctx context.Context, id string) (*models.ModelRecord, error) {
	if s.DB == nil {
		return nil, ErrUnavailable
	}
	row := s.DB.QueryRowContext(ctx, `SELECT `+modelColumns+` FROM boiler_models WHERE id = $1`, id)
	return one(row, scanModel, "GetModel")
}

// ListFaults returns the faults of brandID, or all faults when brandID is empty.
func (s *PostgresCatalogRepository) ListFaults(ctx context.Context, brandID string) ([]models.FaultRecord, error) {
	if s.DB == nil {
		return nil, ErrUnavailable
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+faultColumns+` FROM fault_codes
		WHERE ($1 = '' OR brand_id = $1)
		ORDER BY sort_order, id
	`, brandID)
	if err != nil {
		return nil, fmt.Errorf("ListFaults: %w", err)
	}
	return collect(rows, scanFault)
}

// GetFault returns the fault with the given id, or nil when it does not exist.
func (s *PostgresCatalogRepository) GetFault(ctx context.Context, id string) (*models.FaultRecord, error) {
	if s.DB == nil {
		return nil, ErrUnavailable
	}
	row := s.DB.QueryRowContext(ctx, `SELECT `+faultColumns+` FROM fault_codes WHERE id = $1`, id)
	return one(row, scanFault, "GetFault")
}

// GetFaults returns the faults whose ids are listed. Unknown ids are skipped.
func (s *PostgresCatalogRepository) GetFaults(ctx context.Context, ids []string) ([]models.FaultRecord, error) {
	if s.DB == nil {
		return nil, ErrUnavailable
	}
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+faultColumns+` FROM fault_codes WHERE id = ANY($1) ORDER BY sort_order, id
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("GetFaults: %w", err)
	}
	return collect(rows, scanFault)
}

// ListSteps returns the steps of faultID in ascending order, or all steps when faultID is empty.
func (s *PostgresCatalogRepository) ListSteps(ctx context.Context, faultID string) ([]models.StepRecord, error) {
	if s.DB == nil {
		return nil, ErrUnavailable
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+stepColumns+` FROM resolution_steps
		WHERE ($1 = '' OR fault_id = $1)
		ORDER BY fault_id, step_order, id
	`, faultID)
	if err != nil {
		return nil, fmt.Errorf("ListSteps: %w", err)
	}
	return collect(rows, scanStep)
}

// GetStep returns the step with the given id, or nil when it does not exist.
func (s *PostgresCatalogRepository) GetStep(ctx context.Context, id string) (*models.StepRecord, error) {
	if s.DB == nil {
		return nil, ErrUnavailable
	}
	row := s.DB.QueryRowContext(ctx, `SELECT `+stepColumns+` FROM resolution_steps WHERE id = $1`, id)
	return one(row, scanStep, "GetStep")
}

func collect[T any](rows *sql.Rows, scan func(rowScanner) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func one[T any](row *sql.Row, scan func(rowScanner) (T, error), op string) (*T, error) {
	v, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &v, nil
}

func scanBrand(r rowScanner) (models.BrandRecord, error) {
	var (
		b       models.BrandRecord
		country sql.NullString
	)
	if err := r.Scan(&b.ID, &b.Name, pq.Array(&b.Aliases), &country); err != nil {
		return b, err
	}
	if country.Valid {
		b.Country = &country.String
	}
	return b, nil
}

func scanModel(r rowScanner) (models.ModelRecord, error) {
	var (
		m          models.ModelRecord
		start, end sql.NullInt64
	)
	if err := r.Scan(&m.ID, &m.BrandID, &m.Name, &start, &end); err != nil {
		return m, err
	}
	if start.Valid {
		y := models.YearRange{Start: int(start.Int64), End: int(start.Int64)}
		if end.Valid {
			y.End = int(end.Int64)
		}
		m.Years = &y
	}
	return m, nil
}

func scanFault(r rowScanner) (models.FaultRecord, error) {
	var (
		f        models.FaultRecord
		modelID  sql.NullString
		notice   []byte
		verified sql.NullTime
	)
	if err := r.Scan(&f.ID, &f.BrandID, &modelID, &f.Code, &f.Title, &f.Severity,
		&f.Summary, &f.Causes, &notice, &verified); err != nil {
		return f, err
	}
	if modelID.Valid {
		f.ModelID = &modelID.String
	}
	if notice != nil {
		var t i18n.Text
		if err := json.Unmarshal(notice, &t); err != nil {
			return f, fmt.Errorf("safety_notice: %w", err)
		}
		f.SafetyNotice = &t
	}
	if verified.Valid {
		f.LastVerified = &verified.Time
	}
	return f, nil
}

func scanStep(r rowScanner) (models.StepRecord, error) {
	var (
		st      models.StepRecord
		minutes sql.NullInt64
		image   sql.NullString
	)
	if err := r.Scan(&st.ID, &st.FaultID, &st.Order, &st.Instruction, &minutes,
		&st.RequiresProfessional, &st.Tools, &image); err != nil {
		return st, err
	}
	if minutes.Valid {
		m := int(minutes.Int64)
		st.EstimatedMinutes = &m
	}
	if image.Valid {
		st.ImageRef = &image.String
	}
	return st, nil
}
