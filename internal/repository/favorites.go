package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/atinyakov/FaultKeeper/internal/models"
	"github.com/google/uuid"
)

// PostgresFavoritesRepository stores favorites in PostgreSQL. The
// (user_id, fault_id) unique constraint makes Add idempotent.
type PostgresFavoritesRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresFavoritesRepository creates a favorites repository over db.
func NewPostgresFavoritesRepository(db *sql.DB) *PostgresFavoritesRepository {
	return &PostgresFavoritesRepository{DB: db}
}

// Add saves faultID for userID. It reports false without error when the pair
// already exists.
func (s *PostgresFavoritesRepository) Add(ctx context.Context, userID, faultID string, at time.Time) (bool, error) {
	if s.DB == nil {
		return false, ErrUnavailable
	}
	res, err := s.DB.ExecContext(ctx, `
		INSERT INTO favorites (id, user_id, fault_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, fault_id) DO NOTHING
	`, uuid.NewString(), userID, faultID, at)
	if err != nil {
		return false, fmt.Errorf("add favorite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add favorite: %w", err)
	}
	return n > 0, nil
}

// Remove deletes the pair. It reports false without error when nothing was saved.
func (s *PostgresFavoritesRepository) Remove(ctx context.Context, userID, faultID string) (bool, error) {
	if s.DB == nil {
		return false, ErrUnavailable
	}
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND fault_id = $2`,
		userID, faultID,
	)
	if err != nil {
		return false, fmt.Errorf("remove favorite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove favorite: %w", err)
	}
	return n > 0, nil
}

// List returns the user's favorites, most recently added first.
func (s *PostgresFavoritesRepository) List(ctx context.Context, userID string) ([]models.Favorite, error) {
	if s.DB == nil {
		return nil, ErrUnavailable
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT user_id, fault_id, created_at FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return collect(rows, func(r rowScanner) (models.Favorite, error) {
		var f models.Favorite
		err := r.Scan(&f.UserID, &f.FaultID, &f.CreatedAt)
		return f, err
	})
}

// Exists reports whether the pair is saved.
func (s *PostgresFavoritesRepository) Exists(ctx context.Context, userID, faultID string) (bool, error) {
	if s.DB == nil {
		return false, ErrUnavailable
	}
	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = $1 AND fault_id = $2)`,
		userID, faultID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("favorite exists: %w", err)
	}
	return exists, nil
}

// Count returns how many favorites the user has.
func (s *PostgresFavoritesRepository) Count(ctx context.Context, userID string) (int, error) {
	if s.DB == nil {
		return 0, ErrUnavailable
	}
	var n int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM favorites WHERE user_id = $1`,
		userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count favorites: %w", err)
	}
	return n, nil
}
