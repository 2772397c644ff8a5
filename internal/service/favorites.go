package service

import (
	"context"
	"time"

	"github.com/atinyakov/FaultKeeper/internal/models"
	"github.com/atinyakov/FaultKeeper/internal/validation"
)

// FavoritesRepository stores (user, fault) pairs. Add and Remove report
// whether a row changed; duplicates and missing rows are not errors.
type FavoritesRepository interface {
	Add(ctx context.Context, userID, faultID string, at time.Time) (bool, error)
	Remove(ctx context.Context, userID, faultID string) (bool, error)
	List(ctx context.Context, userID string) ([]models.Favorite, error)
	Exists(ctx context.Context, userID, faultID string) (bool, error)
	Count(ctx context.Context, userID string) (int, error)
}

// AddResult is the outcome of Favorites.Add.
type AddResult struct {
	Created bool `json:"created"`
}

// RemoveResult is the outcome of Favorites.Remove.
type RemoveResult struct {
	Removed bool `json:"removed"`
}

// Favorites manages a user's saved fault codes. It does not check the plan;
// callers gate it with AccessGate.RequirePro.
type Favorites struct {
	repo      FavoritesRepository
	faults    *FaultRepository
	validator *validation.Validator
	now       func() time.Time
}

// NewFavorites creates a favorites service. faults resolves listed favorites.
func NewFavorites(repo FavoritesRepository, faults *FaultRepository) *Favorites {
	return &Favorites{
		repo:      repo,
		faults:    faults,
		validator: validation.New(),
		now:       time.Now,
	}
}

type favoriteKey struct {
	UserID  string `json:"userId" validate:"required,uuid"`
	FaultID string `json:"faultId" validate:"required,catalogid"`
}

type favoriteOwner struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

// Add saves faultID for userID. The fault must exist in the catalog.
func (f *Favorites) Add(ctx context.Context, userID, faultID string) (AddResult, error) {
	if err := f.validator.Validate(favoriteKey{UserID: userID, FaultID: faultID}); err != nil {
		return AddResult{}, err
	}
	fault, err := f.faults.GetByID(ctx, faultID)
	if err != nil {
		return AddResult{}, err
	}
	if fault == nil {
		return AddResult{}, ErrNotFound
	}
	created, err := f.repo.Add(ctx, userID, faultID, f.now().UTC())
	if err != nil {
		return AddResult{}, err
	}
	return AddResult{Created: created}, nil
}

// Remove deletes faultID from the user's favorites.
func (f *Favorites) Remove(ctx context.Context, userID, faultID string) (RemoveResult, error) {
	if err := f.validator.Validate(favoriteKey{UserID: userID, FaultID: faultID}); err != nil {
		return RemoveResult{}, err
	}
	removed, err := f.repo.Remove(ctx, userID, faultID)
	if err != nil {
		return RemoveResult{}, err
	}
	return RemoveResult{Removed: removed}, nil
}

// List returns the user's favorite faults, most recently added first.
// Favorites whose fault left the catalog are skipped.
func (f *Favorites) List(ctx context.Context, userID string) ([]models.FaultCode, error) {
	if err := f.validator.Validate(favoriteOwner{UserID: userID}); err != nil {
		return nil, err
	}
	favs, err := f.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(favs) == 0 {
		return []models.FaultCode{}, nil
	}

	ids := make([]string, len(favs))
	for i, fav := range favs {
		ids[i] = fav.FaultID
	}
	byID, err := f.faults.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.FaultCode, 0, len(favs))
	for _, id := range ids {
		if fc, ok := byID[id]; ok {
			out = append(out, fc)
		}
	}
	return out, nil
}

// IsFavorited reports whether the user saved faultID.
func (f *Favorites) IsFavorited(ctx context.Context, userID, faultID string) (bool, error) {
	if err := f.validator.Validate(favoriteKey{UserID: userID, FaultID: faultID}); err != nil {
		return false, err
	}
	return f.repo.Exists(ctx, userID, faultID)
}

// Count returns how many favorites the user has.
func (f *Favorites) Count(ctx context.Context, userID string) (int, error) {
	if err := f.validator.Validate(favoriteOwner{UserID: userID}); err != nil {
		return 0, err
	}
	return f.repo.Count(ctx, userID)
}
