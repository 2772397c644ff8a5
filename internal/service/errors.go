// Package service implements the catalog, search, access and favorites use
// cases on top of repository interfaces. Every entity it returns is already
// resolved to the locale carried by the request context.
package service

import (
	"errors"

	"github.com/atinyakov/FaultKeeper/internal/validation"
)

var (
	// ErrValidation is wrapped by every *validation.Error the services return.
	ErrValidation = validation.ErrInvalid
	// ErrNotFound reports an unknown catalog id on paths where absence is a failure.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated reports a gated call without a user.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrQuotaExceeded reports that a free user has no gated reads left today.
	ErrQuotaExceeded = errors.New("daily quota exceeded")
	// ErrUpgradeRequired reports a pro-only operation attempted on the free plan.
	ErrUpgradeRequired = errors.New("pro plan required")
)
