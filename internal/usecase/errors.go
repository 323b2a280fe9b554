package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// Store failures split by recoverability: Unavailable pauses the current
	// tick and retries, Conflict means the unique key constraint is broken
	// and the process must stop.
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrStoreConflict    = errors.New("store conflict")
)
