package feed

import (
	stderrors "errors"

	crerr "github.com/cockroachdb/errors"
)

// Source failure taxonomy. Adapters must wrap every upstream fault with
// exactly one of these markers; opaque errors are a bug in the adapter.
var (
	ErrTransient   = crerr.New("source transient failure")
	ErrRateLimited = crerr.New("source rate limited")
	ErrNotFound    = crerr.New("game not found at source")
	ErrMalformed   = crerr.New("malformed source payload")
)

// Retryable reports whether the engine should back off and retry the game.
func Retryable(err error) bool {
	return stderrors.Is(err, ErrTransient) || stderrors.Is(err, ErrRateLimited)
}

// Terminal reports a failure that ends this cycle for the game: the engine
// logs it and leaves the game at its current state for the next natural poll.
func Terminal(err error) bool {
	return stderrors.Is(err, ErrNotFound) || stderrors.Is(err, ErrMalformed)
}
