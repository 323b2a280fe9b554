package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/lib/pq"

	"github.com/riskibarqy/scoreline/internal/usecase"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// classifyStoreError folds driver failures into the engine's two store
// error classes. A unique violation on (league, game_id) means the schema
// invariant is broken; everything connection-shaped is retryable.
func classifyStoreError(op string, err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "23505":
			return fmt.Errorf("%s: %w: %s", op, usecase.ErrStoreConflict, pqErr.Message)
		case pqErr.Code.Class() == "08":
			return fmt.Errorf("%s: %w: %s", op, usecase.ErrStoreUnavailable, pqErr.Message)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) || isConnectionRefused(err) {
		return fmt.Errorf("%s: %w: %v", op, usecase.ErrStoreUnavailable, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}

func isConnectionRefused(err error) bool {
	text := strings.ToLower(err.Error())
	return strings.Contains(text, "connection refused") ||
		strings.Contains(text, "connection reset") ||
		strings.Contains(text, "broken pipe") ||
		strings.Contains(text, "the database system is starting up")
}
