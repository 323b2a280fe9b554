package postgres

import (
	"errors"
	"testing"

	"github.com/lib/pq"

	"github.com/riskibarqy/scoreline/internal/usecase"
)

func TestClassifyStoreError(t *testing.T) {
	t.Run("unique violation is a conflict", func(t *testing.T) {
		err := classifyStoreError("upsert game", &pq.Error{Code: "23505", Message: "duplicate key"})
		if !errors.Is(err, usecase.ErrStoreConflict) {
			t.Fatalf("expected store conflict, got %v", err)
		}
	})

	t.Run("connection class is unavailable", func(t *testing.T) {
		err := classifyStoreError("upsert game", &pq.Error{Code: "08006", Message: "connection failure"})
		if !errors.Is(err, usecase.ErrStoreUnavailable) {
			t.Fatalf("expected store unavailable, got %v", err)
		}
	})

	t.Run("refused connection is unavailable", func(t *testing.T) {
		err := classifyStoreError("select game", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"))
		if !errors.Is(err, usecase.ErrStoreUnavailable) {
			t.Fatalf("expected store unavailable, got %v", err)
		}
	})

	t.Run("other errors pass through", func(t *testing.T) {
		base := errors.New("syntax error at or near SELECT")
		err := classifyStoreError("select game", base)
		if errors.Is(err, usecase.ErrStoreConflict) || errors.Is(err, usecase.ErrStoreUnavailable) {
			t.Fatalf("unexpected classification: %v", err)
		}
		if !errors.Is(err, base) {
			t.Fatalf("cause lost: %v", err)
		}
	})

	t.Run("nil stays nil", func(t *testing.T) {
		if err := classifyStoreError("x", nil); err != nil {
			t.Fatalf("expected nil, got %v", err)
		}
	})
}
