package game

import (
	"context"
	"time"
)

// Repository persists unified game records keyed on (league, game_id).
type Repository interface {
	GetByKey(ctx context.Context, key Key) (Game, bool, error)
	// Save upserts the full record for key; the store enforces
	// UNIQUE(league, game_id) so concurrent saves of distinct keys never
	// interfere and a second row for the same key is impossible.
	Save(ctx context.Context, item Game) error
	ListByLeagueDate(ctx context.Context, league string, date time.Time) ([]Game, error)
}
