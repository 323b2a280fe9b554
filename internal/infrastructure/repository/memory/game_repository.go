package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/scoreline/internal/domain/game"
)

// GameRepository is an in-memory game.Repository used by tests and local
// runs without a database.
type GameRepository struct {
	mu    sync.RWMutex
	items map[game.Key]game.Game
}

func NewGameRepository() *GameRepository {
	return &GameRepository{items: make(map[game.Key]game.Game)}
}

func (r *GameRepository) GetByKey(_ context.Context, key game.Key) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[key]
	if !ok {
		return game.Game{}, false, nil
	}
	return cloneGame(item), true, nil
}

func (r *GameRepository) Save(_ context.Context, item game.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.Key()] = cloneGame(item)
	return nil
}

func (r *GameRepository) ListByLeagueDate(_ context.Context, league string, date time.Time) ([]game.Game, error) {
	league = game.NewKey(league, "x").League
	day := date.UTC().Format("2006-01-02")

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0)
	for key, item := range r.items {
		if key.League != league {
			continue
		}
		if item.GameDate.UTC().Format("2006-01-02") != day {
			continue
		}
		out = append(out, cloneGame(item))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GameID < out[j].GameID
	})
	return out, nil
}

func cloneGame(item game.Game) game.Game {
	out := item
	out.StartAt = cloneTimePtr(item.StartAt)
	out.HomeScore = cloneIntPtr(item.HomeScore)
	out.VisitorScore = cloneIntPtr(item.VisitorScore)
	out.HomeHits = cloneIntPtr(item.HomeHits)
	out.HomeErrors = cloneIntPtr(item.HomeErrors)
	out.VisitorHits = cloneIntPtr(item.VisitorHits)
	out.VisitorErrors = cloneIntPtr(item.VisitorErrors)
	out.Overtime = cloneBoolPtr(item.Overtime)
	out.HomePeriodScores = cloneScoreMap(item.HomePeriodScores)
	out.VisitorPeriodScores = cloneScoreMap(item.VisitorPeriodScores)
	return out
}

func cloneIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneBoolPtr(v *bool) *bool {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneTimePtr(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneScoreMap(src map[string]int) map[string]int {
	if src == nil {
		return nil
	}
	out := make(map[string]int, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
