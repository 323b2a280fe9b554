package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/scoreline/internal/domain/game"
	"github.com/riskibarqy/scoreline/internal/platform/cache"
	"github.com/riskibarqy/scoreline/internal/platform/logging"
)

// SnapshotService serves the read-only "all games for league+date" query
// consumed by downstream renderers. Results are cached briefly; the polling
// engine writes around this cache, so snapshots may trail the store by the
// cache TTL.
type SnapshotService struct {
	games  game.Repository
	cache  *cache.Store
	logger *logging.Logger
}

func NewSnapshotService(games game.Repository, store *cache.Store, logger *logging.Logger) *SnapshotService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SnapshotService{
		games:  games,
		cache:  store,
		logger: logger,
	}
}

// GamesByDate lists league's games for one date, ordered by start time then
// game id.
func (s *SnapshotService) GamesByDate(ctx context.Context, league string, date time.Time) ([]game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "SnapshotService.GamesByDate")
	defer span.End()

	league = strings.ToUpper(strings.TrimSpace(league))
	if league == "" {
		return nil, fmt.Errorf("%w: league is required", ErrInvalidInput)
	}

	load := func(ctx context.Context) (any, error) {
		items, err := s.games.ListByLeagueDate(ctx, league, date)
		if err != nil {
			return nil, fmt.Errorf("list games league=%s date=%s: %w", league, date.Format("2006-01-02"), err)
		}
		sortGames(items)
		return items, nil
	}

	if s.cache == nil {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]game.Game), nil
	}

	cacheKey := "snapshot:" + league + ":" + date.Format("2006-01-02")
	value, err := s.cache.GetOrLoad(ctx, cacheKey, load)
	if err != nil {
		return nil, err
	}

	items, ok := value.([]game.Game)
	if !ok {
		s.logger.WarnContext(ctx, "snapshot cache held unexpected type, reloading", "key", cacheKey)
		s.cache.Delete(ctx, cacheKey)
		reloaded, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return reloaded.([]game.Game), nil
	}
	return items, nil
}

func sortGames(items []game.Game) {
	sort.SliceStable(items, func(i, j int) bool {
		left, right := items[i], items[j]
		switch {
		case left.StartAt == nil && right.StartAt != nil:
			return false
		case left.StartAt != nil && right.StartAt == nil:
			return true
		case left.StartAt != nil && right.StartAt != nil && !left.StartAt.Equal(*right.StartAt):
			return left.StartAt.Before(*right.StartAt)
		}
		return left.GameID < right.GameID
	})
}
