package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/scoreline/internal/domain/apiusage"
	"github.com/riskibarqy/scoreline/internal/domain/feed"
	"github.com/riskibarqy/scoreline/internal/domain/game"
	"github.com/riskibarqy/scoreline/internal/platform/logging"
)

// ScheduleSyncResult summarizes one schedule sync across leagues.
type ScheduleSyncResult struct {
	Leagues      int
	GamesSeen    int
	GamesCreated int
	Failed       []string
}

// ScheduleSyncService pulls each league's schedule for a date, persists any
// games not seen before, and registers them with the interval scheduler.
// Leagues sync concurrently; one league failing never blocks the others.
type ScheduleSyncService struct {
	adapters  map[string]feed.Adapter
	games     game.Repository
	scheduler *IntervalScheduler
	governor  *RateGovernor
	usage     apiusage.Recorder
	logger    *logging.Logger
	now       func() time.Time
}

func NewScheduleSyncService(
	adapters map[string]feed.Adapter,
	games game.Repository,
	scheduler *IntervalScheduler,
	governor *RateGovernor,
	usage apiusage.Recorder,
	logger *logging.Logger,
) *ScheduleSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScheduleSyncService{
		adapters:  adapters,
		games:     games,
		scheduler: scheduler,
		governor:  governor,
		usage:     usage,
		logger:    logger,
		now:       time.Now,
	}
}

// SyncDate fetches every league's schedule for date. Returns an error only
// when no league could be synced at all.
func (s *ScheduleSyncService) SyncDate(ctx context.Context, date time.Time) (ScheduleSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "ScheduleSyncService.SyncDate")
	defer span.End()

	leagues := make([]string, 0, len(s.adapters))
	for league := range s.adapters {
		leagues = append(leagues, league)
	}
	sort.Strings(leagues)

	result := ScheduleSyncResult{Leagues: len(leagues)}
	if len(leagues) == 0 {
		return result, fmt.Errorf("%w: no league adapters configured", ErrInvalidInput)
	}

	var mu sync.Mutex
	workers := pool.New().WithContext(ctx).WithMaxGoroutines(len(leagues))

	for _, league := range leagues {
		league := league
		workers.Go(func(ctx context.Context) error {
			seen, created, err := s.syncLeague(ctx, league, date)

			mu.Lock()
			defer mu.Unlock()
			result.GamesSeen += seen
			result.GamesCreated += created
			if err != nil {
				result.Failed = append(result.Failed, league)
				s.logger.WarnContext(ctx, "schedule sync failed for league",
					"league", league,
					"date", date.Format("2006-01-02"),
					"error", err,
				)
			}
			return nil
		})
	}

	if err := workers.Wait(); err != nil {
		return result, fmt.Errorf("schedule sync pool: %w", err)
	}

	sort.Strings(result.Failed)
	if len(result.Failed) == len(leagues) {
		return result, fmt.Errorf("%w: schedule sync failed for every league", ErrDependencyUnavailable)
	}
	return result, nil
}

func (s *ScheduleSyncService) syncLeague(ctx context.Context, league string, date time.Time) (int, int, error) {
	adapter, ok := s.adapters[league]
	if !ok {
		return 0, 0, fmt.Errorf("%w: no adapter for league=%s", ErrInvalidInput, league)
	}

	if acq := s.governor.TryAcquire(league); !acq.Allowed {
		s.recordUsage(ctx, league, false, 0, "rate deferred")
		return 0, 0, fmt.Errorf("%w: schedule fetch deferred league=%s", ErrDependencyUnavailable, league)
	}

	started := s.now()
	records, err := adapter.FetchSchedule(ctx, date)
	latency := s.now().Sub(started)
	if err != nil {
		s.recordUsage(ctx, league, false, latency, err.Error())
		return 0, 0, fmt.Errorf("fetch schedule league=%s: %w", league, err)
	}
	s.recordUsage(ctx, league, true, latency, "")

	created := 0
	for _, record := range records {
		wasCreated, err := s.trackRecord(ctx, record)
		if err != nil {
			return len(records), created, err
		}
		if wasCreated {
			created++
		}
	}
	return len(records), created, nil
}

func (s *ScheduleSyncService) trackRecord(ctx context.Context, record feed.ScheduleRecord) (bool, error) {
	key := game.NewKey(record.League, record.GameID)
	if key.IsZero() {
		s.logger.WarnContext(ctx, "schedule record missing identity, skipping",
			"league", record.League,
			"game_id", record.GameID,
		)
		return false, nil
	}

	existing, exists, err := s.games.GetByKey(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load scheduled game game=%s: %w", key, err)
	}
	if exists {
		s.scheduler.Track(existing)
		return false, nil
	}

	item := game.Game{
		League:        key.League,
		GameID:        key.GameID,
		GameDate:      record.GameDate,
		StartAt:       record.StartAt,
		GameType:      record.GameType,
		HomeTeam:      record.HomeTeam,
		HomeAbbrev:    record.HomeAbbrev,
		HomeTeamID:    record.HomeTeamID,
		VisitorTeam:   record.VisitorTeam,
		VisitorAbbrev: record.VisitorAbbrev,
		VisitorTeamID: record.VisitorTeamID,
		Status:        game.StatusScheduled,
		UpdatedAt:     s.now().UTC(),
	}
	if err := s.games.Save(ctx, item); err != nil {
		return false, fmt.Errorf("save scheduled game game=%s: %w", key, err)
	}

	s.scheduler.Track(item)
	return true, nil
}

func (s *ScheduleSyncService) recordUsage(ctx context.Context, league string, success bool, latency time.Duration, detail string) {
	if s.usage == nil {
		return
	}
	record := apiusage.Record{
		League:      league,
		Endpoint:    "schedule",
		Timestamp:   s.now().UTC(),
		Success:     success,
		LatencyMS:   latency.Milliseconds(),
		ErrorDetail: detail,
	}
	if err := s.usage.Append(ctx, record); err != nil {
		s.logger.WarnContext(ctx, "usage record append failed",
			"league", league,
			"endpoint", "schedule",
			"error", err,
		)
	}
}
