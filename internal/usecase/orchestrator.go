package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/scoreline/internal/domain/apiusage"
	"github.com/riskibarqy/scoreline/internal/domain/feed"
	"github.com/riskibarqy/scoreline/internal/domain/game"
	"github.com/riskibarqy/scoreline/internal/platform/id"
	"github.com/riskibarqy/scoreline/internal/platform/logging"
)

type OrchestratorConfig struct {
	TickInterval time.Duration
	TickDeadline time.Duration
	ActiveHours  ActiveHours
}

// TickReport summarizes one orchestrator tick.
type TickReport struct {
	TickID    string
	Idle      bool
	Due       int
	Polled    int
	Deferred  int
	Failed    int
	Skipped   int
	Created   int
	Updated   int
	Unchanged int
	Abandoned int
}

// Orchestrator drives the polling engine: each tick it pulls due games from
// the scheduler, clears each attempt with the rate governor, fetches live
// state from the matching league adapter, and routes the result through the
// reconciler. Fetches fan out one worker per league so no source ever sees
// two concurrent calls and no two merges share a game key.
type Orchestrator struct {
	scheduler  *IntervalScheduler
	governor   *RateGovernor
	reconciler *Reconciler
	adapters   map[string]feed.Adapter
	usage      apiusage.Recorder
	ids        id.Generator
	pool       *ants.Pool
	cfg        OrchestratorConfig
	logger     *logging.Logger
	now        func() time.Time

	doneMu      sync.Mutex
	doneLeagues map[string]bool
}

func NewOrchestrator(
	scheduler *IntervalScheduler,
	governor *RateGovernor,
	reconciler *Reconciler,
	adapters map[string]feed.Adapter,
	usage apiusage.Recorder,
	cfg OrchestratorConfig,
	logger *logging.Logger,
) *Orchestrator {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 10 * time.Second
	}
	if cfg.TickDeadline <= 0 || cfg.TickDeadline > cfg.TickInterval {
		cfg.TickDeadline = cfg.TickInterval
	}

	workers := len(adapters)
	if workers < 1 {
		workers = 1
	}
	pool, _ := ants.NewPool(workers)

	return &Orchestrator{
		scheduler:   scheduler,
		governor:    governor,
		reconciler:  reconciler,
		adapters:    adapters,
		usage:       usage,
		ids:         id.NewRandomGenerator(),
		pool:        pool,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
		doneLeagues: make(map[string]bool),
	}
}

// Close releases the tick worker pool.
func (o *Orchestrator) Close() {
	if o.pool != nil {
		o.pool.Release()
	}
}

// Run ticks until ctx is cancelled. A store conflict is the only error that
// stops the loop; it means the unique game key constraint is broken and the
// process must not keep writing.
func (o *Orchestrator) Run(ctx context.Context) error {
	ticker := time.NewTicker(o.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		report, err := o.Tick(ctx)
		if err != nil {
			if errors.Is(err, ErrStoreConflict) {
				return fmt.Errorf("orchestrator halted: %w", err)
			}
			o.logger.ErrorContext(ctx, "tick failed, games remain due", "tick_id", report.TickID, "error", err)
			continue
		}
		if !report.Idle && report.Due > 0 {
			o.logger.InfoContext(ctx, "tick complete",
				"tick_id", report.TickID,
				"due", report.Due,
				"polled", report.Polled,
				"deferred", report.Deferred,
				"failed", report.Failed,
				"abandoned", report.Abandoned,
			)
		}
	}
}

// Tick runs one polling pass. Deferred and abandoned games keep their
// next-eligible-poll untouched so they stay due; nothing that was due is
// ever dropped.
func (o *Orchestrator) Tick(ctx context.Context) (TickReport, error) {
	ctx, span := startUsecaseSpan(ctx, "Orchestrator.Tick")
	defer span.End()

	report := TickReport{TickID: o.newTickID()}

	now := o.now()
	if !o.cfg.ActiveHours.Contains(now) {
		report.Idle = true
		return report, nil
	}

	due := o.scheduler.DueGames(now)
	report.Due = len(due)
	if len(due) == 0 {
		return report, nil
	}

	tickCtx, cancel := context.WithTimeout(ctx, o.cfg.TickDeadline)
	defer cancel()

	byLeague := groupByLeague(due)

	var mu sync.Mutex
	var wg sync.WaitGroup
	var tickErr error

	for league, keys := range byLeague {
		league, keys := league, keys
		wg.Add(1)
		submitErr := o.pool.Submit(func() {
			defer wg.Done()
			partial, err := o.pollLeague(tickCtx, league, keys)

			mu.Lock()
			defer mu.Unlock()
			report.merge(partial)
			if err != nil && tickErr == nil {
				tickErr = err
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			report.Abandoned += len(keys)
			mu.Unlock()
		}
	}

	wg.Wait()

	for league := range byLeague {
		if !o.scheduler.LeagueDone(league) {
			o.clearLeagueDone(league)
			continue
		}
		if !o.markLeagueDone(league) {
			o.logger.InfoContext(ctx, "league day complete, polling stops until next schedule sync", "league", league)
		}
	}

	return report, tickErr
}

// pollLeague works one league's due games in order. Games are sequential
// within a league, which caps concurrency at one call per source and keeps
// merges for a key single-writer.
func (o *Orchestrator) pollLeague(ctx context.Context, league string, keys []game.Key) (TickReport, error) {
	var report TickReport

	adapter, ok := o.adapters[league]
	if !ok {
		o.logger.WarnContext(ctx, "no adapter for league, leaving games due", "league", league)
		report.Abandoned = len(keys)
		return report, nil
	}

	for _, key := range keys {
		if ctx.Err() != nil {
			// Tick deadline passed; the rest stays due for the next tick.
			report.Abandoned += len(keys) - report.Polled - report.Deferred - report.Failed - report.Skipped
			return report, nil
		}

		acq := o.governor.TryAcquire(league)
		if !acq.Allowed {
			report.Deferred++
			o.recordUsage(ctx, league, "live_state", false, 0, "rate deferred")
			o.logger.DebugContext(ctx, "poll deferred by rate governor",
				"game", key.String(),
				"retry_after", acq.RetryAfter,
			)
			continue
		}

		partial, err := o.pollGame(ctx, adapter, key)
		report.merge(partial)
		if err != nil {
			return report, err
		}
	}

	return report, nil
}

func (o *Orchestrator) pollGame(ctx context.Context, adapter feed.Adapter, key game.Key) (TickReport, error) {
	var report TickReport

	started := o.now()
	update, err := adapter.FetchLiveState(ctx, key.GameID)
	latency := o.now().Sub(started)

	if err != nil {
		o.recordUsage(ctx, key.League, "live_state", false, latency, err.Error())

		switch {
		case feed.Retryable(err):
			report.Failed++
			o.scheduler.MarkFailure(key, o.now())
			o.logger.WarnContext(ctx, "live fetch failed, backing off",
				"game", key.String(),
				"error", err,
			)
		default:
			report.Skipped++
			o.scheduler.MarkSkipped(key, o.now())
			o.logger.WarnContext(ctx, "live fetch unusable, waiting for next natural poll",
				"game", key.String(),
				"error", err,
			)
		}
		return report, nil
	}

	o.recordUsage(ctx, key.League, "live_state", true, latency, "")
	report.Polled++

	update.GameID = key.GameID
	merged, kind, err := o.reconciler.Apply(ctx, key, update)
	if err != nil {
		if errors.Is(err, ErrStoreConflict) {
			return report, err
		}
		if errors.Is(err, ErrStoreUnavailable) {
			return report, fmt.Errorf("store unavailable during tick: %w", err)
		}
		report.Failed++
		o.scheduler.MarkFailure(key, o.now())
		o.logger.ErrorContext(ctx, "merge failed", "game", key.String(), "error", err)
		return report, nil
	}

	switch kind {
	case ChangeCreated:
		report.Created++
	case ChangeUpdated:
		report.Updated++
	case ChangeUnchanged, ChangeNoopFinal:
		report.Unchanged++
	}

	o.scheduler.MarkReconciled(key, merged, o.now())
	return report, nil
}

func (o *Orchestrator) recordUsage(ctx context.Context, league, endpoint string, success bool, latency time.Duration, detail string) {
	if o.usage == nil {
		return
	}
	record := apiusage.Record{
		League:      league,
		Endpoint:    endpoint,
		Timestamp:   o.now().UTC(),
		Success:     success,
		LatencyMS:   latency.Milliseconds(),
		ErrorDetail: detail,
	}
	if err := o.usage.Append(ctx, record); err != nil {
		o.logger.WarnContext(ctx, "usage record append failed",
			"league", league,
			"endpoint", endpoint,
			"error", err,
		)
	}
}

// markLeagueDone records completion and reports whether it was already
// known, so the completion log line fires once per league day.
func (o *Orchestrator) markLeagueDone(league string) bool {
	o.doneMu.Lock()
	defer o.doneMu.Unlock()

	already := o.doneLeagues[league]
	o.doneLeagues[league] = true
	return already
}

func (o *Orchestrator) clearLeagueDone(league string) {
	o.doneMu.Lock()
	defer o.doneMu.Unlock()
	delete(o.doneLeagues, league)
}

func groupByLeague(keys []game.Key) map[string][]game.Key {
	out := make(map[string][]game.Key)
	for _, key := range keys {
		out[key.League] = append(out[key.League], key)
	}
	return out
}

func (o *Orchestrator) newTickID() string {
	tickID, err := o.ids.NewShortID()
	if err != nil {
		return fmt.Sprintf("tick-%d", o.now().UnixNano())
	}
	return tickID
}

func (r *TickReport) merge(other TickReport) {
	r.Polled += other.Polled
	r.Deferred += other.Deferred
	r.Failed += other.Failed
	r.Skipped += other.Skipped
	r.Created += other.Created
	r.Updated += other.Updated
	r.Unchanged += other.Unchanged
	r.Abandoned += other.Abandoned
}
