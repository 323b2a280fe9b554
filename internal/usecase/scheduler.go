package usecase

import (
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/scoreline/internal/domain/game"
	"github.com/riskibarqy/scoreline/internal/platform/logging"
)

// PollPhase is the scheduling lifecycle of one tracked game.
type PollPhase string

const (
	PhaseScheduled PollPhase = "scheduled"
	PhasePolling   PollPhase = "polling"
	PhaseDone      PollPhase = "done"
)

// PollState is the scheduling record for one game. NextPollAt only moves
// forward between successful polls; nothing reschedules a game sooner
// without a reconciled state change behind it.
type PollState struct {
	Key        game.Key
	Phase      PollPhase
	Tier       Tier
	NextPollAt time.Time
	Failures   int
	StartAt    *time.Time
}

type SchedulerConfig struct {
	Thresholds     Thresholds
	Intervals      Intervals
	StartLead      time.Duration
	FailureCeiling int
}

// IntervalScheduler owns the poll-state table keyed by (league, game_id).
// It decides which games are due each tick; it never performs network or
// storage work itself.
type IntervalScheduler struct {
	mu     sync.Mutex
	states map[game.Key]*PollState

	thresholds     Thresholds
	intervals      Intervals
	startLead      time.Duration
	failureCeiling int
	logger         *logging.Logger
	now            func() time.Time
}

func NewIntervalScheduler(cfg SchedulerConfig, logger *logging.Logger) *IntervalScheduler {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Intervals.Close <= 0 || cfg.Intervals.Normal <= 0 || cfg.Intervals.ScheduledOnly <= 0 {
		cfg.Intervals = DefaultIntervals()
	}
	if cfg.StartLead <= 0 {
		cfg.StartLead = 10 * time.Minute
	}
	if cfg.FailureCeiling < 1 {
		cfg.FailureCeiling = 3
	}

	return &IntervalScheduler{
		states:         make(map[game.Key]*PollState),
		thresholds:     cfg.Thresholds,
		intervals:      cfg.Intervals,
		startLead:      cfg.StartLead,
		failureCeiling: cfg.FailureCeiling,
		logger:         logger,
		now:            time.Now,
	}
}

// Track registers a game first observed in a schedule fetch. Tracking an
// already known game is a no-op so repeated schedule syncs never reset
// in-flight poll state.
func (s *IntervalScheduler) Track(item game.Game) {
	key := item.Key()
	if key.IsZero() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.states[key]; ok {
		return
	}

	state := &PollState{Key: key, StartAt: item.StartAt}
	if item.Done() {
		state.Phase = PhaseDone
		s.states[key] = state
		return
	}

	tier, _ := Classify(s.thresholds, item)
	state.Tier = tier

	now := s.now()
	if game.NormalizeStatus(item.Status) == game.StatusInProgress {
		// Already live at first observation, poll right away.
		state.Phase = PhasePolling
		state.NextPollAt = now
	} else {
		state.Phase = PhaseScheduled
		state.NextPollAt = now
		if item.StartAt != nil {
			if eligible := item.StartAt.Add(-s.startLead); eligible.After(now) {
				state.NextPollAt = eligible
			}
		}
	}

	s.states[key] = state
}

// DueGames returns every non-done game whose next-eligible-poll is at or
// before now, oldest due first. Ties order by key so repeated ticks see the
// same sequence.
func (s *IntervalScheduler) DueGames(now time.Time) []game.Key {
	s.mu.Lock()
	defer s.mu.Unlock()

	due := make([]*PollState, 0, len(s.states))
	for _, state := range s.states {
		if state.Phase == PhaseDone {
			continue
		}
		if state.NextPollAt.After(now) {
			continue
		}
		if state.Phase == PhaseScheduled {
			state.Phase = PhasePolling
		}
		due = append(due, state)
	}

	sort.SliceStable(due, func(i, j int) bool {
		if !due[i].NextPollAt.Equal(due[j].NextPollAt) {
			return due[i].NextPollAt.Before(due[j].NextPollAt)
		}
		return due[i].Key.String() < due[j].Key.String()
	})

	keys := make([]game.Key, len(due))
	for i, state := range due {
		keys[i] = state.Key
	}
	return keys
}

// MarkReconciled re-tiers a game after a merged update and schedules its
// next poll one tier interval out. A game reconciled into final or
// postponed moves to done and is never due again.
func (s *IntervalScheduler) MarkReconciled(key game.Key, item game.Game, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[key]
	if !ok {
		return
	}

	state.Failures = 0

	tier, trackable := Classify(s.thresholds, item)
	if !trackable {
		state.Phase = PhaseDone
		state.Tier = ""
		return
	}

	state.Phase = PhasePolling
	state.Tier = tier
	state.NextPollAt = at.Add(s.intervals.ForTier(tier))
}

// MarkFailure counts a retryable failure and backs the game off
// exponentially, capped at the scheduled-only interval. Past the failure
// ceiling the game is also degraded to the normal tier so one erroring
// game stops claiming close-game budget.
func (s *IntervalScheduler) MarkFailure(key game.Key, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[key]
	if !ok || state.Phase == PhaseDone {
		return
	}

	state.Failures++
	if state.Failures > s.failureCeiling && state.Tier == TierClose {
		state.Tier = TierNormal
		s.logger.Warn("degrading close game after repeated failures",
			"game", key.String(),
			"failures", state.Failures,
		)
	}

	backoff := s.intervals.ForTier(state.Tier)
	for i := 0; i < state.Failures && backoff < s.intervals.ScheduledOnly; i++ {
		backoff *= 2
	}
	if backoff > s.intervals.ScheduledOnly {
		backoff = s.intervals.ScheduledOnly
	}
	state.NextPollAt = at.Add(backoff)
}

// MarkSkipped reschedules after a terminal-for-this-cycle failure such as a
// malformed payload. No backoff and no failure count; the next natural
// interval applies.
func (s *IntervalScheduler) MarkSkipped(key game.Key, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[key]
	if !ok || state.Phase == PhaseDone {
		return
	}
	state.NextPollAt = at.Add(s.intervals.ForTier(state.Tier))
}

// State returns a copy of the poll state for key.
func (s *IntervalScheduler) State(key game.Key) (PollState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[key]
	if !ok {
		return PollState{}, false
	}
	return *state, true
}

// LeagueDone reports whether every tracked game in league has finished.
// False when the league has no tracked games at all.
func (s *IntervalScheduler) LeagueDone(league string) bool {
	league = game.NewKey(league, "x").League

	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for key, state := range s.states {
		if key.League != league {
			continue
		}
		found = true
		if state.Phase != PhaseDone {
			return false
		}
	}
	return found
}

// PruneDone drops done states so a long-running process does not grow the
// table across league days. Returns how many were removed.
func (s *IntervalScheduler) PruneDone() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, state := range s.states {
		if state.Phase == PhaseDone {
			delete(s.states, key)
			removed++
		}
	}
	return removed
}
