package usecase

import (
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/scoreline/internal/domain/apiusage"
)

// Acquisition is the outcome of one rate check. A deferred acquisition
// carries the earliest duration after which a retry can succeed.
type Acquisition struct {
	Allowed    bool
	RetryAfter time.Duration
}

// RateGovernor enforces a sliding per-minute request budget per source.
// Budgets are independent per league; a source with no configured limit is
// unthrottled. Deferred requests are never dropped, the caller simply keeps
// the game due and retries on a later tick.
type RateGovernor struct {
	mu sync.Mutex

	limits map[string]int
	window time.Duration
	calls  map[string][]time.Time
	daily  map[string]*dailyCounter
	now    func() time.Time
}

type dailyCounter struct {
	day   string
	count int
}

func NewRateGovernor(limits map[string]int) *RateGovernor {
	normalized := make(map[string]int, len(limits))
	for league, limit := range limits {
		normalized[strings.ToUpper(strings.TrimSpace(league))] = limit
	}

	return &RateGovernor{
		limits: normalized,
		window: time.Minute,
		calls:  make(map[string][]time.Time),
		daily:  make(map[string]*dailyCounter),
		now:    time.Now,
	}
}

// TryAcquire consumes one budget slot for source when one is free. The
// caller must follow every allowed acquisition with exactly one upstream
// call; acquisitions are not refundable.
func (g *RateGovernor) TryAcquire(source string) Acquisition {
	source = strings.ToUpper(strings.TrimSpace(source))

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	recent := g.pruneLocked(source, now)

	limit, limited := g.limits[source]
	if limited && limit > 0 && len(recent) >= limit {
		retryAfter := recent[0].Add(g.window).Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return Acquisition{Allowed: false, RetryAfter: retryAfter}
	}

	g.calls[source] = append(recent, now)
	g.bumpDailyLocked(source, now)
	return Acquisition{Allowed: true}
}

// Stats reports the current usage snapshot for source.
func (g *RateGovernor) Stats(source string) apiusage.Stats {
	source = strings.ToUpper(strings.TrimSpace(source))

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	recent := g.pruneLocked(source, now)
	g.calls[source] = recent

	stats := apiusage.Stats{
		RequestsLastMinute: len(recent),
		MaxPerMinute:       g.limits[source],
	}
	if counter, ok := g.daily[source]; ok && counter.day == dayKey(now) {
		stats.RequestsToday = counter.count
	}
	return stats
}

func (g *RateGovernor) pruneLocked(source string, now time.Time) []time.Time {
	cutoff := now.Add(-g.window)
	recent := g.calls[source]
	kept := recent[:0]
	for _, ts := range recent {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	return kept
}

func (g *RateGovernor) bumpDailyLocked(source string, now time.Time) {
	day := dayKey(now)
	counter, ok := g.daily[source]
	if !ok || counter.day != day {
		g.daily[source] = &dailyCounter{day: day, count: 1}
		return
	}
	counter.count++
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
