package usecase

import (
	"strings"
	"time"

	"github.com/riskibarqy/scoreline/internal/domain/game"
)

// Tier is a game's polling urgency. Close games are polled most often,
// scheduled games least often; final and postponed games are not tiered.
type Tier string

const (
	TierClose         Tier = "close"
	TierNormal        Tier = "normal"
	TierScheduledOnly Tier = "scheduled_only"
)

// Thresholds maps league to the maximum score differential that still counts
// as a close game. A league with no entry falls back to DefaultCloseThreshold.
type Thresholds map[string]int

const DefaultCloseThreshold = 5

func (t Thresholds) For(league string) int {
	if v, ok := t[strings.ToUpper(strings.TrimSpace(league))]; ok && v > 0 {
		return v
	}
	return DefaultCloseThreshold
}

// Intervals holds the poll period per tier.
type Intervals struct {
	Close         time.Duration
	Normal        time.Duration
	ScheduledOnly time.Duration
}

func DefaultIntervals() Intervals {
	return Intervals{
		Close:         60 * time.Second,
		Normal:        120 * time.Second,
		ScheduledOnly: 300 * time.Second,
	}
}

func (iv Intervals) ForTier(tier Tier) time.Duration {
	switch tier {
	case TierClose:
		return iv.Close
	case TierNormal:
		return iv.Normal
	default:
		return iv.ScheduledOnly
	}
}

// Classify returns the urgency tier for a game's current state. The second
// return value is false when the game is done and must not be polled again.
func Classify(thresholds Thresholds, item game.Game) (Tier, bool) {
	if item.Done() {
		return "", false
	}

	switch game.NormalizeStatus(item.Status) {
	case game.StatusInProgress:
		diff := scoreDiff(item.HomeScore, item.VisitorScore)
		if diff <= thresholds.For(item.League) {
			return TierClose, true
		}
		return TierNormal, true
	case game.StatusScheduled:
		return TierScheduledOnly, true
	default:
		return TierNormal, true
	}
}

func scoreDiff(home, visitor *int) int {
	h, v := 0, 0
	if home != nil {
		h = *home
	}
	if visitor != nil {
		v = *visitor
	}
	if h > v {
		return h - v
	}
	return v - h
}
