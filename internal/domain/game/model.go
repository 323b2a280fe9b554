package game

import (
	"strings"
	"time"
)

const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusFinal      = "final"
	StatusPostponed  = "postponed"
)

// Key identifies one game globally. League plus the source-assigned game id
// is unique across all leagues and never changes after first observation.
type Key struct {
	League string
	GameID string
}

func NewKey(league, gameID string) Key {
	return Key{
		League: strings.ToUpper(strings.TrimSpace(league)),
		GameID: strings.TrimSpace(gameID),
	}
}

func (k Key) String() string {
	return k.League + "/" + k.GameID
}

func (k Key) IsZero() bool {
	return k.League == "" || k.GameID == ""
}

// Game is the unified record for one tracked game across all leagues.
// Score fields are pointers because upstream sources omit them before tipoff.
type Game struct {
	League   string
	GameID   string
	GameDate time.Time
	StartAt  *time.Time
	GameType string

	HomeTeam      string
	HomeAbbrev    string
	HomeTeamID    string
	HomeScore     *int
	VisitorTeam   string
	VisitorAbbrev string
	VisitorTeamID string
	VisitorScore  *int

	Status        string
	CurrentPeriod string
	TimeRemaining string
	Overtime      *bool

	// Per-period breakdown, sport-specific keys ("q1", "7", "ot").
	HomePeriodScores    map[string]int
	VisitorPeriodScores map[string]int

	// Baseball extras; nil for every other sport.
	HomeHits      *int
	HomeErrors    *int
	VisitorHits   *int
	VisitorErrors *int

	UpdatedAt time.Time
}

func (g Game) Key() Key {
	return NewKey(g.League, g.GameID)
}

func (g Game) IsFinal() bool {
	return NormalizeStatus(g.Status) == StatusFinal
}

// Done reports whether the engine should stop polling this game forever.
func (g Game) Done() bool {
	switch NormalizeStatus(g.Status) {
	case StatusFinal, StatusPostponed:
		return true
	default:
		return false
	}
}

func NormalizeStatus(value string) string {
	status := strings.ToLower(strings.TrimSpace(value))
	switch status {
	case "", StatusScheduled, "pre", "preview", "pregame":
		return StatusScheduled
	case StatusInProgress, "live", "in progress", "halftime":
		return StatusInProgress
	case StatusFinal, "completed", "closed", "off":
		return StatusFinal
	case StatusPostponed, "suspended", "cancelled":
		return StatusPostponed
	default:
		return status
	}
}

func ValidStatus(value string) bool {
	switch NormalizeStatus(value) {
	case StatusScheduled, StatusInProgress, StatusFinal, StatusPostponed:
		return true
	default:
		return false
	}
}
