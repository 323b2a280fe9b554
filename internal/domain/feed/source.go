package feed

import (
	"context"
	"time"
)

// ScheduleRecord is one game as reported by a league schedule endpoint.
// Schedule fetches always describe games that have not been reconciled yet,
// so the record carries identity and tipoff metadata, never live state.
type ScheduleRecord struct {
	League   string
	GameID   string
	GameDate time.Time
	StartAt  *time.Time
	GameType string

	HomeTeam      string
	HomeAbbrev    string
	HomeTeamID    string
	VisitorTeam   string
	VisitorAbbrev string
	VisitorTeamID string
}

// StateUpdate is a partial live-state payload for one game. Nil fields were
// absent upstream and must never overwrite stored values.
type StateUpdate struct {
	GameID string

	Status        string
	HomeScore     *int
	VisitorScore  *int
	CurrentPeriod *string
	TimeRemaining *string
	Overtime      *bool

	HomePeriodScores    map[string]int
	VisitorPeriodScores map[string]int

	HomeHits      *int
	HomeErrors    *int
	VisitorHits   *int
	VisitorErrors *int
}

// ScheduleSource fetches the set of games scheduled for one date.
type ScheduleSource interface {
	FetchSchedule(ctx context.Context, date time.Time) ([]ScheduleRecord, error)
}

// LiveSource fetches the current state of one game.
type LiveSource interface {
	FetchLiveState(ctx context.Context, gameID string) (StateUpdate, error)
}

// Adapter is the capability pair the engine requires of every league source.
// Concrete adapters differ only in wire mapping; the engine never inspects
// which variant it holds.
type Adapter interface {
	ScheduleSource
	LiveSource
	League() string
}
