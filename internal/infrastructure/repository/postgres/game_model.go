package postgres

import (
	"database/sql"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/scoreline/internal/domain/game"
)

type gameTableModel struct {
	League   string         `db:"league"`
	GameID   string         `db:"game_id"`
	GameDate time.Time      `db:"game_date"`
	StartAt  *time.Time     `db:"start_at"`
	GameType sql.NullString `db:"game_type"`

	HomeTeam      sql.NullString `db:"home_team"`
	HomeAbbrev    sql.NullString `db:"home_abbrev"`
	HomeTeamID    sql.NullString `db:"home_team_id"`
	HomeScore     sql.NullInt64  `db:"home_score"`
	VisitorTeam   sql.NullString `db:"visitor_team"`
	VisitorAbbrev sql.NullString `db:"visitor_abbrev"`
	VisitorTeamID sql.NullString `db:"visitor_team_id"`
	VisitorScore  sql.NullInt64  `db:"visitor_score"`

	Status        string         `db:"status"`
	CurrentPeriod sql.NullString `db:"current_period"`
	TimeRemaining sql.NullString `db:"time_remaining"`
	Overtime      sql.NullBool   `db:"is_overtime"`

	HomePeriodScores    []byte `db:"home_period_scores"`
	VisitorPeriodScores []byte `db:"visitor_period_scores"`

	HomeHits      sql.NullInt64 `db:"home_hits"`
	HomeErrors    sql.NullInt64 `db:"home_errors"`
	VisitorHits   sql.NullInt64 `db:"visitor_hits"`
	VisitorErrors sql.NullInt64 `db:"visitor_errors"`

	UpdatedAt time.Time `db:"updated_at"`
}

func gameToModel(item game.Game) (gameTableModel, error) {
	homePeriods, err := periodScoresToJSON(item.HomePeriodScores)
	if err != nil {
		return gameTableModel{}, fmt.Errorf("encode home period scores: %w", err)
	}
	visitorPeriods, err := periodScoresToJSON(item.VisitorPeriodScores)
	if err != nil {
		return gameTableModel{}, fmt.Errorf("encode visitor period scores: %w", err)
	}

	return gameTableModel{
		League:              item.League,
		GameID:              item.GameID,
		GameDate:            item.GameDate.UTC(),
		StartAt:             item.StartAt,
		GameType:            toNullString(item.GameType),
		HomeTeam:            toNullString(item.HomeTeam),
		HomeAbbrev:          toNullString(item.HomeAbbrev),
		HomeTeamID:          toNullString(item.HomeTeamID),
		HomeScore:           intPtrToNullInt64(item.HomeScore),
		VisitorTeam:         toNullString(item.VisitorTeam),
		VisitorAbbrev:       toNullString(item.VisitorAbbrev),
		VisitorTeamID:       toNullString(item.VisitorTeamID),
		VisitorScore:        intPtrToNullInt64(item.VisitorScore),
		Status:              game.NormalizeStatus(item.Status),
		CurrentPeriod:       toNullString(item.CurrentPeriod),
		TimeRemaining:       toNullString(item.TimeRemaining),
		Overtime:            boolPtrToNullBool(item.Overtime),
		HomePeriodScores:    homePeriods,
		VisitorPeriodScores: visitorPeriods,
		HomeHits:            intPtrToNullInt64(item.HomeHits),
		HomeErrors:          intPtrToNullInt64(item.HomeErrors),
		VisitorHits:         intPtrToNullInt64(item.VisitorHits),
		VisitorErrors:       intPtrToNullInt64(item.VisitorErrors),
		UpdatedAt:           item.UpdatedAt.UTC(),
	}, nil
}

func modelToGame(row gameTableModel) (game.Game, error) {
	homePeriods, err := periodScoresFromJSON(row.HomePeriodScores)
	if err != nil {
		return game.Game{}, fmt.Errorf("decode home period scores game=%s/%s: %w", row.League, row.GameID, err)
	}
	visitorPeriods, err := periodScoresFromJSON(row.VisitorPeriodScores)
	if err != nil {
		return game.Game{}, fmt.Errorf("decode visitor period scores game=%s/%s: %w", row.League, row.GameID, err)
	}

	return game.Game{
		League:              row.League,
		GameID:              row.GameID,
		GameDate:            row.GameDate,
		StartAt:             row.StartAt,
		GameType:            row.GameType.String,
		HomeTeam:            row.HomeTeam.String,
		HomeAbbrev:          row.HomeAbbrev.String,
		HomeTeamID:          row.HomeTeamID.String,
		HomeScore:           nullInt64ToIntPtr(row.HomeScore),
		VisitorTeam:         row.VisitorTeam.String,
		VisitorAbbrev:       row.VisitorAbbrev.String,
		VisitorTeamID:       row.VisitorTeamID.String,
		VisitorScore:        nullInt64ToIntPtr(row.VisitorScore),
		Status:              row.Status,
		CurrentPeriod:       row.CurrentPeriod.String,
		TimeRemaining:       row.TimeRemaining.String,
		Overtime:            nullBoolToBoolPtr(row.Overtime),
		HomePeriodScores:    homePeriods,
		VisitorPeriodScores: visitorPeriods,
		HomeHits:            nullInt64ToIntPtr(row.HomeHits),
		HomeErrors:          nullInt64ToIntPtr(row.HomeErrors),
		VisitorHits:         nullInt64ToIntPtr(row.VisitorHits),
		VisitorErrors:       nullInt64ToIntPtr(row.VisitorErrors),
		UpdatedAt:           row.UpdatedAt,
	}, nil
}

func periodScoresToJSON(scores map[string]int) ([]byte, error) {
	if len(scores) == 0 {
		return nil, nil
	}
	return sonic.Marshal(scores)
}

func periodScoresFromJSON(raw []byte) (map[string]int, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out map[string]int
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func toNullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func intPtrToNullInt64(value *int) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*value), Valid: true}
}

func nullInt64ToIntPtr(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	out := int(value.Int64)
	return &out
}

func boolPtrToNullBool(value *bool) sql.NullBool {
	if value == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *value, Valid: true}
}

func nullBoolToBoolPtr(value sql.NullBool) *bool {
	if !value.Valid {
		return nil
	}
	out := value.Bool
	return &out
}
