package sources

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/riskibarqy/scoreline/internal/domain/feed"
	"github.com/riskibarqy/scoreline/internal/domain/game"
	"github.com/riskibarqy/scoreline/internal/platform/logging"
)

const LeagueMLB = "MLB"

// MLBAdapter reads the MLB Stats API schedule and linescore feeds.
type MLBAdapter struct {
	client *Client
	logger *logging.Logger
}

func NewMLBAdapter(client *Client, logger *logging.Logger) *MLBAdapter {
	if logger == nil {
		logger = logging.Default()
	}
	return &MLBAdapter{client: client, logger: logger}
}

func (a *MLBAdapter) League() string { return LeagueMLB }

type mlbScheduleEnvelope struct {
	Dates []struct {
		Date  string            `json:"date"`
		Games []mlbScheduleGame `json:"games"`
	} `json:"dates"`
}

type mlbScheduleGame struct {
	GamePk   int64  `json:"gamePk"`
	GameDate string `json:"gameDate"`
	GameType string `json:"gameType"`
	Status   struct {
		AbstractGameState string `json:"abstractGameState"`
		DetailedState     string `json:"detailedState"`
	} `json:"status"`
	Teams struct {
		Home mlbScheduleSide `json:"home"`
		Away mlbScheduleSide `json:"away"`
	} `json:"teams"`
}

type mlbScheduleSide struct {
	Team struct {
		ID           int64  `json:"id"`
		Name         string `json:"name"`
		Abbreviation string `json:"abbreviation"`
	} `json:"team"`
}

type mlbLinescoreEnvelope struct {
	CurrentInning        int    `json:"currentInning"`
	CurrentInningOrdinal string `json:"currentInningOrdinal"`
	InningState          string `json:"inningState"`
	ScheduledInnings     int    `json:"scheduledInnings"`
	Innings              []struct {
		Num  int `json:"num"`
		Home struct {
			Runs *int `json:"runs"`
		} `json:"home"`
		Away struct {
			Runs *int `json:"runs"`
		} `json:"away"`
	} `json:"innings"`
	Teams struct {
		Home mlbLinescoreSide `json:"home"`
		Away mlbLinescoreSide `json:"away"`
	} `json:"teams"`
}

type mlbLinescoreSide struct {
	Runs   *int `json:"runs"`
	Hits   *int `json:"hits"`
	Errors *int `json:"errors"`
}

func (a *MLBAdapter) FetchSchedule(ctx context.Context, date time.Time) ([]feed.ScheduleRecord, error) {
	query := map[string]string{
		"sportId": "1",
		"date":    date.UTC().Format("2006-01-02"),
	}

	var envelope mlbScheduleEnvelope
	if err := a.client.GetJSON(ctx, "/api/v1/schedule", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch mlb schedule date=%s: %w", date.Format("2006-01-02"), err)
	}

	var records []feed.ScheduleRecord
	for _, day := range envelope.Dates {
		for _, item := range day.Games {
			if item.GamePk <= 0 {
				a.logger.WarnContext(ctx, "mlb schedule game missing gamePk, skipping", "date", day.Date)
				continue
			}
			records = append(records, feed.ScheduleRecord{
				League:        LeagueMLB,
				GameID:        strconv.FormatInt(item.GamePk, 10),
				GameDate:      date.UTC().Truncate(24 * time.Hour),
				StartAt:       parseUTCTime(item.GameDate),
				GameType:      item.GameType,
				HomeTeam:      item.Teams.Home.Team.Name,
				HomeAbbrev:    item.Teams.Home.Team.Abbreviation,
				HomeTeamID:    strconv.FormatInt(item.Teams.Home.Team.ID, 10),
				VisitorTeam:   item.Teams.Away.Team.Name,
				VisitorAbbrev: item.Teams.Away.Team.Abbreviation,
				VisitorTeamID: strconv.FormatInt(item.Teams.Away.Team.ID, 10),
			})
		}
	}
	return records, nil
}

// FetchLiveState reads the linescore plus the lightweight game status. The
// linescore alone does not carry the final flag, so the status comes from a
// one-game schedule lookup sharing the same singleflight window.
func (a *MLBAdapter) FetchLiveState(ctx context.Context, gameID string) (feed.StateUpdate, error) {
	var linescore mlbLinescoreEnvelope
	if err := a.client.GetJSON(ctx, "/api/v1/game/"+gameID+"/linescore", nil, &linescore); err != nil {
		return feed.StateUpdate{}, fmt.Errorf("fetch mlb linescore game=%s: %w", gameID, err)
	}

	var status mlbScheduleEnvelope
	query := map[string]string{"sportId": "1", "gamePk": gameID}
	if err := a.client.GetJSON(ctx, "/api/v1/schedule", query, &status); err != nil {
		return feed.StateUpdate{}, fmt.Errorf("fetch mlb game status game=%s: %w", gameID, err)
	}

	update := feed.StateUpdate{
		GameID:        gameID,
		HomeScore:     linescore.Teams.Home.Runs,
		VisitorScore:  linescore.Teams.Away.Runs,
		HomeHits:      linescore.Teams.Home.Hits,
		HomeErrors:    linescore.Teams.Home.Errors,
		VisitorHits:   linescore.Teams.Away.Hits,
		VisitorErrors: linescore.Teams.Away.Errors,
	}

	if inning := mlbInningLabel(linescore); inning != "" {
		update.CurrentPeriod = &inning
	}
	if linescore.CurrentInning > mlbRegulationInnings(linescore) {
		overtime := true
		update.Overtime = &overtime
	}
	update.HomePeriodScores, update.VisitorPeriodScores = mlbInningScores(linescore)

	for _, day := range status.Dates {
		for _, item := range day.Games {
			if strconv.FormatInt(item.GamePk, 10) != gameID {
				continue
			}
			update.Status = mlbStatus(item.Status.AbstractGameState, item.Status.DetailedState)
		}
	}
	return update, nil
}

func mlbStatus(abstract, detailed string) string {
	switch abstract {
	case "Preview":
		if detailed == "Postponed" {
			return game.StatusPostponed
		}
		return game.StatusScheduled
	case "Live":
		return game.StatusInProgress
	case "Final":
		if detailed == "Postponed" {
			return game.StatusPostponed
		}
		return game.StatusFinal
	default:
		return game.NormalizeStatus(detailed)
	}
}

func mlbInningLabel(linescore mlbLinescoreEnvelope) string {
	if linescore.CurrentInning <= 0 {
		return ""
	}
	if linescore.InningState != "" {
		return linescore.InningState + " " + strconv.Itoa(linescore.CurrentInning)
	}
	return linescore.CurrentInningOrdinal
}

func mlbRegulationInnings(linescore mlbLinescoreEnvelope) int {
	if linescore.ScheduledInnings > 0 {
		return linescore.ScheduledInnings
	}
	return 9
}

func mlbInningScores(linescore mlbLinescoreEnvelope) (map[string]int, map[string]int) {
	if len(linescore.Innings) == 0 {
		return nil, nil
	}

	home := make(map[string]int, len(linescore.Innings))
	away := make(map[string]int, len(linescore.Innings))
	for _, inning := range linescore.Innings {
		label := strconv.Itoa(inning.Num)
		if inning.Home.Runs != nil {
			home[label] = *inning.Home.Runs
		}
		if inning.Away.Runs != nil {
			away[label] = *inning.Away.Runs
		}
	}
	if len(home) == 0 {
		home = nil
	}
	if len(away) == 0 {
		away = nil
	}
	return home, away
}
