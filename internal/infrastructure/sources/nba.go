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

const LeagueNBA = "NBA"

// NBAAdapter reads the NBA CDN scoreboard and boxscore feeds.
type NBAAdapter struct {
	client *Client
	logger *logging.Logger
}

func NewNBAAdapter(client *Client, logger *logging.Logger) *NBAAdapter {
	if logger == nil {
		logger = logging.Default()
	}
	return &NBAAdapter{client: client, logger: logger}
}

func (a *NBAAdapter) League() string { return LeagueNBA }

type nbaScoreboardEnvelope struct {
	Scoreboard struct {
		GameDate string    `json:"gameDate"`
		Games    []nbaGame `json:"games"`
	} `json:"scoreboard"`
}

type nbaBoxscoreEnvelope struct {
	Game nbaGame `json:"game"`
}

type nbaGame struct {
	GameID      string  `json:"gameId"`
	GameStatus  int     `json:"gameStatus"`
	StatusText  string  `json:"gameStatusText"`
	GameTimeUTC string  `json:"gameTimeUTC"`
	Period      int     `json:"period"`
	GameClock   string  `json:"gameClock"`
	HomeTeam    nbaTeam `json:"homeTeam"`
	AwayTeam    nbaTeam `json:"awayTeam"`
}

type nbaTeam struct {
	TeamID   int64  `json:"teamId"`
	TeamName string `json:"teamName"`
	TeamCity string `json:"teamCity"`
	Tricode  string `json:"teamTricode"`
	Score    *int   `json:"score"`
	Periods  []struct {
		Period int    `json:"period"`
		Type   string `json:"periodType"`
		Score  int    `json:"score"`
	} `json:"periods"`
}

func (a *NBAAdapter) FetchSchedule(ctx context.Context, date time.Time) ([]feed.ScheduleRecord, error) {
	path := "/scoreboard/" + date.UTC().Format("2006-01-02") + ".json"

	var envelope nbaScoreboardEnvelope
	if err := a.client.GetJSON(ctx, path, nil, &envelope); err != nil {
		return nil, fmt.Errorf("fetch nba scoreboard date=%s: %w", date.Format("2006-01-02"), err)
	}

	records := make([]feed.ScheduleRecord, 0, len(envelope.Scoreboard.Games))
	for _, item := range envelope.Scoreboard.Games {
		if item.GameID == "" {
			a.logger.WarnContext(ctx, "nba scoreboard game missing id, skipping")
			continue
		}
		records = append(records, feed.ScheduleRecord{
			League:        LeagueNBA,
			GameID:        item.GameID,
			GameDate:      date.UTC().Truncate(24 * time.Hour),
			StartAt:       parseUTCTime(item.GameTimeUTC),
			HomeTeam:      item.HomeTeam.TeamCity + " " + item.HomeTeam.TeamName,
			HomeAbbrev:    item.HomeTeam.Tricode,
			HomeTeamID:    strconv.FormatInt(item.HomeTeam.TeamID, 10),
			VisitorTeam:   item.AwayTeam.TeamCity + " " + item.AwayTeam.TeamName,
			VisitorAbbrev: item.AwayTeam.Tricode,
			VisitorTeamID: strconv.FormatInt(item.AwayTeam.TeamID, 10),
		})
	}
	return records, nil
}

func (a *NBAAdapter) FetchLiveState(ctx context.Context, gameID string) (feed.StateUpdate, error) {
	var envelope nbaBoxscoreEnvelope
	if err := a.client.GetJSON(ctx, "/boxscore/"+gameID+".json", nil, &envelope); err != nil {
		return feed.StateUpdate{}, fmt.Errorf("fetch nba boxscore game=%s: %w", gameID, err)
	}

	item := envelope.Game
	if item.GameID == "" {
		return feed.StateUpdate{}, fmt.Errorf("%w: nba boxscore empty game=%s", feed.ErrMalformed, gameID)
	}

	update := feed.StateUpdate{
		GameID:              item.GameID,
		Status:              nbaStatus(item.GameStatus, item.StatusText),
		HomeScore:           item.HomeTeam.Score,
		VisitorScore:        item.AwayTeam.Score,
		HomePeriodScores:    nbaPeriodScores(item.HomeTeam),
		VisitorPeriodScores: nbaPeriodScores(item.AwayTeam),
	}
	if item.Period > 0 {
		period := nbaPeriodLabel(item.Period)
		update.CurrentPeriod = &period
	}
	if item.GameClock != "" {
		clock := item.GameClock
		update.TimeRemaining = &clock
	}
	if item.Period > 4 {
		overtime := true
		update.Overtime = &overtime
	}
	return update, nil
}

func nbaStatus(code int, text string) string {
	switch code {
	case 1:
		return game.StatusScheduled
	case 2:
		return game.StatusInProgress
	case 3:
		return game.StatusFinal
	default:
		return game.NormalizeStatus(text)
	}
}

func nbaPeriodScores(team nbaTeam) map[string]int {
	if len(team.Periods) == 0 {
		return nil
	}
	out := make(map[string]int, len(team.Periods))
	for _, p := range team.Periods {
		out[nbaPeriodLabel(p.Period)] = p.Score
	}
	return out
}

func nbaPeriodLabel(period int) string {
	if period > 4 {
		return "ot" + strconv.Itoa(period-4)
	}
	return "q" + strconv.Itoa(period)
}

func parseUTCTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	utc := parsed.UTC()
	return &utc
}
