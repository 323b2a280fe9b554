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

const LeagueNHL = "NHL"

// NHLAdapter reads the NHL api-web score and gamecenter feeds.
type NHLAdapter struct {
	client *Client
	logger *logging.Logger
}

func NewNHLAdapter(client *Client, logger *logging.Logger) *NHLAdapter {
	if logger == nil {
		logger = logging.Default()
	}
	return &NHLAdapter{client: client, logger: logger}
}

func (a *NHLAdapter) League() string { return LeagueNHL }

type nhlScoreEnvelope struct {
	Games []nhlGame `json:"games"`
}

type nhlGame struct {
	ID               int64   `json:"id"`
	GameState        string  `json:"gameState"`
	GameType         int     `json:"gameType"`
	StartTimeUTC     string  `json:"startTimeUTC"`
	Period           int     `json:"period"`
	PeriodDescriptor *struct {
		Number     int    `json:"number"`
		PeriodType string `json:"periodType"`
	} `json:"periodDescriptor"`
	Clock *struct {
		TimeRemaining string `json:"timeRemaining"`
		InIntermission bool  `json:"inIntermission"`
	} `json:"clock"`
	HomeTeam nhlTeam `json:"homeTeam"`
	AwayTeam nhlTeam `json:"awayTeam"`
}

type nhlTeam struct {
	ID     int64 `json:"id"`
	Name   struct {
		Default string `json:"default"`
	} `json:"name"`
	Abbrev string `json:"abbrev"`
	Score  *int   `json:"score"`
}

func (a *NHLAdapter) FetchSchedule(ctx context.Context, date time.Time) ([]feed.ScheduleRecord, error) {
	path := "/v1/score/" + date.UTC().Format("2006-01-02")

	var envelope nhlScoreEnvelope
	if err := a.client.GetJSON(ctx, path, nil, &envelope); err != nil {
		return nil, fmt.Errorf("fetch nhl scores date=%s: %w", date.Format("2006-01-02"), err)
	}

	records := make([]feed.ScheduleRecord, 0, len(envelope.Games))
	for _, item := range envelope.Games {
		if item.ID <= 0 {
			a.logger.WarnContext(ctx, "nhl score game missing id, skipping")
			continue
		}
		records = append(records, feed.ScheduleRecord{
			League:        LeagueNHL,
			GameID:        strconv.FormatInt(item.ID, 10),
			GameDate:      date.UTC().Truncate(24 * time.Hour),
			StartAt:       parseUTCTime(item.StartTimeUTC),
			GameType:      strconv.Itoa(item.GameType),
			HomeTeam:      item.HomeTeam.Name.Default,
			HomeAbbrev:    item.HomeTeam.Abbrev,
			HomeTeamID:    strconv.FormatInt(item.HomeTeam.ID, 10),
			VisitorTeam:   item.AwayTeam.Name.Default,
			VisitorAbbrev: item.AwayTeam.Abbrev,
			VisitorTeamID: strconv.FormatInt(item.AwayTeam.ID, 10),
		})
	}
	return records, nil
}

type nhlGamecenterEnvelope struct {
	nhlGame
}

func (a *NHLAdapter) FetchLiveState(ctx context.Context, gameID string) (feed.StateUpdate, error) {
	var envelope nhlGamecenterEnvelope
	if err := a.client.GetJSON(ctx, "/v1/gamecenter/"+gameID+"/landing", nil, &envelope); err != nil {
		return feed.StateUpdate{}, fmt.Errorf("fetch nhl gamecenter game=%s: %w", gameID, err)
	}

	item := envelope.nhlGame
	if item.ID <= 0 {
		return feed.StateUpdate{}, fmt.Errorf("%w: nhl gamecenter empty game=%s", feed.ErrMalformed, gameID)
	}

	update := feed.StateUpdate{
		GameID:       gameID,
		Status:       nhlStatus(item.GameState),
		HomeScore:    item.HomeTeam.Score,
		VisitorScore: item.AwayTeam.Score,
	}

	period := item.Period
	periodType := ""
	if item.PeriodDescriptor != nil {
		period = item.PeriodDescriptor.Number
		periodType = item.PeriodDescriptor.PeriodType
	}
	if period > 0 {
		label := nhlPeriodLabel(period, periodType)
		update.CurrentPeriod = &label
	}
	if period > 3 || periodType == "OT" || periodType == "SO" {
		overtime := true
		update.Overtime = &overtime
	}
	if item.Clock != nil && item.Clock.TimeRemaining != "" {
		remaining := item.Clock.TimeRemaining
		update.TimeRemaining = &remaining
	}
	return update, nil
}

func nhlStatus(state string) string {
	switch state {
	case "FUT", "PRE":
		return game.StatusScheduled
	case "LIVE", "CRIT":
		return game.StatusInProgress
	case "OFF", "FINAL":
		return game.StatusFinal
	case "PPD", "SUSP", "CNCL":
		return game.StatusPostponed
	default:
		return game.NormalizeStatus(state)
	}
}

func nhlPeriodLabel(period int, periodType string) string {
	switch periodType {
	case "OT":
		if period > 4 {
			return "ot" + strconv.Itoa(period-3)
		}
		return "ot"
	case "SO":
		return "so"
	default:
		return "p" + strconv.Itoa(period)
	}
}
