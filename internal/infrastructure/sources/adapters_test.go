package sources

import (
	"net/http"
	"testing"
	"time"

	"github.com/riskibarqy/scoreline/internal/domain/game"
)

func TestNBAAdapter_FetchLiveState(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/boxscore/0022600894.json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"game": {
				"gameId": "0022600894",
				"gameStatus": 2,
				"gameClock": "PT05M31.00S",
				"period": 5,
				"homeTeam": {"teamId": 1, "teamTricode": "BOS", "score": 112,
					"periods": [{"period": 1, "score": 28}, {"period": 5, "score": 6}]},
				"awayTeam": {"teamId": 2, "teamTricode": "NYK", "score": 110}
			}
		}`))
	})

	adapter := NewNBAAdapter(client, nil)
	update, err := adapter.FetchLiveState(t.Context(), "0022600894")
	if err != nil {
		t.Fatalf("fetch live state: %v", err)
	}

	if update.Status != game.StatusInProgress {
		t.Fatalf("unexpected status: %s", update.Status)
	}
	if *update.HomeScore != 112 || *update.VisitorScore != 110 {
		t.Fatalf("unexpected score: %d-%d", *update.HomeScore, *update.VisitorScore)
	}
	if update.Overtime == nil || !*update.Overtime {
		t.Fatal("period 5 should flag overtime")
	}
	if update.HomePeriodScores["ot1"] != 6 || update.HomePeriodScores["q1"] != 28 {
		t.Fatalf("unexpected period scores: %v", update.HomePeriodScores)
	}
	if update.CurrentPeriod == nil || *update.CurrentPeriod != "ot1" {
		t.Fatalf("unexpected current period: %v", update.CurrentPeriod)
	}
}

func TestNBAAdapter_FetchSchedule(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scoreboard/2026-03-14.json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"scoreboard": {
				"gameDate": "2026-03-14",
				"games": [{
					"gameId": "0022600894",
					"gameStatus": 1,
					"gameTimeUTC": "2026-03-15T00:00:00Z",
					"homeTeam": {"teamId": 1610612738, "teamCity": "Boston", "teamName": "Celtics", "teamTricode": "BOS"},
					"awayTeam": {"teamId": 1610612752, "teamCity": "New York", "teamName": "Knicks", "teamTricode": "NYK"}
				}]
			}
		}`))
	})

	adapter := NewNBAAdapter(client, nil)
	records, err := adapter.FetchSchedule(t.Context(), time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("fetch schedule: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("unexpected record count: %d", len(records))
	}
	record := records[0]
	if record.League != LeagueNBA || record.GameID != "0022600894" {
		t.Fatalf("unexpected identity: %s/%s", record.League, record.GameID)
	}
	if record.HomeTeam != "Boston Celtics" || record.VisitorAbbrev != "NYK" {
		t.Fatalf("unexpected teams: %+v", record)
	}
	if record.StartAt == nil || !record.StartAt.Equal(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start time: %v", record.StartAt)
	}
}

func TestMLBStatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		abstract string
		detailed string
		want     string
	}{
		{"Preview", "Scheduled", game.StatusScheduled},
		{"Preview", "Postponed", game.StatusPostponed},
		{"Live", "In Progress", game.StatusInProgress},
		{"Final", "Final", game.StatusFinal},
		{"Final", "Postponed", game.StatusPostponed},
	}

	for _, tc := range cases {
		if got := mlbStatus(tc.abstract, tc.detailed); got != tc.want {
			t.Fatalf("mlbStatus(%s, %s): got=%s want=%s", tc.abstract, tc.detailed, got, tc.want)
		}
	}
}

func TestNHLStatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		state string
		want  string
	}{
		{"FUT", game.StatusScheduled},
		{"PRE", game.StatusScheduled},
		{"LIVE", game.StatusInProgress},
		{"CRIT", game.StatusInProgress},
		{"OFF", game.StatusFinal},
		{"FINAL", game.StatusFinal},
		{"PPD", game.StatusPostponed},
	}

	for _, tc := range cases {
		if got := nhlStatus(tc.state); got != tc.want {
			t.Fatalf("nhlStatus(%s): got=%s want=%s", tc.state, got, tc.want)
		}
	}
}

func TestMLBAdapter_FetchLiveState(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/game/746001/linescore":
			_, _ = w.Write([]byte(`{
				"currentInning": 10,
				"inningState": "Top",
				"scheduledInnings": 9,
				"innings": [
					{"num": 1, "home": {"runs": 1}, "away": {"runs": 0}},
					{"num": 10, "home": {}, "away": {"runs": 2}}
				],
				"teams": {
					"home": {"runs": 3, "hits": 8, "errors": 1},
					"away": {"runs": 5, "hits": 10, "errors": 0}
				}
			}`))
		case "/api/v1/schedule":
			_, _ = w.Write([]byte(`{
				"dates": [{"date": "2026-06-20", "games": [{
					"gamePk": 746001,
					"status": {"abstractGameState": "Live", "detailedState": "In Progress"}
				}]}]
			}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	})

	adapter := NewMLBAdapter(client, nil)
	update, err := adapter.FetchLiveState(t.Context(), "746001")
	if err != nil {
		t.Fatalf("fetch live state: %v", err)
	}

	if update.Status != game.StatusInProgress {
		t.Fatalf("unexpected status: %s", update.Status)
	}
	if *update.HomeScore != 3 || *update.VisitorScore != 5 {
		t.Fatalf("unexpected score: %d-%d", *update.HomeScore, *update.VisitorScore)
	}
	if *update.HomeHits != 8 || *update.VisitorErrors != 0 {
		t.Fatalf("unexpected baseball extras: %+v", update)
	}
	if update.Overtime == nil || !*update.Overtime {
		t.Fatal("extra innings should flag overtime")
	}
	if update.CurrentPeriod == nil || *update.CurrentPeriod != "Top 10" {
		t.Fatalf("unexpected inning label: %v", update.CurrentPeriod)
	}
	if update.VisitorPeriodScores["10"] != 2 {
		t.Fatalf("unexpected inning scores: %v", update.VisitorPeriodScores)
	}
	if _, ok := update.HomePeriodScores["10"]; ok {
		t.Fatal("unfinished home half-inning must stay absent")
	}
}

func TestNHLAdapter_FetchLiveState(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/gamecenter/2026020001/landing" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"id": 2026020001,
			"gameState": "LIVE",
			"periodDescriptor": {"number": 4, "periodType": "OT"},
			"clock": {"timeRemaining": "03:12"},
			"homeTeam": {"id": 6, "abbrev": "BOS", "score": 2},
			"awayTeam": {"id": 10, "abbrev": "TOR", "score": 2}
		}`))
	})

	adapter := NewNHLAdapter(client, nil)
	update, err := adapter.FetchLiveState(t.Context(), "2026020001")
	if err != nil {
		t.Fatalf("fetch live state: %v", err)
	}

	if update.Status != game.StatusInProgress {
		t.Fatalf("unexpected status: %s", update.Status)
	}
	if update.Overtime == nil || !*update.Overtime {
		t.Fatal("OT period should flag overtime")
	}
	if update.CurrentPeriod == nil || *update.CurrentPeriod != "ot" {
		t.Fatalf("unexpected period label: %v", update.CurrentPeriod)
	}
	if update.TimeRemaining == nil || *update.TimeRemaining != "03:12" {
		t.Fatalf("unexpected clock: %v", update.TimeRemaining)
	}
}

func TestNewRegistry_BuildsConfiguredLeagues(t *testing.T) {
	t.Parallel()

	adapters, err := NewRegistry(RegistryConfig{
		Leagues: map[string]LeagueConfig{
			"nba": {},
			"MLB": {},
			"nhl": {},
		},
	})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	for _, league := range []string{LeagueNBA, LeagueMLB, LeagueNHL} {
		adapter, ok := adapters[league]
		if !ok {
			t.Fatalf("missing adapter for %s", league)
		}
		if adapter.League() != league {
			t.Fatalf("adapter league mismatch: %s", adapter.League())
		}
	}

	if _, err := NewRegistry(RegistryConfig{Leagues: map[string]LeagueConfig{"XFL": {}}}); err == nil {
		t.Fatal("expected error for unknown league")
	}
}
