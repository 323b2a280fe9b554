package usecase

import (
	"testing"
	"time"

	"github.com/riskibarqy/scoreline/internal/domain/game"
)

func intPtr(v int) *int { return &v }

func TestClassify_TiersByScoreDifferential(t *testing.T) {
	t.Parallel()

	thresholds := Thresholds{"NBA": 10, "NHL": 2, "MLB": 3}

	cases := []struct {
		name     string
		item     game.Game
		wantTier Tier
		wantOK   bool
	}{
		{
			name: "nba blowout is normal",
			item: game.Game{
				League: "NBA", Status: game.StatusInProgress,
				HomeScore: intPtr(55), VisitorScore: intPtr(70),
			},
			wantTier: TierNormal,
			wantOK:   true,
		},
		{
			name: "nba two point game is close",
			item: game.Game{
				League: "NBA", Status: game.StatusInProgress,
				HomeScore: intPtr(70), VisitorScore: intPtr(72),
			},
			wantTier: TierClose,
			wantOK:   true,
		},
		{
			name: "nhl at threshold is close",
			item: game.Game{
				League: "NHL", Status: game.StatusInProgress,
				HomeScore: intPtr(1), VisitorScore: intPtr(3),
			},
			wantTier: TierClose,
			wantOK:   true,
		},
		{
			name: "scheduled game waits",
			item: game.Game{League: "MLB", Status: game.StatusScheduled},
			wantTier: TierScheduledOnly,
			wantOK:   true,
		},
		{
			name:   "final game is not tiered",
			item:   game.Game{League: "NBA", Status: game.StatusFinal},
			wantOK: false,
		},
		{
			name:   "postponed game is not tiered",
			item:   game.Game{League: "MLB", Status: game.StatusPostponed},
			wantOK: false,
		},
		{
			name: "missing scores count as tied",
			item: game.Game{League: "NBA", Status: game.StatusInProgress},
			wantTier: TierClose,
			wantOK:   true,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tier, ok := Classify(thresholds, tc.item)
			if ok != tc.wantOK {
				t.Fatalf("unexpected trackable flag: got=%v want=%v", ok, tc.wantOK)
			}
			if ok && tier != tc.wantTier {
				t.Fatalf("unexpected tier: got=%s want=%s", tier, tc.wantTier)
			}
		})
	}
}

func TestThresholds_FallbackForUnknownLeague(t *testing.T) {
	t.Parallel()

	thresholds := Thresholds{"NBA": 10}
	if got := thresholds.For("wnba"); got != DefaultCloseThreshold {
		t.Fatalf("unexpected fallback threshold: got=%d want=%d", got, DefaultCloseThreshold)
	}
	if got := thresholds.For(" nba "); got != 10 {
		t.Fatalf("unexpected threshold lookup: got=%d want=10", got)
	}
}

func TestIntervals_ForTier(t *testing.T) {
	t.Parallel()

	iv := DefaultIntervals()
	if got := iv.ForTier(TierClose); got != 60*time.Second {
		t.Fatalf("unexpected close interval: %s", got)
	}
	if got := iv.ForTier(TierNormal); got != 120*time.Second {
		t.Fatalf("unexpected normal interval: %s", got)
	}
	if got := iv.ForTier(TierScheduledOnly); got != 300*time.Second {
		t.Fatalf("unexpected scheduled interval: %s", got)
	}
}
