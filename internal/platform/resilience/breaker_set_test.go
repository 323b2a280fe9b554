package resilience

import (
	"testing"
	"time"
)

func TestBreakerSet_IndependentPerName(t *testing.T) {
	set := NewBreakerSet(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	nba := set.For("NBA")
	mlb := set.For("MLB")
	if nba == mlb {
		t.Fatal("expected distinct breakers per name")
	}
	if again := set.For("NBA"); again != nba {
		t.Fatal("expected the same breaker on repeated lookup")
	}

	nba.RecordFailure()
	if state := nba.State(); state != CircuitStateOpen {
		t.Fatalf("expected NBA breaker open, got %s", state)
	}
	if state := mlb.State(); state != CircuitStateClosed {
		t.Fatalf("expected MLB breaker unaffected, got %s", state)
	}
}

func TestBreakerSet_DisabledReturnsNil(t *testing.T) {
	set := NewBreakerSet(CircuitBreakerConfig{Enabled: false})
	if b := set.For("NHL"); b != nil {
		t.Fatalf("expected nil breaker when disabled, got %v", b)
	}
}
