package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/scoreline/internal/domain/game"
	"github.com/riskibarqy/scoreline/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/scoreline/internal/platform/cache"
)

func TestSnapshotService_OrdersByStartThenID(t *testing.T) {
	t.Parallel()

	repo := memory.NewGameRepository()
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	early := date.Add(18 * time.Hour)
	late := date.Add(21 * time.Hour)

	seed := []game.Game{
		{League: "NBA", GameID: "b", GameDate: date, StartAt: timePtr(late)},
		{League: "NBA", GameID: "c", GameDate: date, StartAt: timePtr(early)},
		{League: "NBA", GameID: "a", GameDate: date, StartAt: timePtr(late)},
		{League: "NBA", GameID: "other-day", GameDate: date.AddDate(0, 0, 1)},
	}
	for _, item := range seed {
		if err := repo.Save(t.Context(), item); err != nil {
			t.Fatalf("seed game: %v", err)
		}
	}

	svc := NewSnapshotService(repo, nil, nil)
	items, err := svc.GamesByDate(t.Context(), "nba", date)
	if err != nil {
		t.Fatalf("games by date: %v", err)
	}

	var got []string
	for _, item := range items {
		got = append(got, item.GameID)
	}
	want := []string{"c", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("unexpected games: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order: got=%v want=%v", got, want)
		}
	}
}

func TestSnapshotService_ServesFromCache(t *testing.T) {
	t.Parallel()

	repo := memory.NewGameRepository()
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	if err := repo.Save(t.Context(), game.Game{League: "MLB", GameID: "1", GameDate: date}); err != nil {
		t.Fatalf("seed game: %v", err)
	}

	svc := NewSnapshotService(repo, cache.NewStore(time.Minute), nil)
	first, err := svc.GamesByDate(t.Context(), "MLB", date)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}

	// A write after the first load is invisible until the TTL expires.
	if err := repo.Save(t.Context(), game.Game{League: "MLB", GameID: "2", GameDate: date}); err != nil {
		t.Fatalf("save second game: %v", err)
	}

	second, err := svc.GamesByDate(t.Context(), "MLB", date)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected cached snapshot, got first=%d second=%d", len(first), len(second))
	}
}

func TestSnapshotService_RequiresLeague(t *testing.T) {
	t.Parallel()

	svc := NewSnapshotService(memory.NewGameRepository(), nil, nil)
	if _, err := svc.GamesByDate(t.Context(), "  ", time.Now()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
