package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/scoreline/internal/domain/feed"
	"github.com/riskibarqy/scoreline/internal/domain/game"
	"github.com/riskibarqy/scoreline/internal/platform/logging"
)

// ChangeKind is the outcome of one merge.
type ChangeKind string

const (
	ChangeCreated   ChangeKind = "created"
	ChangeUpdated   ChangeKind = "updated"
	ChangeUnchanged ChangeKind = "unchanged"
	// ChangeNoopFinal marks a payload that tried to alter an already final
	// game. The stored record is left untouched.
	ChangeNoopFinal ChangeKind = "noop_final"
)

// MergeGame applies a sparse update to an existing record. Fields absent
// from the update never overwrite stored values. Applying the same update
// twice yields Unchanged the second time.
func MergeGame(existing game.Game, exists bool, key game.Key, update feed.StateUpdate, at time.Time) (game.Game, ChangeKind) {
	if !exists {
		created := game.Game{
			League:    key.League,
			GameID:    key.GameID,
			GameDate:  at.UTC().Truncate(24 * time.Hour),
			Status:    game.StatusScheduled,
			UpdatedAt: at,
		}
		merged, _ := applyUpdate(created, update)
		merged.UpdatedAt = at
		return merged, ChangeCreated
	}

	merged, changed := applyUpdate(existing, update)
	if !changed {
		return existing, ChangeUnchanged
	}
	if existing.IsFinal() {
		return existing, ChangeNoopFinal
	}

	merged.UpdatedAt = at
	return merged, ChangeUpdated
}

func applyUpdate(base game.Game, update feed.StateUpdate) (game.Game, bool) {
	changed := false

	if update.Status != "" {
		if status := game.NormalizeStatus(update.Status); status != game.NormalizeStatus(base.Status) {
			base.Status = status
			changed = true
		}
	}

	changed = mergeInt(&base.HomeScore, update.HomeScore) || changed
	changed = mergeInt(&base.VisitorScore, update.VisitorScore) || changed
	changed = mergeInt(&base.HomeHits, update.HomeHits) || changed
	changed = mergeInt(&base.HomeErrors, update.HomeErrors) || changed
	changed = mergeInt(&base.VisitorHits, update.VisitorHits) || changed
	changed = mergeInt(&base.VisitorErrors, update.VisitorErrors) || changed

	if update.CurrentPeriod != nil && *update.CurrentPeriod != base.CurrentPeriod {
		base.CurrentPeriod = *update.CurrentPeriod
		changed = true
	}
	if update.TimeRemaining != nil && *update.TimeRemaining != base.TimeRemaining {
		base.TimeRemaining = *update.TimeRemaining
		changed = true
	}
	if update.Overtime != nil && (base.Overtime == nil || *base.Overtime != *update.Overtime) {
		value := *update.Overtime
		base.Overtime = &value
		changed = true
	}

	if update.HomePeriodScores != nil && !equalPeriodScores(base.HomePeriodScores, update.HomePeriodScores) {
		base.HomePeriodScores = clonePeriodScores(update.HomePeriodScores)
		changed = true
	}
	if update.VisitorPeriodScores != nil && !equalPeriodScores(base.VisitorPeriodScores, update.VisitorPeriodScores) {
		base.VisitorPeriodScores = clonePeriodScores(update.VisitorPeriodScores)
		changed = true
	}

	return base, changed
}

func mergeInt(target **int, incoming *int) bool {
	if incoming == nil {
		return false
	}
	if *target != nil && **target == *incoming {
		return false
	}
	value := *incoming
	*target = &value
	return true
}

func equalPeriodScores(left, right map[string]int) bool {
	if len(left) != len(right) {
		return false
	}
	for key, value := range left {
		if other, ok := right[key]; !ok || other != value {
			return false
		}
	}
	return true
}

func clonePeriodScores(src map[string]int) map[string]int {
	out := make(map[string]int, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}

// Reconciler loads, merges, and persists one game per update. Merges for
// distinct keys are independent; the orchestrator guarantees no two
// concurrent merges share a key.
type Reconciler struct {
	games  game.Repository
	logger *logging.Logger
	now    func() time.Time
}

func NewReconciler(games game.Repository, logger *logging.Logger) *Reconciler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Reconciler{
		games:  games,
		logger: logger,
		now:    time.Now,
	}
}

// Apply merges update into the stored record for key and persists the
// result when it changed. The returned game reflects stored state after the
// merge, which for NoopFinal is the untouched final record.
func (r *Reconciler) Apply(ctx context.Context, key game.Key, update feed.StateUpdate) (game.Game, ChangeKind, error) {
	ctx, span := startUsecaseSpan(ctx, "Reconciler.Apply")
	defer span.End()

	if key.IsZero() {
		return game.Game{}, "", fmt.Errorf("%w: game key is required", ErrInvalidInput)
	}

	existing, exists, err := r.games.GetByKey(ctx, key)
	if err != nil {
		return game.Game{}, "", fmt.Errorf("load game for merge game=%s: %w", key, err)
	}

	merged, kind := MergeGame(existing, exists, key, update, r.now().UTC())
	switch kind {
	case ChangeUnchanged:
		return merged, kind, nil
	case ChangeNoopFinal:
		r.logger.WarnContext(ctx, "update rejected for finalized game",
			"game", key.String(),
			"incoming_status", update.Status,
		)
		return merged, kind, nil
	}

	if err := r.games.Save(ctx, merged); err != nil {
		return game.Game{}, "", fmt.Errorf("save merged game game=%s: %w", key, err)
	}
	return merged, kind, nil
}
