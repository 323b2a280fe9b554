package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/scoreline/internal/domain/game"
	qb "github.com/riskibarqy/scoreline/internal/platform/querybuilder"
)

// upsertGameSuffix makes Save a full-record upsert. COALESCE keeps a
// previously stored value when the incoming row carries NULL for it, so a
// sparse row can never blank out a field another save already filled.
const upsertGameSuffix = `ON CONFLICT (league, game_id) DO UPDATE SET
	game_date = EXCLUDED.game_date,
	start_at = COALESCE(EXCLUDED.start_at, games.start_at),
	game_type = COALESCE(EXCLUDED.game_type, games.game_type),
	home_team = COALESCE(EXCLUDED.home_team, games.home_team),
	home_abbrev = COALESCE(EXCLUDED.home_abbrev, games.home_abbrev),
	home_team_id = COALESCE(EXCLUDED.home_team_id, games.home_team_id),
	home_score = COALESCE(EXCLUDED.home_score, games.home_score),
	visitor_team = COALESCE(EXCLUDED.visitor_team, games.visitor_team),
	visitor_abbrev = COALESCE(EXCLUDED.visitor_abbrev, games.visitor_abbrev),
	visitor_team_id = COALESCE(EXCLUDED.visitor_team_id, games.visitor_team_id),
	visitor_score = COALESCE(EXCLUDED.visitor_score, games.visitor_score),
	status = EXCLUDED.status,
	current_period = COALESCE(EXCLUDED.current_period, games.current_period),
	time_remaining = COALESCE(EXCLUDED.time_remaining, games.time_remaining),
	is_overtime = COALESCE(EXCLUDED.is_overtime, games.is_overtime),
	home_period_scores = COALESCE(EXCLUDED.home_period_scores, games.home_period_scores),
	visitor_period_scores = COALESCE(EXCLUDED.visitor_period_scores, games.visitor_period_scores),
	home_hits = COALESCE(EXCLUDED.home_hits, games.home_hits),
	home_errors = COALESCE(EXCLUDED.home_errors, games.home_errors),
	visitor_hits = COALESCE(EXCLUDED.visitor_hits, games.visitor_hits),
	visitor_errors = COALESCE(EXCLUDED.visitor_errors, games.visitor_errors),
	updated_at = EXCLUDED.updated_at`

// GameRepository persists unified game records in the games table.
type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) GetByKey(ctx context.Context, key game.Key) (game.Game, bool, error) {
	query, args, err := qb.Select("*").From("games").
		Where(
			qb.Eq("league", key.League),
			qb.Eq("game_id", key.GameID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build select game query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, classifyStoreError("select game", err)
	}

	item, err := modelToGame(row)
	if err != nil {
		return game.Game{}, false, err
	}
	return item, true, nil
}

func (r *GameRepository) Save(ctx context.Context, item game.Game) error {
	row, err := gameToModel(item)
	if err != nil {
		return fmt.Errorf("map game %s/%s: %w", item.League, item.GameID, err)
	}

	query, args, err := qb.InsertModel("games", row, upsertGameSuffix)
	if err != nil {
		return fmt.Errorf("build upsert game query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return classifyStoreError(fmt.Sprintf("upsert game %s/%s", item.League, item.GameID), err)
	}
	return nil
}

func (r *GameRepository) ListByLeagueDate(ctx context.Context, league string, date time.Time) ([]game.Game, error) {
	query, args, err := qb.Select("*").From("games").
		Where(
			qb.Eq("league", league),
			qb.Expr("game_date::date = ?::date", date.UTC()),
		).
		OrderBy("start_at NULLS LAST", "game_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select games by date query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, classifyStoreError("select games by date", err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		item, err := modelToGame(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
