package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/scoreline/internal/domain/apiusage"
	qb "github.com/riskibarqy/scoreline/internal/platform/querybuilder"
)

type usageTableModel struct {
	League      string         `db:"league"`
	Endpoint    string         `db:"endpoint"`
	Timestamp   time.Time      `db:"called_at"`
	Success     bool           `db:"success"`
	LatencyMS   int64          `db:"latency_ms"`
	ErrorDetail sql.NullString `db:"error_detail"`
}

// UsageRecorder appends one audit row per upstream call attempt.
type UsageRecorder struct {
	db *sqlx.DB
}

func NewUsageRecorder(db *sqlx.DB) *UsageRecorder {
	return &UsageRecorder{db: db}
}

func (r *UsageRecorder) Append(ctx context.Context, item apiusage.Record) error {
	row := usageTableModel{
		League:      item.League,
		Endpoint:    item.Endpoint,
		Timestamp:   item.Timestamp.UTC(),
		Success:     item.Success,
		LatencyMS:   item.LatencyMS,
		ErrorDetail: toNullString(item.ErrorDetail),
	}

	query, args, err := qb.InsertModel("api_usage", row, "")
	if err != nil {
		return fmt.Errorf("build insert api usage query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return classifyStoreError("insert api usage", err)
	}
	return nil
}
