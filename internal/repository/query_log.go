package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loquent-ai/loquent/internal/engine"
)

// QueryLogRepository stores query pipeline logs for evaluation and retention.
type QueryLogRepository struct {
	pool *pgxpool.Pool
}

func NewQueryLogRepository(pool *pgxpool.Pool) *QueryLogRepository {
	return &QueryLogRepository{pool: pool}
}

// CreateQueryLog records one pipeline run.
func (r *QueryLogRepository) CreateQueryLog(ctx context.Context, entry engine.QueryLogEntry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO query_logs (tenant_id, agent_id, session_id, query_length, candidate_count, context_count, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.TenantID,
		entry.AgentID,
		entry.SessionID,
		entry.QueryLength,
		entry.CandidateCount,
		entry.ContextCount,
		entry.DurationMs,
	)
	return err
}

// DeleteOlderThan removes query logs created before cutoff and returns how
// many rows were deleted.
func (r *QueryLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM query_logs WHERE created_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
