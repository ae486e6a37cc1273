package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/pmstd/internal/service"
)

// SearchLogRepository stores executed searches for analytics.
type SearchLogRepository struct {
	pool *pgxpool.Pool
}

func NewSearchLogRepository(pool *pgxpool.Pool) *SearchLogRepository {
	return &SearchLogRepository{pool: pool}
}

func (r *SearchLogRepository) RecordSearch(ctx context.Context, event service.SearchEvent) error {
	standardIDs := event.StandardIDs
	if standardIDs == nil {
		standardIDs = []int64{}
	}
	resultIDs := event.ResultIDs
	if resultIDs == nil {
		resultIDs = []int64{}
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO search_logs (id, kind, query, standard_ids, result_ids, result_count, cache_hit, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.ID,
		string(event.Kind),
		event.Query,
		standardIDs,
		resultIDs,
		event.ResultCount,
		event.CacheHit,
		event.DurationMs,
		event.CreatedAt,
	)
	return err
}
