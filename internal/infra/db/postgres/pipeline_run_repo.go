package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"call-transcriber/internal/domain"
	"call-transcriber/internal/domain/model"
	"call-transcriber/internal/domain/ports/repository"
)

var _ repository.PipelineRunRepository = (*pipelineRunRepo)(nil)

type pipelineRunRepo struct {
	pool *pgxpool.Pool
}

func NewPipelineRunRepo(pool *pgxpool.Pool) *pipelineRunRepo {
	return &pipelineRunRepo{pool: pool}
}

func (r *pipelineRunRepo) Save(ctx context.Context, run *model.PipelineRun) error {
	const q = `
INSERT INTO pipeline_runs (id, started_at, finished_at, discovered, processed, failed, skipped)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
  finished_at = EXCLUDED.finished_at,
  discovered  = EXCLUDED.discovered,
  processed   = EXCLUDED.processed,
  failed      = EXCLUDED.failed,
  skipped     = EXCLUDED.skipped;`

	_, err := r.pool.Exec(ctx, q,
		run.ID, run.StartedAt, run.FinishedAt,
		run.Discovered, run.Processed, run.Failed, run.Skipped,
	)
	if err != nil {
		return wrapPersistence("save pipeline run", err)
	}
	return nil
}

func (r *pipelineRunRepo) FindLatest(ctx context.Context) (*model.PipelineRun, error) {
	const q = `
SELECT id, started_at, finished_at, discovered, processed, failed, skipped
  FROM pipeline_runs
 ORDER BY started_at DESC
 LIMIT 1;`

	var run model.PipelineRun
	err := r.pool.QueryRow(ctx, q).Scan(
		&run.ID, &run.StartedAt, &run.FinishedAt,
		&run.Discovered, &run.Processed, &run.Failed, &run.Skipped,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, wrapPersistence("query latest run", err)
	}
	return &run, nil
}
