package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"call-transcriber/internal/domain"
	"call-transcriber/internal/domain/model"
	"call-transcriber/internal/domain/ports/repository"
)

var _ repository.RecordingRepository = (*recordingRepo)(nil)

type recordingRepo struct {
	pool *pgxpool.Pool
}

func NewRecordingRepo(pool *pgxpool.Pool) *recordingRepo {
	return &recordingRepo{pool: pool}
}

// Upsert merges the populated fields of job into its row, creating the row
// if absent. COALESCE keeps already-populated columns when the incoming
// value is null, so a field never regresses from set back to null.
func (r *recordingRepo) Upsert(ctx context.Context, job *model.RecordingJob) error {
	if job.FileID == "" {
		return domain.ErrInvalidArgument
	}

	var td interface{}
	if job.TranscriptData != nil {
		b, err := json.Marshal(job.TranscriptData)
		if err != nil {
			return fmt.Errorf("%w: encode transcript data: %v", domain.ErrPersistence, err)
		}
		td = b
	}

	const q = `
INSERT INTO call_recordings (file_id, project_id, file_extension, recording, "transcriptData", callback_response, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())
ON CONFLICT (file_id) DO UPDATE SET
  recording         = COALESCE(EXCLUDED.recording, call_recordings.recording),
  "transcriptData"  = COALESCE(EXCLUDED."transcriptData", call_recordings."transcriptData"),
  callback_response = COALESCE(EXCLUDED.callback_response, call_recordings.callback_response),
  updated_at        = now();`

	_, err := r.pool.Exec(ctx, q,
		job.FileID, job.ProjectID, job.FileExtension,
		job.RecordingURL, td, job.CallbackResponse,
	)
	if err != nil {
		return wrapPersistence("upsert recording", err)
	}
	return nil
}

func (r *recordingRepo) FindByFileID(ctx context.Context, fileID string) (*model.RecordingJob, error) {
	const q = `
SELECT file_id, project_id, file_extension, recording, "transcriptData", callback_response, created_at, updated_at
  FROM call_recordings
 WHERE file_id = $1;`

	job, err := scanJob(r.pool.QueryRow(ctx, q, fileID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, wrapPersistence("query recording", err)
	}
	return job, nil
}

func (r *recordingRepo) ExistingFileIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.pool.Query(ctx, `SELECT file_id FROM call_recordings;`)
	if err != nil {
		return nil, wrapPersistence("list file ids", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrapPersistence("scan file id", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPersistence("list file ids", err)
	}
	return ids, nil
}

// FindIncomplete returns rows whose pipeline never finished. Rows with a
// recorded stage error are terminal and stay out of the result.
func (r *recordingRepo) FindIncomplete(ctx context.Context) ([]*model.RecordingJob, error) {
	const q = `
SELECT file_id, project_id, file_extension, recording, "transcriptData", callback_response, created_at, updated_at
  FROM call_recordings
 WHERE "transcriptData" IS NULL
    OR ("transcriptData"->>'error' IS NULL AND callback_response IS NULL)
 ORDER BY created_at;`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, wrapPersistence("list incomplete recordings", err)
	}
	defer rows.Close()

	var jobs []*model.RecordingJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, wrapPersistence("scan recording", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPersistence("list incomplete recordings", err)
	}
	return jobs, nil
}

func (r *recordingRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM call_recordings WHERE file_id IS NOT NULL;`).Scan(&n)
	if err != nil {
		return 0, wrapPersistence("count recordings", err)
	}
	return n, nil
}

func scanJob(row pgx.Row) (*model.RecordingJob, error) {
	var (
		job model.RecordingJob
		td  []byte
	)
	if err := row.Scan(
		&job.FileID, &job.ProjectID, &job.FileExtension,
		&job.RecordingURL, &td, &job.CallbackResponse,
		&job.CreatedAt, &job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(td) > 0 {
		var data model.TranscriptData
		if err := json.Unmarshal(td, &data); err != nil {
			return nil, fmt.Errorf("decode transcript data: %w", err)
		}
		job.TranscriptData = &data
	}
	return &job, nil
}

func wrapPersistence(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w: %s: postgres %s: %s", domain.ErrPersistence, op, pgErr.Code, pgErr.Message)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrPersistence, op, err)
}
