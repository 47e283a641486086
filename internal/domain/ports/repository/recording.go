package repository

import (
	"context"

	"call-transcriber/internal/domain/model"
)

// RecordingRepository is the port for the persistent record store keyed by
// file_id. Upsert must be an idempotent merge: re-running it with the same
// file_id never duplicates rows and never regresses a populated column back
// to null.
type RecordingRepository interface {
	Upsert(ctx context.Context, job *model.RecordingJob) error
	FindByFileID(ctx context.Context, fileID string) (*model.RecordingJob, error)

	// ExistingFileIDs returns every file_id already present in the store.
	// The orchestrator filters the source listing against it.
	ExistingFileIDs(ctx context.Context) (map[string]struct{}, error)

	// FindIncomplete returns rows whose pipeline never finished: no
	// transcript yet, or transcript captured but the callback still pending.
	// Rows carrying a recorded stage error are terminal and excluded.
	FindIncomplete(ctx context.Context) ([]*model.RecordingJob, error)

	Count(ctx context.Context) (int, error)
}
