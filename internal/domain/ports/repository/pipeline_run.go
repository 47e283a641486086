package repository

import (
	"context"

	"call-transcriber/internal/domain/model"
)

// PipelineRunRepository persists per-invocation audit records.
type PipelineRunRepository interface {
	Save(ctx context.Context, run *model.PipelineRun) error
	FindLatest(ctx context.Context) (*model.PipelineRun, error)
}
