package postgres

import (
	"context"

	"github.com/rs/zerolog"

	"call-transcriber/internal/domain/model"
	"call-transcriber/internal/domain/ports/repository"
	red "call-transcriber/internal/infra/redis"
)

var _ repository.RecordingRepository = (*cachedRecordingRepo)(nil)

// cachedRecordingRepo fronts ExistingFileIDs with the Redis seen-set so
// back-to-back runs skip the full id scan. Cache failures only log; the
// inner repository stays authoritative.
type cachedRecordingRepo struct {
	inner repository.RecordingRepository
	cache *red.SeenCache
	log   *zerolog.Logger
}

func NewCachedRecordingRepo(inner repository.RecordingRepository, cache *red.SeenCache, log *zerolog.Logger) *cachedRecordingRepo {
	return &cachedRecordingRepo{inner: inner, cache: cache, log: log}
}

func (r *cachedRecordingRepo) Upsert(ctx context.Context, job *model.RecordingJob) error {
	if err := r.inner.Upsert(ctx, job); err != nil {
		return err
	}
	if err := r.cache.Add(ctx, job.FileID); err != nil {
		r.log.Warn().Err(err).Str("file_id", job.FileID).Msg("seen cache add failed")
	}
	return nil
}

func (r *cachedRecordingRepo) ExistingFileIDs(ctx context.Context) (map[string]struct{}, error) {
	if ids, ok := r.cache.Get(ctx); ok {
		return ids, nil
	}
	ids, err := r.inner.ExistingFileIDs(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Put(ctx, ids); err != nil {
		r.log.Warn().Err(err).Msg("seen cache refresh failed")
	}
	return ids, nil
}

func (r *cachedRecordingRepo) FindByFileID(ctx context.Context, fileID string) (*model.RecordingJob, error) {
	return r.inner.FindByFileID(ctx, fileID)
}

func (r *cachedRecordingRepo) FindIncomplete(ctx context.Context) ([]*model.RecordingJob, error) {
	return r.inner.FindIncomplete(ctx)
}

func (r *cachedRecordingRepo) Count(ctx context.Context) (int, error) {
	return r.inner.Count(ctx)
}
