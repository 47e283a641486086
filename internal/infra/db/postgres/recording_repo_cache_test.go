//go:build !integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"call-transcriber/internal/domain/model"
	red "call-transcriber/internal/infra/redis"
)

type mockInnerRecordingRepo struct {
	UpsertFunc          func(ctx context.Context, job *model.RecordingJob) error
	FindByFileIDFunc    func(ctx context.Context, fileID string) (*model.RecordingJob, error)
	ExistingFileIDsFunc func(ctx context.Context) (map[string]struct{}, error)
	FindIncompleteFunc  func(ctx context.Context) ([]*model.RecordingJob, error)
	CountFunc           func(ctx context.Context) (int, error)
}

func (m *mockInnerRecordingRepo) Upsert(ctx context.Context, job *model.RecordingJob) error {
	return m.UpsertFunc(ctx, job)
}

func (m *mockInnerRecordingRepo) FindByFileID(ctx context.Context, fileID string) (*model.RecordingJob, error) {
	return m.FindByFileIDFunc(ctx, fileID)
}

func (m *mockInnerRecordingRepo) ExistingFileIDs(ctx context.Context) (map[string]struct{}, error) {
	return m.ExistingFileIDsFunc(ctx)
}

func (m *mockInnerRecordingRepo) FindIncomplete(ctx context.Context) ([]*model.RecordingJob, error) {
	return m.FindIncompleteFunc(ctx)
}

func (m *mockInnerRecordingRepo) Count(ctx context.Context) (int, error) {
	return m.CountFunc(ctx)
}

type mockRedisClient struct {
	SAddFunc     func(ctx context.Context, key string, members ...interface{}) error
	SMembersFunc func(ctx context.Context, key string) ([]string, error)
	ExpireFunc   func(ctx context.Context, key string, expiration time.Duration) error
	DelFunc      func(ctx context.Context, keys ...string) error
}

func (m *mockRedisClient) Ping(ctx context.Context) error { return nil }

func (m *mockRedisClient) SAdd(ctx context.Context, key string, members ...interface{}) error {
	if m.SAddFunc != nil {
		return m.SAddFunc(ctx, key, members...)
	}
	return nil
}

func (m *mockRedisClient) SMembers(ctx context.Context, key string) ([]string, error) {
	if m.SMembersFunc != nil {
		return m.SMembersFunc(ctx, key)
	}
	return nil, nil
}

func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	if m.ExpireFunc != nil {
		return m.ExpireFunc(ctx, key, expiration)
	}
	return nil
}

func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc != nil {
		return m.DelFunc(ctx, keys...)
	}
	return nil
}

func (m *mockRedisClient) Close() error { return nil }

func TestCachedRecordingRepo(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	t.Run("ExistingFileIDs returns from cache on hit", func(t *testing.T) {
		mockRedis := &mockRedisClient{
			SMembersFunc: func(ctx context.Context, key string) ([]string, error) {
				return []string{"a1", "a2"}, nil
			},
		}
		innerCalled := false
		inner := &mockInnerRecordingRepo{
			ExistingFileIDsFunc: func(ctx context.Context) (map[string]struct{}, error) {
				innerCalled = true
				return nil, nil
			},
		}

		repo := NewCachedRecordingRepo(inner, red.NewSeenCache(mockRedis, time.Hour), &logger)
		ids, err := repo.ExistingFileIDs(ctx)
		if err != nil {
			t.Fatalf("ExistingFileIDs: %v", err)
		}
		if innerCalled {
			t.Error("inner repository should not be queried on a cache hit")
		}
		if len(ids) != 2 {
			t.Errorf("ids = %v", ids)
		}
	})

	t.Run("ExistingFileIDs falls through and refreshes on miss", func(t *testing.T) {
		var added []interface{}
		mockRedis := &mockRedisClient{
			SMembersFunc: func(ctx context.Context, key string) ([]string, error) {
				return nil, errors.New("connection refused")
			},
			SAddFunc: func(ctx context.Context, key string, members ...interface{}) error {
				added = append(added, members...)
				return nil
			},
		}
		inner := &mockInnerRecordingRepo{
			ExistingFileIDsFunc: func(ctx context.Context) (map[string]struct{}, error) {
				return map[string]struct{}{"a1": {}}, nil
			},
		}

		repo := NewCachedRecordingRepo(inner, red.NewSeenCache(mockRedis, time.Hour), &logger)
		ids, err := repo.ExistingFileIDs(ctx)
		if err != nil {
			t.Fatalf("ExistingFileIDs: %v", err)
		}
		if len(ids) != 1 {
			t.Errorf("ids = %v", ids)
		}
		if len(added) != 1 {
			t.Errorf("cache not refreshed: %v", added)
		}
	})

	t.Run("Upsert adds the file id to the cache", func(t *testing.T) {
		var added []interface{}
		mockRedis := &mockRedisClient{
			SAddFunc: func(ctx context.Context, key string, members ...interface{}) error {
				added = append(added, members...)
				return nil
			},
		}
		inner := &mockInnerRecordingRepo{
			UpsertFunc: func(ctx context.Context, job *model.RecordingJob) error { return nil },
		}

		repo := NewCachedRecordingRepo(inner, red.NewSeenCache(mockRedis, time.Hour), &logger)
		if err := repo.Upsert(ctx, &model.RecordingJob{FileID: "abc123"}); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
		if len(added) != 1 || added[0] != "abc123" {
			t.Errorf("added = %v", added)
		}
	})

	t.Run("Upsert cache failure does not fail the write", func(t *testing.T) {
		mockRedis := &mockRedisClient{
			SAddFunc: func(ctx context.Context, key string, members ...interface{}) error {
				return errors.New("connection refused")
			},
		}
		inner := &mockInnerRecordingRepo{
			UpsertFunc: func(ctx context.Context, job *model.RecordingJob) error { return nil },
		}

		repo := NewCachedRecordingRepo(inner, red.NewSeenCache(mockRedis, time.Hour), &logger)
		if err := repo.Upsert(ctx, &model.RecordingJob{FileID: "abc123"}); err != nil {
			t.Fatalf("Upsert should tolerate cache failure, got %v", err)
		}
	})
}
