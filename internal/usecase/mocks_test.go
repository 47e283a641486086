// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sync"
	"time"

	"call-transcriber/internal/domain"
	"call-transcriber/internal/domain/model"
	"call-transcriber/internal/domain/ports/adapter"
)

// memRecordingRepo is a small in-memory record store used by unit tests.
// Upsert mirrors the COALESCE merge of the Postgres repository: populated
// columns are never regressed back to nil.
type memRecordingRepo struct {
	mu        sync.RWMutex
	store     map[string]*model.RecordingJob
	upsertErr error
	countErr  error
}

func newMemRecordingRepo() *memRecordingRepo {
	return &memRecordingRepo{store: make(map[string]*model.RecordingJob)}
}

func (m *memRecordingRepo) Upsert(ctx context.Context, job *model.RecordingJob) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.store[job.FileID]
	if !ok {
		cp := cloneJob(job)
		m.store[job.FileID] = cp
		return nil
	}
	if job.RecordingURL != nil {
		v := *job.RecordingURL
		existing.RecordingURL = &v
	}
	if job.TranscriptData != nil {
		td := *job.TranscriptData
		existing.TranscriptData = &td
	}
	if job.CallbackResponse != nil {
		v := *job.CallbackResponse
		existing.CallbackResponse = &v
	}
	return nil
}

func (m *memRecordingRepo) FindByFileID(ctx context.Context, fileID string) (*model.RecordingJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.store[fileID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneJob(j), nil
}

func (m *memRecordingRepo) ExistingFileIDs(ctx context.Context) (map[string]struct{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make(map[string]struct{}, len(m.store))
	for id := range m.store {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (m *memRecordingRepo) FindIncomplete(ctx context.Context) ([]*model.RecordingJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var jobs []*model.RecordingJob
	for _, j := range m.store {
		if j.TranscriptData == nil ||
			(j.TranscriptData.Error == "" && j.CallbackResponse == nil) {
			jobs = append(jobs, cloneJob(j))
		}
	}
	return jobs, nil
}

func (m *memRecordingRepo) Count(ctx context.Context) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

func (m *memRecordingRepo) get(fileID string) *model.RecordingJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store[fileID]
}

func cloneJob(j *model.RecordingJob) *model.RecordingJob {
	cp := *j
	if j.RecordingURL != nil {
		v := *j.RecordingURL
		cp.RecordingURL = &v
	}
	if j.TranscriptData != nil {
		td := *j.TranscriptData
		cp.TranscriptData = &td
	}
	if j.CallbackResponse != nil {
		v := *j.CallbackResponse
		cp.CallbackResponse = &v
	}
	return &cp
}

type memRunRepo struct {
	mu   sync.Mutex
	runs []*model.PipelineRun
}

func (m *memRunRepo) Save(ctx context.Context, run *model.PipelineRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *run
	for i, r := range m.runs {
		if r.ID == run.ID {
			m.runs[i] = &cp
			return nil
		}
	}
	m.runs = append(m.runs, &cp)
	return nil
}

func (m *memRunRepo) FindLatest(ctx context.Context) (*model.PipelineRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.runs) == 0 {
		return nil, domain.ErrNotFound
	}
	cp := *m.runs[len(m.runs)-1]
	return &cp, nil
}

// ---- Adapter fakes ----

type fakeSource struct {
	listed    []model.RecordingDescriptor
	listErr   error
	listCalls int
	audio     map[string][]byte
	fetchErr  error
}

func (f *fakeSource) ListRecordings(ctx context.Context) ([]model.RecordingDescriptor, error) {
	f.listCalls++
	return f.listed, f.listErr
}

func (f *fakeSource) FetchAudio(ctx context.Context, fileID string) ([]byte, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	b, ok := f.audio[fileID]
	if !ok {
		return nil, domain.ErrFetch
	}
	return b, nil
}

type fakeStorage struct {
	base      string
	uploads   map[string][]byte
	uploadErr error
}

func newFakeStorage(base string) *fakeStorage {
	return &fakeStorage{base: base, uploads: make(map[string][]byte)}
}

func (f *fakeStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads[key] = data
	return nil
}

func (f *fakeStorage) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return f.base + "/" + key, nil
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, req adapter.TranscribeRequest) (string, error) {
	return f.text, f.err
}

type fakeSummarizer struct {
	summary *model.CallSummary
	err     error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, transcript string) (*model.CallSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

type fakeCallback struct {
	notes    []adapter.TranscriptNotification
	response string
	err      error
}

func (f *fakeCallback) NotifyTranscript(ctx context.Context, n adapter.TranscriptNotification) (string, error) {
	f.notes = append(f.notes, n)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}
