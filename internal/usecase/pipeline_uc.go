// File: internal/usecase/pipeline_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"call-transcriber/internal/domain/model"
	"call-transcriber/internal/domain/ports/adapter"
	"call-transcriber/internal/domain/ports/repository"
	"call-transcriber/internal/infra/logging"
	"call-transcriber/internal/infra/metrics"
)

// Stage names used in logs and metrics.
const (
	StageFetch      = "fetch"
	StageStore      = "store"
	StageTranscribe = "transcribe"
	StageSummarize  = "summarize"
	StagePersist    = "persist"
	StageNotify     = "notify"
)

// Compile-time check
var _ PipelineUseCase = (*pipelineUC)(nil)

// PipelineUseCase drives recordings through the fetch -> store ->
// transcribe -> summarize -> persist -> notify sequence, one at a time.
type PipelineUseCase interface {
	Run(ctx context.Context) (*model.PipelineRun, error)
}

// Options carries the orchestration knobs that come from config.
type Options struct {
	// MaxFiles stops a run before listing once the record store already
	// holds this many rows. Zero disables the guard.
	MaxFiles int

	// SignedURLTTL is the validity window requested for stored audio
	// references.
	SignedURLTTL time.Duration
}

type pipelineUC struct {
	recordings  repository.RecordingRepository
	runs        repository.PipelineRunRepository
	source      adapter.RecordingSourceAdapter
	storage     adapter.ObjectStorageAdapter
	transcriber adapter.TranscriptionAdapter
	summarizer  adapter.SummarizationAdapter
	callback    adapter.CallbackAdapter
	opts        Options
	log         *zerolog.Logger
}

func NewPipelineUseCase(
	recordings repository.RecordingRepository,
	runs repository.PipelineRunRepository,
	source adapter.RecordingSourceAdapter,
	storage adapter.ObjectStorageAdapter,
	transcriber adapter.TranscriptionAdapter,
	summarizer adapter.SummarizationAdapter,
	callback adapter.CallbackAdapter,
	opts Options,
	log *zerolog.Logger,
) *pipelineUC {
	if opts.SignedURLTTL <= 0 {
		opts.SignedURLTTL = time.Hour
	}
	return &pipelineUC{
		recordings:  recordings,
		runs:        runs,
		source:      source,
		storage:     storage,
		transcriber: transcriber,
		summarizer:  summarizer,
		callback:    callback,
		opts:        opts,
		log:         log,
	}
}

// Run executes one batch. A stage failure skips the rest of that job's
// stages but never aborts the batch; only listing/store unavailability at
// the very start is fatal for the run.
func (p *pipelineUC) Run(ctx context.Context) (*model.PipelineRun, error) {
	run := model.NewPipelineRun(ulid.Make().String())
	ctx = logging.WithRunID(ctx, run.ID)
	log := logging.With(ctx, p.log)
	defer logging.TraceDuration(log, "PipelineUC.Run")()
	metrics.IncRun()

	if p.opts.MaxFiles > 0 {
		n, err := p.recordings.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count recordings: %w", err)
		}
		if n >= p.opts.MaxFiles {
			log.Warn().Int("count", n).Int("max_files", p.opts.MaxFiles).
				Msg("file count guard reached, stopping run")
			p.finishRun(ctx, run)
			return run, nil
		}
	}

	listed, err := p.source.ListRecordings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	seen, err := p.recordings.ExistingFileIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("existing file ids: %w", err)
	}

	jobs := make([]*model.RecordingJob, 0, len(listed))
	for _, d := range listed {
		if _, ok := seen[d.FileID]; ok {
			continue
		}
		jobs = append(jobs, model.NewRecordingJob(d))
	}
	run.Skipped = len(listed) - len(jobs)

	// Resume rows whose pipeline never finished on an earlier run.
	resumable, err := p.recordings.FindIncomplete(ctx)
	if err != nil {
		log.Error().Err(err).Msg("incomplete lookup failed, resuming skipped")
	} else {
		jobs = append(jobs, resumable...)
	}
	run.Discovered = len(jobs)
	log.Info().Int("listed", len(listed)).Int("new", run.Discovered-len(resumable)).
		Int("resumed", len(resumable)).Msg("run starting")

	for _, job := range jobs {
		jobCtx := logging.WithFileID(ctx, job.FileID)
		if err := p.processOne(jobCtx, job); err != nil {
			run.Failed++
			metrics.IncRecording("failed")
			logging.With(jobCtx, p.log).Error().Err(err).Msg("recording failed")
			p.handleFailure(jobCtx, job, err)
			continue
		}
		run.Processed++
		metrics.IncRecording("processed")
	}
	if run.Skipped > 0 {
		metrics.IncRecording("skipped")
	}

	p.finishRun(ctx, run)
	log.Info().Int("processed", run.Processed).Int("failed", run.Failed).
		Int("skipped", run.Skipped).Msg("run finished")
	return run, nil
}

// processOne walks a single job through the remaining stages. Stages whose
// target field is already populated are skipped, which is what makes
// re-running the batch resume unfinished jobs instead of redoing work.
func (p *pipelineUC) processOne(ctx context.Context, job *model.RecordingJob) error {
	// Create the metadata row first so the job is visible even if a later
	// stage fails.
	if err := p.runStage(ctx, StagePersist, func() error {
		return p.recordings.Upsert(ctx, job)
	}); err != nil {
		return err
	}

	var audio []byte
	needAudio := job.RecordingURL == nil || !job.Transcribed()
	if needAudio {
		if err := p.runStage(ctx, StageFetch, func() error {
			var err error
			audio, err = p.source.FetchAudio(ctx, job.FileID)
			return err
		}); err != nil {
			return err
		}
	}

	if job.RecordingURL == nil {
		var signed string
		if err := p.runStage(ctx, StageStore, func() error {
			key := job.StorageKey()
			if err := p.storage.Upload(ctx, key, audio, job.MIMEType()); err != nil {
				return err
			}
			var err error
			signed, err = p.storage.SignedURL(ctx, key, p.opts.SignedURLTTL)
			return err
		}); err != nil {
			return err
		}
		job.RecordingURL = &signed
		if err := p.runStage(ctx, StagePersist, func() error {
			return p.recordings.Upsert(ctx, job)
		}); err != nil {
			return err
		}
	}

	if !job.Transcribed() {
		var transcript string
		if err := p.runStage(ctx, StageTranscribe, func() error {
			var err error
			transcript, err = p.transcriber.Transcribe(ctx, adapter.TranscribeRequest{
				FileName: job.StorageKey(),
				MIMEType: job.MIMEType(),
				Audio:    audio,
			})
			return err
		}); err != nil {
			return err
		}
		job.TranscriptData = &model.TranscriptData{Text: transcript}
		if err := p.runStage(ctx, StagePersist, func() error {
			return p.recordings.Upsert(ctx, job)
		}); err != nil {
			return err
		}
	}

	if !job.Summarized() {
		var summary *model.CallSummary
		if err := p.runStage(ctx, StageSummarize, func() error {
			var err error
			summary, err = p.summarizer.Summarize(ctx, job.TranscriptData.Text)
			return err
		}); err != nil {
			return err
		}
		job.TranscriptData.CallSummary = summary
		if err := p.runStage(ctx, StagePersist, func() error {
			return p.recordings.Upsert(ctx, job)
		}); err != nil {
			return err
		}
	}

	if job.CallbackResponse == nil {
		var raw string
		if err := p.runStage(ctx, StageNotify, func() error {
			var err error
			raw, err = p.callback.NotifyTranscript(ctx, adapter.TranscriptNotification{
				FileID:         job.FileID,
				ProjectID:      job.ProjectID,
				TranscriptData: job.TranscriptData,
				Status:         adapter.CallbackStatusOK,
			})
			return err
		}); err != nil {
			return err
		}
		job.CallbackResponse = &raw
		if err := p.runStage(ctx, StagePersist, func() error {
			return p.recordings.Upsert(ctx, job)
		}); err != nil {
			return err
		}
	}

	logging.With(ctx, p.log).Info().Msg("recording processed")
	return nil
}

// handleFailure records the stage error on the row and reports it to the
// callback endpoint with an error status. A failed notify stage is only
// logged: the results are already persisted and there is nothing downstream
// to tell.
func (p *pipelineUC) handleFailure(ctx context.Context, job *model.RecordingJob, cause error) {
	log := logging.With(ctx, p.log)

	var se *stageError
	if errors.As(cause, &se) && se.Stage == StageNotify {
		return
	}

	if job.TranscriptData == nil {
		job.TranscriptData = &model.TranscriptData{}
	}
	job.TranscriptData.Error = cause.Error()
	if err := p.recordings.Upsert(ctx, job); err != nil {
		log.Error().Err(err).Msg("persisting failure record failed")
		return
	}

	raw, err := p.callback.NotifyTranscript(ctx, adapter.TranscriptNotification{
		FileID:         job.FileID,
		ProjectID:      job.ProjectID,
		TranscriptData: job.TranscriptData,
		Status:         adapter.CallbackStatusError,
	})
	if err != nil {
		log.Error().Err(err).Msg("error callback failed")
		return
	}
	job.CallbackResponse = &raw
	if err := p.recordings.Upsert(ctx, job); err != nil {
		log.Error().Err(err).Msg("persisting error callback response failed")
	}
}

func (p *pipelineUC) runStage(ctx context.Context, stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.ObserveStage(stage, time.Since(start), err == nil)
	if err != nil {
		metrics.IncStageFailure(stage)
		logging.With(ctx, p.log).Error().Err(err).Str("stage", stage).Msg("stage failed")
		return &stageError{Stage: stage, Err: err}
	}
	return nil
}

func (p *pipelineUC) finishRun(ctx context.Context, run *model.PipelineRun) {
	run.Finish()
	if err := p.runs.Save(ctx, run); err != nil {
		logging.With(ctx, p.log).Error().Err(err).Msg("saving run record failed")
	}
}

// stageError ties a failure to the stage that produced it.
type stageError struct {
	Stage string
	Err   error
}

func (e *stageError) Error() string { return "stage " + e.Stage + ": " + e.Err.Error() }
func (e *stageError) Unwrap() error { return e.Err }
