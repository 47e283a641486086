package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")

	// Pipeline stage error kinds. Adapters wrap failures with the kind
	// matching the stage they serve so the orchestrator and callers can
	// classify with errors.Is.
	ErrFetch         = errors.New("recording fetch failed")
	ErrStorage       = errors.New("object storage failed")
	ErrTranscription = errors.New("transcription failed")
	ErrSummarization = errors.New("summarization failed")
	ErrPersistence   = errors.New("record store failed")
	ErrCallback      = errors.New("callback notification failed")
)
