package adapter

import (
	"context"

	"call-transcriber/internal/domain/model"
)

// TranscribeRequest carries one recording to the speech-to-text model.
type TranscribeRequest struct {
	FileName string
	MIMEType string
	Audio    []byte
}

// TranscriptionAdapter is the port for the speech-to-text model.
// Implementations return domain.ErrTranscription when the model call errors
// or produces empty text.
type TranscriptionAdapter interface {
	Transcribe(ctx context.Context, req TranscribeRequest) (string, error)
}

// SummarizationAdapter is the port for structured summary extraction.
// Implementations must validate the model output parses as the expected
// shape before returning it; malformed output is domain.ErrSummarization.
type SummarizationAdapter interface {
	Summarize(ctx context.Context, transcript string) (*model.CallSummary, error)
}
