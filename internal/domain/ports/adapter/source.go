package adapter

import (
	"context"

	"call-transcriber/internal/domain/model"
)

// RecordingSourceAdapter is the port for the remote recordings API.
type RecordingSourceAdapter interface {
	// ListRecordings returns the descriptors currently available upstream.
	ListRecordings(ctx context.Context) ([]model.RecordingDescriptor, error)

	// FetchAudio downloads the raw audio bytes for one recording.
	FetchAudio(ctx context.Context, fileID string) ([]byte, error)
}
