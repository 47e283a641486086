package adapter

import (
	"context"

	"call-transcriber/internal/domain/model"
)

// Callback status values expected by the receiving endpoint.
const (
	CallbackStatusOK    = "1"
	CallbackStatusError = "0"
)

// TranscriptNotification is the JSON body posted to the callback endpoint.
type TranscriptNotification struct {
	FileID         string                `json:"fileId"`
	ProjectID      string                `json:"projectId"`
	TranscriptData *model.TranscriptData `json:"transcriptData"`
	Status         string                `json:"status"`
}

// CallbackAdapter is the port for the external callback receiver. The raw
// response body is returned verbatim so it can be stored as an audit trail.
type CallbackAdapter interface {
	NotifyTranscript(ctx context.Context, n TranscriptNotification) (string, error)
}
