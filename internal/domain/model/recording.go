package model

import (
	"strings"
	"time"
)

// RecordingDescriptor is one entry from the recordings listing endpoint.
type RecordingDescriptor struct {
	FileID        string `json:"fileId"`
	ProjectID     string `json:"projectID"`
	FileExtension string `json:"fileExt"`
}

// CallSummary holds the structured fields extracted from a call transcript.
// Every field is optional; unset fields stay nil and marshal as JSON null
// rather than being omitted.
type CallSummary struct {
	Configuration   *string `json:"Configuration"`
	SizeRange       *string `json:"Size_Range"`
	BSP             *string `json:"BSP"`
	TotalUnits      *string `json:"Total_Units"`
	UnitsAvailable  *string `json:"Units_available"`
	CompletionDate  *string `json:"Completion_Date"`
	AdditionalNotes *string `json:"Additional_Notes"`
	Notes           *string `json:"Notes"`
}

// TranscriptData is the payload stored in the transcriptData column and sent
// to the callback endpoint: the raw transcript text plus the extracted
// summary fields. Error is populated instead when a stage failed for the job.
type TranscriptData struct {
	Text string `json:"text,omitempty"`
	*CallSummary
	Error string `json:"error,omitempty"`
}

// RecordingJob is a single call recording moving through the pipeline,
// keyed by FileID. Nullable columns are pointers; each transitions
// monotonically from nil to populated as stages complete.
type RecordingJob struct {
	FileID           string
	ProjectID        string
	FileExtension    string
	RecordingURL     *string
	TranscriptData   *TranscriptData
	CallbackResponse *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func NewRecordingJob(d RecordingDescriptor) *RecordingJob {
	return &RecordingJob{
		FileID:        d.FileID,
		ProjectID:     d.ProjectID,
		FileExtension: d.FileExtension,
		CreatedAt:     time.Now(),
	}
}

// StorageKey is the object key the audio is stored under.
func (j *RecordingJob) StorageKey() string {
	if j.FileExtension == "" {
		return j.FileID
	}
	return j.FileID + "." + strings.TrimPrefix(j.FileExtension, ".")
}

// MIMEType maps the file extension to the content type used for the
// storage upload and the transcription request.
func (j *RecordingJob) MIMEType() string {
	switch strings.ToLower(strings.TrimPrefix(j.FileExtension, ".")) {
	case "wav":
		return "audio/wav"
	case "mp4":
		return "audio/mp4"
	default:
		return "audio/mpeg"
	}
}

// Transcribed reports whether a transcript has been captured for the job.
func (j *RecordingJob) Transcribed() bool {
	return j.TranscriptData != nil && j.TranscriptData.Text != ""
}

// Summarized reports whether summary extraction has completed.
func (j *RecordingJob) Summarized() bool {
	return j.TranscriptData != nil && j.TranscriptData.CallSummary != nil
}

// Failed reports whether a terminal stage error was recorded for the job.
func (j *RecordingJob) Failed() bool {
	return j.TranscriptData != nil && j.TranscriptData.Error != ""
}
