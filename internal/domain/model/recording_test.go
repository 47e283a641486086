package model

import (
	"encoding/json"
	"testing"
)

func TestStorageKey(t *testing.T) {
	cases := []struct {
		fileID, ext, want string
	}{
		{"abc123", "wav", "abc123.wav"},
		{"abc123", ".mp3", "abc123.mp3"},
		{"abc123", "", "abc123"},
	}
	for _, c := range cases {
		j := &RecordingJob{FileID: c.fileID, FileExtension: c.ext}
		if got := j.StorageKey(); got != c.want {
			t.Errorf("StorageKey(%q, %q) = %q, want %q", c.fileID, c.ext, got, c.want)
		}
	}
}

func TestMIMEType(t *testing.T) {
	cases := []struct {
		ext, want string
	}{
		{"wav", "audio/wav"},
		{".WAV", "audio/wav"},
		{"mp4", "audio/mp4"},
		{"mp3", "audio/mpeg"},
		{"", "audio/mpeg"},
	}
	for _, c := range cases {
		j := &RecordingJob{FileExtension: c.ext}
		if got := j.MIMEType(); got != c.want {
			t.Errorf("MIMEType(%q) = %q, want %q", c.ext, got, c.want)
		}
	}
}

func TestTranscriptDataMarshalsSummaryNulls(t *testing.T) {
	td := &TranscriptData{
		Text:        "Hello.",
		CallSummary: &CallSummary{},
	}
	b, err := json.Marshal(td)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(m["text"]) != `"Hello."` {
		t.Errorf("text = %s", m["text"])
	}
	// Summary fields are present as explicit nulls rather than omitted.
	for _, k := range []string{"Configuration", "Size_Range", "BSP", "Total_Units",
		"Units_available", "Completion_Date", "Additional_Notes", "Notes"} {
		v, ok := m[k]
		if !ok {
			t.Errorf("field %s omitted", k)
			continue
		}
		if string(v) != "null" {
			t.Errorf("field %s = %s, want null", k, v)
		}
	}
	if _, ok := m["error"]; ok {
		t.Error("empty error should be omitted")
	}
}

func TestJobStateHelpers(t *testing.T) {
	j := NewRecordingJob(RecordingDescriptor{FileID: "abc123", FileExtension: "wav"})
	if j.Transcribed() || j.Summarized() || j.Failed() {
		t.Fatal("fresh job should have no state")
	}
	j.TranscriptData = &TranscriptData{Text: "Hello."}
	if !j.Transcribed() || j.Summarized() {
		t.Fatal("transcript only")
	}
	j.TranscriptData.CallSummary = &CallSummary{}
	if !j.Summarized() {
		t.Fatal("summary set")
	}
	j.TranscriptData.Error = "stage transcribe: boom"
	if !j.Failed() {
		t.Fatal("error set")
	}
}
