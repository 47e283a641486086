package callback

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"call-transcriber/internal/config"
	"call-transcriber/internal/domain"
	"call-transcriber/internal/domain/model"
	"call-transcriber/internal/domain/ports/adapter"
)

func str(s string) *string { return &s }

func TestNotifyTranscriptPostsPayloadAndReturnsBody(t *testing.T) {
	var gotPath string
	var got map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer cb-token" {
			t.Errorf("auth header = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		_, _ = w.Write([]byte(`{"id":42}`))
	}))
	defer srv.Close()

	n, err := NewHTTPNotifier(&config.CallbackConfig{BaseURL: srv.URL, Token: "cb-token"})
	if err != nil {
		t.Fatalf("NewHTTPNotifier: %v", err)
	}

	raw, err := n.NotifyTranscript(context.Background(), adapter.TranscriptNotification{
		FileID:    "abc123",
		ProjectID: "p1",
		TranscriptData: &model.TranscriptData{
			Text:        "Hello.",
			CallSummary: &model.CallSummary{Configuration: str("2BHK")},
		},
		Status: adapter.CallbackStatusOK,
	})
	if err != nil {
		t.Fatalf("NotifyTranscript: %v", err)
	}
	if raw != `{"id":42}` {
		t.Fatalf("response body = %q", raw)
	}
	if gotPath != "/create-recording-transcript" {
		t.Fatalf("path = %s", gotPath)
	}
	if string(got["fileId"]) != `"abc123"` || string(got["status"]) != `"1"` {
		t.Fatalf("payload = %v", got)
	}

	var td map[string]json.RawMessage
	if err := json.Unmarshal(got["transcriptData"], &td); err != nil {
		t.Fatalf("transcriptData not an object: %v", err)
	}
	if string(td["text"]) != `"Hello."` {
		t.Errorf("transcript text = %s", td["text"])
	}
	// Summary fields flatten into transcriptData; unset fields serialize
	// as explicit nulls.
	if string(td["Configuration"]) != `"2BHK"` {
		t.Errorf("Configuration = %s", td["Configuration"])
	}
	if string(td["BSP"]) != "null" {
		t.Errorf("BSP = %s", td["BSP"])
	}
}

func TestNotifyTranscriptNon2xxIsCallbackError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	n, err := NewHTTPNotifier(&config.CallbackConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewHTTPNotifier: %v", err)
	}
	_, err = n.NotifyTranscript(context.Background(), adapter.TranscriptNotification{
		FileID: "abc123",
		Status: adapter.CallbackStatusError,
	})
	if !errors.Is(err, domain.ErrCallback) {
		t.Fatalf("expected callback error, got %v", err)
	}
}
