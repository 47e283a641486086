package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"call-transcriber/internal/config"
	"call-transcriber/internal/domain"
	"call-transcriber/internal/domain/ports/adapter"
)

var _ adapter.CallbackAdapter = (*HTTPNotifier)(nil)

// HTTPNotifier posts final transcript payloads to the configured callback
// endpoint and returns the response body verbatim.
type HTTPNotifier struct {
	base   string
	token  string
	client *http.Client
}

func NewHTTPNotifier(cfg *config.CallbackConfig) (*HTTPNotifier, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("callback base url empty")
	}
	return &HTTPNotifier{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		token:  cfg.Token,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (n *HTTPNotifier) NotifyTranscript(ctx context.Context, note adapter.TranscriptNotification) (string, error) {
	body, err := json.Marshal(note)
	if err != nil {
		return "", fmt.Errorf("%w: encode payload: %v", domain.ErrCallback, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.base+"/create-recording-transcript", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCallback, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrCallback, note.FileID, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %s: read response: %v", domain.ErrCallback, note.FileID, err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %s: http %d: %s", domain.ErrCallback, note.FileID, resp.StatusCode, raw)
	}
	return string(raw), nil
}
