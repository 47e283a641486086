package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"call-transcriber/internal/config"
	"call-transcriber/internal/domain"
	"call-transcriber/internal/domain/model"
	"call-transcriber/internal/domain/ports/adapter"
)

var _ adapter.RecordingSourceAdapter = (*HTTPSource)(nil)

// HTTPSource talks to the remote recordings API. Transient failures
// (network errors, 5xx) are retried with capped exponential backoff;
// 4xx responses are permanent.
type HTTPSource struct {
	base       string
	token      string
	client     *http.Client
	maxElapsed time.Duration
	log        *zerolog.Logger
}

func NewHTTPSource(cfg *config.SourceConfig, log *zerolog.Logger) (*HTTPSource, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("source base url empty")
	}
	return &HTTPSource{
		base:       strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		client:     &http.Client{Timeout: 60 * time.Second},
		maxElapsed: cfg.RetryMaxElapsed,
		log:        log,
	}, nil
}

func (s *HTTPSource) ListRecordings(ctx context.Context) ([]model.RecordingDescriptor, error) {
	body, err := s.get(ctx, s.base+"/get-recordings")
	if err != nil {
		return nil, fmt.Errorf("%w: list recordings: %v", domain.ErrFetch, err)
	}
	var listed []model.RecordingDescriptor
	if err := json.Unmarshal(body, &listed); err != nil {
		return nil, fmt.Errorf("%w: decode listing: %v", domain.ErrFetch, err)
	}
	out := listed[:0]
	for _, d := range listed {
		if d.FileID == "" {
			s.log.Warn().Str("project_id", d.ProjectID).Msg("skipping listing entry without fileId")
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *HTTPSource) FetchAudio(ctx context.Context, fileID string) ([]byte, error) {
	if fileID == "" {
		return nil, fmt.Errorf("%w: empty file id", domain.ErrFetch)
	}
	body, err := s.get(ctx, s.base+"/"+fileID)
	if err != nil {
		return nil, fmt.Errorf("%w: download %s: %v", domain.ErrFetch, fileID, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty audio for %s", domain.ErrFetch, fileID)
	}
	return body, nil
}

func (s *HTTPSource) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		if s.token != "" {
			req.Header.Set("Authorization", "Bearer "+s.token)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("http %d: %s", resp.StatusCode, truncate(b, 200))
		}
		if resp.StatusCode >= 300 {
			return backoff.Permanent(fmt.Errorf("http %d: %s", resp.StatusCode, truncate(b, 200)))
		}
		body = b
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = s.maxElapsed
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
