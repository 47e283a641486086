package storage

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

var _ adapter.ObjectStorageAdapter = (*SupabaseStorage)(nil)

// SupabaseStorage stores audio through the Supabase storage REST API.
// Uploads use x-upsert so re-running a job overwrites instead of failing
// on the duplicate key.
type SupabaseStorage struct {
	base       string
	serviceKey string
	bucket     string
	client     *http.Client
}

func NewSupabaseStorage(cfg *config.StorageConfig) (*SupabaseStorage, error) {
	if cfg.BaseURL == "" || cfg.ServiceKey == "" || cfg.Bucket == "" {
		return nil, errors.New("storage base url, service key and bucket are required")
	}
	return &SupabaseStorage{
		base:       strings.TrimRight(cfg.BaseURL, "/"),
		serviceKey: cfg.ServiceKey,
		bucket:     cfg.Bucket,
		client:     &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (s *SupabaseStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	url := fmt.Sprintf("%s/object/%s/%s", s.base, s.bucket, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: upload %s: %v", domain.ErrStorage, key, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: upload %s: http %d: %s", domain.ErrStorage, key, resp.StatusCode, b)
	}
	return nil
}

func (s *SupabaseStorage) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	url := fmt.Sprintf("%s/object/sign/%s/%s", s.base, s.bucket, key)
	body, err := json.Marshal(map[string]int{"expiresIn": int(ttl.Seconds())})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: sign %s: %v", domain.ErrStorage, key, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: sign %s: %v", domain.ErrStorage, key, err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: sign %s: http %d: %s", domain.ErrStorage, key, resp.StatusCode, b)
	}

	var payload struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.Unmarshal(b, &payload); err != nil {
		return "", fmt.Errorf("%w: sign %s: decode: %v", domain.ErrStorage, key, err)
	}
	if payload.SignedURL == "" {
		return "", fmt.Errorf("%w: sign %s: empty signed url", domain.ErrStorage, key)
	}
	if strings.HasPrefix(payload.SignedURL, "http") {
		return payload.SignedURL, nil
	}
	return s.base + "/" + strings.TrimLeft(payload.SignedURL, "/"), nil
}
