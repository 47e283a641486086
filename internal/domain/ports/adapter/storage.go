package adapter

import (
	"context"
	"time"
)

// ObjectStorageAdapter is the port for durable audio storage.
type ObjectStorageAdapter interface {
	// Upload stores data under key. Re-uploading the same key overwrites.
	Upload(ctx context.Context, key string, data []byte, contentType string) error

	// SignedURL returns an addressable reference for a stored object,
	// valid for ttl.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
