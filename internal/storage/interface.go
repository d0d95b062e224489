package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStore is the durable blob store staged audio lives in.
type ObjectStore interface {
	// Put streams r into the object called name.
	Put(ctx context.Context, name string, r io.Reader, contentType string) error
	// Size returns the stored size of name in bytes.
	Size(ctx context.Context, name string) (int64, error)
	// SignedURL returns a time-limited GET URL for name.
	SignedURL(ctx context.Context, name string, ttl time.Duration) (string, error)
}
