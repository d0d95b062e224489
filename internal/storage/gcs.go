package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/nguyentantai21042004/digest-flow/internal/config"
	"github.com/nguyentantai21042004/digest-flow/internal/logger"
)

type gcsStore struct {
	client *storage.Client
	bucket string
	logger logger.Logger
}

// NewGCS creates an ObjectStore backed by a Google Cloud Storage bucket.
// Without explicit credentials the client falls back to application
// default credentials.
func NewGCS(ctx context.Context, cfg config.StorageConfig, log logger.Logger) (ObjectStore, func() error, error) {
	var opts []option.ClientOption
	if cfg.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create gcs client: %w", err)
	}

	return &gcsStore{client: client, bucket: cfg.Bucket, logger: log}, client.Close, nil
}

func (s *gcsStore) Put(ctx context.Context, name string, r io.Reader, contentType string) error {
	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType

	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return fmt.Errorf("upload %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", name, err)
	}

	s.logger.Debug(ctx, "Uploaded gs://%s/%s (%d bytes)", s.bucket, name, n)
	return nil
}

func (s *gcsStore) Size(ctx context.Context, name string) (int64, error) {
	attrs, err := s.client.Bucket(s.bucket).Object(name).Attrs(ctx)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", name, err)
	}
	return attrs.Size, nil
}

func (s *gcsStore) SignedURL(_ context.Context, name string, ttl time.Duration) (string, error) {
	url, err := s.client.Bucket(s.bucket).SignedURL(name, &storage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(ttl),
		Scheme:  storage.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", name, err)
	}
	return url, nil
}
