package storage

import (
	"context"
	"io"
)

// Storage persists raw document bytes outside the request path. Ingestion
// workers download from here, so uploads must be durable before the
// coordinator acknowledges a submission.
type Storage interface {
	Upload(ctx context.Context, bucket, path string, data io.Reader, contentType string) error
	Download(ctx context.Context, bucket, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, bucket, path string) error
}
