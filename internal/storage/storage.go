package storage

import (
	"context"
	"io"
	"time"
)

// Service stores uploaded images in remote object storage.
type Service interface {
	UploadObject(ctx context.Context, bucket, key string, body io.Reader, contentType string) error
	GetObjectURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
	DeleteObject(ctx context.Context, bucket, key string) error
}
