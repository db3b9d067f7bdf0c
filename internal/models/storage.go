package models

import (
	"context"
	"io"
	"time"
)

type ObjectStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
