// Package storage defines the object-store contract the HTTP layer and the
// archive pipeline depend on, and picks an implementation from configuration.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"s3gateway/config"
	"s3gateway/internal/models"
	"s3gateway/internal/s3client"
)

// ObjectStore is the subset of bucket operations the service needs.
type ObjectStore interface {
	// ListObjects returns every object whose key starts with prefix.
	ListObjects(ctx context.Context, prefix string) ([]models.ObjectEntry, error)

	// DownloadObject writes the object at key to destPath, creating parent
	// directories as needed.
	DownloadObject(ctx context.Context, key, destPath string) error

	// UploadObject stores body under key and returns a URL for the object.
	UploadObject(ctx context.Context, key string, body io.Reader, contentType string) (string, error)

	// PresignGetObject returns a time-limited URL granting read access to key.
	PresignGetObject(ctx context.Context, key string, expires time.Duration) (string, error)
}

var _ ObjectStore = (*s3client.Client)(nil)

// Open builds the store selected by cfg.StorageDriver. The returned closer
// releases driver resources and is never nil.
func Open(ctx context.Context, cfg *config.Config) (ObjectStore, func() error, error) {
	switch cfg.StorageDriver {
	case config.DriverBlob:
		store, err := OpenBlobStore(ctx, cfg.BlobURL)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.DriverS3, "":
		client, err := s3client.New(cfg)
		if err != nil {
			return nil, nil, err
		}
		return client, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
