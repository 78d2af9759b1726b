package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"

	"s3gateway/internal/models"
	"s3gateway/pkg/utils"
)

// BlobStore serves the ObjectStore contract from any gocloud.dev bucket
// (file:// for single-host deployments, mem:// in tests).
type BlobStore struct {
	bucket  *blob.Bucket
	baseURL string
}

func OpenBlobStore(ctx context.Context, bucketURL string) (*BlobStore, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %s: %w", bucketURL, err)
	}
	return NewBlobStore(bucket, bucketURL), nil
}

// NewBlobStore wraps an already opened bucket. Object URLs returned by
// UploadObject are built from bucketURL without its query string.
func NewBlobStore(bucket *blob.Bucket, bucketURL string) *BlobStore {
	base, _, _ := strings.Cut(bucketURL, "?")
	return &BlobStore{bucket: bucket, baseURL: strings.TrimSuffix(base, "/")}
}

func (b *BlobStore) Bucket() *blob.Bucket {
	return b.bucket
}

func (b *BlobStore) Close() error {
	return b.bucket.Close()
}

func (b *BlobStore) ListObjects(ctx context.Context, prefix string) ([]models.ObjectEntry, error) {
	var entries []models.ObjectEntry

	iter := b.bucket.List(&blob.ListOptions{Prefix: prefix})
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		entries = append(entries, models.ObjectEntry{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.ModTime,
		})
	}

	return entries, nil
}

func (b *BlobStore) DownloadObject(ctx context.Context, key, destPath string) error {
	reader, err := b.bucket.NewReader(ctx, key, nil)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", key, err)
	}
	defer reader.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", destPath, err)
	}

	file, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", destPath, err)
	}

	_, err = io.Copy(file, reader)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = utils.CleanupTempFile(destPath)
		return fmt.Errorf("failed to download %s: %w", key, err)
	}
	return nil
}

func (b *BlobStore) UploadObject(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	writer, err := b.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to open writer for %s: %w", key, err)
	}

	if _, err := io.Copy(writer, body); err != nil {
		writer.Close()
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return b.baseURL + "/" + key, nil
}

func (b *BlobStore) PresignGetObject(ctx context.Context, key string, expires time.Duration) (string, error) {
	signed, err := b.bucket.SignedURL(ctx, key, &blob.SignedURLOptions{
		Expiry: expires,
		Method: http.MethodGet,
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return signed, nil
}
