package archive

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"s3gateway/internal/models"
	"s3gateway/internal/storage"
)

// Fetcher downloads listed objects into a session's staging directory.
type Fetcher struct {
	Store storage.ObjectStore

	// Concurrency caps simultaneous downloads. Zero or less means one
	// goroutine per object.
	Concurrency int

	// Flatten stores every object under its base name instead of its path
	// relative to the folder prefix.
	Flatten bool

	Logger *slog.Logger
}

// FetchAll downloads entries and returns once every attempt has settled.
// Individual failures are logged and reported in the results; they never
// stop sibling downloads.
func (f *Fetcher) FetchAll(ctx context.Context, session *Session, prefix string, entries []models.ObjectEntry) []models.FetchResult {
	logger := f.logger()
	results := make([]models.FetchResult, len(entries))

	var g errgroup.Group
	if f.Concurrency > 0 {
		g.SetLimit(f.Concurrency)
	}

	for i, entry := range entries {
		g.Go(func() error {
			res := f.fetchOne(ctx, session, prefix, entry)
			if res.Err != nil {
				logger.Warn("failed to fetch object", "session", session.ID, "key", entry.Key, "error", res.Err)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (f *Fetcher) fetchOne(ctx context.Context, session *Session, prefix string, entry models.ObjectEntry) models.FetchResult {
	res := models.FetchResult{Key: entry.Key, Size: entry.Size}

	rel := RelativePath(prefix, entry.Key)
	if f.Flatten {
		rel = path.Base(rel)
	}
	if rel == "" || rel == "." || !filepath.IsLocal(filepath.FromSlash(rel)) {
		res.Err = fmt.Errorf("key %q does not map to a path inside the staging directory", entry.Key)
		return res
	}

	res.LocalPath = filepath.Join(session.StagingDir, filepath.FromSlash(rel))
	if err := f.Store.DownloadObject(ctx, entry.Key, res.LocalPath); err != nil {
		res.Err = err
	}
	return res
}

func (f *Fetcher) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

// RelativePath strips prefix and any leading separators from key.
func RelativePath(prefix, key string) string {
	return strings.TrimLeft(strings.TrimPrefix(key, prefix), "/")
}
