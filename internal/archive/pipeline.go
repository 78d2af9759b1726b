package archive

import (
	"context"
	"errors"
	"log/slog"

	"s3gateway/internal/apperr"
	"s3gateway/internal/models"
	"s3gateway/internal/storage"
	"s3gateway/pkg/utils"
)

// ErrAborted is returned by Prepare when the session was aborted between stages.
var ErrAborted = errors.New("archive: session aborted by client")

// Options selects the fetch strategy for one Prepare call.
type Options struct {
	Concurrency int
	Flatten     bool
}

// Result describes one prepared archive and the objects that went into it.
type Result struct {
	Prefix  string
	Entries []models.ObjectEntry
	Fetched []models.FetchResult
	Failed  []models.FetchResult
	Archive *models.ArchiveInfo
}

// Pipeline turns a remote folder into a zip archive inside a staging session.
type Pipeline struct {
	Store  storage.ObjectStore
	Stager *Stager
	Logger *slog.Logger
}

// NewPipeline falls back to slog.Default when logger is nil.
func NewPipeline(store storage.ObjectStore, stager *Stager, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{Store: store, Stager: stager, Logger: logger}
}

// ListFolder lists every key under folder. It fails with an InvalidRequest
// error when folder names the bucket root and with a NotFound error when the
// listing is empty.
func (p *Pipeline) ListFolder(ctx context.Context, folder string) (string, []models.ObjectEntry, error) {
	prefix := utils.NormalizePrefix(folder)
	if prefix == "" {
		return "", nil, apperr.InvalidRequest("folder must name a folder, not the bucket root")
	}

	entries, err := p.Store.ListObjects(ctx, prefix)
	if err != nil {
		return prefix, nil, apperr.Upstream("failed to list folder", err)
	}
	if len(entries) == 0 {
		return prefix, nil, apperr.NotFound("no files found in folder " + folder)
	}
	return prefix, entries, nil
}

// FilterPlaceholders drops directory marker keys.
func FilterPlaceholders(entries []models.ObjectEntry) []models.ObjectEntry {
	files := make([]models.ObjectEntry, 0, len(entries))
	for _, e := range entries {
		if !e.IsPlaceholder() {
			files = append(files, e)
		}
	}
	return files
}

// Prepare lists, fetches and zips session.Folder into session.ArchivePath.
// A partially fetched folder still produces an archive.
func (p *Pipeline) Prepare(ctx context.Context, session *Session, opts Options) (*Result, error) {
	logger := p.Logger.With("session", session.ID, "folder", session.Folder)

	prefix, listed, err := p.ListFolder(ctx, session.Folder)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Prefix:  prefix,
		Entries: FilterPlaceholders(listed),
	}
	logger.Info("folder listed", "objects", len(listed), "files", len(result.Entries))

	if session.Aborted() {
		return nil, ErrAborted
	}

	fetcher := &Fetcher{
		Store:       p.Store,
		Concurrency: opts.Concurrency,
		Flatten:     opts.Flatten,
		Logger:      logger,
	}
	for _, res := range fetcher.FetchAll(ctx, session, prefix, result.Entries) {
		if res.Succeeded() {
			result.Fetched = append(result.Fetched, res)
		} else {
			result.Failed = append(result.Failed, res)
		}
	}
	if len(result.Failed) > 0 {
		logger.Warn("archive will be incomplete", "failed", len(result.Failed), "fetched", len(result.Fetched))
	}

	if session.Aborted() {
		return nil, ErrAborted
	}

	info, err := utils.CreateArchive(session.StagingDir, session.ArchivePath, func(name string, size int64) {
		logger.Debug("archive entry added", "entry", name, "bytes", size)
	})
	if err != nil {
		return nil, apperr.Archive("failed to build archive", err)
	}
	result.Archive = info

	logger.Info("archive ready",
		"entries", len(info.Entries),
		"size", utils.FormatBytes(info.CompressedSize),
	)
	return result, nil
}
