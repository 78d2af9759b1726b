package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"s3gateway/internal/apperr"
	"s3gateway/internal/archive"
	"s3gateway/internal/models"
	"s3gateway/internal/storage"
	"s3gateway/pkg/utils"
)

const headerMissingFiles = "X-Missing-Files"

// ConnectionChecker verifies that creds can reach their bucket.
type ConnectionChecker func(ctx context.Context, creds models.BucketCredentials) (*models.BucketInfo, error)

// Options holds the request limits applied by FileHandler.
type Options struct {
	MaxUploadBytes   int64
	FetchConcurrency int
	PresignExpiry    time.Duration
}

// FileHandler serves the /api/files endpoints.
type FileHandler struct {
	store    storage.ObjectStore
	pipeline *archive.Pipeline
	checker  ConnectionChecker
	opts     Options
	logger   *slog.Logger
}

// NewFileHandler fills unset limits in opts with their defaults.
func NewFileHandler(store storage.ObjectStore, pipeline *archive.Pipeline, checker ConnectionChecker, opts Options, logger *slog.Logger) *FileHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PresignExpiry <= 0 {
		opts.PresignExpiry = 60 * time.Second
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &FileHandler{
		store:    store,
		pipeline: pipeline,
		checker:  checker,
		opts:     opts,
		logger:   logger,
	}
}

// GenerateDownloadURLs lists the files under ?folder= and returns a short
// lived signed URL for each.
func (h *FileHandler) GenerateDownloadURLs(c *gin.Context) {
	folder, err := folderParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ctx := c.Request.Context()

	_, listed, err := h.pipeline.ListFolder(ctx, folder)
	if err != nil {
		h.respondError(c, err)
		return
	}
	files := archive.FilterPlaceholders(listed)
	if len(files) == 0 {
		h.respondError(c, apperr.NotFound("no files found in folder "+folder))
		return
	}

	items := make([]models.PresignedItem, 0, len(files))
	for _, entry := range files {
		signed, err := h.store.PresignGetObject(ctx, entry.Key, h.opts.PresignExpiry)
		if err != nil {
			h.respondError(c, apperr.Upstream("failed to generate download url", err))
			return
		}
		items = append(items, models.PresignedItem{
			Filename:    path.Base(entry.Key),
			SignedURL:   signed,
			ContentType: utils.ContentType(entry.Key),
		})
	}

	c.JSON(http.StatusOK, items)
}

// folderParam reads ?folder=. A value that names no folder, such as "/",
// would list the whole bucket and is rejected.
func folderParam(c *gin.Context) (string, error) {
	folder := strings.TrimSpace(c.Query("folder"))
	if folder == "" {
		return "", apperr.InvalidRequest("folder query parameter is required")
	}
	if utils.NormalizePrefix(folder) == "" {
		return "", apperr.InvalidRequest("folder must name a folder, not the bucket root")
	}
	return folder, nil
}

// respondError writes the single terminal response for err.
func (h *FileHandler) respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()

	attrs := []any{"path", c.Request.URL.Path, "kind", kind.String(), "error", err}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", attrs...)
	} else {
		h.logger.Warn("request rejected", attrs...)
	}

	if c.Writer.Written() {
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(status, errorBody(err))
}

func errorBody(err error) gin.H {
	return gin.H{"success": false, "message": apperr.Message(err)}
}

func isAborted(err error) bool {
	return errors.Is(err, archive.ErrAborted)
}
