package api

import (
	"context"
	"io"
	"mime"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"s3gateway/internal/apperr"
	"s3gateway/internal/archive"
	"s3gateway/pkg/utils"
)

// DownloadCompleteFolder zips ?folder= fetching one object at a time and
// storing every file under its base name.
func (h *FileHandler) DownloadCompleteFolder(c *gin.Context) {
	h.serveFolderArchive(c, archive.Options{Concurrency: 1, Flatten: true}, false)
}

// DownloadAllFoldersFile zips ?folder= with concurrent fetches, keeping the
// nested layout, and cleans up as soon as the client disconnects.
func (h *FileHandler) DownloadAllFoldersFile(c *gin.Context) {
	h.serveFolderArchive(c, archive.Options{Concurrency: h.opts.FetchConcurrency}, true)
}

func (h *FileHandler) serveFolderArchive(c *gin.Context, opts archive.Options, watchDisconnect bool) {
	folder, err := folderParam(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	stager := h.pipeline.Stager
	session, err := stager.Begin(folder)
	if err != nil {
		h.respondError(c, apperr.Archive("failed to prepare staging area", err))
		return
	}
	defer stager.End(session)

	if watchDisconnect {
		done := make(chan struct{})
		defer close(done)
		go h.watchDisconnect(c.Request.Context(), done, session)
	}

	// In-flight fetches and the build run to completion even if the client leaves.
	ctx := context.WithoutCancel(c.Request.Context())

	result, err := h.pipeline.Prepare(ctx, session, opts)
	if isAborted(err) {
		h.logger.Info("client disconnected, archive discarded", "session", session.ID, "folder", folder)
		c.Abort()
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.streamArchive(c, session, len(result.Failed))
}

// watchDisconnect cleans up the session when the request context ends before
// done is closed by the handler.
func (h *FileHandler) watchDisconnect(ctx context.Context, done <-chan struct{}, session *archive.Session) {
	select {
	case <-done:
		return
	case <-ctx.Done():
		select {
		case <-done:
			return
		default:
		}
		session.MarkAborted()
		h.logger.Warn("client disconnected before archive was sent", "session", session.ID, "folder", session.Folder)
		h.pipeline.Stager.End(session)
	}
}

func (h *FileHandler) streamArchive(c *gin.Context, session *archive.Session, missing int) {
	file, err := os.Open(session.ArchivePath)
	if err != nil {
		h.respondError(c, apperr.Archive("failed to open archive", err))
		return
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		h.respondError(c, apperr.Archive("failed to read archive", err))
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{
		"filename": utils.ArchiveFileName(session.Folder),
	})
	c.Header("Content-Disposition", disposition)
	c.Header("Content-Type", "application/zip")
	c.Header("Content-Length", strconv.FormatInt(stat.Size(), 10))
	if missing > 0 {
		c.Header(headerMissingFiles, strconv.Itoa(missing))
	}
	c.Status(http.StatusOK)

	written, err := io.Copy(c.Writer, file)
	if err != nil {
		h.logger.Warn("archive stream interrupted",
			"session", session.ID,
			"sent", written,
			"size", stat.Size(),
			"error", err,
		)
		return
	}
	h.logger.Info("archive sent", "session", session.ID, "folder", session.Folder, "size", utils.FormatBytes(written))
}
