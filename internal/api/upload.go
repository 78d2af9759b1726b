package api

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"s3gateway/internal/apperr"
	"s3gateway/internal/models"
	"s3gateway/pkg/utils"
)

// multipart framing allowance on top of the file size limit
const formOverhead = 1 << 20

// UploadFile stores the multipart "file" field under the optional "folder".
func (h *FileHandler) UploadFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes+formOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(c, apperr.InvalidRequest("file exceeds the upload size limit"))
			return
		}
		h.respondError(c, apperr.InvalidRequest("no file uploaded"))
		return
	}
	if header.Size > h.opts.MaxUploadBytes {
		h.respondError(c, apperr.InvalidRequest("file exceeds the upload size limit"))
		return
	}

	filename := path.Base(strings.ReplaceAll(header.Filename, "\\", "/"))
	if filename == "." || filename == "/" {
		h.respondError(c, apperr.InvalidRequest("file name is required"))
		return
	}
	key := utils.BuildRemotePath(c.PostForm("folder"), filename)

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = utils.ContentType(filename)
	}

	file, err := header.Open()
	if err != nil {
		h.respondError(c, apperr.InvalidRequest("failed to read uploaded file"))
		return
	}
	defer file.Close()

	fileURL, err := h.store.UploadObject(c.Request.Context(), key, file, contentType)
	if err != nil {
		h.respondError(c, apperr.Upstream("failed to upload file", err))
		return
	}

	h.logger.Info("file uploaded", "key", key, "size", utils.FormatBytes(header.Size))
	c.JSON(http.StatusOK, models.UploadResponse{
		Message: "File uploaded successfully",
		FileURL: fileURL,
	})
}
