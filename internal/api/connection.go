package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"s3gateway/internal/models"
)

// CheckConnection reports whether the credentials in the body can reach
// their bucket.
func (h *FileHandler) CheckConnection(c *gin.Context) {
	var creds models.BucketCredentials
	if err := c.ShouldBindJSON(&creds); err != nil ||
		strings.TrimSpace(creds.AccessID) == "" ||
		strings.TrimSpace(creds.SecretKey) == "" ||
		strings.TrimSpace(creds.BucketName) == "" {
		c.JSON(http.StatusBadRequest, models.ConnectionResponse{
			Success: false,
			Message: "accessId, secretKey and bucketName are required",
		})
		return
	}

	info, err := h.checker(c.Request.Context(), creds)
	if err != nil {
		h.logger.Error("bucket connection check failed", "bucket", creds.BucketName, "region", creds.Region, "error", err)
		c.JSON(http.StatusInternalServerError, models.ConnectionResponse{
			Success: false,
			Message: "Failed to connect to S3 bucket",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.ConnectionResponse{
		Success: true,
		Message: "Successfully connected to S3 bucket",
		Data:    info,
	})
}
