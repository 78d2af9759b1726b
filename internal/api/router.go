package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"s3gateway/internal/auth"
)

func NewRouter(files *FileHandler, verifier *auth.Verifier, allowedOrigins []string, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(
		RequestLogger(logger),
		Recovery(logger),
		cors.New(corsConfig(allowedOrigins)),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	filesGroup := router.Group("/api/files")
	{
		filesGroup.POST("/uploadFilesOnAWSS3", files.UploadFile)
		filesGroup.POST("/checkConnectionOfS3BucketByCredentials", files.CheckConnection)
		filesGroup.GET("/downloadCompleteFolder", files.DownloadCompleteFolder)
		filesGroup.GET("/downloadAllFoldersFile", files.DownloadAllFoldersFile)
		filesGroup.GET("/generateDownloadUrls", files.GenerateDownloadURLs)
		filesGroup.GET("/generateJwtTokenDownloadUrl", BearerAuth(verifier, logger), files.GenerateDownloadURLs)
	}

	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", headerMissingFiles},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	origins, allowAll := normalizeAllowedOrigins(allowedOrigins)
	if allowAll || len(origins) == 0 {
		cfg.AllowOriginFunc = func(origin string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
