package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"s3gateway/internal/apperr"
	"s3gateway/internal/auth"
)

// RequestLogger logs one line per request once the handler chain returns.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		logger.Info("Request processed",
			"method", c.Request.Method,
			"path", path,
			"ip", c.ClientIP(),
			"user-agent", c.Request.UserAgent(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// Recovery recovers from panics and logs the error
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Recovered from panic",
					"error", err,
					"path", c.Request.URL.Path,
				)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// BearerAuth rejects requests without a valid bearer token before any
// handler work runs.
func BearerAuth(verifier *auth.Verifier, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := verifier.VerifyHeader(c.GetHeader("Authorization"))
		if err != nil {
			logger.Warn("rejected bearer token", "path", c.Request.URL.Path, "error", err)
			c.AbortWithStatusJSON(apperr.KindAuth.HTTPStatus(), errorBody(err))
			return
		}
		c.Set("claims", claims)
		c.Next()
	}
}
