package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"s3gateway/config"
	"s3gateway/internal/api"
	"s3gateway/internal/archive"
	"s3gateway/internal/auth"
	"s3gateway/internal/models"
	"s3gateway/internal/s3client"
	"s3gateway/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server exposing the /api/files endpoints.

The object store is selected with STORAGE_DRIVER (s3 or blob). Folder archives
are staged under STAGING_DIR and removed when each request ends.`,
	Example: `  # Serve on the configured port
  s3gateway serve

  # Serve on another port with debug logs
  s3gateway serve --port 9090 --verbose`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	c := effectiveConfig(cmd)
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		c.Port = port
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(c)
	slog.SetDefault(logger)
	gin.SetMode(c.GinMode)

	store, closeStore, err := storage.Open(context.Background(), c)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := &http.Server{
		Addr:              ":" + c.Port,
		Handler:           newRouter(c, store, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", c.Port, "driver", c.StorageDriver, "staging_dir", c.StagingDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-quit:
	}
	logger.Info("Shutting down server...")

	shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("Server exiting")
	return nil
}

func newRouter(c *config.Config, store storage.ObjectStore, logger *slog.Logger) http.Handler {
	pipeline := archive.NewPipeline(store, archive.NewStager(c.StagingDir, logger), logger)

	checker := func(ctx context.Context, creds models.BucketCredentials) (*models.BucketInfo, error) {
		return s3client.CheckConnection(ctx, creds, c.ApiURL)
	}

	files := api.NewFileHandler(store, pipeline, checker, api.Options{
		MaxUploadBytes:   c.MaxUploadBytes,
		FetchConcurrency: c.FetchConcurrency,
		PresignExpiry:    c.PresignExpiry,
	}, logger)

	return api.NewRouter(files, auth.NewVerifier(c.JWTSecret), c.AllowedOrigins, logger)
}

func init() {
	serveCmd.Flags().String("port", "", "Port to listen on (default: PORT from config)")
	serveCmd.Flags().Duration("shutdown-timeout", 5*time.Second, "Time allowed for in-flight requests on shutdown")
}
