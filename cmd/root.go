package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"s3gateway/config"
)

var (
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "s3gateway",
	Short: "HTTP gateway for S3 file operations",
	Long: `s3gateway serves uploads, folder downloads as zip archives and
presigned download links for an S3 bucket over HTTP.
The same operations are available as commands for scripting.
Configuration is loaded from .env file or environment variables`,
}

func Execute(config *config.Config) error {
	cfg = config
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(bucketInfoCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(archiveCmd)

	rootCmd.PersistentFlags().StringP("bucket", "b", "", "Override bucket name from config")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
}

func getBucketName(cmd *cobra.Command) string {
	bucket, _ := cmd.Flags().GetString("bucket")
	if bucket != "" {
		return bucket
	}
	return cfg.BucketName
}

func isVerbose(cmd *cobra.Command) bool {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return verbose
}

// effectiveConfig applies command line overrides to the loaded configuration.
func effectiveConfig(cmd *cobra.Command) *config.Config {
	c := *cfg
	c.BucketName = getBucketName(cmd)
	if isVerbose(cmd) {
		c.LogLevel = "debug"
	}
	return &c
}

func newLogger(c *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
