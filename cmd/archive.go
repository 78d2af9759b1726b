package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"s3gateway/internal/archive"
	"s3gateway/internal/models"
	"s3gateway/internal/storage"
	"s3gateway/pkg/utils"
)

var archiveCmd = &cobra.Command{
	Use:   "archive [folder]",
	Short: "Download a remote folder as a zip archive",
	Long: `Download every object under a remote folder and pack it into a local zip archive.

Objects are fetched in parallel into a staging directory under STAGING_DIR,
which is removed once the archive has been written to --destination.
Objects that fail to download are reported in the output and left out of the archive.`,
	Example: `  # Archive a folder into the current directory
  s3gateway archive reports/2024

  # Choose the output file
  s3gateway archive reports/2024 --destination ./reports.zip

  # Fetch one object at a time and flatten nested paths
  s3gateway archive reports/2024 --sequential`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runArchive(cmd, args)
	},
}

func runArchive(cmd *cobra.Command, args []string) {
	folder := args[0]
	destination, _ := cmd.Flags().GetString("destination")
	sequential, _ := cmd.Flags().GetBool("sequential")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	timeout, _ := cmd.Flags().GetInt("timeout")

	if destination == "" {
		destination = utils.GenerateArchiveName([]string{folder}, ".zip")
	}

	c := effectiveConfig(cmd)
	logger := newLogger(c)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	store, closeStore, err := storage.Open(ctx, c)
	if err != nil {
		utils.PrintError(err, "archive")
		return
	}
	defer closeStore()

	stager := archive.NewStager(c.StagingDir, logger)
	pipeline := archive.NewPipeline(store, stager, logger)

	session, err := stager.Begin(folder)
	if err != nil {
		utils.PrintError(err, "archive")
		return
	}
	defer stager.End(session)

	opts := archive.Options{Concurrency: concurrency}
	if sequential {
		opts = archive.Options{Concurrency: 1, Flatten: true}
	}

	if isVerbose(cmd) {
		cmd.Printf("Archiving folder %q from bucket %s into %s\n", folder, c.BucketName, destination)
	}

	start := time.Now()
	result, err := pipeline.Prepare(ctx, session, opts)
	if err != nil {
		utils.PrintError(err, "archive")
		return
	}

	if err := copyFile(result.Archive.ArchivePath, destination); err != nil {
		utils.PrintError(err, "archive")
		return
	}

	if err := utils.PrintJSON(buildDownloadResult(c.BucketName, result, destination, start)); err != nil {
		utils.PrintError(err, "archive")
		return
	}

	if isVerbose(cmd) {
		cmd.Printf("Archive written: %d of %d objects\n", len(result.Fetched), len(result.Entries))
	}
}

func buildDownloadResult(bucket string, result *archive.Result, destination string, start time.Time) *models.DownloadResult {
	out := &models.DownloadResult{
		BucketName:       bucket,
		SourcePath:       result.Prefix,
		ArchivePath:      destination,
		Items:            make([]models.DownloadItem, 0, len(result.Fetched)+len(result.Failed)),
		TotalFiles:       len(result.Fetched),
		FailedFiles:      len(result.Failed),
		OperationTime:    utils.FormatTime(time.Now()),
		DownloadDuration: time.Since(start).Round(time.Millisecond).String(),
	}
	for _, f := range result.Fetched {
		out.Items = append(out.Items, models.DownloadItem{RemotePath: f.Key, LocalPath: f.LocalPath, Size: f.Size})
		out.TotalSizeBytes += f.Size
	}
	for _, f := range result.Failed {
		out.Items = append(out.Items, models.DownloadItem{RemotePath: f.Key, Error: f.Err.Error()})
	}
	out.TotalSizeHuman = utils.FormatBytes(out.TotalSizeBytes)
	return out
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close %s: %w", dst, cerr)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}

func init() {
	archiveCmd.Flags().StringP("destination", "d", "", "Local path of the zip archive (default: <folder>_<timestamp>.zip)")
	archiveCmd.Flags().Int("concurrency", 0, "Maximum parallel downloads, 0 for unbounded")
	archiveCmd.Flags().Bool("sequential", false, "Fetch one object at a time and store entries by base name")
	archiveCmd.Flags().Int("timeout", 3600, "Timeout in seconds for the operation (default: 1 hour)")
}
