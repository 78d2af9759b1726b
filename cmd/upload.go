package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"s3gateway/internal/models"
	"s3gateway/internal/storage"
	"s3gateway/pkg/utils"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a file to the bucket",
	Long: `Upload a single file to the bucket, the same way the uploadFilesOnAWSS3 endpoint does.

The object key is <folder>/<file name>, or just the file name when --folder is empty.
The content type is derived from the file extension.`,
	Example: `  # Upload to the bucket root
  s3gateway upload document.pdf

  # Upload into a folder without the confirmation prompt
  s3gateway upload report.csv --folder "reports/2024" --confirm

  # Upload with different bucket
  s3gateway upload data.json --bucket my-other-bucket`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runUpload(cmd, args)
	},
}

func runUpload(cmd *cobra.Command, args []string) {
	localPath := args[0]
	folder, _ := cmd.Flags().GetString("folder")
	confirm, _ := cmd.Flags().GetBool("confirm")
	timeout, _ := cmd.Flags().GetInt("timeout")

	if err := utils.ValidatePaths(args); err != nil {
		utils.PrintError(err, "upload")
		return
	}

	info, err := os.Stat(localPath)
	if err != nil {
		utils.PrintError(err, "upload")
		return
	}
	if info.IsDir() {
		utils.PrintError(fmt.Errorf("%s is a directory, only single files can be uploaded", localPath), "upload")
		return
	}

	c := effectiveConfig(cmd)
	key := utils.BuildRemotePath(folder, filepath.Base(localPath))

	if !confirm {
		fmt.Printf("Upload operation summary:\n")
		fmt.Printf("  Bucket: %s\n", c.BucketName)
		fmt.Printf("  File: %s (%s)\n", localPath, utils.FormatBytes(info.Size()))
		fmt.Printf("  Key: %s\n", key)

		fmt.Print("Continue with upload? (y/N): ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "yes" && response != "Y" && response != "YES" {
			fmt.Println("Upload cancelled.")
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	store, closeStore, err := storage.Open(ctx, c)
	if err != nil {
		utils.PrintError(err, "upload")
		return
	}
	defer closeStore()

	file, err := os.Open(localPath)
	if err != nil {
		utils.PrintError(err, "upload")
		return
	}
	defer file.Close()

	if isVerbose(cmd) {
		cmd.Printf("Uploading %s to %s\n", localPath, key)
	}

	start := time.Now()
	fileURL, err := store.UploadObject(ctx, key, file, utils.ContentType(localPath))
	if err != nil {
		utils.PrintError(err, "upload")
		return
	}

	result := models.UploadResult{
		BucketName:     c.BucketName,
		LocalPath:      localPath,
		RemotePath:     key,
		FileURL:        fileURL,
		TotalSizeBytes: info.Size(),
		TotalSizeHuman: utils.FormatBytes(info.Size()),
		OperationTime:  utils.FormatTime(time.Now()),
		UploadDuration: time.Since(start).Round(time.Millisecond).String(),
	}
	if err := utils.PrintJSON(result); err != nil {
		utils.PrintError(err, "upload")
		return
	}

	if isVerbose(cmd) {
		cmd.Println("Upload operation completed successfully")
	}
}

func init() {
	uploadCmd.Flags().StringP("folder", "f", "", "Destination folder in the bucket (optional)")
	uploadCmd.Flags().Bool("confirm", false, "Skip confirmation prompt")
	uploadCmd.Flags().Int("timeout", 3600, "Timeout in seconds for the operation (default: 1 hour)")
}
