package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"s3gateway/config"
	"s3gateway/internal/s3client"
	"s3gateway/pkg/utils"
)

var bucketInfoCmd = &cobra.Command{
	Use:   "bucket-info",
	Short: "Get bucket information",
	Long: `Get the region, a sample object count and size for the S3 bucket.
This runs the same checks as the checkConnectionOfS3BucketByCredentials endpoint.
The bucket name is taken from the configuration file unless overridden with --bucket flag.`,
	Example: `  # Get info for configured bucket
  s3gateway bucket-info

  # Get info for specific bucket
  s3gateway bucket-info --bucket my-other-bucket`,
	Run: func(cmd *cobra.Command, args []string) {
		runBucketInfo(cmd)
	},
}

func runBucketInfo(cmd *cobra.Command) {
	c := effectiveConfig(cmd)
	if c.StorageDriver != config.DriverS3 {
		utils.PrintError(errors.New("bucket-info requires STORAGE_DRIVER=s3"), "bucket-info")
		return
	}

	client, err := s3client.New(c)
	if err != nil {
		utils.PrintError(err, "bucket-info")
		return
	}

	timeout, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	if isVerbose(cmd) {
		cmd.Printf("Getting bucket information for: %s\n", client.BucketName())
	}

	info, err := client.GetBucketInfo(ctx)
	if err != nil {
		utils.PrintError(errors.New(s3client.DescribeError(err)), "bucket-info")
		return
	}

	if err := utils.PrintJSON(info); err != nil {
		utils.PrintError(err, "bucket-info")
		return
	}

	if isVerbose(cmd) {
		cmd.Printf("Bucket info retrieved successfully\n")
	}
}

func init() {
	bucketInfoCmd.Flags().Int("timeout", 300, "Timeout in seconds for the operation")
}
