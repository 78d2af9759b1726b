package s3client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	appConfig "s3gateway/config"
	"s3gateway/internal/models"
	"s3gateway/pkg/utils"
)

const defaultRegion = "us-east-1"

type Client struct {
	s3Client   *s3.Client
	presigner  *s3.PresignClient
	bucketName string
	region     string
	apiURL     string
}

func New(cfg *appConfig.Config) (*Client, error) {
	return newClient(context.TODO(), cfg.AccessKey, cfg.SecretKey, cfg.Region, cfg.BucketName, cfg.ApiURL)
}

// NewWithCredentials builds a client from caller supplied credentials instead
// of the process configuration. apiURL may be empty.
func NewWithCredentials(ctx context.Context, creds models.BucketCredentials, apiURL string) (*Client, error) {
	return newClient(ctx, creds.AccessID, creds.SecretKey, creds.Region, creds.BucketName, apiURL)
}

func newClient(ctx context.Context, accessKey, secretKey, region, bucketName, apiURL string) (*Client, error) {
	if region == "" {
		region = defaultRegion
	}

	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     accessKey,
				SecretAccessKey: secretKey,
			},
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Client *s3.Client
	if apiURL != "" {
		s3Client = s3.NewFromConfig(awsConfig, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(apiURL)
			o.UsePathStyle = true
		})
	} else {
		s3Client = s3.NewFromConfig(awsConfig)
	}

	return &Client{
		s3Client:   s3Client,
		presigner:  s3.NewPresignClient(s3Client),
		bucketName: bucketName,
		region:     region,
		apiURL:     apiURL,
	}, nil
}

func (c *Client) BucketName() string {
	return c.bucketName
}

// GetBucketInfo verifies that the bucket is reachable with the client's
// credentials and summarises the first page of its listing.
func (c *Client) GetBucketInfo(ctx context.Context) (*models.BucketInfo, error) {
	bucketName := c.bucketName

	if _, err := c.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucketName),
	}); err != nil {
		return nil, fmt.Errorf("failed to access bucket %s: %w", bucketName, err)
	}

	region := c.region
	locationResp, err := c.s3Client.GetBucketLocation(ctx, &s3.GetBucketLocationInput{
		Bucket: aws.String(bucketName),
	})
	if err == nil && locationResp.LocationConstraint != "" {
		region = string(locationResp.LocationConstraint)
	}

	page, err := c.s3Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}

	var totalSize int64
	var lastModified time.Time
	for _, obj := range page.Contents {
		totalSize += aws.ToInt64(obj.Size)
		if obj.LastModified != nil && obj.LastModified.After(lastModified) {
			lastModified = *obj.LastModified
		}
	}

	return &models.BucketInfo{
		BucketName:     bucketName,
		Region:         region,
		ObjectCount:    int64(len(page.Contents)),
		TotalSizeBytes: totalSize,
		TotalSizeHuman: utils.FormatBytes(totalSize),
		Truncated:      aws.ToBool(page.IsTruncated),
		LastModified:   lastModified,
		APIEndpoint:    c.apiURL,
	}, nil
}

// CheckConnection builds a throwaway client from creds and checks the bucket.
func CheckConnection(ctx context.Context, creds models.BucketCredentials, apiURL string) (*models.BucketInfo, error) {
	client, err := NewWithCredentials(ctx, creds, apiURL)
	if err != nil {
		return nil, err
	}
	info, err := client.GetBucketInfo(ctx)
	if err != nil {
		return nil, errors.New(DescribeError(err))
	}
	return info, nil
}

// DescribeError flattens an SDK error into "Code: message" when the service
// returned a structured error.
func DescribeError(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if msg := apiErr.ErrorMessage(); msg != "" {
			return apiErr.ErrorCode() + ": " + msg
		}
		return apiErr.ErrorCode()
	}
	return err.Error()
}

func (c *Client) ListObjects(ctx context.Context, prefix string) ([]models.ObjectEntry, error) {
	var entries []models.ObjectEntry

	paginator := s3.NewListObjectsV2Paginator(c.s3Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucketName),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}

		for _, obj := range page.Contents {
			entry := models.ObjectEntry{
				Key:  aws.ToString(obj.Key),
				Size: aws.ToInt64(obj.Size),
			}
			if obj.LastModified != nil {
				entry.LastModified = *obj.LastModified
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

func (c *Client) DownloadObject(ctx context.Context, key, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", destPath, err)
	}

	file, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", destPath, err)
	}

	downloader := manager.NewDownloader(c.s3Client)
	_, err = downloader.Download(ctx, file, &s3.GetObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	})
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = utils.CleanupTempFile(destPath)
		return fmt.Errorf("failed to download %s: %w", key, err)
	}

	return nil
}

func (c *Client) UploadObject(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	uploader := manager.NewUploader(c.s3Client)

	out, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	if out.Location != "" {
		return out.Location, nil
	}
	return c.ObjectURL(key), nil
}

func (c *Client) PresignGetObject(ctx context.Context, key string, expires time.Duration) (string, error) {
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return req.URL, nil
}

// ObjectURL is the virtual-hosted (or path-style, for custom endpoints) URL of key.
func (c *Client) ObjectURL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	if c.apiURL != "" {
		return strings.TrimSuffix(c.apiURL, "/") + "/" + c.bucketName + "/" + strings.TrimPrefix(escaped, "/")
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucketName, c.region, strings.TrimPrefix(escaped, "/"))
}
