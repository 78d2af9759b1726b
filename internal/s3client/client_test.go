package s3client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/smithy-go"

	"s3gateway/config"
	"s3gateway/internal/models"
)

// Integration tests for S3 client
// These tests require a real S3 connection and are skipped by default
// To run these tests, set the environment variable S3_INTEGRATION_TEST=true

func integrationConfig(t *testing.T) *config.Config {
	t.Helper()
	if os.Getenv("S3_INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test; set S3_INTEGRATION_TEST=true to run")
	}
	return &config.Config{
		BucketName: os.Getenv("TEST_BUCKET_NAME"),
		Region:     os.Getenv("TEST_REGION"),
		ApiURL:     os.Getenv("TEST_API_URL"),
		AccessKey:  os.Getenv("TEST_ACCESS_KEY"),
		SecretKey:  os.Getenv("TEST_SECRET_KEY"),
	}
}

func TestObjectURL(t *testing.T) {
	client, err := New(&config.Config{BucketName: "media", Region: "eu-west-1", AccessKey: "a", SecretKey: "s"})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	got := client.ObjectURL("reports/q1 summary.pdf")
	want := "https://media.s3.eu-west-1.amazonaws.com/reports/q1%20summary.pdf"
	if got != want {
		t.Errorf("ObjectURL() = %s, want %s", got, want)
	}

	custom, err := New(&config.Config{BucketName: "media", ApiURL: "http://localhost:9000/", AccessKey: "a", SecretKey: "s"})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	if got := custom.ObjectURL("a/b.txt"); got != "http://localhost:9000/media/a/b.txt" {
		t.Errorf("ObjectURL() with endpoint = %s", got)
	}
}

func TestPresignGetObject(t *testing.T) {
	client, err := New(&config.Config{BucketName: "media", Region: "us-east-1", AccessKey: "AKIDEXAMPLE", SecretKey: "secret"})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	signed, err := client.PresignGetObject(context.Background(), "folder/a.txt", time.Minute)
	if err != nil {
		t.Fatalf("PresignGetObject() error = %v", err)
	}
	if !strings.Contains(signed, "folder/a.txt") || !strings.Contains(signed, "X-Amz-Expires=60") {
		t.Errorf("PresignGetObject() = %s, missing key or expiry", signed)
	}
}

func TestDescribeError(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "NoSuchBucket", Message: "The specified bucket does not exist"}
	if got := DescribeError(apiErr); got != "NoSuchBucket: The specified bucket does not exist" {
		t.Errorf("DescribeError() = %s", got)
	}
	if got := DescribeError(errors.New("dial tcp: timeout")); got != "dial tcp: timeout" {
		t.Errorf("DescribeError() = %s", got)
	}
}

func TestGetBucketInfo(t *testing.T) {
	cfg := integrationConfig(t)

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	info, err := client.GetBucketInfo(context.Background())
	if err != nil {
		t.Fatalf("GetBucketInfo() error = %v", err)
	}

	if info.BucketName != cfg.BucketName {
		t.Errorf("BucketName = %s, want %s", info.BucketName, cfg.BucketName)
	}
}

func TestCheckConnectionBadCredentials(t *testing.T) {
	cfg := integrationConfig(t)

	_, err := CheckConnection(context.Background(), models.BucketCredentials{
		AccessID:   "invalid",
		SecretKey:  "invalid",
		Region:     cfg.Region,
		BucketName: cfg.BucketName,
	}, cfg.ApiURL)
	if err == nil {
		t.Fatal("CheckConnection() with invalid credentials should fail")
	}
}

func TestUploadListDownloadPresign(t *testing.T) {
	cfg := integrationConfig(t)

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	ctx := context.Background()

	content := []byte("test content for S3 upload")
	folder := "test-" + time.Now().Format("20060102-150405")
	key := folder + "/nested/file.txt"

	if _, err := client.UploadObject(ctx, key, bytes.NewReader(content), "text/plain"); err != nil {
		t.Fatalf("UploadObject() error = %v", err)
	}

	entries, err := client.ListObjects(ctx, folder+"/")
	if err != nil {
		t.Fatalf("ListObjects() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Key != key {
		t.Fatalf("ListObjects() = %+v, want one entry %s", entries, key)
	}

	dest := filepath.Join(t.TempDir(), "nested", "file.txt")
	if err := client.DownloadObject(ctx, key, dest); err != nil {
		t.Fatalf("DownloadObject() error = %v", err)
	}
	got, err := os.ReadFile(dest)
	if err != nil || !bytes.Equal(got, content) {
		t.Errorf("downloaded content = %q, err = %v", got, err)
	}

	signed, err := client.PresignGetObject(ctx, key, time.Minute)
	if err != nil {
		t.Fatalf("PresignGetObject() error = %v", err)
	}
	resp, err := http.Get(signed)
	if err != nil {
		t.Fatalf("GET presigned url: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Equal(body, content) {
		t.Errorf("presigned content = %q, want %q", body, content)
	}
}
