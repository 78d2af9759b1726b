package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"s3gateway/config"
	"s3gateway/internal/models"
	"s3gateway/internal/storage"
	"s3gateway/pkg/utils"
)

// newBlobConfig points the commands at a file-backed bucket rooted in a temp dir.
func newBlobConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	bucketDir := t.TempDir()
	c := &config.Config{
		BucketName:     "local",
		StorageDriver:  config.DriverBlob,
		BlobURL:        "file://" + filepath.ToSlash(bucketDir) + "?no_tmp_dir=true",
		Port:           "0",
		GinMode:        "test",
		LogLevel:       "error",
		AllowedOrigins: []string{"*"},
		StagingDir:     t.TempDir(),
		JWTSecret:      "cmd-test-secret",
		MaxUploadBytes: 1 << 20,
	}
	return c, bucketDir
}

func writeObject(t *testing.T, bucketDir, key, content string) {
	t.Helper()
	path := filepath.Join(bucketDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create object dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write object: %v", err)
	}
}

// runCommand executes the root command with args and returns what it printed to stdout.
func runCommand(t *testing.T, args ...string) string {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	execErr := rootCmd.Execute()

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	buf.ReadFrom(r)

	if execErr != nil {
		t.Fatalf("Command %v failed: %v", args, execErr)
	}
	return buf.String()
}

// resetFlags restores every flag to its default so runs do not leak into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestArchiveCommandBlobDriver(t *testing.T) {
	c, bucketDir := newBlobConfig(t)
	cfg = c

	writeObject(t, bucketDir, "reports/a.txt", "alpha")
	writeObject(t, bucketDir, "reports/2024/b.txt", "bravo")
	writeObject(t, bucketDir, "other/c.txt", "charlie")

	destination := filepath.Join(t.TempDir(), "reports.zip")
	output := runCommand(t, "archive", "reports", "--destination", destination, "--concurrency", "2")

	var result models.DownloadResult
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("Output is not a download result: %v\n%s", err, output)
	}

	if result.SourcePath != "reports/" {
		t.Errorf("SourcePath = %s, want reports/", result.SourcePath)
	}
	if result.TotalFiles != 2 || result.FailedFiles != 0 {
		t.Errorf("TotalFiles = %d, FailedFiles = %d, want 2 and 0", result.TotalFiles, result.FailedFiles)
	}
	if result.TotalSizeBytes != int64(len("alpha")+len("bravo")) {
		t.Errorf("TotalSizeBytes = %d", result.TotalSizeBytes)
	}

	names, err := utils.ListArchive(destination)
	if err != nil {
		t.Fatalf("ListArchive() error = %v", err)
	}
	want := []string{"2024/b.txt", "a.txt"}
	if len(names) != len(want) || names[0] != want[0] || names[1] != want[1] {
		t.Errorf("archive entries = %v, want %v", names, want)
	}

	staged, err := os.ReadDir(c.StagingDir)
	if err != nil {
		t.Fatalf("Failed to read staging dir: %v", err)
	}
	if len(staged) != 0 {
		t.Errorf("staging dir not cleaned up, %d entries left", len(staged))
	}
}

func TestArchiveCommandSequentialFlattens(t *testing.T) {
	c, bucketDir := newBlobConfig(t)
	cfg = c

	writeObject(t, bucketDir, "logs/day1/app.log", "one")
	writeObject(t, bucketDir, "logs/web.log", "two")

	destination := filepath.Join(t.TempDir(), "logs.zip")
	runCommand(t, "archive", "logs", "--destination", destination, "--sequential")

	names, err := utils.ListArchive(destination)
	if err != nil {
		t.Fatalf("ListArchive() error = %v", err)
	}
	if len(names) != 2 || names[0] != "app.log" || names[1] != "web.log" {
		t.Errorf("archive entries = %v, want [app.log web.log]", names)
	}
}

func TestArchiveCommandMissingFolder(t *testing.T) {
	c, _ := newBlobConfig(t)
	cfg = c

	destination := filepath.Join(t.TempDir(), "missing.zip")
	output := runCommand(t, "archive", "nothing-here", "--destination", destination)

	var errResp models.ErrorResponse
	if err := json.Unmarshal([]byte(output), &errResp); err != nil {
		t.Fatalf("Output is not an error response: %v\n%s", err, output)
	}
	if errResp.Command != "archive" || errResp.Kind != "NotFound" {
		t.Errorf("unexpected error response: %+v", errResp)
	}
	if _, err := os.Stat(destination); !os.IsNotExist(err) {
		t.Errorf("destination should not exist, stat err = %v", err)
	}
}

func TestUploadCommandBlobDriver(t *testing.T) {
	c, bucketDir := newBlobConfig(t)
	cfg = c

	localPath := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(localPath, []byte("test content for upload command"), 0o644); err != nil {
		t.Fatalf("Failed to write local file: %v", err)
	}

	output := runCommand(t, "upload", localPath, "--folder", "inbox/", "--confirm")

	var result models.UploadResult
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("Output is not an upload result: %v\n%s", err, output)
	}
	if result.RemotePath != "inbox/notes.txt" {
		t.Errorf("RemotePath = %s, want inbox/notes.txt", result.RemotePath)
	}
	if result.TotalSizeBytes != int64(len("test content for upload command")) {
		t.Errorf("TotalSizeBytes = %d", result.TotalSizeBytes)
	}

	stored, err := os.ReadFile(filepath.Join(bucketDir, "inbox", "notes.txt"))
	if err != nil {
		t.Fatalf("Uploaded object not found: %v", err)
	}
	if string(stored) != "test content for upload command" {
		t.Errorf("stored content = %q", stored)
	}
}

func TestUploadCommandRejectsDirectory(t *testing.T) {
	c, _ := newBlobConfig(t)
	cfg = c

	output := runCommand(t, "upload", t.TempDir(), "--confirm")

	var errResp models.ErrorResponse
	if err := json.Unmarshal([]byte(output), &errResp); err != nil {
		t.Fatalf("Output is not an error response: %v\n%s", err, output)
	}
	if errResp.Command != "upload" {
		t.Errorf("Command = %s, want upload", errResp.Command)
	}
}

func TestBucketInfoRequiresS3Driver(t *testing.T) {
	c, _ := newBlobConfig(t)
	cfg = c

	output := runCommand(t, "bucket-info")

	var errResp models.ErrorResponse
	if err := json.Unmarshal([]byte(output), &errResp); err != nil {
		t.Fatalf("Output is not an error response: %v\n%s", err, output)
	}
	if errResp.Command != "bucket-info" {
		t.Errorf("Command = %s, want bucket-info", errResp.Command)
	}
}

func TestNewRouterServesHealth(t *testing.T) {
	c, _ := newBlobConfig(t)

	store, err := storage.OpenBlobStore(t.Context(), c.BlobURL)
	if err != nil {
		t.Fatalf("OpenBlobStore() error = %v", err)
	}
	defer store.Close()

	handler := newRouter(c, store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /health = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/files/generateJwtTokenDownloadUrl?folder=x", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("GET generateJwtTokenDownloadUrl without token = %d, want 401", rec.Code)
	}
}

func TestEffectiveConfigOverrides(t *testing.T) {
	c, _ := newBlobConfig(t)
	cfg = c

	cmd := bucketInfoCmd
	if err := cmd.ParseFlags([]string{"--bucket", "override", "--verbose"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	t.Cleanup(func() { resetFlags(rootCmd) })

	got := effectiveConfig(cmd)
	if got.BucketName != "override" {
		t.Errorf("BucketName = %s, want override", got.BucketName)
	}
	if got.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", got.LogLevel)
	}
	if cfg.BucketName != "local" {
		t.Errorf("loaded config was mutated: BucketName = %s", cfg.BucketName)
	}
}
