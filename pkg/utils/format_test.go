package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"s3gateway/internal/apperr"
	"s3gateway/internal/models"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{10 << 20, "10.0 MB"},
		{1500000000, "1.4 GB"},
		{1500000000000, "1.4 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatBytes(tt.bytes))
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, models.PresignedItem{Filename: "a.txt", SignedURL: "https://x", ContentType: "text/plain"}))

	assert.True(t, strings.HasSuffix(buf.String(), "}\n"))

	var item map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &item))
	assert.Equal(t, "a.txt", item["filename"])
	assert.Equal(t, "https://x", item["signedUrl"])

	assert.Error(t, WriteJSON(&buf, make(chan int)))
}

func TestNewErrorResponse(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind string
	}{
		{"plain error", errors.New("boom"), ""},
		{"not found", apperr.NotFound("folder not found"), "NotFound"},
		{"wrapped upstream", fmt.Errorf("archive: %w", apperr.Upstream("listing failed", errors.New("timeout"))), "UpstreamError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewErrorResponse(tt.err, "archive")
			assert.Equal(t, tt.wantKind, resp.Kind)
			assert.Equal(t, tt.err.Error(), resp.Error)
			assert.Equal(t, "archive", resp.Command)

			_, err := time.Parse(time.RFC3339, resp.Timestamp)
			assert.NoError(t, err)
		})
	}
}

func TestPrintError(t *testing.T) {
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	PrintError(apperr.InvalidRequest("folder is required"), "archive")

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	buf.ReadFrom(r)

	var result models.ErrorResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "folder is required", result.Error)
	assert.Equal(t, "InvalidRequest", result.Kind)
	assert.Equal(t, "archive", result.Command)
}

func TestFormatTime(t *testing.T) {
	testTime := time.Date(2023, 5, 15, 10, 30, 0, 0, time.FixedZone("UTC+2", 2*60*60))
	assert.Equal(t, "2023-05-15T10:30:00+02:00", FormatTime(testTime))
}
