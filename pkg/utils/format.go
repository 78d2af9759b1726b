package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"s3gateway/internal/apperr"
	"s3gateway/internal/models"
)

func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// WriteJSON writes data to w as indented JSON followed by a newline.
func WriteJSON(w io.Writer, data any) error {
	jsonOutput, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if _, err := fmt.Fprintln(w, string(jsonOutput)); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

func PrintJSON(data any) error {
	return WriteJSON(os.Stdout, data)
}

// NewErrorResponse describes err for command output. Kind is empty for
// errors that carry no classification.
func NewErrorResponse(err error, command string) models.ErrorResponse {
	resp := models.ErrorResponse{
		Error:     err.Error(),
		Timestamp: FormatTime(time.Now()),
		Command:   command,
	}
	if kind := apperr.KindOf(err); kind != apperr.KindUnknown {
		resp.Kind = kind.String()
	}
	return resp
}

func PrintError(err error, command string) {
	errorResp := NewErrorResponse(err, command)
	if err := PrintJSON(errorResp); err != nil {
		slog.Error("Failed to print error in JSON format", "error", err, "command", command)
		fmt.Println("Error: ", errorResp.Error)
	}
}

func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}
