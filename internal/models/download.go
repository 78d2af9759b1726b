package models

import (
	"strings"
	"time"
)

// ObjectEntry is one key returned by a remote listing.
type ObjectEntry struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// IsPlaceholder reports whether the key is an empty "directory" marker.
func (e ObjectEntry) IsPlaceholder() bool {
	return strings.HasSuffix(e.Key, "/")
}

type FetchResult struct {
	Key       string `json:"key"`
	LocalPath string `json:"local_path,omitempty"`
	Size      int64  `json:"size"`
	Err       error  `json:"-"`
}

func (r FetchResult) Succeeded() bool {
	return r.Err == nil
}

type PresignedItem struct {
	Filename    string `json:"filename"`
	SignedURL   string `json:"signedUrl"`
	ContentType string `json:"contentType"`
}

type DownloadItem struct {
	RemotePath string `json:"remote_path"`
	LocalPath  string `json:"local_path,omitempty"`
	Size       int64  `json:"size"`
	Error      string `json:"error,omitempty"`
}

type DownloadResult struct {
	BucketName       string         `json:"bucket_name"`
	SourcePath       string         `json:"source_path"`
	ArchivePath      string         `json:"archive_path"`
	Items            []DownloadItem `json:"items"`
	TotalFiles       int            `json:"total_files"`
	FailedFiles      int            `json:"failed_files"`
	TotalSizeBytes   int64          `json:"total_size_bytes"`
	TotalSizeHuman   string         `json:"total_size_human"`
	OperationTime    string         `json:"operation_time"`
	DownloadDuration string         `json:"download_duration"`
}
