package models

import "time"

type ArchiveInfo struct {
	ArchivePath      string    `json:"archive_path"`
	SourceDir        string    `json:"source_dir"`
	Entries          []string  `json:"entries"`
	CompressedSize   int64     `json:"compressed_size"`
	OriginalSize     int64     `json:"original_size"`
	CompressionRatio float64   `json:"compression_ratio"`
	CreatedAt        time.Time `json:"created_at"`
}

type UploadResponse struct {
	Message string `json:"message"`
	FileURL string `json:"fileUrl"`
}

type UploadResult struct {
	BucketName     string `json:"bucket_name"`
	LocalPath      string `json:"local_path"`
	RemotePath     string `json:"remote_path"`
	FileURL        string `json:"file_url"`
	TotalSizeBytes int64  `json:"total_size_bytes"`
	TotalSizeHuman string `json:"total_size_human"`
	OperationTime  string `json:"operation_time"`
	UploadDuration string `json:"upload_duration"`
}
