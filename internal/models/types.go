package models

import "time"

type BucketInfo struct {
	BucketName     string    `json:"bucket_name"`
	Region         string    `json:"region"`
	ObjectCount    int64     `json:"object_count"`
	TotalSizeBytes int64     `json:"total_size_bytes"`
	TotalSizeHuman string    `json:"total_size_human"`
	Truncated      bool      `json:"truncated"`
	LastModified   time.Time `json:"last_modified"`
	APIEndpoint    string    `json:"api_endpoint,omitempty"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	Timestamp string `json:"timestamp"`
	Command   string `json:"command"`
}

// BucketCredentials is the body accepted by the connection check endpoint.
type BucketCredentials struct {
	AccessID   string `json:"accessId"`
	SecretKey  string `json:"secretKey"`
	Region     string `json:"region"`
	BucketName string `json:"bucketName"`
}

type ConnectionResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    *BucketInfo `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}
