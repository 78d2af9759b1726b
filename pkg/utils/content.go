package utils

import (
	"path/filepath"
	"strings"
)

var contentTypes = map[string]string{
	".txt":  "text/plain",
	".csv":  "text/csv",
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".xml":  "application/xml",
	".pdf":  "application/pdf",
	".zip":  "application/zip",
	".tar":  "application/x-tar",
	".gz":   "application/gzip",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".mp3":  "audio/mpeg",
	".mp4":  "video/mp4",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
}

// ContentType guesses a MIME type from the file extension.
func ContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if contentType, exists := contentTypes[ext]; exists {
		return contentType
	}
	return "application/octet-stream"
}

// BuildRemotePath joins a destination folder and a file name into an object key.
func BuildRemotePath(destinationPath, filename string) string {
	destinationPath = strings.Trim(destinationPath, "/")
	if destinationPath == "" {
		return filename
	}
	return destinationPath + "/" + filename
}

// NormalizePrefix turns a folder name into a listing prefix ending in "/".
func NormalizePrefix(folder string) string {
	folder = strings.TrimLeft(strings.TrimSpace(folder), "/")
	if folder != "" && !strings.HasSuffix(folder, "/") {
		folder += "/"
	}
	return folder
}
