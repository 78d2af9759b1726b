package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverS3   = "s3"
	DriverBlob = "blob"

	defaultMaxUploadBytes = 10 << 20
)

type Config struct {
	ApiURL     string
	AccessKey  string
	SecretKey  string
	BucketName string
	Region     string

	StorageDriver string
	BlobURL       string

	Port           string
	GinMode        string
	LogLevel       string
	AllowedOrigins []string

	StagingDir       string
	JWTSecret        string
	MaxUploadBytes   int64
	FetchConcurrency int
	PresignExpiry    time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using environment variables only")
	}

	config := &Config{
		ApiURL:     getEnv("API_URL", ""),
		AccessKey:  getEnv("ACCESS_KEY", ""),
		SecretKey:  getEnv("SECRET_KEY", ""),
		BucketName: getEnv("BUCKET_NAME", ""),
		Region:     getEnv("REGION", ""),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", DriverS3)),
		BlobURL:       getEnv("BLOB_URL", ""),

		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "release"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),

		StagingDir:       getEnv("STAGING_DIR", filepath.Join(os.TempDir(), "s3gateway")),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		MaxUploadBytes:   int64(getEnvInt("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)),
		FetchConcurrency: getEnvInt("FETCH_CONCURRENCY", 0),
		PresignExpiry:    getEnvDuration("PRESIGN_EXPIRY", 60*time.Second),
	}

	return config, nil
}

// Validate reports settings the selected storage driver cannot run without.
func (c *Config) Validate() error {
	var errs []error
	switch c.StorageDriver {
	case DriverS3:
		if c.BucketName == "" {
			errs = append(errs, errors.New("BUCKET_NAME is required"))
		}
		if c.AccessKey == "" || c.SecretKey == "" {
			errs = append(errs, errors.New("ACCESS_KEY and SECRET_KEY are required"))
		}
	case DriverBlob:
		if c.BlobURL == "" {
			errs = append(errs, errors.New("BLOB_URL is required for the blob driver"))
		}
	default:
		errs = append(errs, errors.New("unknown STORAGE_DRIVER "+strconv.Quote(c.StorageDriver)))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d <= 0 {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return d
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
