package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	LogLevel string

	// Forensic store
	DatabasePath string

	// Evidence archive (optional; disabled when endpoint is empty)
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BucketName      string
	S3UseSSL          bool

	// Gemini structured extraction
	GeminiAPIKey string
	GeminiModel  string

	// Upload limits
	MaxFileSize int64
}

// AllowedExtensions are the upload formats the analyzer accepts.
var AllowedExtensions = []string{"pdf", "jpg", "jpeg", "png"}

func Load() (*Config, error) {
	// A local .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DatabasePath:      getEnv("FORENSIC_DB_PATH", "./data/forensic_records.db"),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", "minioadmin"),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", "minioadmin"),
		S3BucketName:      getEnv("S3_BUCKET_NAME", "tax-documents"),
		S3UseSSL:          getEnv("S3_USE_SSL", "false") == "true",
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		MaxFileSize:       getEnvInt64("MAX_FILE_SIZE_MB", 50) * 1024 * 1024,
	}

	return cfg, nil
}

// ComparisonEnabled reports whether the AI extraction collaborator is
// configured. Forensic analysis works without it; cross-document comparison
// does not.
func (c *Config) ComparisonEnabled() bool {
	return c.GeminiAPIKey != ""
}

// ArchiveEnabled reports whether analyzed originals are retained in object
// storage.
func (c *Config) ArchiveEnabled() bool {
	return c.S3Endpoint != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}
