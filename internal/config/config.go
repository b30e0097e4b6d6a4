// Package config loads configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all DriveSweep configuration.
type Config struct {
	// Provider selects the storage backend ("googledrive" or "s3").
	Provider string

	// Logging
	LogLevel  string
	LogFormat string

	// Metrics (optional — empty disables the listener)
	MetricsAddr string

	// Engine
	Concurrency    int     // concurrent remote calls per batch/walk
	CallsPerSecond float64 // 0 = unpaced
	PageSize       int64   // listing page size hint
	PromoKeywords  []string // empty = built-in defaults

	// Google Drive
	DriveCredentialsFile string
	DriveTokenFile       string

	// S3
	S3Endpoint   string
	S3Bucket     string
	S3AccessKey  string
	S3SecretKey  string
	S3Region     string
	S3UseSSL     bool
	S3OwnerEmail string
	S3OwnerName  string
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Provider:       envOr("DRIVESWEEP_PROVIDER", "googledrive"),
		LogLevel:       envOr("LOG_LEVEL", "info"),
		LogFormat:      envOr("LOG_FORMAT", "console"),
		MetricsAddr:    envOr("METRICS_ADDR", ""),
		Concurrency:    envInt("DRIVESWEEP_CONCURRENCY", 4),
		CallsPerSecond: envFloat("DRIVESWEEP_CALLS_PER_SECOND", 0),
		PageSize:       envInt64("DRIVESWEEP_PAGE_SIZE", 200),
		PromoKeywords:  envList("DRIVESWEEP_PROMO_KEYWORDS"),

		DriveCredentialsFile: envOr("DRIVE_CREDENTIALS_FILE", ""),
		DriveTokenFile:       envOr("DRIVE_TOKEN_FILE", ""),

		S3Endpoint:   envOr("S3_ENDPOINT", ""),
		S3Bucket:     envOr("S3_BUCKET", ""),
		S3AccessKey:  envOr("S3_ACCESS_KEY", ""),
		S3SecretKey:  envOr("S3_SECRET_KEY", ""),
		S3Region:     envOr("S3_REGION", "us-east-1"),
		S3UseSSL:     envBool("S3_USE_SSL", true),
		S3OwnerEmail: envOr("S3_OWNER_EMAIL", ""),
		S3OwnerName:  envOr("S3_OWNER_NAME", ""),
	}

	if cfg.Concurrency < 1 {
		return nil, fmt.Errorf("DRIVESWEEP_CONCURRENCY must be >= 1")
	}
	if cfg.PageSize < 1 {
		return nil, fmt.Errorf("DRIVESWEEP_PAGE_SIZE must be >= 1")
	}
	if cfg.Provider == "s3" && cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required for the s3 provider")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
