// Package config provides configuration loading and validation for the
// recruitment service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Blob storage backends
const (
	BlobBackendLocal    = "local"
	BlobBackendSupabase = "supabase"
)

// Defaults applied when neither the environment nor a config file sets a value
const (
	DefaultPort         = 8080
	DefaultBlobLocalDir = "./data/uploads"
	DefaultBucket       = "applications"
	DefaultMaxUploadMB  = 5
)

// Config is the service configuration. Values come from environment
// variables and, optionally, a JSON file; the environment wins.
type Config struct {
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	Port        int    `json:"port,omitempty"`         // HTTP listen port

	// Blob storage
	BlobBackend       string `json:"blob_backend,omitempty"`         // "local" or "supabase"
	BlobLocalDir      string `json:"blob_local_dir,omitempty"`       // Root directory of the local backend
	BlobPublicBaseURL string `json:"blob_public_base_url,omitempty"` // Base URL local files are served under
	SupabaseURL       string `json:"supabase_url,omitempty"`
	SupabaseKey       string `json:"supabase_key,omitempty"`
	SupabaseBucket    string `json:"supabase_bucket,omitempty"`

	// Side channels
	AuditSQLitePath      string `json:"audit_sqlite_path,omitempty"`      // Optional append-only audit log
	RedisURL             string `json:"redis_url,omitempty"`              // Enables shared rate limiting
	PaymentWebhookSecret string `json:"payment_webhook_secret,omitempty"` // HMAC key of the payment gateway

	MaxUploadMB int `json:"max_upload_mb,omitempty"` // Largest max_file_size_mb a job section may set
}

// Load reads the configuration from the environment and applies defaults
func Load() (*Config, error) {
	cfg := fromEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads a JSON config file and overlays the environment on top of
// it. An empty path behaves like Load.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return Load()
	}
	fileCfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	env := fromEnv()
	cfg := env.MergeWithDefaults(*fileCfg)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

func fromEnv() Config {
	return Config{
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		Port:                 envInt("PORT"),
		BlobBackend:          os.Getenv("BLOB_BACKEND"),
		BlobLocalDir:         os.Getenv("BLOB_LOCAL_DIR"),
		BlobPublicBaseURL:    os.Getenv("BLOB_PUBLIC_BASE_URL"),
		SupabaseURL:          os.Getenv("SUPABASE_URL"),
		SupabaseKey:          os.Getenv("SUPABASE_KEY"),
		SupabaseBucket:       os.Getenv("SUPABASE_BUCKET"),
		AuditSQLitePath:      os.Getenv("AUDIT_SQLITE_PATH"),
		RedisURL:             os.Getenv("REDIS_URL"),
		PaymentWebhookSecret: os.Getenv("PAYMENT_WEBHOOK_SECRET"),
		MaxUploadMB:          envInt("MAX_UPLOAD_MB"),
	}
}

// envInt returns 0 for unset or malformed values so defaults apply
func envInt(key string) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return n
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.BlobBackend == "" {
		c.BlobBackend = BlobBackendLocal
	}
	if c.BlobLocalDir == "" {
		c.BlobLocalDir = DefaultBlobLocalDir
	}
	if c.BlobPublicBaseURL == "" {
		c.BlobPublicBaseURL = fmt.Sprintf("http://localhost:%d/files", c.Port)
	}
	if c.SupabaseBucket == "" {
		c.SupabaseBucket = DefaultBucket
	}
	if c.MaxUploadMB == 0 {
		c.MaxUploadMB = DefaultMaxUploadMB
	}
}

// Validate checks that the configuration has valid values.
// DATABASE_URL is checked by the commands that need it.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535, got %d", c.Port)
	}
	if c.MaxUploadMB < 1 {
		return fmt.Errorf("config error: 'max_upload_mb' must be positive")
	}

	switch c.BlobBackend {
	case BlobBackendLocal:
	case BlobBackendSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("config error: SUPABASE_URL and SUPABASE_KEY are required for the supabase blob backend")
		}
	default:
		return fmt.Errorf("config error: unknown blob backend %q (want %q or %q)", c.BlobBackend, BlobBackendLocal, BlobBackendSupabase)
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values beneath environment values.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&result.DatabaseURL, defaults.DatabaseURL)
	fill(&result.BlobBackend, defaults.BlobBackend)
	fill(&result.BlobLocalDir, defaults.BlobLocalDir)
	fill(&result.BlobPublicBaseURL, defaults.BlobPublicBaseURL)
	fill(&result.SupabaseURL, defaults.SupabaseURL)
	fill(&result.SupabaseKey, defaults.SupabaseKey)
	fill(&result.SupabaseBucket, defaults.SupabaseBucket)
	fill(&result.AuditSQLitePath, defaults.AuditSQLitePath)
	fill(&result.RedisURL, defaults.RedisURL)
	fill(&result.PaymentWebhookSecret, defaults.PaymentWebhookSecret)

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.MaxUploadMB == 0 {
		result.MaxUploadMB = defaults.MaxUploadMB
	}

	return result
}

// MaxUploadBytes returns the upload ceiling in bytes
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
