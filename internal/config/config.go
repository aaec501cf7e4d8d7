package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all runtime settings, loaded from environment variables.
type Config struct {
	// HTTP server
	Port string

	// Speech capture
	CaptureLocale     string
	CaptureRetryDelay time.Duration

	// Interpretation (Gemini)
	GeminiAPIKey     string
	GeminiModel      string
	InterpretTimeout time.Duration

	// Durable storage
	StorageBackend string // "file" or "sqlite"
	DataDir        string
	SQLitePath     string

	// Error notices
	NoticeTTL time.Duration
}

// Load reads the configuration from the environment, applying defaults.
func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		CaptureLocale:     getEnv("CAPTURE_LOCALE", "pt-PT"),
		CaptureRetryDelay: getEnvDuration("CAPTURE_RETRY_DELAY", 250*time.Millisecond),

		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),
		InterpretTimeout: getEnvDuration("INTERPRET_TIMEOUT", 30*time.Second),

		StorageBackend: getEnv("STORAGE_BACKEND", "file"),
		DataDir:        getEnv("DATA_DIR", "./data"),
		SQLitePath:     getEnv("SQLITE_DB_PATH", "./data/voiceledger.db"),

		NoticeTTL: getEnvDuration("NOTICE_TTL", 5*time.Second),
	}
}

// Validate checks the configuration and returns an error describing every
// invalid setting.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Port) == "" {
		problems = append(problems, "port must not be empty")
	}
	if c.StorageBackend != "file" && c.StorageBackend != "sqlite" {
		problems = append(problems, fmt.Sprintf("invalid storage backend %q: must be 'file' or 'sqlite'", c.StorageBackend))
	}
	if c.InterpretTimeout <= 0 {
		problems = append(problems, "interpret timeout must be positive")
	}
	if c.NoticeTTL <= 0 {
		problems = append(problems, "notice TTL must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
