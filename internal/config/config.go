// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Server settings.
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Database settings.
	DBPath string // SQLite file for user profiles and the exercise snapshot.

	// Agent settings.
	Model        string // Gemini model identifier.
	GeminiAPIKey string

	// Dataset settings.
	CacheDir       string // On-disk cache for downloaded dataset files.
	KaggleUsername string
	KaggleKey      string

	// MCP tool server settings. Empty command disables the remote path
	// and the bridge falls back to the in-process filter.
	MCPCommand string   // Executable for the exercise tool server.
	MCPArgs    []string // Arguments passed to the server command.

	// OTEL settings.
	OTELEndpoint string
	OTELInsecure bool
	ServiceName  string

	// Operational settings.
	LogLevel            string
	MaxRequestBodyBytes int64
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:                envInt("FITCOACH_PORT", 8080),
		ReadTimeout:         envDuration("FITCOACH_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:        envDuration("FITCOACH_WRITE_TIMEOUT", 120*time.Second),
		DBPath:              envStr("FITCOACH_DB_PATH", "./data/fitcoach.db"),
		Model:               envStr("FITCOACH_MODEL", "gemini-2.0-flash"),
		GeminiAPIKey:        envStr("GEMINI_API_KEY", ""),
		CacheDir:            envStr("FITCOACH_CACHE_DIR", "./data/gym_exercise"),
		KaggleUsername:      envStr("KAGGLE_USERNAME", ""),
		KaggleKey:           envStr("KAGGLE_KEY", ""),
		MCPCommand:          envStr("FITCOACH_MCP_COMMAND", "fitcoach-mcp"),
		MCPArgs:             strings.Fields(envStr("FITCOACH_MCP_ARGS", "")),
		OTELEndpoint:        envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELInsecure:        envBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		ServiceName:         envStr("OTEL_SERVICE_NAME", "fitcoach"),
		LogLevel:            envStr("FITCOACH_LOG_LEVEL", "info"),
		MaxRequestBodyBytes: int64(envInt("FITCOACH_MAX_REQUEST_BODY_BYTES", 1*1024*1024)),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("config: FITCOACH_DB_PATH is required")
	}
	if c.Model == "" {
		return fmt.Errorf("config: FITCOACH_MODEL must not be empty")
	}
	if c.MaxRequestBodyBytes <= 0 {
		return fmt.Errorf("config: FITCOACH_MAX_REQUEST_BODY_BYTES must be positive")
	}
	return nil
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
