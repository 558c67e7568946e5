// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// the Messenger platform credentials, session store, and server behavior.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Session store backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendSQLite = "sqlite"
)

// Config holds all application configuration
type Config struct {
	// Messenger Platform Configuration
	PageAccessToken string // Graph API page access token for outbound sends
	VerifyToken     string // Webhook verification secret (hub.verify_token)
	AppSecret       string // App secret for X-Hub-Signature-256 validation (empty = skip)
	GraphAPIBaseURL string // Graph API base URL (override for tests)
	GraphAPIVersion string // Graph API version segment (e.g. "v18.0")

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Session Configuration
	SessionBackend       string        // "memory" or "sqlite"
	DataDir              string        // Data directory for the SQLite session store
	SessionTTL           time.Duration // Inactivity window before a session resets
	SessionSweepInterval time.Duration // How often the expiry janitor runs

	// Rate Limits (Token Bucket Algorithm)
	UserRateLimitBurst        float64 // Maximum burst tokens per sender (default: 15)
	UserRateLimitRefillPerSec float64 // Tokens refilled per second (default: 0.5)
	GlobalRateLimitRPS        float64 // Global outbound rate limit in requests per second

	// Outbound Configuration
	SendTimeout    time.Duration // Timeout for a single Graph API send
	ProfileTimeout time.Duration // Timeout for the optional profile name lookup

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Telemetry (Better Stack)
	ErrorsToken  string // Better Stack Errors application token (empty = Sentry disabled)
	ErrorsHost   string // Better Stack Errors ingesting host
	LogsToken    string // Better Stack Logs source token (empty = stdout only)
	LogsEndpoint string // Better Stack Logs ingesting endpoint
	Environment  string // Deployment environment (e.g. "production")
}

// Load reads configuration from environment variables.
// It attempts to load .env file first, then reads from env vars.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		PageAccessToken: getEnv("PAGE_ACCESS_TOKEN", ""),
		VerifyToken:     getEnv("VERIFY_TOKEN", ""),
		AppSecret:       getEnv("APP_SECRET", ""),
		GraphAPIBaseURL: getEnv("GRAPH_API_BASE_URL", "https://graph.facebook.com"),
		GraphAPIVersion: getEnv("GRAPH_API_VERSION", "v18.0"),

		Port:            getEnv("PORT", "3000"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),

		SessionBackend:       getEnv("SESSION_BACKEND", SessionBackendMemory),
		DataDir:              getEnv("DATA_DIR", getDefaultDataDir()),
		SessionTTL:           getDurationEnv("SESSION_TTL", 10*time.Minute),
		SessionSweepInterval: getDurationEnv("SESSION_SWEEP_INTERVAL", time.Minute),

		UserRateLimitBurst:        getFloatEnv("USER_RATE_LIMIT_BURST", 15.0),
		UserRateLimitRefillPerSec: getFloatEnv("USER_RATE_LIMIT_REFILL_PER_SEC", 0.5),
		GlobalRateLimitRPS:        getFloatEnv("GLOBAL_RATE_LIMIT_RPS", 100.0),

		SendTimeout:    getDurationEnv("SEND_TIMEOUT", 10*time.Second),
		ProfileTimeout: getDurationEnv("PROFILE_TIMEOUT", 3*time.Second),

		MetricsUsername: getEnv("METRICS_USERNAME", "prometheus"),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),

		ErrorsToken:  getEnv("BETTERSTACK_ERRORS_TOKEN", ""),
		ErrorsHost:   getEnv("BETTERSTACK_ERRORS_HOST", "errors.betterstack.com"),
		LogsToken:    getEnv("BETTERSTACK_LOGS_TOKEN", ""),
		LogsEndpoint: getEnv("BETTERSTACK_LOGS_ENDPOINT", ""),
		Environment:  getEnv("ENVIRONMENT", "production"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.PageAccessToken == "" {
		errs = append(errs, errors.New("PAGE_ACCESS_TOKEN is required"))
	}
	if c.VerifyToken == "" {
		errs = append(errs, errors.New("VERIFY_TOKEN is required"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.SessionBackend != SessionBackendMemory && c.SessionBackend != SessionBackendSQLite {
		errs = append(errs, fmt.Errorf("SESSION_BACKEND must be %q or %q, got %q",
			SessionBackendMemory, SessionBackendSQLite, c.SessionBackend))
	}
	if c.SessionBackend == SessionBackendSQLite && c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR is required for the sqlite session backend"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %v", c.SessionTTL))
	}
	if c.SessionSweepInterval <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive, got %v", c.SessionSweepInterval))
	}
	if c.UserRateLimitBurst <= 0 {
		errs = append(errs, fmt.Errorf("USER_RATE_LIMIT_BURST must be positive, got %v", c.UserRateLimitBurst))
	}
	if c.UserRateLimitRefillPerSec <= 0 {
		errs = append(errs, fmt.Errorf("USER_RATE_LIMIT_REFILL_PER_SEC must be positive, got %v", c.UserRateLimitRefillPerSec))
	}
	if c.SendTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SEND_TIMEOUT must be positive, got %v", c.SendTimeout))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SQLitePath returns the full path to the SQLite session database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "sessions.db")
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}
