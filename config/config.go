package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Fetch     FetchConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Batch     BatchConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"

	// AllowedOrigins lists CORS origins for browser callers.
	AllowedOrigins []string // default: ["*"]
}

// FetchConfig controls the transport chain used to download product pages.
type FetchConfig struct {
	// Transports is the ordered transport list. Each entry is one of
	//   direct
	//   proxy:<http(s) proxy url>
	//   passthrough:<template containing {url}>
	Transports []string // default: direct, then two public passthrough services

	// AttemptTimeout bounds each transport attempt.
	AttemptTimeout time.Duration // default: 10s

	// MinBodyLength is the shortest body accepted as a real page.
	MinBodyLength int // default: 100

	// PassthroughRPS and PassthroughBurst pace requests to each passthrough service.
	PassthroughRPS   float64 // default: 1
	PassthroughBurst int     // default: 3
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per API key.
	Burst int // default: 5
}

// BatchConfig controls batch import jobs.
type BatchConfig struct {
	MaxURLs     int // default: 50
	Concurrency int // default: 4
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// DefaultTransports is used when WISHGRAB_TRANSPORTS is unset.
var DefaultTransports = []string{
	"direct",
	"passthrough:https://api.allorigins.win/raw?url={url}",
	"passthrough:https://corsproxy.io/?url={url}",
}

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory is applied first when present;
// variables already set in the environment win.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("config: ignoring unreadable .env file", "error", err)
	}

	return &Config{
		Server: ServerConfig{
			Host:           envOr("WISHGRAB_HOST", "0.0.0.0"),
			Port:           envIntOr("WISHGRAB_PORT", 8080),
			Mode:           envOr("WISHGRAB_MODE", "release"),
			AllowedOrigins: envSliceOr("WISHGRAB_ALLOWED_ORIGINS", []string{"*"}),
		},
		Fetch: FetchConfig{
			Transports:       envSliceOr("WISHGRAB_TRANSPORTS", DefaultTransports),
			AttemptTimeout:   envDurationOr("WISHGRAB_ATTEMPT_TIMEOUT", 10*time.Second),
			MinBodyLength:    envIntOr("WISHGRAB_MIN_BODY_LENGTH", 100),
			PassthroughRPS:   envFloatOr("WISHGRAB_PASSTHROUGH_RPS", 1.0),
			PassthroughBurst: envIntOr("WISHGRAB_PASSTHROUGH_BURST", 3),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("WISHGRAB_AUTH_ENABLED", false),
			APIKeys: envSliceOr("WISHGRAB_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("WISHGRAB_RATE_RPS", 2.0),
			Burst:             envIntOr("WISHGRAB_RATE_BURST", 5),
		},
		Batch: BatchConfig{
			MaxURLs:     envIntOr("WISHGRAB_BATCH_MAX_URLS", 50),
			Concurrency: envIntOr("WISHGRAB_BATCH_CONCURRENCY", 4),
		},
		Log: LogConfig{
			Level:  envOr("WISHGRAB_LOG_LEVEL", "info"),
			Format: envOr("WISHGRAB_LOG_FORMAT", "json"),
		},
	}
}

// Validate reports the first configuration value that cannot work.
func (c *Config) Validate() error {
	if len(c.Fetch.Transports) == 0 {
		return errors.New("WISHGRAB_TRANSPORTS must list at least one transport")
	}
	for _, t := range c.Fetch.Transports {
		kind, _, _ := strings.Cut(t, ":")
		switch kind {
		case "direct", "proxy", "passthrough":
		default:
			return fmt.Errorf("WISHGRAB_TRANSPORTS: unknown transport %q", t)
		}
	}
	if c.Fetch.AttemptTimeout <= 0 {
		return errors.New("WISHGRAB_ATTEMPT_TIMEOUT must be positive")
	}
	if c.Fetch.MinBodyLength < 0 {
		return errors.New("WISHGRAB_MIN_BODY_LENGTH cannot be negative")
	}
	if c.Batch.Concurrency < 1 {
		return errors.New("WISHGRAB_BATCH_CONCURRENCY must be at least 1")
	}
	if c.Auth.Enabled && len(c.Auth.APIKeys) == 0 {
		return errors.New("WISHGRAB_API_KEYS is required when auth is enabled")
	}
	return nil
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envSliceOr splits on commas. Passthrough templates may not contain commas.
func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
