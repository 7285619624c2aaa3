// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - Load layers a YAML file and AROMA_ environment variables on top.
// - Validation failures wrap ErrInvalidConfig; source failures wrap ErrLoadConfig.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache backends accepted by CacheBackend.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// YouTubeAPIKey authorizes search calls. Empty disables video lookup.
	YouTubeAPIKey string `koanf:"youtube_api_key"`

	// YouTubeBaseURL overrides the Data API root, mostly for tests.
	YouTubeBaseURL string `koanf:"youtube_base_url"`

	// VideoLanguage is passed as relevanceLanguage.
	VideoLanguage string `koanf:"video_language"`

	// VideoDuration is passed as videoDuration (any, short, medium, long).
	VideoDuration string `koanf:"video_duration"`

	// VideoMaxResults caps candidates per search, 1..50.
	VideoMaxResults int `koanf:"video_max_results"`

	// EmbedHost is the host used in returned embed URLs.
	EmbedHost string `koanf:"embed_host"`

	// SearchTimeoutMS bounds a single provider call.
	SearchTimeoutMS int `koanf:"search_timeout_ms"`

	// SearchRatePerSec and SearchBurst throttle outgoing provider calls.
	SearchRatePerSec float64 `koanf:"search_rate_per_sec"`
	SearchBurst      int     `koanf:"search_burst"`

	// CacheBackend is one of memory, redis or none.
	CacheBackend string `koanf:"cache_backend"`

	// CacheSize bounds the in-memory cache. Zero or less means unbounded.
	CacheSize int `koanf:"cache_size"`

	// CacheTTLSec expires cached search results. Zero disables expiry in memory.
	CacheTTLSec int `koanf:"cache_ttl_sec"`

	// Redis connection settings used when CacheBackend is redis.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		VideoLanguage:    "ru",
		VideoDuration:    "medium",
		VideoMaxResults:  5,
		EmbedHost:        "www.youtube.com",
		SearchTimeoutMS:  5000,
		SearchRatePerSec: 10,
		SearchBurst:      20,
		CacheBackend:     CacheMemory,
		CacheSize:        1000,
		CacheTTLSec:      3600,
		RedisAddr:        "localhost:6379",
	}
}

// SearchTimeout returns SearchTimeoutMS as a duration.
func (c *Config) SearchTimeout() time.Duration {
	return time.Duration(c.SearchTimeoutMS) * time.Millisecond
}

// CacheTTL returns CacheTTLSec as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.VideoMaxResults < 1 || c.VideoMaxResults > 50 {
		return fmt.Errorf("%w: video_max_results must be within 1..50, got %d", ErrInvalidConfig, c.VideoMaxResults)
	}
	if c.SearchTimeoutMS <= 0 {
		return fmt.Errorf("%w: search_timeout_ms must be positive", ErrInvalidConfig)
	}
	switch c.CacheBackend {
	case CacheMemory, CacheNone:
	case CacheRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr is required for the redis cache", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown cache_backend %q", ErrInvalidConfig, c.CacheBackend)
	}
	return nil
}
