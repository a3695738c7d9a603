// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime configuration for the job search bot.
type Config struct {
	Port        string `envconfig:"GATEWAY_PORT" default:"8083"`
	GRPCPort    string `envconfig:"GRPC_HEALTH_PORT" default:"9083"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	RedisURL    string `envconfig:"REDIS_URL"` // empty → in-memory sessions, no cache, no events
	Feed        FeedConfig
	Session     SessionConfig
}

// FeedConfig describes the remote job feed.
type FeedConfig struct {
	BaseURL  string        `envconfig:"FEED_BASE_URL" default:"https://jobs-api14.p.rapidapi.com/list"`
	Host     string        `envconfig:"FEED_HOST" default:"jobs-api14.p.rapidapi.com"`
	APIKey   string        `envconfig:"API_KEY" required:"true"`
	Timeout  time.Duration `envconfig:"FEED_TIMEOUT" default:"15s"`
	MaxPages int           `envconfig:"FEED_MAX_PAGES" default:"50"`
	CacheTTL time.Duration `envconfig:"FEED_CACHE_TTL" default:"10m"`
}

// SessionConfig controls how long idle conversation state is kept.
type SessionConfig struct {
	TTL       time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	SweepSpec string        `envconfig:"SESSION_SWEEP_SPEC" default:"@every 10m"`
}

// Load reads an optional .env file, then environment variables, and returns
// a validated Config.
func Load() (*Config, error) {
	// A missing .env is fine; real deployments inject the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if c.Feed.APIKey == "" {
		return fmt.Errorf("API_KEY must not be empty")
	}
	if c.Feed.Timeout <= 0 {
		return fmt.Errorf("FEED_TIMEOUT must be positive, got %s", c.Feed.Timeout)
	}
	if c.Feed.MaxPages < 1 {
		return fmt.Errorf("FEED_MAX_PAGES must be at least 1, got %d", c.Feed.MaxPages)
	}
	if c.Feed.CacheTTL < 0 {
		return fmt.Errorf("FEED_CACHE_TTL must be non-negative, got %s", c.Feed.CacheTTL)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.Session.TTL)
	}
	if c.Session.SweepSpec == "" {
		return fmt.Errorf("SESSION_SWEEP_SPEC must not be empty")
	}
	return nil
}

func (c *Config) GatewayAddr() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c *Config) GRPCAddr() string {
	return fmt.Sprintf(":%s", c.GRPCPort)
}

// String omits credentials.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port=%s, GRPCPort=%s, LogLevel=%s, Redis=%t, Feed.BaseURL=%s, "+
		"Feed.Timeout=%s, Feed.MaxPages=%d, Feed.CacheTTL=%s, Session.TTL=%s, Session.SweepSpec=%q}",
		c.Port, c.GRPCPort, c.LogLevel, c.RedisURL != "", c.Feed.BaseURL,
		c.Feed.Timeout, c.Feed.MaxPages, c.Feed.CacheTTL, c.Session.TTL, c.Session.SweepSpec)
}
