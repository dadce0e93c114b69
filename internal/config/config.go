// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache), optional
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// AI provider settings; a provider with an empty key is skipped
	OpenAIKey     string
	OpenAIModel   string
	ClaudeKey     string
	ClaudeModel   string
	MistralKey    string
	MistralModel  string
	ActiveAI      string // preferred provider name, first configured wins if empty
	AIMaxTokens   int
	GenTimeout    time.Duration // per-completion budget before falling back
	CharBudget    int           // post body budget including hashtag reserve
	HashtagCount  int
	AspectProfile string // "wide", "square", "portrait"
	Watermark     string // label drawn on rendered images, empty disables

	// Platform API
	PlatformBaseURL string
	PlatformToken   string
	MaxAttempts     int
	BackoffBase     time.Duration
	BackoffCap      time.Duration

	// Scheduling
	PostInterval   time.Duration
	PostCron       string // optional cron expression, overrides PostInterval
	PollInterval   time.Duration
	CycleTimeout   time.Duration
	RotationWindow int

	// Admin surface
	AdminTokenHash  string // bcrypt hash of the admin bearer token
	AdminTOTPSecret string // TOTP secret confirming destructive operations

	// S3-compatible artifact archive, optional
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "pulsepost"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "pulsepost"),

		ValkeyHost:     os.Getenv("VALKEY_HOST"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  envOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		ClaudeKey:    os.Getenv("CLAUDE_API_KEY"),
		ClaudeModel:  envOrDefault("CLAUDE_MODEL", "claude-3-5-haiku-latest"),
		MistralKey:   os.Getenv("MISTRAL_API_KEY"),
		MistralModel: envOrDefault("MISTRAL_MODEL", "mistral-small-latest"),
		ActiveAI:     os.Getenv("AI_PROVIDER"),

		AspectProfile: envOrDefault("IMAGE_PROFILE", "wide"),
		Watermark:     os.Getenv("IMAGE_WATERMARK"),

		PlatformBaseURL: os.Getenv("PLATFORM_BASE_URL"),
		PlatformToken:   os.Getenv("PLATFORM_TOKEN"),

		PostCron: os.Getenv("POST_CRON"),

		AdminTokenHash:  os.Getenv("ADMIN_TOKEN_HASH"),
		AdminTOTPSecret: os.Getenv("ADMIN_TOTP_SECRET"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "us-east-1"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),
	}

	var err error
	if cfg.AIMaxTokens, err = envInt("AI_MAX_TOKENS", 150); err != nil {
		return nil, err
	}
	if cfg.CharBudget, err = envInt("POST_CHAR_BUDGET", 280); err != nil {
		return nil, err
	}
	if cfg.HashtagCount, err = envInt("POST_HASHTAG_COUNT", 15); err != nil {
		return nil, err
	}
	if cfg.MaxAttempts, err = envInt("PUBLISH_MAX_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	if cfg.RotationWindow, err = envInt("TOPIC_ROTATION_WINDOW", 1); err != nil {
		return nil, err
	}
	if cfg.GenTimeout, err = envDuration("AI_TIMEOUT", 20*time.Second); err != nil {
		return nil, err
	}
	if cfg.BackoffBase, err = envDuration("PUBLISH_BACKOFF_BASE", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.BackoffCap, err = envDuration("PUBLISH_BACKOFF_CAP", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.PostInterval, err = envDuration("POST_INTERVAL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = envDuration("SCHEDULER_POLL_INTERVAL", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.CycleTimeout, err = envDuration("CYCLE_TIMEOUT", 3*time.Minute); err != nil {
		return nil, err
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.PlatformToken == "" {
			return nil, fmt.Errorf("PLATFORM_TOKEN must be set in production")
		}
		if cfg.AdminTokenHash == "" {
			return nil, fmt.Errorf("ADMIN_TOKEN_HASH must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// ValkeyAddr returns the cache address, or "" when no cache is configured.
func (c *Config) ValkeyAddr() string {
	if c.ValkeyHost == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", c.ValkeyHost, c.ValkeyPort)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt reads an integer environment variable.
func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

// envDuration reads a Go duration environment variable (e.g. "30s", "24h").
func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration, got %q", key, v)
	}
	return d, nil
}
