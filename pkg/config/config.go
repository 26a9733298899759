package config

import "fmt"

// Config holds runtime configuration for the planner bot.
type Config struct {
	AppEnv string `mapstructure:"-"`

	Bot       BotConfig       `mapstructure:"bot" validate:"required"`
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage" validate:"required"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
	Digest    DigestConfig    `mapstructure:"digest"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	Log       LogConfig       `mapstructure:"log"`
}

// BotConfig configures the Telegram connection.
type BotConfig struct {
	Token       string `mapstructure:"token" validate:"required"`
	PollTimeout string `mapstructure:"poll_timeout"`
	MiniAppURL  string `mapstructure:"miniapp_url"`
}

// ServerConfig configures the HTTP server (webhook, metrics, health).
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// StorageConfig selects and configures the user snapshot backend.
type StorageConfig struct {
	Driver string         `mapstructure:"driver" validate:"required,oneof=file postgres"`
	File   FileStorage    `mapstructure:"file"`
	DB     PostgresConfig `mapstructure:"postgres"`
}

type FileStorage struct {
	Path string `mapstructure:"path"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Name, p.SSLMode,
	)
}

// RedisConfig configures the Redis connection shared by the job queue,
// idempotency store and rate limiter.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JobsConfig tunes the background worker that delivers reminders and digests.
type JobsConfig struct {
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// DigestConfig holds the cron expressions for the two daily digests.
type DigestConfig struct {
	MorningCron string `mapstructure:"morning_cron"`
	EveningCron string `mapstructure:"evening_cron"`
}

// RateLimitRule pairs a request count with a window duration string.
type RateLimitRule struct {
	Limit  int    `mapstructure:"limit"`
	Window string `mapstructure:"window"`
}

// RateLimitConfig configures command flood protection.
type RateLimitConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	PerUser   RateLimitRule `mapstructure:"per_user"`
	Global    RateLimitRule `mapstructure:"global"`
	Whitelist []int64       `mapstructure:"whitelist"`
}

// SentryConfig configures error reporting.
type SentryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// LogConfig configures the slog setup.
type LogConfig struct {
	Level    string `mapstructure:"level"`
	FilePath string `mapstructure:"file_path"`
}

// IsDevelopment reports whether the process runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
