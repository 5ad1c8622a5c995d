// Package config provides configuration loading and validation utilities.
package config

import (
	"fmt"
	"time"
)

// Config holds runtime configuration for the bot.
type Config struct {
	AppEnv string `mapstructure:"app_env"`

	// Admin is the administrator account, a bare name for a local user or name@host.
	Admin      string   `mapstructure:"admin" validate:"required"`
	Moderators []string `mapstructure:"moderators"`
	Language   string   `mapstructure:"language" validate:"omitempty,oneof=en ja"`
	// NicknameFormat derives the default nickname from a display name and must contain %s.
	NicknameFormat string `mapstructure:"nickname_format" validate:"omitempty,contains=%s"`

	Bot      BotConfig      `mapstructure:"bot"`
	Dispatch DispatchConfig `mapstructure:"dispatch"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
	Affinity AffinityConfig `mapstructure:"affinity"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Server   ServerConfig   `mapstructure:"server"`
}

type BotConfig struct {
	Token   string        `mapstructure:"token"`
	Mode    string        `mapstructure:"mode" validate:"oneof=polling webhook"`
	Timeout time.Duration `mapstructure:"timeout"`
	// WebhookURL is the public URL Telegram posts updates to in webhook mode.
	WebhookURL    string `mapstructure:"webhook_url" validate:"required_if=Mode webhook"`
	WebhookListen string `mapstructure:"webhook_listen"`
	// FloodLimit caps updates per sender within FloodWindow; zero disables the guard.
	FloodLimit  int           `mapstructure:"flood_limit" validate:"gte=0"`
	FloodWindow time.Duration `mapstructure:"flood_window" validate:"gte=0"`
}

// DispatchConfig controls the settle delays applied before each event kind is handled.
type DispatchConfig struct {
	MentionDelay       time.Duration `mapstructure:"mention_delay" validate:"gte=0"`
	TimelineDelay      time.Duration `mapstructure:"timeline_delay" validate:"gte=0"`
	DirectMessageDelay time.Duration `mapstructure:"direct_message_delay" validate:"gte=0"`
	FollowDelay        time.Duration `mapstructure:"follow_delay" validate:"gte=0"`
	// ContinuationTTL expires unanswered continuations; zero keeps them until the process exits.
	ContinuationTTL time.Duration `mapstructure:"continuation_ttl" validate:"gte=0"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval" validate:"gte=0"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=memory redis postgres"`
}

type RedisConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password        string        `mapstructure:"password"`
	DB              int           `mapstructure:"db"`
	PoolSize        int           `mapstructure:"pool_size"`
	MinIdleConns    int           `mapstructure:"min_idle_conns"`
	PoolTimeout     time.Duration `mapstructure:"pool_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	MinRetryBackoff time.Duration `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff time.Duration `mapstructure:"max_retry_backoff"`
	Enabled         bool          `mapstructure:"enabled"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	// MigrationsDir overrides the embedded migrations with files on disk.
	MigrationsDir string `mapstructure:"migrations_dir"`
}

// AffinityConfig bounds how fast a user's rating can grow through limited likes.
type AffinityConfig struct {
	LikeLimit  int           `mapstructure:"like_limit" validate:"gte=0"`
	LikeWindow time.Duration `mapstructure:"like_window" validate:"gte=0"`
}

type LoggerConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
	// File enables rotation through lumberjack; empty writes to stdout.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn" validate:"required_if=Enabled true"`
	SampleRate  float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Environment string  `mapstructure:"environment"`
}

type ServerConfig struct {
	// Addr serves /healthz and /metrics; empty disables the HTTP server.
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Name,
		c.SSLMode,
	)
}
