package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	SRS       SRSConfig       `mapstructure:"srs"`
	Session   SessionConfig   `mapstructure:"session" validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" validate:"required"`
	Reminder  ReminderConfig  `mapstructure:"reminder"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// Timezone decides which calendar day counts as "today" for scheduling.
	Timezone string `mapstructure:"timezone" validate:"required"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	// URL is a PostgreSQL connection string or, for sqlite, a file path.
	URL          string `mapstructure:"url" validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
}

// AuthConfig contains the settings for verifying learner access tokens.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// SRSConfig overrides scheduler parameters. Zero values keep the defaults.
type SRSConfig struct {
	MinEasinessFactor float64 `mapstructure:"min_easiness_factor" validate:"omitempty,gte=1.3"`
	AgainIntervalDays int     `mapstructure:"again_interval_days" validate:"gte=0"`

	FirstSuccessHardInterval int `mapstructure:"first_success_hard_interval" validate:"gte=0"`
	FirstSuccessGoodInterval int `mapstructure:"first_success_good_interval" validate:"gte=0"`
	FirstSuccessEasyInterval int `mapstructure:"first_success_easy_interval" validate:"gte=0"`

	SecondSuccessHardInterval int `mapstructure:"second_success_hard_interval" validate:"gte=0"`
	SecondSuccessGoodInterval int `mapstructure:"second_success_good_interval" validate:"gte=0"`
	SecondSuccessEasyInterval int `mapstructure:"second_success_easy_interval" validate:"gte=0"`

	HardIntervalModifier float64 `mapstructure:"hard_interval_modifier" validate:"gte=0"`
	EasyIntervalModifier float64 `mapstructure:"easy_interval_modifier" validate:"gte=0"`

	LearnedThresholdDays int `mapstructure:"learned_threshold_days" validate:"gte=0"`
}

// SessionConfig bounds the size of review session queues.
type SessionConfig struct {
	DefaultLimit int `mapstructure:"default_limit" validate:"required,gt=0,ltefield=MaxLimit"`
	MaxLimit     int `mapstructure:"max_limit" validate:"required,gt=0"`
}

// RateLimitConfig configures per-learner request throttling.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute" validate:"required,gt=0"`
	Burst             int `mapstructure:"burst" validate:"required,gt=0"`
	IdleTTLMinutes    int `mapstructure:"idle_ttl_minutes" validate:"required,gt=0"`
}

// ReminderConfig configures the daily due-items reminder job.
type ReminderConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// At is the local time of day in HH:MM format.
	At       string `mapstructure:"at" validate:"required_if=Enabled true"`
	Timezone string `mapstructure:"timezone"`
}
