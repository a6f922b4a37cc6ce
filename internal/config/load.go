package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the service reads.
const EnvPrefix = "SNAPVOCAB"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// A .env file in the working directory is loaded first when present.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom behaves like Load but reads the given config file instead of
// searching for config.yaml in the working directory. An empty path searches.
func LoadFrom(path string) (*Config, error) {
	// A missing .env file is normal outside local development
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults are invisible to AutomaticEnv during Unmarshal
	for _, key := range []string{"database.url", "auth.jwt_secret"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct-tag rules plus the values that need parsing.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := time.LoadLocation(cfg.Server.Timezone); err != nil {
		return fmt.Errorf("config validation failed: server.timezone: %w", err)
	}

	if cfg.Reminder.Enabled {
		if _, err := time.Parse("15:04", cfg.Reminder.At); err != nil {
			return fmt.Errorf("config validation failed: reminder.at must be HH:MM: %w", err)
		}
		if _, err := time.LoadLocation(cfg.Reminder.Timezone); err != nil {
			return fmt.Errorf("config validation failed: reminder.timezone: %w", err)
		}
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.timezone", "UTC")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.max_open_conns", 10)

	v.SetDefault("srs.min_easiness_factor", 0)
	v.SetDefault("srs.again_interval_days", 0)
	v.SetDefault("srs.first_success_hard_interval", 0)
	v.SetDefault("srs.first_success_good_interval", 0)
	v.SetDefault("srs.first_success_easy_interval", 0)
	v.SetDefault("srs.second_success_hard_interval", 0)
	v.SetDefault("srs.second_success_good_interval", 0)
	v.SetDefault("srs.second_success_easy_interval", 0)
	v.SetDefault("srs.hard_interval_modifier", 0)
	v.SetDefault("srs.easy_interval_modifier", 0)
	v.SetDefault("srs.learned_threshold_days", 0)

	v.SetDefault("session.default_limit", 20)
	v.SetDefault("session.max_limit", 100)

	v.SetDefault("rate_limit.requests_per_minute", 120)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("rate_limit.idle_ttl_minutes", 10)

	v.SetDefault("reminder.enabled", false)
	v.SetDefault("reminder.at", "18:00")
	v.SetDefault("reminder.timezone", "UTC")
}
