// Package config provides configuration loading and validation utilities.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from YAML files and environment variables,
// validates it, and returns the resulting Config.
func Load() (*Config, error) {
	if err := godotenv.Load(".env.local", ".env"); err != nil {
		// missing env files are fine; the environment may be set directly
		_ = err
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	v := viper.New()
	v.SetConfigFile(fmt.Sprintf("./configs/%s.yaml", env))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.AppEnv = env
	applyDefaults(&cfg)

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Ops.Addr == "" {
		cfg.Ops.Addr = ":8081"
	}
	if cfg.Ops.ShutdownTimeout <= 0 {
		cfg.Ops.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Notifier.Concurrency <= 0 {
		cfg.Notifier.Concurrency = 10
	}
	if cfg.Notifier.ReminderCron == "" {
		cfg.Notifier.ReminderCron = "0 * * * *"
	}
	if cfg.Notifier.ReminderHours <= 0 {
		cfg.Notifier.ReminderHours = 24
	}
	if cfg.Notifier.DigestCron == "" {
		cfg.Notifier.DigestCron = "0 8 1 * *"
	}
	if cfg.Notifier.DigestDays <= 0 {
		cfg.Notifier.DigestDays = 30
	}
	if cfg.Notifier.MigrationsDir == "" {
		cfg.Notifier.MigrationsDir = "migrations"
	}
}
