package config

import (
	"fmt"
	"time"
)

// Config holds runtime configuration for the notification backend.
type Config struct {
	AppEnv string `mapstructure:"-"`

	Logger   LoggerConfig   `mapstructure:"logger" validate:"required"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis" validate:"required"`
	Ops      OpsConfig      `mapstructure:"ops"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	SMS      SMSConfig      `mapstructure:"sms"`
	Notifier NotifierConfig `mapstructure:"notifier" validate:"required"`
}

// LoggerConfig controls log level, format, and optional file rotation.
type LoggerConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=json text"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// SentryConfig enables error reporting to Sentry.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// DatabaseConfig defines PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     string `mapstructure:"port" validate:"required"`
	User     string `mapstructure:"user" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
	Name     string `mapstructure:"name" validate:"required"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, sslMode,
	)
}

// RedisConfig defines connection parameters for the asynq broker.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// OpsConfig controls the operational HTTP server (/healthz, /metrics).
type OpsConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SMTPConfig defines the outbound mail transport. FromEmail is the envelope
// and header sender.
type SMTPConfig struct {
	Host      string `mapstructure:"host"`
	Port      string `mapstructure:"port"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	FromEmail string `mapstructure:"from_email"`
}

// SMSConfig defines the SMS gateway client. The channel is considered
// unconfigured when APIKey and UserID are both empty.
type SMSConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
	UserID   string `mapstructure:"user_id"`
	Password string `mapstructure:"password"`
	SenderID string `mapstructure:"sender_id"`
}

// NotifierConfig holds notification pipeline settings.
type NotifierConfig struct {
	SiteURL       string `mapstructure:"site_url" validate:"required,url"`
	TemplateDir   string `mapstructure:"template_dir" validate:"required"`
	MigrationsDir string `mapstructure:"migrations_dir"`
	Concurrency   int    `mapstructure:"concurrency"`

	ReminderCron  string `mapstructure:"reminder_cron"`
	ReminderHours int    `mapstructure:"reminder_hours"`
	DigestCron    string `mapstructure:"digest_cron"`
	DigestDays    int    `mapstructure:"digest_days"`
}
