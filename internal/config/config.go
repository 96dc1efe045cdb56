package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Booking  BookingConfig  `mapstructure:"booking"`
	Outbox   OutboxConfig   `mapstructure:"outbox"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	API      APIConfig      `mapstructure:"api"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

// BookingConfig holds the appointment acceptance limits. Loaded once at
// startup; the validator receives it as an immutable value.
type BookingConfig struct {
	DelayInHours       int `mapstructure:"delay_in_hours"`
	MaxLengthInMinutes int `mapstructure:"max_length_in_minutes"`
}

type OutboxConfig struct {
	BatchSize     int           `mapstructure:"batch_size"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
}

type WebhookConfig struct {
	SigningSecret    string        `mapstructure:"signing_secret"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
	SubscriptionsTTL time.Duration `mapstructure:"subscriptions_ttl"`
}

type APIConfig struct {
	BaseURL        string  `mapstructure:"base_url"`
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	MetricsPrefix  string  `mapstructure:"metrics_prefix"`
}

// envOverrides keeps the deployment knobs the service has always honored.
type envOverrides struct {
	BookingDelay         int    `envconfig:"BOOKING_DELAY"`
	MaxAppointmentLength int    `envconfig:"MAX_APPOINTMENT_LENGTH"`
	BaseURL              string `envconfig:"BASE_URL"`
	DatabaseHost         string `envconfig:"DATABASE_HOST"`
	DatabasePassword     string `envconfig:"DATABASE_PASSWORD"`
	RedisURL             string `envconfig:"REDIS_URL"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.timeout_seconds", 30)
	viper.SetDefault("booking.delay_in_hours", 24)
	viper.SetDefault("booking.max_length_in_minutes", 240)
	viper.SetDefault("api.rate_limit_rps", 100)
	viper.SetDefault("api.rate_limit_burst", 200)
	viper.SetDefault("api.metrics_prefix", "scheduler")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment overrides: %w", err)
	}
	applyOverrides(&config, env)

	return &config, nil
}

func applyOverrides(config *Config, env envOverrides) {
	if env.BookingDelay > 0 {
		config.Booking.DelayInHours = env.BookingDelay
	}
	if env.MaxAppointmentLength > 0 {
		config.Booking.MaxLengthInMinutes = env.MaxAppointmentLength
	}
	if env.BaseURL != "" {
		config.API.BaseURL = env.BaseURL
	}
	if env.DatabaseHost != "" {
		config.Database.Host = env.DatabaseHost
	}
	if env.DatabasePassword != "" {
		config.Database.Password = env.DatabasePassword
	}
	if env.RedisURL != "" {
		config.Redis.URL = env.RedisURL
	}
}
