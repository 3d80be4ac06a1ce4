package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Business  BusinessConfig  `mapstructure:"business"`
	Health    HealthConfig    `mapstructure:"health"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"DATABASE_URL"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type SchedulerConfig struct {
	// OverdueCron is a robfig/cron expression (with seconds) for the daily
	// overdue sweep.
	OverdueCron string `mapstructure:"SCHEDULER_OVERDUE_CRON"`
	Timezone    string `mapstructure:"SCHEDULER_TIMEZONE"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type BusinessConfig struct {
	// BreakdownTolerance is the gap between a payment amount and its
	// breakdown sum that passes validation unchanged.
	BreakdownTolerance string `mapstructure:"BREAKDOWN_TOLERANCE"`
	// AbsorbThreshold is the largest breakdown gap that is folded into the
	// interest component instead of rejecting the payment. Inherited from
	// the original back office; tunable because the value was never
	// documented there.
	AbsorbThreshold string `mapstructure:"BREAKDOWN_ABSORB_THRESHOLD"`
	// PreviewCacheTTL bounds how long plan previews live in Redis.
	PreviewCacheTTL time.Duration `mapstructure:"PREVIEW_CACHE_TTL"`
}

type HealthConfig struct {
	Timeout time.Duration `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("SERVER_READ_TIMEOUT", "15s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("BREAKDOWN_TOLERANCE", "0.01")
	viper.SetDefault("BREAKDOWN_ABSORB_THRESHOLD", "1")
	viper.SetDefault("PREVIEW_CACHE_TTL", "10m")
	viper.SetDefault("SCHEDULER_OVERDUE_CRON", "0 0 0 * * *")
	viper.SetDefault("SCHEDULER_TIMEZONE", "Asia/Jakarta")
	viper.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	tolerance, err := decimal.NewFromString(c.Business.BreakdownTolerance)
	if err != nil {
		return fmt.Errorf("BREAKDOWN_TOLERANCE must be a valid decimal: %w", err)
	}
	if tolerance.IsNegative() {
		return fmt.Errorf("BREAKDOWN_TOLERANCE must not be negative")
	}

	threshold, err := decimal.NewFromString(c.Business.AbsorbThreshold)
	if err != nil {
		return fmt.Errorf("BREAKDOWN_ABSORB_THRESHOLD must be a valid decimal: %w", err)
	}
	if threshold.LessThan(tolerance) {
		return fmt.Errorf("BREAKDOWN_ABSORB_THRESHOLD must not be below BREAKDOWN_TOLERANCE")
	}

	if c.Business.PreviewCacheTTL <= 0 {
		return fmt.Errorf("PREVIEW_CACHE_TTL must be greater than 0")
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid timezone: %w", err)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetBreakdownTolerance returns the breakdown tolerance as decimal
func (c *Config) GetBreakdownTolerance() decimal.Decimal {
	tolerance, _ := decimal.NewFromString(c.Business.BreakdownTolerance)
	return tolerance
}

// GetAbsorbThreshold returns the breakdown absorb threshold as decimal
func (c *Config) GetAbsorbThreshold() decimal.Decimal {
	threshold, _ := decimal.NewFromString(c.Business.AbsorbThreshold)
	return threshold
}
