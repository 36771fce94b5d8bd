// Package config provides configuration management for the boatrace EV engine.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Engine    EngineConfig    `mapstructure:"engine" validate:"required"`
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Collector CollectorConfig `mapstructure:"collector"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// EngineConfig represents pricing and order submission configuration
type EngineConfig struct {
	// EVMin is the minimum expected value for a selection to be eligible.
	// Zero means every selection is eligible.
	EVMin float64 `mapstructure:"ev_min" validate:"gte=0"`
	// Alpha mixes model and implied probabilities: 1 = model, 0 = implied.
	Alpha float64 `mapstructure:"alpha" validate:"gte=0,lte=1"`
	// MaxStake is the aggregate stake cap per race and request.
	MaxStake int64 `mapstructure:"max_stake" validate:"required,gt=0"`
	// UnitStake is the flat per-candidate stake before the cap applies.
	UnitStake int64 `mapstructure:"unit_stake" validate:"required,gt=0"`
	// StakePolicy selects the stake allocation strategy.
	StakePolicy string `mapstructure:"stake_policy" validate:"required,oneof=flat proportional"`
	// OrderMode is consumed by the execution flow, not by pricing. It is
	// threaded through to response metadata only.
	OrderMode string `mapstructure:"order_mode" validate:"required,ordermode"`
}

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	Port        int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// CollectorConfig represents the odds feed collector configuration
type CollectorConfig struct {
	FeedURL                string  `mapstructure:"feed_url"`
	APIKey                 string  `mapstructure:"api_key"`
	Mode                   string  `mapstructure:"mode" validate:"omitempty,oneof=poll stream"`
	PollIntervalSeconds    int     `mapstructure:"poll_interval_seconds" validate:"omitempty,gt=0"`
	DeadlineBufferSeconds  int     `mapstructure:"deadline_buffer_seconds" validate:"omitempty,gte=0"`
	RateLimitPerSecond     float64 `mapstructure:"rate_limit_per_second" validate:"omitempty,gt=0"`
}

// CacheConfig represents the market read cache configuration
type CacheConfig struct {
	Enabled          bool `mapstructure:"enabled"`
	MarketTTLSeconds int  `mapstructure:"market_ttl_seconds" validate:"omitempty,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
