// Package config provides configuration management for the boatrace EV engine.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
// and applies defaults for optional engine knobs, so the engine runs with
// nothing but environment overrides when no file is shipped.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")

	// Set environment variable prefix
	v.SetEnvPrefix("BOATRACE")

	// Enable automatic binding of environment variables
	v.AutomaticEnv()

	// Replace dots with underscores in environment variable names
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	// Read and expand the configuration file if it exists
	if data, err := os.ReadFile(configPath); err == nil {
		// Expand environment variables in the configuration (${VAR} syntax)
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// If file doesn't exist, continue with defaults and environment variables

	// Unmarshal configuration into Config struct
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults applies the defaults documented for the engine configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "boatrace-ev-engine")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Unmarshal only sees keys viper knows about, so every key that may
	// arrive exclusively through a BOATRACE_* variable needs a default
	// entry here, even an empty one.
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)

	v.SetDefault("engine.ev_min", 1.05)
	v.SetDefault("engine.alpha", 0.5)
	v.SetDefault("engine.max_stake", 2000)
	v.SetDefault("engine.unit_stake", 500)
	v.SetDefault("engine.stake_policy", "flat")
	v.SetDefault("engine.order_mode", "dryrun")

	v.SetDefault("server.port", 8090)

	v.SetDefault("collector.feed_url", "")
	v.SetDefault("collector.api_key", "")
	v.SetDefault("collector.mode", "poll")
	v.SetDefault("collector.poll_interval_seconds", 5)
	v.SetDefault("collector.deadline_buffer_seconds", 20)
	v.SetDefault("collector.rate_limit_per_second", 2.0)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.market_ttl_seconds", 300)

	v.SetDefault("metrics.enabled", true)
}
