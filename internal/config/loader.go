// Package config provides configuration management for the Signal Trader application.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	v.SetEnvPrefix("SIGNAL_TRADER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func LoadWithDefaults(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")

	v.SetEnvPrefix("SIGNAL_TRADER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "signal-trader")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("signals.confidence_threshold", 0.7)
	v.SetDefault("signals.min_indicators", 3)
	v.SetDefault("signals.tag_bonus", 0.05)
	v.SetDefault("signals.confidence_cap", 0.95)
	v.SetDefault("signals.confidence_floor", 0.5)
	v.SetDefault("risk.max_position_pct", 0.95)
	v.SetDefault("risk.stop_loss_high_confidence", 0.12)
	v.SetDefault("risk.stop_loss_low_confidence", 0.08)
	v.SetDefault("risk.confidence_tier", 0.8)
	v.SetDefault("risk.take_profit_pct", 0.25)
	v.SetDefault("risk.trailing_stop_pct", 0.06)
	v.SetDefault("risk.trailing_activation_pct", 0.05)
	v.SetDefault("risk.high_volatility_threshold", 0.35)
	v.SetDefault("risk.volatility_adjustment", 0.3)
	v.SetDefault("backtest.initial_capital", 10000000.0)
	v.SetDefault("backtest.commission_rate", 0.003)
	v.SetDefault("backtest.slippage_pct", 0.001)
	v.SetDefault("backtest.volatility_window", 20)
	v.SetDefault("backtest.monte_carlo_iterations", 1000)
	v.SetDefault("backtest.walk_forward_train_bars", 180)
	v.SetDefault("backtest.walk_forward_test_bars", 60)
	v.SetDefault("backtest.max_concurrent_runs", 4)

	// Read and expand the configuration file if it exists
	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// If file doesn't exist, continue with defaults and environment variables

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// ReloadFromEnv reloads specific configuration values from environment variables
func ReloadFromEnv(cfg *Config) error {
	if envPath := os.Getenv("SIGNAL_TRADER_CONFIG_PATH"); envPath != "" {
		newCfg, err := Load(envPath)
		if err != nil {
			return err
		}
		*cfg = *newCfg
	}

	return nil
}
