// Package config provides configuration management for the Signal Trader application.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	MarketData MarketDataConfig `mapstructure:"market_data" validate:"required"`
	Signals    SignalsConfig    `mapstructure:"signals" validate:"required"`
	Risk       RiskConfig       `mapstructure:"risk" validate:"required"`
	Backtest   BacktestConfig   `mapstructure:"backtest" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// MarketDataConfig represents the market data provider configuration
type MarketDataConfig struct {
	Provider           string  `mapstructure:"provider" validate:"required,oneof=yahoo csv"`
	BaseURL            string  `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey             string  `mapstructure:"api_key"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts      int     `mapstructure:"retry_attempts" validate:"gte=0"`
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	CacheTTLSeconds    int     `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	CSVDirectory       string  `mapstructure:"csv_directory"`
}

// SignalsConfig represents signal integration configuration
type SignalsConfig struct {
	ConfidenceThreshold float64            `mapstructure:"confidence_threshold" validate:"required,gte=0,lte=1"`
	MinIndicators       int                `mapstructure:"min_indicators" validate:"required,gt=0"`
	TagBonus            float64            `mapstructure:"tag_bonus" validate:"gte=0,lte=0.5"`
	ConfidenceCap       float64            `mapstructure:"confidence_cap" validate:"required,gt=0,lte=1"`
	ConfidenceFloor     float64            `mapstructure:"confidence_floor" validate:"gte=0,lte=1"`
	Weights             map[string]float64 `mapstructure:"weights"`
}

// RiskConfig represents position sizing and exit rule configuration
type RiskConfig struct {
	MaxPositionPct          float64 `mapstructure:"max_position_pct" validate:"required,gt=0,lte=1"`
	StopLossHighConfidence  float64 `mapstructure:"stop_loss_high_confidence" validate:"required,gt=0,lt=1"`
	StopLossLowConfidence   float64 `mapstructure:"stop_loss_low_confidence" validate:"required,gt=0,lt=1"`
	ConfidenceTier          float64 `mapstructure:"confidence_tier" validate:"required,gt=0,lte=1"`
	TakeProfitPct           float64 `mapstructure:"take_profit_pct" validate:"required,gt=0"`
	TrailingStopPct         float64 `mapstructure:"trailing_stop_pct" validate:"required,gt=0,lt=1"`
	TrailingActivationPct   float64 `mapstructure:"trailing_activation_pct" validate:"required,gt=0"`
	HighVolatilityThreshold float64 `mapstructure:"high_volatility_threshold" validate:"required,gt=0"`
	VolatilityAdjustment    float64 `mapstructure:"volatility_adjustment" validate:"gte=0,lt=1"`
}

// BacktestConfig represents backtesting configuration
type BacktestConfig struct {
	StartDate            string  `mapstructure:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate              string  `mapstructure:"end_date" validate:"required,datetime=2006-01-02"`
	InitialCapital       float64 `mapstructure:"initial_capital" validate:"required,gt=0"`
	CommissionRate       float64 `mapstructure:"commission_rate" validate:"gte=0,lte=0.1"`
	SlippagePct          float64 `mapstructure:"slippage_pct" validate:"gte=0,lte=0.05"`
	VolatilityWindow     int     `mapstructure:"volatility_window" validate:"required,gt=1"`
	RiskFreeRate         float64 `mapstructure:"risk_free_rate" validate:"gte=0,lte=1"`
	MonteCarloIterations int     `mapstructure:"monte_carlo_iterations" validate:"required,gt=0"`
	WalkForwardTrainBars int     `mapstructure:"walk_forward_train_bars" validate:"required,gt=0"`
	WalkForwardTestBars  int     `mapstructure:"walk_forward_test_bars" validate:"required,gt=0"`
	MaxConcurrentRuns    int     `mapstructure:"max_concurrent_runs" validate:"required,gt=0"`
	OutputPath           string  `mapstructure:"output_path" validate:"required"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
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
