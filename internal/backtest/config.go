package backtest

import (
	"fmt"
	"time"

	"github.com/yourusername/signal-trader/internal/config"
)

// Config holds the runtime parameters of a simulation run.
type Config struct {
	StartDate            time.Time
	EndDate              time.Time
	InitialCapital       float64
	CommissionRate       float64
	SlippagePct          float64
	VolatilityWindow     int
	RiskFreeRate         float64
	ConfidenceThreshold  float64
	MinIndicators        int
	MonteCarloIterations int
	OutputPath           string
}

// FromConfig converts app config to backtest config
func FromConfig(cfg *config.Config) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("config is required")
	}
	start, err := time.Parse("2006-01-02", cfg.Backtest.StartDate)
	if err != nil {
		return Config{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", cfg.Backtest.EndDate)
	if err != nil {
		return Config{}, fmt.Errorf("invalid end date: %w", err)
	}

	bt := Config{
		StartDate:            start,
		EndDate:              end,
		InitialCapital:       cfg.Backtest.InitialCapital,
		CommissionRate:       cfg.Backtest.CommissionRate,
		SlippagePct:          cfg.Backtest.SlippagePct,
		VolatilityWindow:     cfg.Backtest.VolatilityWindow,
		RiskFreeRate:         cfg.Backtest.RiskFreeRate,
		ConfidenceThreshold:  cfg.Signals.ConfidenceThreshold,
		MinIndicators:        cfg.Signals.MinIndicators,
		MonteCarloIterations: cfg.Backtest.MonteCarloIterations,
		OutputPath:           cfg.Backtest.OutputPath,
	}

	return bt, bt.Validate()
}

// Validate validates backtest config parameters
func (c Config) Validate() error {
	if c.StartDate.After(c.EndDate) {
		return fmt.Errorf("start date must be before end date")
	}
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial capital must be positive")
	}
	if c.CommissionRate < 0 || c.CommissionRate > 0.1 {
		return fmt.Errorf("commission rate must be between 0 and 0.1")
	}
	if c.SlippagePct < 0 || c.SlippagePct > 0.05 {
		return fmt.Errorf("slippage pct must be between 0 and 0.05")
	}
	if c.VolatilityWindow <= 1 {
		return fmt.Errorf("volatility window must be greater than 1")
	}
	if c.MinIndicators <= 0 {
		return fmt.Errorf("min indicators must be positive")
	}
	return nil
}
