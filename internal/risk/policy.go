// Package risk implements position sizing, exit thresholds, and the
// per-symbol position lifecycle.
package risk

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/signal-trader/internal/models"
)

// PolicyConfig holds the risk-management percentages. All values are
// configuration-supplied; the defaults match the standard policy.
type PolicyConfig struct {
	MaxPositionPct          float64
	StopLossHighConfidence  float64 // applied when confidence >= ConfidenceTier
	StopLossLowConfidence   float64 // applied when confidence < ConfidenceTier
	ConfidenceTier          float64
	TakeProfitPct           float64
	TrailingStopPct         float64
	TrailingActivationPct   float64
	HighVolatilityThreshold float64
	VolatilityAdjustment    float64 // multiplicative scale-down factor in (0,1)
	CommissionRate          float64
}

// DefaultPolicyConfig returns the standard risk parameters.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		MaxPositionPct:          0.95,
		StopLossHighConfidence:  0.12,
		StopLossLowConfidence:   0.08,
		ConfidenceTier:          0.8,
		TakeProfitPct:           0.25,
		TrailingStopPct:         0.06,
		TrailingActivationPct:   0.05,
		HighVolatilityThreshold: 0.35,
		VolatilityAdjustment:    0.3,
		CommissionRate:          0.003,
	}
}

// Validate checks policy parameters for internal consistency.
func (c PolicyConfig) Validate() error {
	if c.MaxPositionPct <= 0 || c.MaxPositionPct > 1 {
		return fmt.Errorf("max position pct must be in (0,1], got %.2f", c.MaxPositionPct)
	}
	if c.StopLossHighConfidence <= 0 || c.StopLossLowConfidence <= 0 {
		return fmt.Errorf("stop loss percentages must be positive")
	}
	if c.TakeProfitPct <= 0 {
		return fmt.Errorf("take profit pct must be positive")
	}
	if c.TrailingStopPct <= 0 || c.TrailingActivationPct < 0 {
		return fmt.Errorf("trailing stop parameters must be positive")
	}
	if c.VolatilityAdjustment < 0 || c.VolatilityAdjustment >= 1 {
		return fmt.Errorf("volatility adjustment must be in [0,1), got %.2f", c.VolatilityAdjustment)
	}
	return nil
}

// Policy converts an accepted BUY signal into sized, bounded risk parameters.
type Policy struct {
	config PolicyConfig
	logger *logrus.Logger
}

// NewPolicy creates a risk policy.
func NewPolicy(cfg PolicyConfig, logger *logrus.Logger) (*Policy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid risk policy config: %w", err)
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Policy{config: cfg, logger: logger}, nil
}

// Config returns the policy configuration.
func (p *Policy) Config() PolicyConfig {
	return p.config
}

// SizeAndBound computes the position fraction and exit thresholds for a BUY
// signal given available cash and the symbol's recent annualized volatility.
// The stop-loss tier intentionally gives higher-confidence signals wider room
// before being stopped out; this is a documented policy, not an error.
func (p *Policy) SizeAndBound(sig models.IntegratedSignal, availableCash float64, recentVolatility float64) (models.RiskParameters, error) {
	if sig.Action != models.ActionBuy {
		return models.RiskParameters{}, fmt.Errorf("risk policy sizes BUY signals only, got %s", sig.Action)
	}
	if availableCash <= 0 {
		return models.RiskParameters{}, fmt.Errorf("%w: no cash available", models.ErrInsufficientFunds)
	}

	fraction := math.Min(p.config.MaxPositionPct, sig.Confidence*1.2)
	if recentVolatility > p.config.HighVolatilityThreshold {
		fraction *= 1 - p.config.VolatilityAdjustment
		p.logger.WithFields(logrus.Fields{
			"volatility": recentVolatility,
			"threshold":  p.config.HighVolatilityThreshold,
			"fraction":   fraction,
		}).Debug("Position scaled down for volatility")
	}

	// Fail fast when the sized notional plus commission cannot be financed.
	notional := availableCash * fraction
	if notional*(1+p.config.CommissionRate) > availableCash {
		return models.RiskParameters{}, fmt.Errorf("%w: fraction %.3f of %.0f leaves no room for commission",
			models.ErrInsufficientFunds, fraction, availableCash)
	}

	stopLoss := p.config.StopLossLowConfidence
	if sig.Confidence >= p.config.ConfidenceTier {
		stopLoss = p.config.StopLossHighConfidence
	}

	params := models.RiskParameters{
		PositionFraction:      fraction,
		StopLossPct:           stopLoss,
		TakeProfitPct:         p.config.TakeProfitPct,
		TrailingStopPct:       p.config.TrailingStopPct,
		TrailingActivationPct: p.config.TrailingActivationPct,
	}

	p.logger.WithFields(logrus.Fields{
		"confidence":  sig.Confidence,
		"fraction":    params.PositionFraction,
		"stop_loss":   params.StopLossPct,
		"take_profit": params.TakeProfitPct,
	}).Debug("Risk parameters computed")

	return params, nil
}
