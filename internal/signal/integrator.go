// Package signal combines per-bar indicator readings into integrated,
// confidence-scored trade signals.
package signal

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/signal-trader/internal/metrics"
	"github.com/yourusername/signal-trader/internal/models"
)

// Config controls signal integration and filtering.
type Config struct {
	ConfidenceThreshold float64
	MinIndicators       int
	Weights             map[string]float64 // per indicator_id; missing entries default to 1
	TagBonus            float64
	ConfidenceCap       float64
	ConfidenceFloor     float64
}

// DefaultConfig returns the standard integration parameters.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: 0.7,
		MinIndicators:       3,
		TagBonus:            0.05,
		ConfidenceCap:       0.95,
		ConfidenceFloor:     0.5,
	}
}

// Integrator combines the readings of independent indicators for one bar into
// a single IntegratedSignal. Integration is a pure function of its inputs:
// identical readings always produce an identical signal.
type Integrator struct {
	config Config
	logger *logrus.Logger
}

// NewIntegrator creates an integrator with the given configuration.
func NewIntegrator(cfg Config, logger *logrus.Logger) *Integrator {
	if cfg.MinIndicators <= 0 {
		cfg.MinIndicators = 3
	}
	if cfg.ConfidenceCap <= 0 {
		cfg.ConfidenceCap = 0.95
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Integrator{config: cfg, logger: logger}
}

// Config returns the integrator configuration.
func (i *Integrator) Config() Config {
	return i.config
}

// Integrate combines all indicator readings for one bar. The direction with
// the higher weighted strength wins only when at least MinIndicators readings
// agree on it; otherwise the action is HOLD.
func (i *Integrator) Integrate(barTime time.Time, readings []models.IndicatorReading) models.IntegratedSignal {
	buyStrength, buyCount := i.weightedStrength(readings, models.DirectionBuy)
	sellStrength, sellCount := i.weightedStrength(readings, models.DirectionSell)

	action := models.ActionHold
	winnerStrength := 0.0
	winnerCount := 0

	switch {
	case buyStrength > sellStrength && buyCount >= i.config.MinIndicators:
		action = models.ActionBuy
		winnerStrength = buyStrength
		winnerCount = buyCount
	case sellStrength > buyStrength && sellCount >= i.config.MinIndicators:
		action = models.ActionSell
		winnerStrength = sellStrength
		winnerCount = sellCount
	}

	if action == models.ActionHold {
		return models.IntegratedSignal{
			BarTimestamp: barTime,
			Action:       models.ActionHold,
			Quality:      models.QualityWeak,
		}
	}

	confidence := i.scoreConfidence(winnerStrength, readings, action)

	return models.IntegratedSignal{
		BarTimestamp:       barTime,
		Action:             action,
		Confidence:         confidence,
		AgreeingIndicators: winnerCount,
		Quality:            models.QualityForConfidence(confidence),
	}
}

// IntegrateSeries produces one signal per bar from aligned per-bar reading
// sets. Bars inside an indicator's warm-up window simply contribute no
// reading for that indicator.
func (i *Integrator) IntegrateSeries(bars []models.Bar, readings map[time.Time][]models.IndicatorReading) []models.IntegratedSignal {
	signals := make([]models.IntegratedSignal, 0, len(bars))
	generated := 0
	for _, bar := range bars {
		sig := i.Integrate(bar.Timestamp, readings[bar.Timestamp])
		if sig.Action != models.ActionHold {
			generated++
			metrics.RecordSignalGenerated(string(sig.Action))
		}
		signals = append(signals, sig)
	}
	i.logger.WithFields(logrus.Fields{
		"bars":    len(bars),
		"signals": generated,
	}).Info("Integrated indicator readings")
	return signals
}

// weightedStrength computes the weighted average strength of the readings
// leaning in the given direction, along with how many agree.
func (i *Integrator) weightedStrength(readings []models.IndicatorReading, dir models.Direction) (float64, int) {
	sum := 0.0
	weightSum := 0.0
	count := 0
	for _, r := range readings {
		if r.Direction != dir {
			continue
		}
		w := i.weightFor(r.IndicatorID)
		sum += clamp01(r.Strength) * w
		weightSum += w
		count++
	}
	if weightSum == 0 {
		return 0, 0
	}
	return sum / weightSum, count
}

func (i *Integrator) weightFor(indicatorID string) float64 {
	if w, ok := i.config.Weights[indicatorID]; ok && w > 0 {
		return w
	}
	return 1.0
}

// scoreConfidence boosts the winning subset's weighted strength by a fixed
// bonus per confirming tag, caps the result, and floors it for any non-HOLD
// action.
func (i *Integrator) scoreConfidence(strength float64, readings []models.IndicatorReading, action models.Action) float64 {
	confidence := strength
	dir := models.DirectionBuy
	if action == models.ActionSell {
		dir = models.DirectionSell
	}
	for _, tag := range []models.ConfidenceTag{models.TagDivergence, models.TagSqueeze, models.TagVolumeConfirmed} {
		if tagPresent(readings, dir, tag) {
			confidence += i.config.TagBonus
		}
	}
	confidence = math.Min(confidence, i.config.ConfidenceCap)
	if confidence < i.config.ConfidenceFloor {
		confidence = i.config.ConfidenceFloor
	}
	return clamp01(confidence)
}

func tagPresent(readings []models.IndicatorReading, dir models.Direction, tag models.ConfidenceTag) bool {
	for _, r := range readings {
		if r.Direction == dir && r.HasTag(tag) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
