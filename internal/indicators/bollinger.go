package indicators

import (
	"math"

	"github.com/yourusername/signal-trader/internal/models"
)

// BollingerBands signals on price relative to volatility bands around a
// moving average, tagging low-bandwidth squeezes.
type BollingerBands struct {
	id               string
	period           int
	stdDevMultiplier float64
	squeezeBandwidth float64
}

// NewBollingerBands creates a Bollinger band indicator.
func NewBollingerBands(period int, stdDevMultiplier float64) *BollingerBands {
	if period <= 1 {
		period = 20
	}
	if stdDevMultiplier <= 0 {
		stdDevMultiplier = 2.0
	}
	return &BollingerBands{
		id:               "bollinger",
		period:           period,
		stdDevMultiplier: stdDevMultiplier,
		squeezeBandwidth: 0.04,
	}
}

// ID returns the indicator identifier.
func (b *BollingerBands) ID() string {
	return b.id
}

// MinBars returns the warm-up requirement.
func (b *BollingerBands) MinBars() int {
	return b.period
}

// GetParameters returns the indicator parameters.
func (b *BollingerBands) GetParameters() map[string]interface{} {
	return map[string]interface{}{
		"period":             b.period,
		"std_dev_multiplier": b.stdDevMultiplier,
		"squeeze_bandwidth":  b.squeezeBandwidth,
	}
}

// Compute evaluates band position at bars[idx].
func (b *BollingerBands) Compute(bars []models.Bar, idx int) (models.IndicatorReading, bool) {
	if idx+1 < b.period {
		return models.IndicatorReading{}, false
	}

	middle := simpleMovingAverage(bars, idx, b.period)
	if middle == 0 {
		return models.IndicatorReading{}, false
	}

	variance := 0.0
	for i := idx - b.period + 1; i <= idx; i++ {
		diff := bars[i].Close - middle
		variance += diff * diff
	}
	stdDev := math.Sqrt(variance / float64(b.period))

	upper := middle + b.stdDevMultiplier*stdDev
	lower := middle - b.stdDevMultiplier*stdDev
	close := bars[idx].Close

	reading := models.IndicatorReading{
		IndicatorID:  b.id,
		BarTimestamp: bars[idx].Timestamp,
		Direction:    models.DirectionNeutral,
	}

	bandWidth := upper - lower
	switch {
	case close <= lower:
		reading.Direction = models.DirectionBuy
		if bandWidth > 0 {
			reading.Strength = math.Min(0.5+(lower-close)/bandWidth, 1.0)
		} else {
			reading.Strength = 0.5
		}
	case close >= upper:
		reading.Direction = models.DirectionSell
		if bandWidth > 0 {
			reading.Strength = math.Min(0.5+(close-upper)/bandWidth, 1.0)
		} else {
			reading.Strength = 0.5
		}
	default:
		// Inside the bands: weak lean toward the mean.
		if close < middle {
			reading.Direction = models.DirectionBuy
		} else if close > middle {
			reading.Direction = models.DirectionSell
		}
		reading.Strength = 0.25
	}

	// A squeeze precedes expansion; flag it so agreement is rewarded.
	if middle > 0 && bandWidth/middle < b.squeezeBandwidth {
		reading.Tags = append(reading.Tags, models.TagSqueeze)
	}

	return reading, true
}
