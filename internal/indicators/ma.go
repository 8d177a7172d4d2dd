package indicators

import (
	"math"

	"github.com/yourusername/signal-trader/internal/models"
)

// MovingAverageCross signals on the relationship between a fast and a slow
// simple moving average of closing prices.
type MovingAverageCross struct {
	id         string
	fastPeriod int
	slowPeriod int
}

// NewMovingAverageCross creates a moving average crossover indicator.
func NewMovingAverageCross(fastPeriod, slowPeriod int) *MovingAverageCross {
	if fastPeriod <= 0 {
		fastPeriod = 10
	}
	if slowPeriod <= fastPeriod {
		slowPeriod = fastPeriod * 3
	}
	return &MovingAverageCross{
		id:         "ma_cross",
		fastPeriod: fastPeriod,
		slowPeriod: slowPeriod,
	}
}

// ID returns the indicator identifier.
func (m *MovingAverageCross) ID() string {
	return m.id
}

// MinBars returns the warm-up requirement.
func (m *MovingAverageCross) MinBars() int {
	return m.slowPeriod
}

// GetParameters returns the indicator parameters.
func (m *MovingAverageCross) GetParameters() map[string]interface{} {
	return map[string]interface{}{
		"fast_period": m.fastPeriod,
		"slow_period": m.slowPeriod,
	}
}

// Compute evaluates the crossover state at bars[idx].
func (m *MovingAverageCross) Compute(bars []models.Bar, idx int) (models.IndicatorReading, bool) {
	if idx+1 < m.slowPeriod {
		return models.IndicatorReading{}, false
	}

	fast := simpleMovingAverage(bars, idx, m.fastPeriod)
	slow := simpleMovingAverage(bars, idx, m.slowPeriod)
	if slow == 0 {
		return models.IndicatorReading{}, false
	}

	// Spread relative to the slow average, saturating at 5%.
	spread := (fast - slow) / slow
	strength := math.Min(math.Abs(spread)/0.05, 1.0)

	direction := models.DirectionNeutral
	if spread > 0 {
		direction = models.DirectionBuy
	} else if spread < 0 {
		direction = models.DirectionSell
	}

	return models.IndicatorReading{
		IndicatorID:  m.id,
		BarTimestamp: bars[idx].Timestamp,
		Direction:    direction,
		Strength:     strength,
	}, true
}

func simpleMovingAverage(bars []models.Bar, idx int, period int) float64 {
	if period <= 0 || idx+1 < period {
		return 0
	}
	sum := 0.0
	for i := idx - period + 1; i <= idx; i++ {
		sum += bars[i].Close
	}
	return sum / float64(period)
}
