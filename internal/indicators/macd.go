package indicators

import (
	"math"

	"github.com/yourusername/signal-trader/internal/models"
)

// MACD signals on the moving average convergence divergence histogram.
type MACD struct {
	id           string
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a MACD indicator with the standard 12/26/9 defaults.
func NewMACD(fastPeriod, slowPeriod, signalPeriod int) *MACD {
	if fastPeriod <= 0 {
		fastPeriod = 12
	}
	if slowPeriod <= fastPeriod {
		slowPeriod = 26
	}
	if signalPeriod <= 0 {
		signalPeriod = 9
	}
	return &MACD{
		id:           "macd",
		fastPeriod:   fastPeriod,
		slowPeriod:   slowPeriod,
		signalPeriod: signalPeriod,
	}
}

// ID returns the indicator identifier.
func (m *MACD) ID() string {
	return m.id
}

// MinBars returns the warm-up requirement.
func (m *MACD) MinBars() int {
	return m.slowPeriod + m.signalPeriod
}

// GetParameters returns the indicator parameters.
func (m *MACD) GetParameters() map[string]interface{} {
	return map[string]interface{}{
		"fast_period":   m.fastPeriod,
		"slow_period":   m.slowPeriod,
		"signal_period": m.signalPeriod,
	}
}

// Compute evaluates the MACD histogram at bars[idx].
func (m *MACD) Compute(bars []models.Bar, idx int) (models.IndicatorReading, bool) {
	if idx+1 < m.MinBars() {
		return models.IndicatorReading{}, false
	}

	macdLine := make([]float64, m.signalPeriod)
	for i := range macdLine {
		at := idx - m.signalPeriod + 1 + i
		macdLine[i] = ema(bars, at, m.fastPeriod) - ema(bars, at, m.slowPeriod)
	}
	signalLine := emaOf(macdLine, m.signalPeriod)
	histogram := macdLine[len(macdLine)-1] - signalLine

	price := bars[idx].Close
	if price == 0 {
		return models.IndicatorReading{}, false
	}

	// Histogram scaled by price, saturating at 1% of price.
	strength := math.Min(math.Abs(histogram)/(price*0.01), 1.0)

	direction := models.DirectionNeutral
	if histogram > 0 {
		direction = models.DirectionBuy
	} else if histogram < 0 {
		direction = models.DirectionSell
	}

	return models.IndicatorReading{
		IndicatorID:  m.id,
		BarTimestamp: bars[idx].Timestamp,
		Direction:    direction,
		Strength:     strength,
	}, true
}

// ema computes an exponential moving average of closes ending at idx,
// seeded with a simple average over the first period.
func ema(bars []models.Bar, idx int, period int) float64 {
	if idx+1 < period {
		return 0
	}
	start := idx + 1 - period*2
	if start < 0 {
		start = 0
	}
	seedEnd := start + period
	if seedEnd > idx+1 {
		seedEnd = idx + 1
	}

	seed := 0.0
	for i := start; i < seedEnd; i++ {
		seed += bars[i].Close
	}
	value := seed / float64(seedEnd-start)

	multiplier := 2.0 / float64(period+1)
	for i := seedEnd; i <= idx; i++ {
		value = (bars[i].Close-value)*multiplier + value
	}
	return value
}

func emaOf(values []float64, period int) float64 {
	if len(values) == 0 {
		return 0
	}
	value := values[0]
	multiplier := 2.0 / float64(period+1)
	for _, v := range values[1:] {
		value = (v-value)*multiplier + value
	}
	return value
}
