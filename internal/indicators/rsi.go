package indicators

import (
	"math"

	"github.com/yourusername/signal-trader/internal/models"
)

// RSI signals on the relative strength index, tagging bullish and bearish
// divergences between price and oscillator extremes.
type RSI struct {
	id         string
	period     int
	oversold   float64
	overbought float64
}

// NewRSI creates an RSI indicator with the given lookback period.
func NewRSI(period int) *RSI {
	if period <= 1 {
		period = 14
	}
	return &RSI{
		id:         "rsi",
		period:     period,
		oversold:   30,
		overbought: 70,
	}
}

// ID returns the indicator identifier.
func (r *RSI) ID() string {
	return r.id
}

// MinBars returns the warm-up requirement.
func (r *RSI) MinBars() int {
	// One extra bar for the first price change, plus divergence lookback.
	return r.period + 2
}

// GetParameters returns the indicator parameters.
func (r *RSI) GetParameters() map[string]interface{} {
	return map[string]interface{}{
		"period":     r.period,
		"oversold":   r.oversold,
		"overbought": r.overbought,
	}
}

// Compute evaluates the RSI at bars[idx].
func (r *RSI) Compute(bars []models.Bar, idx int) (models.IndicatorReading, bool) {
	if idx < r.MinBars() {
		return models.IndicatorReading{}, false
	}

	value := rsiValue(bars, idx, r.period)
	prevValue := rsiValue(bars, idx-1, r.period)

	reading := models.IndicatorReading{
		IndicatorID:  r.id,
		BarTimestamp: bars[idx].Timestamp,
		Direction:    models.DirectionNeutral,
	}

	switch {
	case value <= r.oversold:
		reading.Direction = models.DirectionBuy
		reading.Strength = math.Min((r.oversold-value)/r.oversold+0.5, 1.0)
	case value >= r.overbought:
		reading.Direction = models.DirectionSell
		reading.Strength = math.Min((value-r.overbought)/(100-r.overbought)+0.5, 1.0)
	default:
		// Mid-band: lean on the slope with low strength.
		if value > prevValue {
			reading.Direction = models.DirectionBuy
		} else if value < prevValue {
			reading.Direction = models.DirectionSell
		}
		reading.Strength = 0.3
	}

	if tag, ok := r.divergence(bars, idx, value); ok && tag == reading.Direction {
		reading.Tags = append(reading.Tags, models.TagDivergence)
	}

	return reading, true
}

// divergence detects price making a new extreme that the oscillator refuses
// to confirm over the lookback window.
func (r *RSI) divergence(bars []models.Bar, idx int, value float64) (models.Direction, bool) {
	lookback := r.period
	if idx < lookback+1 {
		return models.DirectionNeutral, false
	}

	priorLow := math.Inf(1)
	priorHigh := math.Inf(-1)
	priorLowRSI := 0.0
	priorHighRSI := 0.0
	for i := idx - lookback; i < idx; i++ {
		if bars[i].Low < priorLow {
			priorLow = bars[i].Low
			priorLowRSI = rsiValue(bars, i, r.period)
		}
		if bars[i].High > priorHigh {
			priorHigh = bars[i].High
			priorHighRSI = rsiValue(bars, i, r.period)
		}
	}

	// Bullish: lower price low with a higher oscillator low.
	if bars[idx].Low < priorLow && value > priorLowRSI {
		return models.DirectionBuy, true
	}
	// Bearish: higher price high with a lower oscillator high.
	if bars[idx].High > priorHigh && value < priorHighRSI {
		return models.DirectionSell, true
	}
	return models.DirectionNeutral, false
}

func rsiValue(bars []models.Bar, idx int, period int) float64 {
	if idx < period {
		return 50
	}
	gains := 0.0
	losses := 0.0
	for i := idx - period + 1; i <= idx; i++ {
		change := bars[i].Close - bars[i-1].Close
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	if losses == 0 {
		if gains == 0 {
			return 50
		}
		return 100
	}
	rs := gains / losses
	return 100 - 100/(1+rs)
}
