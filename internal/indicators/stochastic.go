package indicators

import (
	"math"

	"github.com/yourusername/signal-trader/internal/models"
)

// StochasticOscillator signals on slow %K / %D crossovers. Crossovers inside
// the oversold or overbought band carry the most weight; mid-band crossovers
// are weaker, and divergences against price extremes are tagged.
type StochasticOscillator struct {
	id          string
	kPeriod     int
	dPeriod     int
	slowKPeriod int
	oversold    float64
	overbought  float64
}

// NewStochasticOscillator creates a stochastic oscillator with the given %K
// lookback and smoothing periods.
func NewStochasticOscillator(kPeriod, dPeriod, slowKPeriod int) *StochasticOscillator {
	if kPeriod <= 1 {
		kPeriod = 14
	}
	if dPeriod <= 0 {
		dPeriod = 3
	}
	if slowKPeriod <= 0 {
		slowKPeriod = 3
	}
	return &StochasticOscillator{
		id:          "stochastic",
		kPeriod:     kPeriod,
		dPeriod:     dPeriod,
		slowKPeriod: slowKPeriod,
		oversold:    20,
		overbought:  80,
	}
}

// ID returns the indicator identifier.
func (s *StochasticOscillator) ID() string {
	return s.id
}

// MinBars returns the warm-up requirement.
func (s *StochasticOscillator) MinBars() int {
	// Covers the %K lookback, both smoothing passes, and the prior bar needed
	// to detect a crossover.
	return s.kPeriod + s.slowKPeriod + s.dPeriod
}

// GetParameters returns the indicator parameters.
func (s *StochasticOscillator) GetParameters() map[string]interface{} {
	return map[string]interface{}{
		"k_period":      s.kPeriod,
		"d_period":      s.dPeriod,
		"slow_k_period": s.slowKPeriod,
		"oversold":      s.oversold,
		"overbought":    s.overbought,
	}
}

// Compute evaluates the oscillator at bars[idx].
func (s *StochasticOscillator) Compute(bars []models.Bar, idx int) (models.IndicatorReading, bool) {
	if idx < s.MinBars() {
		return models.IndicatorReading{}, false
	}

	k := s.slowK(bars, idx)
	d := s.dValue(bars, idx)
	prevK := s.slowK(bars, idx-1)
	prevD := s.dValue(bars, idx-1)

	goldenCross := k > d && prevK <= prevD
	deathCross := k < d && prevK >= prevD

	reading := models.IndicatorReading{
		IndicatorID:  s.id,
		BarTimestamp: bars[idx].Timestamp,
		Direction:    models.DirectionNeutral,
	}

	switch {
	case goldenCross && k <= s.oversold:
		// Oversold bounce: %K crosses above %D inside the oversold band.
		reading.Direction = models.DirectionBuy
		reading.Strength = 0.85
	case deathCross && k >= s.overbought:
		// Overbought decline.
		reading.Direction = models.DirectionSell
		reading.Strength = 0.85
	case goldenCross && k < 50:
		reading.Direction = models.DirectionBuy
		reading.Strength = 0.6
	case deathCross && k > 50:
		reading.Direction = models.DirectionSell
		reading.Strength = 0.6
	default:
		// No crossover: lean on %K relative to %D with low strength.
		if k > d {
			reading.Direction = models.DirectionBuy
		} else if k < d {
			reading.Direction = models.DirectionSell
		}
		reading.Strength = 0.3
	}

	if tag, ok := s.divergence(bars, idx, k); ok && tag == reading.Direction {
		reading.Tags = append(reading.Tags, models.TagDivergence)
	}

	return reading, true
}

// divergence detects price making a new extreme that the oscillator refuses
// to confirm over the %K lookback window.
func (s *StochasticOscillator) divergence(bars []models.Bar, idx int, k float64) (models.Direction, bool) {
	lookback := s.kPeriod
	if idx-lookback < s.MinBars() {
		return models.DirectionNeutral, false
	}

	priorLow := math.Inf(1)
	priorHigh := math.Inf(-1)
	priorLowK := 0.0
	priorHighK := 0.0
	for i := idx - lookback; i < idx; i++ {
		if bars[i].Low < priorLow {
			priorLow = bars[i].Low
			priorLowK = s.slowK(bars, i)
		}
		if bars[i].High > priorHigh {
			priorHigh = bars[i].High
			priorHighK = s.slowK(bars, i)
		}
	}

	if bars[idx].Low < priorLow && k > priorLowK {
		return models.DirectionBuy, true
	}
	if bars[idx].High > priorHigh && k < priorHighK {
		return models.DirectionSell, true
	}
	return models.DirectionNeutral, false
}

// fastK is the raw %K: where the close sits inside the lookback range.
func (s *StochasticOscillator) fastK(bars []models.Bar, idx int) float64 {
	low := math.Inf(1)
	high := math.Inf(-1)
	for i := idx - s.kPeriod + 1; i <= idx; i++ {
		if bars[i].Low < low {
			low = bars[i].Low
		}
		if bars[i].High > high {
			high = bars[i].High
		}
	}
	if high == low {
		// Flat range: neutral midpoint.
		return 50
	}
	return (bars[idx].Close - low) / (high - low) * 100
}

// slowK smooths the raw %K over the slow-K period.
func (s *StochasticOscillator) slowK(bars []models.Bar, idx int) float64 {
	sum := 0.0
	for i := idx - s.slowKPeriod + 1; i <= idx; i++ {
		sum += s.fastK(bars, i)
	}
	return sum / float64(s.slowKPeriod)
}

// dValue smooths the slow %K over the %D period.
func (s *StochasticOscillator) dValue(bars []models.Bar, idx int) float64 {
	sum := 0.0
	for i := idx - s.dPeriod + 1; i <= idx; i++ {
		sum += s.slowK(bars, i)
	}
	return sum / float64(s.dPeriod)
}
