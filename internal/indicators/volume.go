package indicators

import (
	"math"

	"github.com/yourusername/signal-trader/internal/models"
)

// OnBalanceVolume signals on the slope of cumulative signed volume, tagging
// readings where volume runs well above its recent average.
type OnBalanceVolume struct {
	id           string
	slopePeriod  int
	volumeFactor float64
}

// NewOnBalanceVolume creates an OBV indicator.
func NewOnBalanceVolume(slopePeriod int) *OnBalanceVolume {
	if slopePeriod <= 1 {
		slopePeriod = 10
	}
	return &OnBalanceVolume{
		id:           "obv",
		slopePeriod:  slopePeriod,
		volumeFactor: 1.5,
	}
}

// ID returns the indicator identifier.
func (o *OnBalanceVolume) ID() string {
	return o.id
}

// MinBars returns the warm-up requirement.
func (o *OnBalanceVolume) MinBars() int {
	return o.slopePeriod + 1
}

// GetParameters returns the indicator parameters.
func (o *OnBalanceVolume) GetParameters() map[string]interface{} {
	return map[string]interface{}{
		"slope_period":  o.slopePeriod,
		"volume_factor": o.volumeFactor,
	}
}

// Compute evaluates the OBV slope at bars[idx].
func (o *OnBalanceVolume) Compute(bars []models.Bar, idx int) (models.IndicatorReading, bool) {
	if idx < o.slopePeriod {
		return models.IndicatorReading{}, false
	}

	current := obvAt(bars, idx)
	prior := obvAt(bars, idx-o.slopePeriod)
	slope := current - prior

	avgVolume := 0.0
	for i := idx - o.slopePeriod + 1; i <= idx; i++ {
		avgVolume += bars[i].Volume
	}
	avgVolume /= float64(o.slopePeriod)

	reading := models.IndicatorReading{
		IndicatorID:  o.id,
		BarTimestamp: bars[idx].Timestamp,
		Direction:    models.DirectionNeutral,
	}

	if slope > 0 {
		reading.Direction = models.DirectionBuy
	} else if slope < 0 {
		reading.Direction = models.DirectionSell
	}

	if avgVolume > 0 {
		// Slope relative to what the window's volume could have contributed.
		reading.Strength = math.Min(math.Abs(slope)/(avgVolume*float64(o.slopePeriod)), 1.0)
	}

	if avgVolume > 0 && bars[idx].Volume >= avgVolume*o.volumeFactor {
		reading.Tags = append(reading.Tags, models.TagVolumeConfirmed)
	}

	return reading, true
}

func obvAt(bars []models.Bar, idx int) float64 {
	obv := 0.0
	for i := 1; i <= idx; i++ {
		switch {
		case bars[i].Close > bars[i-1].Close:
			obv += bars[i].Volume
		case bars[i].Close < bars[i-1].Close:
			obv -= bars[i].Volume
		}
	}
	return obv
}
