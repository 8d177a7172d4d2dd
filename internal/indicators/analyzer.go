package indicators

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/signal-trader/internal/models"
)

// Analyzer runs a set of indicators over a bar series and groups their
// readings by bar timestamp for the integrator.
type Analyzer struct {
	indicators []Indicator
	logger     *logrus.Logger
}

// NewAnalyzer creates an analyzer over the given indicators.
func NewAnalyzer(indicators []Indicator, logger *logrus.Logger) *Analyzer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Analyzer{
		indicators: indicators,
		logger:     logger,
	}
}

// DefaultIndicators returns the standard indicator set.
func DefaultIndicators() []Indicator {
	return []Indicator{
		NewMovingAverageCross(10, 30),
		NewRSI(14),
		NewMACD(12, 26, 9),
		NewBollingerBands(20, 2.0),
		NewOnBalanceVolume(10),
		NewStochasticOscillator(14, 3, 3),
	}
}

// MinBars returns the longest warm-up requirement across all indicators.
func (a *Analyzer) MinBars() int {
	minBars := 0
	for _, ind := range a.indicators {
		if ind.MinBars() > minBars {
			minBars = ind.MinBars()
		}
	}
	return minBars
}

// Analyze computes readings for every bar. Bars inside an indicator's
// warm-up window produce no reading for that indicator.
func (a *Analyzer) Analyze(bars []models.Bar) (map[time.Time][]models.IndicatorReading, error) {
	if err := models.ValidateBars(bars); err != nil {
		return nil, err
	}

	readings := make(map[time.Time][]models.IndicatorReading, len(bars))
	total := 0
	for idx := range bars {
		for _, ind := range a.indicators {
			reading, ok := ind.Compute(bars, idx)
			if !ok {
				continue
			}
			readings[bars[idx].Timestamp] = append(readings[bars[idx].Timestamp], reading)
			total++
		}
	}

	a.logger.WithFields(logrus.Fields{
		"bars":       len(bars),
		"indicators": len(a.indicators),
		"readings":   total,
	}).Debug("Indicator analysis completed")

	return readings, nil
}
