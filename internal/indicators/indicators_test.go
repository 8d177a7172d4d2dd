package indicators

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/signal-trader/internal/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// barSeries builds one daily bar per close, with a small high/low envelope.
func barSeries(closes ...float64) []models.Bar {
	base := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, len(closes))
	prev := closes[0]
	for i, c := range closes {
		bars[i] = models.Bar{
			Timestamp: base.AddDate(0, 0, i),
			Open:      prev,
			High:      c * 1.005,
			Low:       c * 0.995,
			Close:     c,
			Volume:    1000000,
		}
		prev = c
	}
	return bars
}

func constantSeries(value float64, n int) []models.Bar {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = value
	}
	return barSeries(closes...)
}

func trendingSeries(start, step float64, n int) []models.Bar {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + step*float64(i)
	}
	return barSeries(closes...)
}

func TestMovingAverageCross_WarmUp(t *testing.T) {
	ind := NewMovingAverageCross(10, 30)
	bars := constantSeries(100, 40)

	_, ok := ind.Compute(bars, 28)
	assert.False(t, ok)

	_, ok = ind.Compute(bars, 29)
	assert.True(t, ok)
}

func TestMovingAverageCross_UptrendIsBuy(t *testing.T) {
	ind := NewMovingAverageCross(10, 30)
	bars := trendingSeries(100, 1, 40)

	reading, ok := ind.Compute(bars, 39)

	require.True(t, ok)
	assert.Equal(t, "ma_cross", reading.IndicatorID)
	assert.Equal(t, models.DirectionBuy, reading.Direction)
	assert.Positive(t, reading.Strength)
}

func TestMovingAverageCross_DowntrendIsSell(t *testing.T) {
	ind := NewMovingAverageCross(10, 30)
	bars := trendingSeries(200, -1, 40)

	reading, ok := ind.Compute(bars, 39)

	require.True(t, ok)
	assert.Equal(t, models.DirectionSell, reading.Direction)
}

func TestMovingAverageCross_FlatIsNeutral(t *testing.T) {
	ind := NewMovingAverageCross(10, 30)
	bars := constantSeries(100, 40)

	reading, ok := ind.Compute(bars, 39)

	require.True(t, ok)
	assert.Equal(t, models.DirectionNeutral, reading.Direction)
	assert.Zero(t, reading.Strength)
}

func TestSimpleMovingAverage(t *testing.T) {
	bars := barSeries(10, 20, 30, 40)

	assert.Equal(t, 30.0, simpleMovingAverage(bars, 3, 3))
	assert.Zero(t, simpleMovingAverage(bars, 1, 3))
}

func TestRSI_WarmUp(t *testing.T) {
	ind := NewRSI(14)
	bars := constantSeries(100, 20)

	_, ok := ind.Compute(bars, ind.MinBars()-1)
	assert.False(t, ok)

	_, ok = ind.Compute(bars, ind.MinBars())
	assert.True(t, ok)
}

func TestRSI_AllGainsIsOverbought(t *testing.T) {
	ind := NewRSI(14)
	bars := trendingSeries(100, 2, 30)

	reading, ok := ind.Compute(bars, 29)

	require.True(t, ok)
	assert.Equal(t, models.DirectionSell, reading.Direction)
	assert.Equal(t, 1.0, reading.Strength)
}

func TestRSI_AllLossesIsOversold(t *testing.T) {
	ind := NewRSI(14)
	bars := trendingSeries(200, -2, 30)

	reading, ok := ind.Compute(bars, 29)

	require.True(t, ok)
	assert.Equal(t, models.DirectionBuy, reading.Direction)
}

func TestRSIValue(t *testing.T) {
	bars := trendingSeries(100, 1, 30)

	assert.Equal(t, 100.0, rsiValue(bars, 20, 14))
	// Warm-up returns the neutral midpoint.
	assert.Equal(t, 50.0, rsiValue(bars, 5, 14))
}

func TestMACD_WarmUp(t *testing.T) {
	ind := NewMACD(12, 26, 9)
	bars := constantSeries(100, 50)

	_, ok := ind.Compute(bars, ind.MinBars()-2)
	assert.False(t, ok)
}

func TestMACD_UptrendIsBuy(t *testing.T) {
	ind := NewMACD(12, 26, 9)
	// Flat then accelerating: MACD line pulls above its signal line.
	closes := make([]float64, 60)
	for i := range closes {
		if i < 40 {
			closes[i] = 100
		} else {
			closes[i] = 100 + float64(i-40)*2
		}
	}
	bars := barSeries(closes...)

	reading, ok := ind.Compute(bars, 59)

	require.True(t, ok)
	assert.Equal(t, "macd", reading.IndicatorID)
	assert.Equal(t, models.DirectionBuy, reading.Direction)
}

func TestBollinger_BreakBelowLowerBandIsBuy(t *testing.T) {
	ind := NewBollingerBands(20, 2.0)
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100 + float64(i%5)
	}
	closes[24] = 80
	bars := barSeries(closes...)

	reading, ok := ind.Compute(bars, 24)

	require.True(t, ok)
	assert.Equal(t, models.DirectionBuy, reading.Direction)
	assert.GreaterOrEqual(t, reading.Strength, 0.5)
}

func TestBollinger_SqueezeTagOnTightBands(t *testing.T) {
	ind := NewBollingerBands(20, 2.0)
	bars := constantSeries(100, 25)

	reading, ok := ind.Compute(bars, 24)

	require.True(t, ok)
	assert.True(t, reading.HasTag(models.TagSqueeze))
}

func TestOBV_AccumulationIsBuy(t *testing.T) {
	ind := NewOnBalanceVolume(10)
	bars := trendingSeries(100, 1, 20)

	reading, ok := ind.Compute(bars, 19)

	require.True(t, ok)
	assert.Equal(t, models.DirectionBuy, reading.Direction)
	assert.Positive(t, reading.Strength)
}

func TestOBV_VolumeConfirmedTag(t *testing.T) {
	ind := NewOnBalanceVolume(10)
	bars := trendingSeries(100, 1, 20)
	bars[19].Volume = 5000000

	reading, ok := ind.Compute(bars, 19)

	require.True(t, ok)
	assert.True(t, reading.HasTag(models.TagVolumeConfirmed))
}

// rangeBars builds bars pinned to a fixed 90..110 band so %K depends only on
// where each close sits inside it.
func rangeBars(closes ...float64) []models.Bar {
	base := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, len(closes))
	prev := closes[0]
	for i, c := range closes {
		bars[i] = models.Bar{
			Timestamp: base.AddDate(0, 0, i),
			Open:      prev,
			High:      110,
			Low:       90,
			Close:     c,
			Volume:    1000000,
		}
		prev = c
	}
	return bars
}

func levelThen(level float64, n int, last float64) []models.Bar {
	closes := make([]float64, n+1)
	for i := 0; i < n; i++ {
		closes[i] = level
	}
	closes[n] = last
	return rangeBars(closes...)
}

func TestStochastic_WarmUp(t *testing.T) {
	ind := NewStochasticOscillator(14, 3, 3)
	bars := constantSeries(100, 25)

	_, ok := ind.Compute(bars, ind.MinBars()-1)
	assert.False(t, ok)

	_, ok = ind.Compute(bars, ind.MinBars())
	assert.True(t, ok)
}

func TestStochastic_FastKPlacesCloseInRange(t *testing.T) {
	ind := NewStochasticOscillator(14, 3, 3)
	bars := levelThen(100, 24, 95)

	// Band is 90..110, so a 95 close sits a quarter of the way up.
	assert.InDelta(t, 25.0, ind.fastK(bars, 24), 1e-9)
	assert.InDelta(t, 50.0, ind.fastK(bars, 23), 1e-9)
}

func TestStochastic_OversoldBounceIsStrongBuy(t *testing.T) {
	ind := NewStochasticOscillator(14, 3, 3)
	// %K sits at 10 through the window, then the 95 close lifts slow %K to 15:
	// a golden cross inside the oversold band.
	bars := levelThen(92, 24, 95)

	reading, ok := ind.Compute(bars, 24)

	require.True(t, ok)
	assert.Equal(t, "stochastic", reading.IndicatorID)
	assert.Equal(t, models.DirectionBuy, reading.Direction)
	assert.InDelta(t, 0.85, reading.Strength, 1e-9)
}

func TestStochastic_OverboughtDeclineIsStrongSell(t *testing.T) {
	ind := NewStochasticOscillator(14, 3, 3)
	// %K sits at 90, then the 105 close drags slow %K to 85: a death cross
	// inside the overbought band.
	bars := levelThen(108, 24, 105)

	reading, ok := ind.Compute(bars, 24)

	require.True(t, ok)
	assert.Equal(t, models.DirectionSell, reading.Direction)
	assert.InDelta(t, 0.85, reading.Strength, 1e-9)
}

func TestStochastic_MidBandCrossIsModerateBuy(t *testing.T) {
	ind := NewStochasticOscillator(14, 3, 3)
	// %K at 40, then a 102 close lifts slow %K to 46.67: a golden cross below
	// the midline but outside the oversold band.
	bars := levelThen(98, 24, 102)

	reading, ok := ind.Compute(bars, 24)

	require.True(t, ok)
	assert.Equal(t, models.DirectionBuy, reading.Direction)
	assert.InDelta(t, 0.6, reading.Strength, 1e-9)
}

func TestStochastic_NoCrossLeansNeutral(t *testing.T) {
	ind := NewStochasticOscillator(14, 3, 3)
	bars := levelThen(100, 24, 100)

	reading, ok := ind.Compute(bars, 24)

	require.True(t, ok)
	assert.Equal(t, models.DirectionNeutral, reading.Direction)
	assert.InDelta(t, 0.3, reading.Strength, 1e-9)
}

func TestAnalyzer_GroupsReadingsByBar(t *testing.T) {
	analyzer := NewAnalyzer(DefaultIndicators(), quietLogger())
	bars := trendingSeries(100, 0.5, 60)

	readings, err := analyzer.Analyze(bars)

	require.NoError(t, err)
	// The first bar is inside every warm-up window.
	assert.Empty(t, readings[bars[0].Timestamp])
	// Past the longest warm-up every indicator reports.
	assert.Len(t, readings[bars[59].Timestamp], 6)
}

func TestAnalyzer_MinBars(t *testing.T) {
	analyzer := NewAnalyzer(DefaultIndicators(), quietLogger())

	// MACD needs slow + signal periods, the longest warm-up in the set.
	assert.Equal(t, 35, analyzer.MinBars())
}

func TestAnalyzer_RejectsInvalidBars(t *testing.T) {
	analyzer := NewAnalyzer(DefaultIndicators(), quietLogger())

	_, err := analyzer.Analyze(nil)

	assert.Error(t, err)
}

func TestDefaultIndicators_UniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, ind := range DefaultIndicators() {
		assert.False(t, seen[ind.ID()], "duplicate indicator id %s", ind.ID())
		seen[ind.ID()] = true
		assert.Positive(t, ind.MinBars())
		assert.NotEmpty(t, ind.GetParameters())
	}
}
