package signal

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/signal-trader/internal/metrics"
	"github.com/yourusername/signal-trader/internal/models"
)

func testBarTime() time.Time {
	return time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func reading(id string, dir models.Direction, strength float64, tags ...models.ConfidenceTag) models.IndicatorReading {
	return models.IndicatorReading{
		IndicatorID:  id,
		BarTimestamp: testBarTime(),
		Direction:    dir,
		Strength:     strength,
		Tags:         tags,
	}
}

func TestIntegrator_BuySignalWhenEnoughIndicatorsAgree(t *testing.T) {
	integrator := NewIntegrator(DefaultConfig(), testLogger())

	sig := integrator.Integrate(testBarTime(), []models.IndicatorReading{
		reading("rsi", models.DirectionBuy, 0.8),
		reading("macd", models.DirectionBuy, 0.7),
		reading("bollinger", models.DirectionBuy, 0.9),
		reading("obv", models.DirectionSell, 0.4),
	})

	assert.Equal(t, models.ActionBuy, sig.Action)
	assert.Equal(t, 3, sig.AgreeingIndicators)
	assert.Equal(t, models.QualityVeryGood, sig.Quality)
	assert.InDelta(t, 0.8, sig.Confidence, 1e-9)
}

func TestIntegrator_HoldWhenBelowMinIndicators(t *testing.T) {
	integrator := NewIntegrator(DefaultConfig(), testLogger())

	sig := integrator.Integrate(testBarTime(), []models.IndicatorReading{
		reading("rsi", models.DirectionBuy, 0.9),
		reading("macd", models.DirectionBuy, 0.9),
	})

	assert.Equal(t, models.ActionHold, sig.Action)
	assert.Equal(t, models.QualityWeak, sig.Quality)
	assert.Zero(t, sig.Confidence)
}

func TestIntegrator_HoldOnTie(t *testing.T) {
	integrator := NewIntegrator(DefaultConfig(), testLogger())

	sig := integrator.Integrate(testBarTime(), []models.IndicatorReading{
		reading("rsi", models.DirectionBuy, 0.6),
		reading("macd", models.DirectionBuy, 0.6),
		reading("ma_cross", models.DirectionBuy, 0.6),
		reading("bollinger", models.DirectionSell, 0.6),
		reading("obv", models.DirectionSell, 0.6),
		reading("stoch", models.DirectionSell, 0.6),
	})

	assert.Equal(t, models.ActionHold, sig.Action)
}

func TestIntegrator_WeightsFavorHeavierIndicator(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights = map[string]float64{"macd": 3.0}
	integrator := NewIntegrator(cfg, testLogger())

	// Weighted buy average (0.9*3 + 0.5 + 0.5) / 5 = 0.74.
	sig := integrator.Integrate(testBarTime(), []models.IndicatorReading{
		reading("macd", models.DirectionBuy, 0.9),
		reading("rsi", models.DirectionBuy, 0.5),
		reading("ma_cross", models.DirectionBuy, 0.5),
	})

	require.Equal(t, models.ActionBuy, sig.Action)
	assert.InDelta(t, 0.74, sig.Confidence, 1e-9)
}

func TestIntegrator_TagBonusAppliedPerDistinctTag(t *testing.T) {
	integrator := NewIntegrator(DefaultConfig(), testLogger())

	sig := integrator.Integrate(testBarTime(), []models.IndicatorReading{
		reading("rsi", models.DirectionBuy, 0.7, models.TagDivergence),
		reading("bollinger", models.DirectionBuy, 0.7, models.TagSqueeze),
		reading("obv", models.DirectionBuy, 0.7, models.TagVolumeConfirmed),
	})

	require.Equal(t, models.ActionBuy, sig.Action)
	assert.InDelta(t, 0.85, sig.Confidence, 1e-9)
}

func TestIntegrator_OpposingTagDoesNotBoost(t *testing.T) {
	integrator := NewIntegrator(DefaultConfig(), testLogger())

	sig := integrator.Integrate(testBarTime(), []models.IndicatorReading{
		reading("rsi", models.DirectionBuy, 0.75),
		reading("macd", models.DirectionBuy, 0.75),
		reading("ma_cross", models.DirectionBuy, 0.75),
		reading("bollinger", models.DirectionSell, 0.3, models.TagSqueeze),
	})

	require.Equal(t, models.ActionBuy, sig.Action)
	assert.InDelta(t, 0.75, sig.Confidence, 1e-9)
}

func TestIntegrator_ConfidenceCapped(t *testing.T) {
	integrator := NewIntegrator(DefaultConfig(), testLogger())

	sig := integrator.Integrate(testBarTime(), []models.IndicatorReading{
		reading("rsi", models.DirectionBuy, 1.0, models.TagDivergence),
		reading("macd", models.DirectionBuy, 1.0, models.TagVolumeConfirmed),
		reading("bollinger", models.DirectionBuy, 1.0, models.TagSqueeze),
	})

	require.Equal(t, models.ActionBuy, sig.Action)
	assert.Equal(t, 0.95, sig.Confidence)
	assert.Equal(t, models.QualityExcellent, sig.Quality)
}

func TestIntegrator_ConfidenceFloorForActionableSignal(t *testing.T) {
	integrator := NewIntegrator(DefaultConfig(), testLogger())

	sig := integrator.Integrate(testBarTime(), []models.IndicatorReading{
		reading("rsi", models.DirectionSell, 0.2),
		reading("macd", models.DirectionSell, 0.2),
		reading("bollinger", models.DirectionSell, 0.2),
	})

	require.Equal(t, models.ActionSell, sig.Action)
	assert.Equal(t, 0.5, sig.Confidence)
	assert.Equal(t, models.QualityWeak, sig.Quality)
}

func TestIntegrator_Deterministic(t *testing.T) {
	integrator := NewIntegrator(DefaultConfig(), testLogger())
	readings := []models.IndicatorReading{
		reading("rsi", models.DirectionBuy, 0.81, models.TagDivergence),
		reading("macd", models.DirectionBuy, 0.66),
		reading("bollinger", models.DirectionBuy, 0.74),
		reading("obv", models.DirectionSell, 0.3),
	}

	first := integrator.Integrate(testBarTime(), readings)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, integrator.Integrate(testBarTime(), readings))
	}
}

func TestIntegrator_EmptyReadingsHold(t *testing.T) {
	integrator := NewIntegrator(DefaultConfig(), testLogger())

	sig := integrator.Integrate(testBarTime(), nil)

	assert.Equal(t, models.ActionHold, sig.Action)
	assert.Equal(t, testBarTime(), sig.BarTimestamp)
}

func TestIntegrateSeries_OneSignalPerBar(t *testing.T) {
	integrator := NewIntegrator(DefaultConfig(), testLogger())

	bars := []models.Bar{
		{Timestamp: testBarTime(), Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 1000},
		{Timestamp: testBarTime().Add(24 * time.Hour), Open: 100.5, High: 102, Low: 100, Close: 101.5, Volume: 1100},
	}
	readings := map[time.Time][]models.IndicatorReading{
		bars[1].Timestamp: {
			reading("rsi", models.DirectionBuy, 0.8),
			reading("macd", models.DirectionBuy, 0.8),
			reading("bollinger", models.DirectionBuy, 0.8),
		},
	}

	signals := integrator.IntegrateSeries(bars, readings)

	require.Len(t, signals, 2)
	assert.Equal(t, models.ActionHold, signals[0].Action)
	assert.Equal(t, models.ActionBuy, signals[1].Action)
	assert.Equal(t, bars[1].Timestamp, signals[1].BarTimestamp)
}

func TestIntegrateSeries_CountsGeneratedSignals(t *testing.T) {
	before := testutil.ToFloat64(metrics.SignalsGeneratedTotal.WithLabelValues(string(models.ActionBuy)))

	integrator := NewIntegrator(DefaultConfig(), testLogger())
	bars := []models.Bar{
		{Timestamp: testBarTime(), Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 1000},
	}
	readings := map[time.Time][]models.IndicatorReading{
		bars[0].Timestamp: {
			reading("rsi", models.DirectionBuy, 0.8),
			reading("macd", models.DirectionBuy, 0.8),
			reading("bollinger", models.DirectionBuy, 0.8),
		},
	}

	integrator.IntegrateSeries(bars, readings)

	after := testutil.ToFloat64(metrics.SignalsGeneratedTotal.WithLabelValues(string(models.ActionBuy)))
	assert.InDelta(t, before+1, after, 1e-9)
}

func TestQualityForConfidenceBuckets(t *testing.T) {
	tests := []struct {
		confidence float64
		expected   models.Quality
	}{
		{0.95, models.QualityExcellent},
		{0.9, models.QualityExcellent},
		{0.85, models.QualityVeryGood},
		{0.8, models.QualityVeryGood},
		{0.75, models.QualityGood},
		{0.7, models.QualityGood},
		{0.65, models.QualityFair},
		{0.6, models.QualityFair},
		{0.55, models.QualityWeak},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, models.QualityForConfidence(tt.confidence), "confidence %.2f", tt.confidence)
	}
}
