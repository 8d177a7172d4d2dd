package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/signal-trader/internal/models"
)

func tradeWithPnL(netPnL float64) *models.Trade {
	return &models.Trade{Symbol: "AAPL", NetPnL: netPnL}
}

func flatEquityResult(trades ...*models.Trade) *Result {
	curve := EquityCurve{}
	for i := 0; i < 10; i++ {
		curve = append(curve, EquityPoint{Time: baseTime().AddDate(0, 0, i), Value: 10000000})
	}
	return &Result{
		Symbol:         "AAPL",
		StartDate:      baseTime(),
		EndDate:        baseTime().AddDate(0, 0, 9),
		Bars:           10,
		InitialCapital: 10000000,
		FinalEquity:    10000000,
		Trades:         trades,
		EquityCurve:    curve,
	}
}

func TestCalculateMetrics_NilResult(t *testing.T) {
	assert.Equal(t, Metrics{}, CalculateMetrics(nil, 0.02))
}

func TestCalculateMetrics_TotalReturn(t *testing.T) {
	result := flatEquityResult()
	result.FinalEquity = 11000000

	metrics := CalculateMetrics(result, 0.02)

	assert.InDelta(t, 0.10, metrics.TotalReturn, 1e-9)
}

func TestCalculateMetrics_SharpeZeroAtZeroVolatility(t *testing.T) {
	metrics := CalculateMetrics(flatEquityResult(), 0.02)

	assert.Zero(t, metrics.Volatility)
	assert.Zero(t, metrics.SharpeRatio)
}

func TestCalculateMetrics_ProfitFactorInfiniteSentinel(t *testing.T) {
	result := flatEquityResult(tradeWithPnL(500), tradeWithPnL(300))

	metrics := CalculateMetrics(result, 0.02)

	assert.Equal(t, ProfitFactorInfinite, metrics.ProfitFactor)
}

func TestCalculateMetrics_ProfitFactorZeroWithoutTrades(t *testing.T) {
	metrics := CalculateMetrics(flatEquityResult(), 0.02)

	assert.Zero(t, metrics.ProfitFactor)
	assert.Zero(t, metrics.TotalTrades)
	assert.Zero(t, metrics.WinRate)
}

func TestCalculateMetrics_TradeStats(t *testing.T) {
	result := flatEquityResult(
		tradeWithPnL(1000),
		tradeWithPnL(400),
		tradeWithPnL(-200),
		tradeWithPnL(-600),
	)

	metrics := CalculateMetrics(result, 0.02)

	assert.Equal(t, 4, metrics.TotalTrades)
	assert.Equal(t, 2, metrics.WinningTrades)
	assert.Equal(t, 2, metrics.LosingTrades)
	assert.InDelta(t, 0.5, metrics.WinRate, 1e-9)
	assert.InDelta(t, 700.0, metrics.AverageWin, 1e-9)
	assert.InDelta(t, -400.0, metrics.AverageLoss, 1e-9)
	assert.InDelta(t, 1000.0, metrics.LargestWin, 1e-9)
	assert.InDelta(t, -600.0, metrics.LargestLoss, 1e-9)
	assert.InDelta(t, 1400.0/800.0, metrics.ProfitFactor, 1e-9)
}

func TestCalculateMetrics_MaxDrawdown(t *testing.T) {
	curve := EquityCurve{
		{Time: baseTime(), Value: 10000000},
		{Time: baseTime().AddDate(0, 0, 1), Value: 12000000},
		{Time: baseTime().AddDate(0, 0, 2), Value: 9000000},
		{Time: baseTime().AddDate(0, 0, 3), Value: 11000000},
	}
	result := &Result{
		StartDate:      baseTime(),
		EndDate:        baseTime().AddDate(0, 0, 3),
		Bars:           4,
		InitialCapital: 10000000,
		FinalEquity:    11000000,
		EquityCurve:    curve,
	}

	metrics := CalculateMetrics(result, 0.02)

	// Peak 12M to trough 9M.
	assert.InDelta(t, 0.25, metrics.MaxDrawdown, 1e-9)
}

func TestAnnualizeReturn(t *testing.T) {
	// A 10% gain over a full year annualizes to itself.
	assert.InDelta(t, 0.10, annualizeReturn(0.10, 365), 1e-9)
	assert.Zero(t, annualizeReturn(0.10, 0))
	assert.Zero(t, annualizeReturn(-1.0, 365))
}

func TestMetricsToJSON(t *testing.T) {
	metrics := Metrics{TotalReturn: 0.1, StartDate: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)}

	assert.Contains(t, metrics.ToJSON(), `"total_return":0.1`)
}
