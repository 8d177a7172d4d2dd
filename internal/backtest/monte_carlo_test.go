package backtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMonteCarlo_RequiresTrades(t *testing.T) {
	_, err := RunMonteCarlo(context.Background(), flatEquityResult(), MonteCarloConfig{Seed: 1})
	assert.Error(t, err)

	_, err = RunMonteCarlo(context.Background(), nil, MonteCarloConfig{Seed: 1})
	assert.Error(t, err)
}

func TestRunMonteCarlo_SeededDeterminism(t *testing.T) {
	result := flatEquityResult(tradeWithPnL(1000), tradeWithPnL(-400), tradeWithPnL(700))
	cfg := MonteCarloConfig{Iterations: 200, Seed: 42}

	first, err := RunMonteCarlo(context.Background(), result, cfg)
	require.NoError(t, err)
	second, err := RunMonteCarlo(context.Background(), result, cfg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRunMonteCarlo_DefaultsApplied(t *testing.T) {
	result := flatEquityResult(tradeWithPnL(1000), tradeWithPnL(-400))

	mc, err := RunMonteCarlo(context.Background(), result, MonteCarloConfig{Seed: 7})

	require.NoError(t, err)
	assert.Equal(t, 1000, mc.Iterations)
	assert.Len(t, mc.Distribution, 1000)
}

func TestRunMonteCarlo_ProbabilitiesBounded(t *testing.T) {
	result := flatEquityResult(tradeWithPnL(1000), tradeWithPnL(-400), tradeWithPnL(-800))

	mc, err := RunMonteCarlo(context.Background(), result, MonteCarloConfig{Iterations: 500, Seed: 3})

	require.NoError(t, err)
	assert.GreaterOrEqual(t, mc.ProbabilityOfProfit, 0.0)
	assert.LessOrEqual(t, mc.ProbabilityOfProfit, 1.0)
	assert.GreaterOrEqual(t, mc.ProbabilityOfRuin, 0.0)
	assert.LessOrEqual(t, mc.ProbabilityOfRuin, 1.0)
	assert.LessOrEqual(t, mc.VaR99, mc.VaR95)
}

func TestRunMonteCarlo_AllWinnersAlwaysProfit(t *testing.T) {
	result := flatEquityResult(tradeWithPnL(1000), tradeWithPnL(500))

	mc, err := RunMonteCarlo(context.Background(), result, MonteCarloConfig{Iterations: 300, Seed: 11})

	require.NoError(t, err)
	assert.Equal(t, 1.0, mc.ProbabilityOfProfit)
	assert.Zero(t, mc.ProbabilityOfRuin)
	assert.Positive(t, mc.MeanReturn)
}

func TestRunMonteCarlo_CancelledContext(t *testing.T) {
	result := flatEquityResult(tradeWithPnL(1000))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunMonteCarlo(ctx, result, MonteCarloConfig{Iterations: 10, Seed: 1})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalculateConfidenceIntervals(t *testing.T) {
	distribution := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	intervals := CalculateConfidenceIntervals(distribution, []float64{0.9, 0.95})

	require.Contains(t, intervals, "90%")
	require.Contains(t, intervals, "95%")
	assert.GreaterOrEqual(t, intervals["95%"], intervals["90%"])
}

func TestPercentile(t *testing.T) {
	values := []float64{5, 1, 3, 2, 4}

	assert.Equal(t, 1.0, percentile(values, 0))
	assert.Equal(t, 3.0, percentile(values, 0.5))
	assert.Equal(t, 5.0, percentile(values, 1))
	assert.Zero(t, percentile(nil, 0.5))
}
