package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"
)

// MonteCarloConfig configures monte carlo simulation
type MonteCarloConfig struct {
	Iterations      int
	Seed            int64
	InitialCapital  float64
	RuinThreshold   float64
}

// MonteCarloResult represents monte carlo outcomes
type MonteCarloResult struct {
	Iterations          int                `json:"iterations"`
	MeanReturn          float64            `json:"mean_return"`
	StdReturn           float64            `json:"std_return"`
	VaR95               float64            `json:"var_95"`
	VaR99               float64            `json:"var_99"`
	ProbabilityOfProfit float64            `json:"probability_of_profit"`
	ProbabilityOfRuin   float64            `json:"probability_of_ruin"`
	ConfidenceIntervals map[string]float64 `json:"confidence_intervals"`
	Distribution        []float64          `json:"distribution"`
}

// RunMonteCarlo resamples the realized trade P&Ls with replacement to
// estimate the distribution of outcomes the strategy could have produced.
func RunMonteCarlo(ctx context.Context, result *Result, cfg MonteCarloConfig) (MonteCarloResult, error) {
	if result == nil {
		return MonteCarloResult{}, fmt.Errorf("result is required")
	}
	if len(result.Trades) == 0 {
		return MonteCarloResult{}, fmt.Errorf("no trades to resample")
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = 1000
	}
	if cfg.InitialCapital <= 0 {
		cfg.InitialCapital = result.InitialCapital
	}
	ruinLevel := cfg.RuinThreshold
	if ruinLevel <= 0 {
		// Bankroll halving is treated as ruin for an equity strategy.
		ruinLevel = cfg.InitialCapital * 0.5
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	pnls := make([]float64, len(result.Trades))
	for i, trade := range result.Trades {
		pnls[i] = trade.NetPnL
	}

	rng := rand.New(rand.NewSource(seed))
	distribution := make([]float64, cfg.Iterations)

	for i := 0; i < cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return MonteCarloResult{}, err
		}
		equity := cfg.InitialCapital
		for range pnls {
			equity += pnls[rng.Intn(len(pnls))]
			if equity <= ruinLevel {
				break
			}
		}
		distribution[i] = equity
	}

	mean, std := meanStd(distribution)
	var95 := percentile(distribution, 0.05)
	var99 := percentile(distribution, 0.01)

	return MonteCarloResult{
		Iterations:          cfg.Iterations,
		MeanReturn:          (mean - cfg.InitialCapital) / cfg.InitialCapital,
		StdReturn:           std / cfg.InitialCapital,
		VaR95:               (var95 - cfg.InitialCapital) / cfg.InitialCapital,
		VaR99:               (var99 - cfg.InitialCapital) / cfg.InitialCapital,
		ProbabilityOfProfit: probabilityAbove(distribution, cfg.InitialCapital),
		ProbabilityOfRuin:   probabilityAtOrBelow(distribution, ruinLevel),
		ConfidenceIntervals: CalculateConfidenceIntervals(distribution, []float64{0.9, 0.95, 0.99}),
		Distribution:        distribution,
	}, nil
}

// CalculateConfidenceIntervals computes confidence intervals for distribution
func CalculateConfidenceIntervals(distribution []float64, levels []float64) map[string]float64 {
	results := make(map[string]float64)
	for _, level := range levels {
		p := (1.0 - level) / 2.0
		low := percentile(distribution, p)
		high := percentile(distribution, 1.0-p)
		results[formatPercent(level)] = high - low
	}
	return results
}

// ToJSON serializes the monte carlo result
func (m MonteCarloResult) ToJSON() string {
	data, _ := json.Marshal(m)
	return string(data)
}

func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	valuesCopy := append([]float64{}, values...)
	sort.Float64s(valuesCopy)
	idx := int(math.Floor(p * float64(len(valuesCopy)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(valuesCopy) {
		idx = len(valuesCopy) - 1
	}
	return valuesCopy[idx]
}

func probabilityAbove(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if v > threshold {
			count++
		}
	}
	return float64(count) / float64(len(values))
}

func probabilityAtOrBelow(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if v <= threshold {
			count++
		}
	}
	return float64(count) / float64(len(values))
}

func formatPercent(level float64) string {
	return fmt.Sprintf("%.0f%%", level*100)
}
