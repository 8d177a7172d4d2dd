package backtest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yourusername/signal-trader/internal/models"
)

// WalkForwardConfig configures walk-forward analysis
type WalkForwardConfig struct {
	TrainingBars       int
	TestBars           int
	StepBars           int
	MinTradesPerWindow int
}

// WalkForwardWindow represents one walk-forward window
type WalkForwardWindow struct {
	WindowID     int     `json:"window_id"`
	TrainStart   int     `json:"train_start"`
	TrainEnd     int     `json:"train_end"`
	TestStart    int     `json:"test_start"`
	TestEnd      int     `json:"test_end"`
	TrainMetrics Metrics `json:"train_metrics"`
	TestMetrics  Metrics `json:"test_metrics"`
}

// WalkForwardResult represents walk-forward analysis result
type WalkForwardResult struct {
	Windows           []WalkForwardWindow `json:"windows"`
	AggregatedMetrics Metrics             `json:"aggregated_metrics"`
	ConsistencyScore  float64             `json:"consistency_score"`
	OverfitScore      float64             `json:"overfit_score"`
}

// RunWalkForward replays the simulation over rolling train/test bar windows
// to gauge whether out-of-sample performance holds up.
func RunWalkForward(ctx context.Context, engine *Engine, symbol string, bars []models.Bar, signals []models.IntegratedSignal, cfg WalkForwardConfig) (WalkForwardResult, error) {
	if engine == nil {
		return WalkForwardResult{}, fmt.Errorf("engine is required")
	}
	if len(bars) != len(signals) {
		return WalkForwardResult{}, models.ErrMisalignedSeries
	}
	if cfg.TrainingBars <= 0 || cfg.TestBars <= 0 {
		return WalkForwardResult{}, fmt.Errorf("training and test windows must be positive")
	}
	if cfg.StepBars <= 0 {
		cfg.StepBars = cfg.TestBars
	}

	riskFree := engine.Config().RiskFreeRate
	windows := []WalkForwardWindow{}
	windowID := 0

	for start := 0; start+cfg.TrainingBars+cfg.TestBars <= len(bars); start += cfg.StepBars {
		trainStart := start
		trainEnd := trainStart + cfg.TrainingBars
		testStart := trainEnd
		testEnd := testStart + cfg.TestBars

		windowID++
		trainResult, err := engine.Run(ctx, symbol, bars[trainStart:trainEnd], signals[trainStart:trainEnd])
		if err != nil {
			return WalkForwardResult{}, fmt.Errorf("window %d train run: %w", windowID, err)
		}
		testResult, err := engine.Run(ctx, symbol, bars[testStart:testEnd], signals[testStart:testEnd])
		if err != nil {
			return WalkForwardResult{}, fmt.Errorf("window %d test run: %w", windowID, err)
		}
		if !meetsTradeThreshold(cfg.MinTradesPerWindow, trainResult, testResult) {
			continue
		}

		windows = append(windows, WalkForwardWindow{
			WindowID:     windowID,
			TrainStart:   trainStart,
			TrainEnd:     trainEnd,
			TestStart:    testStart,
			TestEnd:      testEnd,
			TrainMetrics: CalculateMetrics(trainResult, riskFree),
			TestMetrics:  CalculateMetrics(testResult, riskFree),
		})
	}

	return WalkForwardResult{
		Windows:           windows,
		AggregatedMetrics: aggregateWalkForward(windows),
		ConsistencyScore:  CalculateConsistency(windows),
		OverfitScore:      calculateOverfitScore(windows),
	}, nil
}

func meetsTradeThreshold(minTrades int, train, test *Result) bool {
	if minTrades <= 0 {
		return true
	}
	if test == nil || len(test.Trades) < minTrades {
		return false
	}
	if train == nil || len(train.Trades) < minTrades {
		return false
	}
	return true
}

// CalculateConsistency calculates percentage of profitable test windows
func CalculateConsistency(windows []WalkForwardWindow) float64 {
	if len(windows) == 0 {
		return 0
	}
	profitable := 0
	for _, w := range windows {
		if w.TestMetrics.TotalReturn > 0 {
			profitable++
		}
	}
	return float64(profitable) / float64(len(windows))
}

func calculateOverfitScore(windows []WalkForwardWindow) float64 {
	if len(windows) == 0 {
		return 0
	}
	trainReturn := 0.0
	testReturn := 0.0
	for _, w := range windows {
		trainReturn += w.TrainMetrics.TotalReturn
		testReturn += w.TestMetrics.TotalReturn
	}
	if trainReturn == 0 {
		return 0
	}
	score := (trainReturn - testReturn) / trainReturn
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func aggregateWalkForward(windows []WalkForwardWindow) Metrics {
	if len(windows) == 0 {
		return Metrics{}
	}
	metrics := Metrics{}
	for _, w := range windows {
		metrics.TotalReturn += w.TestMetrics.TotalReturn
		metrics.SharpeRatio += w.TestMetrics.SharpeRatio
		metrics.MaxDrawdown += w.TestMetrics.MaxDrawdown
	}
	metrics.TotalReturn /= float64(len(windows))
	metrics.SharpeRatio /= float64(len(windows))
	metrics.MaxDrawdown /= float64(len(windows))
	return metrics
}

// ToJSON serializes the walk-forward result
func (w WalkForwardResult) ToJSON() string {
	data, _ := json.Marshal(w)
	return string(data)
}
