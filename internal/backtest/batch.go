package backtest

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/signal-trader/internal/models"
)

// SymbolInput bundles one symbol's aligned bar and signal series.
type SymbolInput struct {
	Symbol  string
	Bars    []models.Bar
	Signals []models.IntegratedSignal
}

// BatchResult holds the outcome of one symbol's run.
type BatchResult struct {
	Symbol  string
	Result  *Result
	Metrics Metrics
	Err     error
}

// RunBatch simulates each symbol concurrently. Every run gets its own
// account state and tracker, so symbols never share capital.
func (e *Engine) RunBatch(ctx context.Context, inputs []SymbolInput, maxConcurrent int) []BatchResult {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	results := make([]BatchResult, len(inputs))
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for i, input := range inputs {
		wg.Add(1)
		go func(idx int, in SymbolInput) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := e.Run(ctx, in.Symbol, in.Bars, in.Signals)
			if err != nil {
				e.logger.WithFields(logrus.Fields{
					"symbol": in.Symbol,
					"error":  err,
				}).Error("Batch run failed")
				results[idx] = BatchResult{Symbol: in.Symbol, Err: err}
				return
			}
			results[idx] = BatchResult{
				Symbol:  in.Symbol,
				Result:  result,
				Metrics: CalculateMetrics(result, e.config.RiskFreeRate),
			}
		}(i, input)
	}

	wg.Wait()
	return results
}
