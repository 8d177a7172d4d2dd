package signal

import "github.com/yourusername/signal-trader/internal/models"

// Filter downgrades a signal to HOLD when its confidence is below the
// threshold. It is pure and idempotent: a HOLD signal passes through
// unchanged, so filtering an already-filtered signal changes nothing.
func Filter(sig models.IntegratedSignal, confidenceThreshold float64) models.IntegratedSignal {
	if sig.Action == models.ActionHold {
		return sig
	}
	if sig.Confidence < confidenceThreshold {
		sig.Action = models.ActionHold
	}
	return sig
}

// FilterSeries applies Filter to every signal in a series.
func FilterSeries(signals []models.IntegratedSignal, confidenceThreshold float64) []models.IntegratedSignal {
	filtered := make([]models.IntegratedSignal, len(signals))
	for i, sig := range signals {
		filtered[i] = Filter(sig, confidenceThreshold)
	}
	return filtered
}
