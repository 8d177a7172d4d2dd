// Package indicators implements the technical indicator calculators that feed
// the signal integrator.
package indicators

import (
	"github.com/yourusername/signal-trader/internal/models"
)

// Indicator computes a per-bar directional reading from price history.
// Compute must only consult bars[0..idx]; looking past idx would leak
// future data into the simulation.
type Indicator interface {
	ID() string
	MinBars() int
	Compute(bars []models.Bar, idx int) (models.IndicatorReading, bool)
	GetParameters() map[string]interface{}
}
