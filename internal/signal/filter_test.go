package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/signal-trader/internal/models"
)

func TestFilter_BelowThresholdBecomesHold(t *testing.T) {
	sig := models.IntegratedSignal{
		BarTimestamp: testBarTime(),
		Action:       models.ActionBuy,
		Confidence:   0.65,
		Quality:      models.QualityFair,
	}

	filtered := Filter(sig, 0.7)

	assert.Equal(t, models.ActionHold, filtered.Action)
	assert.Equal(t, 0.65, filtered.Confidence)
}

func TestFilter_AtThresholdPasses(t *testing.T) {
	sig := models.IntegratedSignal{Action: models.ActionSell, Confidence: 0.7}

	filtered := Filter(sig, 0.7)

	assert.Equal(t, models.ActionSell, filtered.Action)
}

func TestFilter_HoldPassesThroughUnchanged(t *testing.T) {
	sig := models.IntegratedSignal{Action: models.ActionHold, Quality: models.QualityWeak}

	assert.Equal(t, sig, Filter(sig, 0.7))
}

func TestFilter_Idempotent(t *testing.T) {
	sig := models.IntegratedSignal{Action: models.ActionBuy, Confidence: 0.55}

	once := Filter(sig, 0.7)
	twice := Filter(once, 0.7)

	assert.Equal(t, once, twice)
}

func TestFilterSeries(t *testing.T) {
	signals := []models.IntegratedSignal{
		{Action: models.ActionBuy, Confidence: 0.9},
		{Action: models.ActionSell, Confidence: 0.6},
		{Action: models.ActionHold},
	}

	filtered := FilterSeries(signals, 0.7)

	assert.Equal(t, models.ActionBuy, filtered[0].Action)
	assert.Equal(t, models.ActionHold, filtered[1].Action)
	assert.Equal(t, models.ActionHold, filtered[2].Action)
}
