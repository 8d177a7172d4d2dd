package risk

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/signal-trader/internal/models"
)

// Exit describes a triggered exit condition for an open position.
type Exit struct {
	Price  float64
	Reason models.ExitReason
}

// Tracker owns the lifecycle of at most one open position per symbol. The
// lifecycle is NONE -> OPEN -> CLOSED; a closed position is discarded and the
// symbol becomes eligible for a new entry.
type Tracker struct {
	positions map[string]*models.Position
	logger    *logrus.Logger
}

// NewTracker creates an empty position tracker.
func NewTracker(logger *logrus.Logger) *Tracker {
	if logger == nil {
		logger = logrus.New()
	}
	return &Tracker{
		positions: make(map[string]*models.Position),
		logger:    logger,
	}
}

// Open transitions a symbol from NONE to OPEN. It fails if a position for the
// symbol is already open.
func (t *Tracker) Open(symbol string, entryPrice float64, entryTime time.Time, shares int64, entryCommission float64, params models.RiskParameters, confidence float64) (*models.Position, error) {
	if _, exists := t.positions[symbol]; exists {
		return nil, fmt.Errorf("%w: %s", models.ErrPositionOpen, symbol)
	}
	pos := &models.Position{
		Symbol:           symbol,
		EntryPrice:       entryPrice,
		EntryTimestamp:   entryTime,
		Shares:           shares,
		EntryCommission:  entryCommission,
		Risk:             params,
		HighestPrice:     entryPrice,
		Status:           models.PositionOpen,
		SignalConfidence: confidence,
	}
	t.positions[symbol] = pos

	t.logger.WithFields(logrus.Fields{
		"symbol":      symbol,
		"entry_price": entryPrice,
		"shares":      shares,
		"stop_loss":   params.StopLossPrice(entryPrice),
		"take_profit": params.TakeProfitPrice(entryPrice),
	}).Debug("Position opened")

	return pos, nil
}

// Get returns the open position for a symbol, if any.
func (t *Tracker) Get(symbol string) (*models.Position, bool) {
	pos, ok := t.positions[symbol]
	return pos, ok
}

// OpenCount returns the number of currently open positions.
func (t *Tracker) OpenCount() int {
	return len(t.positions)
}

// Evaluate runs the per-bar exit checks for an open position, in fixed
// priority order: stop loss, take profit, trailing stop, then signal exit.
// The first match wins. Thresholds are checked against the bar's high and low
// to approximate intrabar execution; the trailing level uses the highest
// price observed on prior bars. When no exit fires, the highest price
// ratchets up to the bar's high and the position stays open.
func (t *Tracker) Evaluate(symbol string, bar models.Bar, sig models.IntegratedSignal, minIndicators int) (Exit, bool) {
	pos, ok := t.positions[symbol]
	if !ok {
		return Exit{}, false
	}

	stopLoss := pos.Risk.StopLossPrice(pos.EntryPrice)
	takeProfit := pos.Risk.TakeProfitPrice(pos.EntryPrice)

	switch {
	case bar.Low <= stopLoss:
		return Exit{Price: stopLoss, Reason: models.ExitStopLoss}, true
	case bar.High >= takeProfit:
		return Exit{Price: takeProfit, Reason: models.ExitTakeProfit}, true
	case pos.TrailingActive() && bar.Low <= pos.TrailingStopPrice():
		return Exit{Price: pos.TrailingStopPrice(), Reason: models.ExitTrailingStop}, true
	case sig.Action == models.ActionSell && sig.AgreeingIndicators >= minIndicators:
		return Exit{Price: bar.Close, Reason: models.ExitSignal}, true
	}

	if bar.High > pos.HighestPrice {
		pos.HighestPrice = bar.High
	}
	return Exit{}, false
}

// Close transitions the symbol's position to CLOSED and removes it from the
// tracker, returning the closed position.
func (t *Tracker) Close(symbol string) (*models.Position, error) {
	pos, ok := t.positions[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrNoPosition, symbol)
	}
	delete(t.positions, symbol)
	pos.Status = models.PositionClosed

	t.logger.WithField("symbol", symbol).Debug("Position closed")
	return pos, nil
}
