package models

import "time"

// PositionStatus represents the lifecycle state of a position.
type PositionStatus string

const (
	PositionOpen   PositionStatus = "OPEN"
	PositionClosed PositionStatus = "CLOSED"
)

// RiskParameters are computed once at entry from the triggering signal's
// confidence and recent volatility and stay frozen for the life of the
// position. The trailing stop level moves; the percentages do not.
type RiskParameters struct {
	PositionFraction      float64 `json:"position_fraction"`
	StopLossPct           float64 `json:"stop_loss_pct"`
	TakeProfitPct         float64 `json:"take_profit_pct"`
	TrailingStopPct       float64 `json:"trailing_stop_pct"`
	TrailingActivationPct float64 `json:"trailing_activation_pct"`
}

// StopLossPrice returns the absolute stop-loss level for an entry price.
func (p RiskParameters) StopLossPrice(entryPrice float64) float64 {
	return entryPrice * (1 - p.StopLossPct)
}

// TakeProfitPrice returns the absolute take-profit level for an entry price.
func (p RiskParameters) TakeProfitPrice(entryPrice float64) float64 {
	return entryPrice * (1 + p.TakeProfitPct)
}

// Position is the single open holding for a symbol, owned exclusively by the
// position tracker. At most one OPEN position exists per symbol.
type Position struct {
	Symbol            string         `json:"symbol"`
	EntryPrice        float64        `json:"entry_price"`
	EntryTimestamp    time.Time      `json:"entry_timestamp"`
	Shares            int64          `json:"shares"`
	EntryCommission   float64        `json:"entry_commission"`
	Risk              RiskParameters `json:"risk"`
	HighestPrice      float64        `json:"highest_price"` // highest high observed since entry
	Status            PositionStatus `json:"status"`
	SignalConfidence  float64        `json:"signal_confidence"`
}

// TrailingActive reports whether the trailing stop has been armed, which
// happens once the highest observed price exceeds entry by the activation
// percentage.
func (p *Position) TrailingActive() bool {
	return p.HighestPrice >= p.EntryPrice*(1+p.Risk.TrailingActivationPct)
}

// TrailingStopPrice returns the current trailing stop level. Meaningful only
// when TrailingActive is true.
func (p *Position) TrailingStopPrice() float64 {
	return p.HighestPrice * (1 - p.Risk.TrailingStopPct)
}

// MarketValue returns the mark-to-market value of the position at a price.
func (p *Position) MarketValue(price float64) float64 {
	return float64(p.Shares) * price
}
