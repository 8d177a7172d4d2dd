package models

import (
	"time"

	"github.com/google/uuid"
)

// ExitReason records which exit condition closed a position.
type ExitReason string

const (
	ExitStopLoss     ExitReason = "STOP_LOSS"
	ExitTakeProfit   ExitReason = "TAKE_PROFIT"
	ExitTrailingStop ExitReason = "TRAILING_STOP"
	ExitSignal       ExitReason = "SIGNAL_EXIT"
)

// Trade is an append-only log entry for a closed round trip. Immutable once
// recorded.
type Trade struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	Symbol         string     `db:"symbol" json:"symbol"`
	EntryTimestamp time.Time  `db:"entry_timestamp" json:"entry_timestamp"`
	ExitTimestamp  time.Time  `db:"exit_timestamp" json:"exit_timestamp"`
	EntryPrice     float64    `db:"entry_price" json:"entry_price"`
	ExitPrice      float64    `db:"exit_price" json:"exit_price"`
	Shares         int64      `db:"shares" json:"shares"`
	ExitReason     ExitReason `db:"exit_reason" json:"exit_reason"`
	GrossPnL       float64    `db:"gross_pnl" json:"gross_pnl"`
	Commission     float64    `db:"commission" json:"commission"`
	NetPnL         float64    `db:"net_pnl" json:"net_pnl"`
}

// IsWin reports whether the trade closed with a positive net result.
func (t Trade) IsWin() bool {
	return t.NetPnL > 0
}

// ReturnPct returns the percentage return of the round trip before costs.
func (t Trade) ReturnPct() float64 {
	if t.EntryPrice == 0 {
		return 0
	}
	return (t.ExitPrice - t.EntryPrice) / t.EntryPrice
}

// HoldingDays returns the number of calendar days the position was held.
func (t Trade) HoldingDays() int {
	return int(t.ExitTimestamp.Sub(t.EntryTimestamp).Hours() / 24)
}
