package models

import (
	"time"

	"github.com/google/uuid"
)

// BacktestRecord is the persisted summary of a completed simulation run.
// FullResults carries the serialized result payload for later inspection.
type BacktestRecord struct {
	ID               uuid.UUID `db:"id" json:"id"`
	Symbol           string    `db:"symbol" json:"symbol"`
	RunDate          time.Time `db:"run_date" json:"run_date"`
	StartDate        time.Time `db:"start_date" json:"start_date"`
	EndDate          time.Time `db:"end_date" json:"end_date"`
	InitialCapital   float64   `db:"initial_capital" json:"initial_capital"`
	FinalEquity      float64   `db:"final_equity" json:"final_equity"`
	TotalReturn      float64   `db:"total_return" json:"total_return"`
	AnnualizedReturn float64   `db:"annualized_return" json:"annualized_return"`
	SharpeRatio      float64   `db:"sharpe_ratio" json:"sharpe_ratio"`
	MaxDrawdown      float64   `db:"max_drawdown" json:"max_drawdown"`
	TotalTrades      int       `db:"total_trades" json:"total_trades"`
	WinRate          float64   `db:"win_rate" json:"win_rate"`
	ProfitFactor     float64   `db:"profit_factor" json:"profit_factor"`
	TotalCommission  float64   `db:"total_commission" json:"total_commission"`
	FullResults      []byte    `db:"full_results" json:"full_results,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
