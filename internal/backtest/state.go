package backtest

import (
	"time"

	"github.com/yourusername/signal-trader/internal/models"
)

// AccountState tracks cash and the equity curve for a single simulation run.
// Each run owns its own instance; there is no shared state across runs.
type AccountState struct {
	Cash        float64
	PeakEquity  float64
	Trades      []*models.Trade
	EquityCurve EquityCurve
}

// NewAccountState initializes account state with starting capital.
func NewAccountState(initialCapital float64) *AccountState {
	return &AccountState{
		Cash:       initialCapital,
		PeakEquity: initialCapital,
		Trades:     []*models.Trade{},
	}
}

// RecordTrade appends a closed trade to the log.
func (s *AccountState) RecordTrade(trade *models.Trade) {
	s.Trades = append(s.Trades, trade)
}

// RecordEquityPoint appends one equity observation, updating the peak and
// drawdown bookkeeping.
func (s *AccountState) RecordEquityPoint(t time.Time, equity float64) {
	if equity > s.PeakEquity {
		s.PeakEquity = equity
	}
	drawdown := 0.0
	if s.PeakEquity > 0 && equity < s.PeakEquity {
		drawdown = (s.PeakEquity - equity) / s.PeakEquity
	}
	s.EquityCurve = append(s.EquityCurve, EquityPoint{
		Time:     t,
		Value:    equity,
		Drawdown: drawdown,
	})
}

// CurrentDrawdown returns the peak-to-current decline as a fraction of peak.
func (s *AccountState) CurrentDrawdown() float64 {
	if s.PeakEquity == 0 || len(s.EquityCurve) == 0 {
		return 0
	}
	current := s.EquityCurve[len(s.EquityCurve)-1].Value
	drawdown := (s.PeakEquity - current) / s.PeakEquity
	if drawdown < 0 {
		return 0
	}
	return drawdown
}

// Result is the read-only outcome of a completed run.
type Result struct {
	Symbol          string          `json:"symbol"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	Bars            int             `json:"bars"`
	InitialCapital  float64         `json:"initial_capital"`
	FinalEquity     float64         `json:"final_equity"`
	TotalCommission float64         `json:"total_commission"`
	Trades          []*models.Trade `json:"trades"`
	EquityCurve     EquityCurve     `json:"equity_curve"`
}
