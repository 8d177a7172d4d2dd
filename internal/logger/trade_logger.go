// Package logger provides trade-specific logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// TradeLogger provides dedicated logging for simulated trade activity.
type TradeLogger struct {
	*logrus.Entry
}

// NewTradeLogger creates a new trade logger.
func NewTradeLogger(baseLogger *logrus.Logger) *TradeLogger {
	return &TradeLogger{
		Entry: baseLogger.WithField("component", "trading"),
	}
}

// LogSignalGenerated logs an integrated signal.
func (tl *TradeLogger) LogSignalGenerated(symbol string, barTime time.Time, action string, confidence float64, agreeing int, quality string) {
	tl.WithFields(logrus.Fields{
		"symbol":              symbol,
		"bar_time":            barTime,
		"action":              action,
		"confidence":          confidence,
		"agreeing_indicators": agreeing,
		"quality":             quality,
	}).Info("Signal generated")
}

// LogPositionOpened logs a position entry.
func (tl *TradeLogger) LogPositionOpened(symbol string, entryPrice float64, shares int64, stopLoss, takeProfit, confidence float64) {
	tl.WithFields(logrus.Fields{
		"symbol":      symbol,
		"entry_price": entryPrice,
		"shares":      shares,
		"stop_loss":   stopLoss,
		"take_profit": takeProfit,
		"confidence":  confidence,
	}).Info("Position opened")
}

// LogPositionClosed logs a position exit.
func (tl *TradeLogger) LogPositionClosed(symbol string, exitPrice float64, exitReason string, netPnL, commission float64, holdingDays int) {
	tl.WithFields(logrus.Fields{
		"symbol":       symbol,
		"exit_price":   exitPrice,
		"exit_reason":  exitReason,
		"net_pnl":      netPnL,
		"commission":   commission,
		"holding_days": holdingDays,
	}).Info("Position closed")
}

// LogRiskRejection logs a trade rejected by the risk policy.
func (tl *TradeLogger) LogRiskRejection(symbol string, reason string, confidence, availableCash float64) {
	tl.WithFields(logrus.Fields{
		"symbol":         symbol,
		"reason":         reason,
		"confidence":     confidence,
		"available_cash": availableCash,
	}).Warn("Trade rejected by risk policy")
}

// LogDrawdown logs drawdown events.
func (tl *TradeLogger) LogDrawdown(symbol string, drawdownPercent, peakEquity, currentEquity float64) {
	tl.WithFields(logrus.Fields{
		"symbol":           symbol,
		"drawdown_percent": drawdownPercent,
		"peak_equity":      peakEquity,
		"current_equity":   currentEquity,
	}).Warn("Drawdown threshold exceeded")
}

// LogBacktestComplete logs a completed simulation run.
func (tl *TradeLogger) LogBacktestComplete(symbol string, totalTrades int, totalReturn, finalEquity float64, durationMs float64) {
	tl.WithFields(logrus.Fields{
		"symbol":       symbol,
		"total_trades": totalTrades,
		"total_return": totalReturn,
		"final_equity": finalEquity,
		"duration_ms":  durationMs,
	}).Info("Backtest run completed")
}
