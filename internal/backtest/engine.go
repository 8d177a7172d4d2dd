// Package backtest simulates how a risk-managed strategy would have traded
// integrated signals over a historical bar series.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	tradelog "github.com/yourusername/signal-trader/internal/logger"
	"github.com/yourusername/signal-trader/internal/metrics"
	"github.com/yourusername/signal-trader/internal/models"
	"github.com/yourusername/signal-trader/internal/risk"
	"github.com/yourusername/signal-trader/internal/signal"
)

// tradeNamespace seeds deterministic trade IDs so identical runs produce
// byte-identical results.
var tradeNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("signal-trader/trade"))

// drawdownWarnPct is the drawdown level that triggers a warning log when
// first crossed.
const drawdownWarnPct = 0.10

// Engine drives the bar-by-bar simulation. It is stateless across runs; every
// Run owns a fresh AccountState and position tracker.
type Engine struct {
	config Config
	policy *risk.Policy
	logger *logrus.Logger
	trades *tradelog.TradeLogger
}

// NewEngine creates a simulation engine.
func NewEngine(cfg Config, policy *risk.Policy, logger *logrus.Logger) (*Engine, error) {
	if policy == nil {
		return nil, fmt.Errorf("risk policy is required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		config: cfg,
		policy: policy,
		logger: logger,
		trades: tradelog.NewTradeLogger(logger),
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Logger returns the engine logger.
func (e *Engine) Logger() *logrus.Logger {
	return e.logger
}

// Run executes a single sequential pass over aligned bars and signals. The
// decision for bar t uses only information available at or before bar t; the
// bar's own OHLC is usable for same-bar exit checks. The run aborts only on
// malformed input, before any state mutation.
func (e *Engine) Run(ctx context.Context, symbol string, bars []models.Bar, signals []models.IntegratedSignal) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateAlignment(bars, signals); err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"symbol": symbol,
		"bars":   len(bars),
		"start":  bars[0].Timestamp,
		"end":    bars[len(bars)-1].Timestamp,
	}).Info("Starting backtest run")

	started := time.Now()
	state := NewAccountState(e.config.InitialCapital)
	tracker := risk.NewTracker(e.logger)
	totalCommission := 0.0
	prevDrawdown := 0.0

	for i, bar := range bars {
		sig := signal.Filter(signals[i], e.config.ConfidenceThreshold)
		if signals[i].Action != models.ActionHold && sig.Action == models.ActionHold {
			metrics.RecordSignalFiltered()
		}
		if sig.Action != models.ActionHold {
			e.trades.LogSignalGenerated(symbol, bar.Timestamp, string(sig.Action),
				sig.Confidence, sig.AgreeingIndicators, string(sig.Quality))
		}

		exited := false
		if _, open := tracker.Get(symbol); open {
			if exit, ok := tracker.Evaluate(symbol, bar, sig, e.config.MinIndicators); ok {
				commission := e.closePosition(tracker, state, symbol, bar, exit)
				totalCommission += commission
				exited = true
			}
		}

		if _, open := tracker.Get(symbol); !open && !exited && sig.Action == models.ActionBuy {
			commission := e.openPosition(tracker, state, symbol, bars, i, sig)
			totalCommission += commission
		}

		equity := state.Cash
		if pos, open := tracker.Get(symbol); open {
			equity += pos.MarketValue(bar.Close)
		}
		state.RecordEquityPoint(bar.Timestamp, equity)
		drawdown := state.EquityCurve[len(state.EquityCurve)-1].Drawdown
		if drawdown >= drawdownWarnPct && prevDrawdown < drawdownWarnPct {
			e.trades.LogDrawdown(symbol, drawdown, state.PeakEquity, equity)
		}
		prevDrawdown = drawdown
	}

	result := &Result{
		Symbol:          symbol,
		StartDate:       bars[0].Timestamp,
		EndDate:         bars[len(bars)-1].Timestamp,
		Bars:            len(bars),
		InitialCapital:  e.config.InitialCapital,
		FinalEquity:     state.EquityCurve[len(state.EquityCurve)-1].Value,
		TotalCommission: totalCommission,
		Trades:          state.Trades,
		EquityCurve:     state.EquityCurve,
	}

	totalReturn := 0.0
	if result.InitialCapital > 0 {
		totalReturn = result.FinalEquity/result.InitialCapital - 1
	}
	e.trades.LogBacktestComplete(symbol, len(result.Trades), totalReturn,
		result.FinalEquity, float64(time.Since(started).Milliseconds()))

	return result, nil
}

// openPosition sizes and finances an entry at the bar's close plus slippage.
// An entry that cannot be financed downgrades the signal to HOLD for the bar.
// Returns the commission paid, if any.
func (e *Engine) openPosition(tracker *risk.Tracker, state *AccountState, symbol string, bars []models.Bar, idx int, sig models.IntegratedSignal) float64 {
	volatility := recentVolatility(bars, idx, e.config.VolatilityWindow)

	params, err := e.policy.SizeAndBound(sig, state.Cash, volatility)
	if err != nil {
		metrics.RecordRiskRejection()
		if errors.Is(err, models.ErrInsufficientFunds) {
			e.trades.LogRiskRejection(symbol, "insufficient funds", sig.Confidence, state.Cash)
			return 0
		}
		e.logger.WithError(err).Warn("Risk policy rejected signal")
		return 0
	}

	entryPrice := bars[idx].Close * (1 + e.config.SlippagePct)
	budget := state.Cash * params.PositionFraction / (1 + e.config.CommissionRate)
	shares := int64(math.Floor(budget / entryPrice))
	if shares <= 0 {
		e.logger.WithFields(logrus.Fields{
			"symbol": symbol,
			"price":  entryPrice,
			"budget": budget,
		}).Debug("Entry downgraded to HOLD: budget below one share")
		return 0
	}

	notional := float64(shares) * entryPrice
	commission := notional * e.config.CommissionRate
	totalCost := notional + commission
	if totalCost > state.Cash {
		e.logger.WithField("symbol", symbol).Debug("Entry downgraded to HOLD: total cost exceeds cash")
		return 0
	}

	if _, err := tracker.Open(symbol, entryPrice, bars[idx].Timestamp, shares, commission, params, sig.Confidence); err != nil {
		e.logger.WithError(err).Warn("Entry rejected by tracker")
		return 0
	}
	state.Cash -= totalCost

	e.trades.LogPositionOpened(symbol, entryPrice, shares,
		params.StopLossPrice(entryPrice), params.TakeProfitPrice(entryPrice), sig.Confidence)

	return commission
}

// closePosition realizes an exit at the triggered threshold minus slippage
// and appends the trade. Returns the exit commission.
func (e *Engine) closePosition(tracker *risk.Tracker, state *AccountState, symbol string, bar models.Bar, exit risk.Exit) float64 {
	pos, err := tracker.Close(symbol)
	if err != nil {
		e.logger.WithError(err).Error("Exit triggered with no open position")
		return 0
	}

	exitPrice := exit.Price * (1 - e.config.SlippagePct)
	proceeds := float64(pos.Shares) * exitPrice
	commission := proceeds * e.config.CommissionRate
	state.Cash += proceeds - commission

	gross := (exitPrice - pos.EntryPrice) * float64(pos.Shares)
	totalCommission := pos.EntryCommission + commission
	trade := &models.Trade{
		ID:             tradeID(symbol, pos, bar),
		Symbol:         symbol,
		EntryTimestamp: pos.EntryTimestamp,
		ExitTimestamp:  bar.Timestamp,
		EntryPrice:     pos.EntryPrice,
		ExitPrice:      exitPrice,
		Shares:         pos.Shares,
		ExitReason:     exit.Reason,
		GrossPnL:       gross,
		Commission:     totalCommission,
		NetPnL:         gross - totalCommission,
	}
	state.RecordTrade(trade)

	metrics.RecordTradeClosed(string(exit.Reason))
	holdingDays := int(bar.Timestamp.Sub(pos.EntryTimestamp).Hours() / 24)
	e.trades.LogPositionClosed(symbol, exitPrice, string(exit.Reason),
		trade.NetPnL, totalCommission, holdingDays)

	return commission
}

func tradeID(symbol string, pos *models.Position, bar models.Bar) uuid.UUID {
	key := fmt.Sprintf("%s|%d|%d", symbol, pos.EntryTimestamp.UnixNano(), bar.Timestamp.UnixNano())
	return uuid.NewSHA1(tradeNamespace, []byte(key))
}

// recentVolatility computes annualized volatility from close-to-close returns
// over the window ending at (and excluding) bar idx. Returns 0 during the
// warm-up period.
func recentVolatility(bars []models.Bar, idx int, window int) float64 {
	if idx < window {
		return 0
	}
	returns := make([]float64, 0, window)
	for i := idx - window + 1; i <= idx; i++ {
		prev := bars[i-1].Close
		if prev == 0 {
			continue
		}
		returns = append(returns, (bars[i].Close-prev)/prev)
	}
	if len(returns) < 2 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	variance := 0.0
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}
	variance /= float64(len(returns))
	return math.Sqrt(variance) * math.Sqrt(252)
}

// validateAlignment rejects misaligned bar/signal series before any state
// mutation.
func validateAlignment(bars []models.Bar, signals []models.IntegratedSignal) error {
	if err := models.ValidateBars(bars); err != nil {
		return err
	}
	if len(bars) != len(signals) {
		return fmt.Errorf("%w: %d bars vs %d signals", models.ErrMisalignedSeries, len(bars), len(signals))
	}
	for i := range bars {
		if !bars[i].Timestamp.Equal(signals[i].BarTimestamp) {
			return fmt.Errorf("%w: index %d bar %s vs signal %s", models.ErrMisalignedSeries, i,
				bars[i].Timestamp.Format("2006-01-02"), signals[i].BarTimestamp.Format("2006-01-02"))
		}
	}
	return nil
}
