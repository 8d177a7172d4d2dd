package backtest

import (
	"encoding/json"
	"math"
	"time"

	"github.com/yourusername/signal-trader/internal/models"
)

// ProfitFactorInfinite is the sentinel reported when there are gains and no
// losses. A finite sentinel keeps report structures JSON-serializable.
const ProfitFactorInfinite = 999.0

// Metrics represents backtest performance metrics
type Metrics struct {
	TotalReturn      float64   `json:"total_return"`
	AnnualizedReturn float64   `json:"annualized_return"`
	Volatility       float64   `json:"volatility"`
	SharpeRatio      float64   `json:"sharpe_ratio"`
	MaxDrawdown      float64   `json:"max_drawdown"`
	TotalTrades      int       `json:"total_trades"`
	WinningTrades    int       `json:"winning_trades"`
	LosingTrades     int       `json:"losing_trades"`
	WinRate          float64   `json:"win_rate"`
	ProfitFactor     float64   `json:"profit_factor"`
	AverageWin       float64   `json:"average_win"`
	AverageLoss      float64   `json:"average_loss"`
	LargestWin       float64   `json:"largest_win"`
	LargestLoss      float64   `json:"largest_loss"`
	TotalCommission  float64   `json:"total_commission"`
	FinalEquity      float64   `json:"final_equity"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	TradingDays      int       `json:"trading_days"`
}

// CalculateMetrics post-processes a completed result into summary statistics.
// It is a pure function and total over all possible results: undefined
// metrics are reported as sentinel values, never errors.
func CalculateMetrics(result *Result, riskFreeRate float64) Metrics {
	metrics := Metrics{}
	if result == nil || len(result.EquityCurve) == 0 {
		return metrics
	}

	metrics.StartDate = result.StartDate
	metrics.EndDate = result.EndDate
	metrics.TradingDays = result.Bars
	metrics.FinalEquity = result.FinalEquity
	metrics.TotalCommission = result.TotalCommission

	if result.InitialCapital > 0 {
		metrics.TotalReturn = result.FinalEquity/result.InitialCapital - 1
	}

	days := result.EndDate.Sub(result.StartDate).Hours() / 24
	metrics.AnnualizedReturn = annualizeReturn(metrics.TotalReturn, days)
	metrics.Volatility = result.EquityCurve.GetVolatility() * math.Sqrt(252)
	metrics.SharpeRatio = sharpeRatio(metrics.AnnualizedReturn, metrics.Volatility, riskFreeRate)
	metrics.MaxDrawdown = result.EquityCurve.MaxDrawdown()

	metrics.TotalTrades = len(result.Trades)
	metrics.WinningTrades, metrics.LosingTrades, metrics.AverageWin, metrics.AverageLoss, metrics.LargestWin, metrics.LargestLoss = tradeStats(result.Trades)
	metrics.WinRate = winRate(metrics.WinningTrades, metrics.TotalTrades)
	metrics.ProfitFactor = profitFactor(result.Trades)

	return metrics
}

// ToJSON exports metrics to JSON
func (m Metrics) ToJSON() string {
	data, _ := json.Marshal(m)
	return string(data)
}

func annualizeReturn(totalReturn float64, days float64) float64 {
	if days <= 0 || totalReturn <= -1 {
		return 0
	}
	return math.Pow(1+totalReturn, 365.0/days) - 1
}

// sharpeRatio reports 0 when volatility is 0; the ratio is undefined there.
func sharpeRatio(annualizedReturn, annualizedVolatility, riskFreeRate float64) float64 {
	if annualizedVolatility == 0 {
		return 0
	}
	return (annualizedReturn - riskFreeRate) / annualizedVolatility
}

// profitFactor reports the infinite sentinel with gains and no losses, and 0
// with no trades at all.
func profitFactor(trades []*models.Trade) float64 {
	grossProfit := 0.0
	grossLoss := 0.0
	for _, trade := range trades {
		if trade.NetPnL > 0 {
			grossProfit += trade.NetPnL
		} else {
			grossLoss += math.Abs(trade.NetPnL)
		}
	}
	if grossLoss == 0 {
		if grossProfit > 0 {
			return ProfitFactorInfinite
		}
		return 0
	}
	return grossProfit / grossLoss
}

func tradeStats(trades []*models.Trade) (int, int, float64, float64, float64, float64) {
	wins := 0
	losses := 0
	winSum := 0.0
	lossSum := 0.0
	largestWin := 0.0
	largestLoss := 0.0
	for _, trade := range trades {
		pnl := trade.NetPnL
		if pnl > 0 {
			wins++
			winSum += pnl
			if pnl > largestWin {
				largestWin = pnl
			}
		} else if pnl < 0 {
			losses++
			lossSum += pnl
			if pnl < largestLoss {
				largestLoss = pnl
			}
		}
	}

	avgWin := 0.0
	avgLoss := 0.0
	if wins > 0 {
		avgWin = winSum / float64(wins)
	}
	if losses > 0 {
		avgLoss = lossSum / float64(losses)
	}
	return wins, losses, avgWin, avgLoss, largestWin, largestLoss
}

func winRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total)
}
