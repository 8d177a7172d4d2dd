package backtest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yourusername/signal-trader/internal/models"
)

// Report is the fixed-shape record handed to the presentation surface, so
// downstream rendering never has to re-derive values.
type Report struct {
	Symbol  string        `json:"symbol"`
	Period  ReportPeriod  `json:"period"`
	Returns ReportReturns `json:"returns"`
	Risk    ReportRisk    `json:"risk"`
	Trading ReportTrading `json:"trading"`
}

// ReportPeriod describes the simulated date range.
type ReportPeriod struct {
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	TradingDays int     `json:"trading_days"`
	Years       float64 `json:"years"`
}

// ReportReturns summarizes the outcome in return terms.
type ReportReturns struct {
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	FinalEquity      float64 `json:"final_equity"`
	ProfitLoss       float64 `json:"profit_loss"`
}

// ReportRisk summarizes risk statistics.
type ReportRisk struct {
	Volatility  float64 `json:"volatility"`
	SharpeRatio float64 `json:"sharpe_ratio"`
	MaxDrawdown float64 `json:"max_drawdown"`
}

// ReportTrading breaks down trade activity.
type ReportTrading struct {
	TotalTrades     int                       `json:"total_trades"`
	WinRate         float64                   `json:"win_rate"`
	AverageWin      float64                   `json:"average_win"`
	AverageLoss     float64                   `json:"average_loss"`
	ProfitFactor    float64                   `json:"profit_factor"`
	TotalCommission float64                   `json:"total_commission"`
	ExitBreakdown   map[models.ExitReason]int `json:"exit_breakdown"`
}

// BuildReport assembles the report structure from a result and its metrics.
func BuildReport(result *Result, metrics Metrics) Report {
	breakdown := make(map[models.ExitReason]int)
	if result != nil {
		for _, trade := range result.Trades {
			breakdown[trade.ExitReason]++
		}
	}

	symbol := ""
	initial := 0.0
	if result != nil {
		symbol = result.Symbol
		initial = result.InitialCapital
	}

	return Report{
		Symbol: symbol,
		Period: ReportPeriod{
			StartDate:   metrics.StartDate.Format("2006-01-02"),
			EndDate:     metrics.EndDate.Format("2006-01-02"),
			TradingDays: metrics.TradingDays,
			Years:       metrics.EndDate.Sub(metrics.StartDate).Hours() / 24 / 365.25,
		},
		Returns: ReportReturns{
			TotalReturn:      metrics.TotalReturn,
			AnnualizedReturn: metrics.AnnualizedReturn,
			FinalEquity:      metrics.FinalEquity,
			ProfitLoss:       metrics.FinalEquity - initial,
		},
		Risk: ReportRisk{
			Volatility:  metrics.Volatility,
			SharpeRatio: metrics.SharpeRatio,
			MaxDrawdown: metrics.MaxDrawdown,
		},
		Trading: ReportTrading{
			TotalTrades:     metrics.TotalTrades,
			WinRate:         metrics.WinRate,
			AverageWin:      metrics.AverageWin,
			AverageLoss:     metrics.AverageLoss,
			ProfitFactor:    metrics.ProfitFactor,
			TotalCommission: metrics.TotalCommission,
			ExitBreakdown:   breakdown,
		},
	}
}

// GenerateConsoleReport formats a report for terminal output
func GenerateConsoleReport(report Report) string {
	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Symbol: %s\n", report.Symbol))
	builder.WriteString(fmt.Sprintf("Period: %s to %s (%d bars)\n", report.Period.StartDate, report.Period.EndDate, report.Period.TradingDays))
	builder.WriteString(fmt.Sprintf("Total Return: %.2f%%\n", report.Returns.TotalReturn*100))
	builder.WriteString(fmt.Sprintf("Annualized Return: %.2f%%\n", report.Returns.AnnualizedReturn*100))
	builder.WriteString(fmt.Sprintf("Final Equity: %.0f\n", report.Returns.FinalEquity))
	builder.WriteString(fmt.Sprintf("Volatility: %.2f%%\n", report.Risk.Volatility*100))
	builder.WriteString(fmt.Sprintf("Sharpe Ratio: %.2f\n", report.Risk.SharpeRatio))
	builder.WriteString(fmt.Sprintf("Max Drawdown: %.2f%%\n", report.Risk.MaxDrawdown*100))
	builder.WriteString(fmt.Sprintf("Trades: %d (win rate %.1f%%)\n", report.Trading.TotalTrades, report.Trading.WinRate*100))
	builder.WriteString(fmt.Sprintf("Profit Factor: %.2f\n", report.Trading.ProfitFactor))
	builder.WriteString(fmt.Sprintf("Total Commission: %.0f\n", report.Trading.TotalCommission))
	for _, reason := range []models.ExitReason{models.ExitStopLoss, models.ExitTakeProfit, models.ExitTrailingStop, models.ExitSignal} {
		if count := report.Trading.ExitBreakdown[reason]; count > 0 {
			builder.WriteString(fmt.Sprintf("  %s: %d\n", reason, count))
		}
	}
	return builder.String()
}

// GenerateHTMLReport creates a simple HTML report
func GenerateHTMLReport(report Report, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Backtest Report - %s</title></head>
<body>
<h1>Backtest Report - %s</h1>
<p><strong>Period:</strong> %s to %s</p>
<p><strong>Total Return:</strong> %.2f%%</p>
<p><strong>Annualized Return:</strong> %.2f%%</p>
<p><strong>Sharpe Ratio:</strong> %.2f</p>
<p><strong>Max Drawdown:</strong> %.2f%%</p>
<p><strong>Win Rate:</strong> %.2f%%</p>
<p><strong>Profit Factor:</strong> %.2f</p>
<p><strong>Generated:</strong> %s</p>
</body>
</html>`,
		report.Symbol,
		report.Symbol,
		report.Period.StartDate,
		report.Period.EndDate,
		report.Returns.TotalReturn*100,
		report.Returns.AnnualizedReturn*100,
		report.Risk.SharpeRatio,
		report.Risk.MaxDrawdown*100,
		report.Trading.WinRate*100,
		report.Trading.ProfitFactor,
		time.Now().UTC().Format(time.RFC3339),
	)

	return os.WriteFile(outputPath, []byte(html), 0o644)
}

// GenerateCSVExport exports key metrics for spreadsheets
func GenerateCSVExport(report Report, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	csv := "metric,value\n" +
		fmt.Sprintf("symbol,%s\n", report.Symbol) +
		fmt.Sprintf("total_return,%.4f\n", report.Returns.TotalReturn) +
		fmt.Sprintf("annualized_return,%.4f\n", report.Returns.AnnualizedReturn) +
		fmt.Sprintf("volatility,%.4f\n", report.Risk.Volatility) +
		fmt.Sprintf("sharpe_ratio,%.4f\n", report.Risk.SharpeRatio) +
		fmt.Sprintf("max_drawdown,%.4f\n", report.Risk.MaxDrawdown) +
		fmt.Sprintf("total_trades,%d\n", report.Trading.TotalTrades) +
		fmt.Sprintf("win_rate,%.4f\n", report.Trading.WinRate) +
		fmt.Sprintf("profit_factor,%.4f\n", report.Trading.ProfitFactor) +
		fmt.Sprintf("total_commission,%.2f\n", report.Trading.TotalCommission)
	return os.WriteFile(outputPath, []byte(csv), 0o644)
}
