// Package metrics provides the centralized Prometheus metrics registry for
// the signal trader.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	SignalsGeneratedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signal_trader",
		Name:      "signals_generated_total",
		Help:      "Total number of integrated signals generated, by action",
	}, []string{"action"})
	SignalsFilteredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "signal_trader",
		Name:      "signals_filtered_total",
		Help:      "Total number of signals downgraded to HOLD by the confidence filter",
	})
	TradesClosedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signal_trader",
		Name:      "trades_closed_total",
		Help:      "Total number of closed simulated trades, by exit reason",
	}, []string{"exit_reason"})
	RiskRejectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "signal_trader",
		Name:      "risk_rejections_total",
		Help:      "Total number of entries rejected by the risk policy",
	})
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signal_trader",
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs, by outcome",
	}, []string{"status"})
)

// Gauge metrics
var (
	CurrentEquity = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "signal_trader",
		Name:      "current_equity",
		Help:      "Latest simulated equity per symbol",
	}, []string{"symbol"})
	OpenPositions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "signal_trader",
		Name:      "open_positions",
		Help:      "Number of currently open simulated positions",
	})
	MaxDrawdown = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "signal_trader",
		Name:      "max_drawdown",
		Help:      "Maximum drawdown observed per symbol",
	}, []string{"symbol"})
)

// Histogram metrics
var (
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "signal_trader",
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
	ProviderFetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "signal_trader",
		Name:      "provider_fetch_duration_seconds",
		Help:      "Duration of market data fetches in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(SignalsGeneratedTotal)
		registry.MustRegister(SignalsFilteredTotal)
		registry.MustRegister(TradesClosedTotal)
		registry.MustRegister(RiskRejectionsTotal)
		registry.MustRegister(BacktestRunsTotal)

		registry.MustRegister(CurrentEquity)
		registry.MustRegister(OpenPositions)
		registry.MustRegister(MaxDrawdown)

		registry.MustRegister(BacktestDuration)
		registry.MustRegister(ProviderFetchDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordSignalGenerated records an integrated signal event.
func RecordSignalGenerated(action string) {
	SignalsGeneratedTotal.WithLabelValues(action).Inc()
}

// RecordSignalFiltered records a signal suppressed by the confidence filter.
func RecordSignalFiltered() {
	SignalsFilteredTotal.Inc()
}

// RecordTradeClosed records a closed trade event.
func RecordTradeClosed(exitReason string) {
	TradesClosedTotal.WithLabelValues(exitReason).Inc()
}

// RecordRiskRejection records a rejected entry.
func RecordRiskRejection() {
	RiskRejectionsTotal.Inc()
}

// RecordBacktestRun records a backtest run outcome.
func RecordBacktestRun(status string, durationSeconds float64) {
	BacktestRunsTotal.WithLabelValues(status).Inc()
	BacktestDuration.Observe(durationSeconds)
}

// UpdateEquity updates the per-symbol equity gauge.
func UpdateEquity(symbol string, equity float64) {
	CurrentEquity.WithLabelValues(symbol).Set(equity)
}

// UpdateMaxDrawdown updates the per-symbol drawdown gauge.
func UpdateMaxDrawdown(symbol string, drawdown float64) {
	MaxDrawdown.WithLabelValues(symbol).Set(drawdown)
}

// RecordProviderFetch records a market data fetch duration.
func RecordProviderFetch(durationSeconds float64) {
	ProviderFetchDuration.Observe(durationSeconds)
}
