// Package main provides the entry point for the backtesting CLI tool.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/signal-trader/internal/backtest"
	"github.com/yourusername/signal-trader/internal/config"
	"github.com/yourusername/signal-trader/internal/database"
	"github.com/yourusername/signal-trader/internal/health"
	"github.com/yourusername/signal-trader/internal/indicators"
	"github.com/yourusername/signal-trader/internal/logger"
	"github.com/yourusername/signal-trader/internal/marketdata"
	"github.com/yourusername/signal-trader/internal/metrics"
	"github.com/yourusername/signal-trader/internal/models"
	"github.com/yourusername/signal-trader/internal/repository"
	"github.com/yourusername/signal-trader/internal/risk"
	"github.com/yourusername/signal-trader/internal/signal"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		symbols    = flag.String("symbols", "", "Comma-separated symbols to simulate (required)")
		startDate  = flag.String("start-date", "", "Override start date (YYYY-MM-DD)")
		endDate    = flag.String("end-date", "", "Override end date (YYYY-MM-DD)")
		mode       = flag.String("mode", "all", "Backtest mode: historical, monte-carlo, walk-forward, all")
		output     = flag.String("output", "", "Override output path for reports")
		seed       = flag.Int64("seed", 0, "Monte Carlo seed (0 means time-based)")
		persist    = flag.Bool("persist", false, "Persist results to the database")
	)
	flag.Parse()

	ctx := context.Background()

	cfg := loadConfigWithSecrets(*configPath)
	appLogger := logger.NewLogger(cfg.App.LogLevel)
	btConfig := buildBacktestConfig(cfg, *output, *startDate, *endDate, appLogger)

	symbolList := splitSymbols(*symbols)
	if len(symbolList) == 0 {
		appLogger.Fatal("At least one symbol is required (-symbols)")
	}

	policy, err := risk.NewPolicy(buildPolicyConfig(cfg), appLogger)
	if err != nil {
		appLogger.Fatalf("Invalid risk policy: %v", err)
	}
	engine, err := backtest.NewEngine(btConfig, policy, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to create engine: %v", err)
	}

	source, err := marketdata.NewSource(cfg.MarketData, log.New(os.Stderr, "marketdata ", log.LstdFlags))
	if err != nil {
		appLogger.Fatalf("Failed to create market data source: %v", err)
	}

	integrator := signal.NewIntegrator(buildSignalConfig(cfg), appLogger)
	analyzer := indicators.NewAnalyzer(indicators.DefaultIndicators(), appLogger)

	var resultRepo repository.BacktestResultRepository
	var tradeRepo repository.TradeRepository
	var db *database.DB
	if *persist {
		db, err = database.Initialize(ctx, cfg)
		if err != nil {
			appLogger.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		resultRepo = repository.NewPostgresBacktestResultRepository(db)
		tradeRepo = repository.NewPostgresTradeRepository(db)
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		var pinger health.DatabasePinger
		if db != nil {
			pinger = db
		}
		probe := health.NewServer(cfg.App.Name, cfg.Metrics, pinger, appLogger)
		if err := probe.Start(ctx); err != nil {
			appLogger.WithError(err).Warn("Failed to start probe server")
		} else {
			probe.SetReady(true)
			defer probe.Shutdown()
		}
	}

	for _, symbol := range symbolList {
		runSymbol(ctx, runContext{
			cfg:        cfg,
			btConfig:   btConfig,
			engine:     engine,
			source:     source,
			analyzer:   analyzer,
			integrator: integrator,
			logger:     appLogger,
			mode:       *mode,
			seed:       *seed,
			resultRepo: resultRepo,
			tradeRepo:  tradeRepo,
		}, symbol)
	}
}

type runContext struct {
	cfg        *config.Config
	btConfig   backtest.Config
	engine     *backtest.Engine
	source     marketdata.BarSource
	analyzer   *indicators.Analyzer
	integrator *signal.Integrator
	logger     *logrus.Logger
	mode       string
	seed       int64
	resultRepo repository.BacktestResultRepository
	tradeRepo  repository.TradeRepository
}

func runSymbol(ctx context.Context, rc runContext, symbol string) {
	rc.logger.WithFields(logrus.Fields{"symbol": symbol, "mode": rc.mode}).Info("Starting backtest")
	started := time.Now()

	bars, signals := prepareSeries(ctx, rc, symbol)

	result, err := rc.engine.Run(ctx, symbol, bars, signals)
	if err != nil {
		metrics.RecordBacktestRun("error", time.Since(started).Seconds())
		rc.logger.Fatalf("Backtest failed for %s: %v", symbol, err)
	}
	runMetrics := backtest.CalculateMetrics(result, rc.btConfig.RiskFreeRate)
	metrics.RecordBacktestRun("ok", time.Since(started).Seconds())
	metrics.UpdateEquity(symbol, runMetrics.FinalEquity)
	metrics.UpdateMaxDrawdown(symbol, runMetrics.MaxDrawdown)

	report := backtest.BuildReport(result, runMetrics)

	switch rc.mode {
	case "historical":
		rc.logger.Info(backtest.GenerateConsoleReport(report))
	case "monte-carlo":
		rc.logger.Info(backtest.GenerateConsoleReport(report))
		runMonteCarlo(ctx, rc, result)
	case "walk-forward":
		runWalkForward(ctx, rc, symbol, bars, signals)
	case "all":
		rc.logger.Info(backtest.GenerateConsoleReport(report))
		runMonteCarlo(ctx, rc, result)
		runWalkForward(ctx, rc, symbol, bars, signals)
	default:
		rc.logger.Fatalf("Unsupported mode: %s", rc.mode)
	}

	writeReports(rc, symbol, report)

	if rc.resultRepo != nil {
		persistResult(ctx, rc, symbol, result, runMetrics)
	}
}

func prepareSeries(ctx context.Context, rc runContext, symbol string) ([]models.Bar, []models.IntegratedSignal) {
	fetchStart := time.Now()
	bars, err := rc.source.FetchBars(ctx, symbol, rc.btConfig.StartDate, rc.btConfig.EndDate)
	if err != nil {
		rc.logger.Fatalf("Failed to fetch bars for %s: %v", symbol, err)
	}
	metrics.RecordProviderFetch(time.Since(fetchStart).Seconds())

	readings, err := rc.analyzer.Analyze(bars)
	if err != nil {
		rc.logger.Fatalf("Indicator analysis failed for %s: %v", symbol, err)
	}
	return bars, rc.integrator.IntegrateSeries(bars, readings)
}

func runMonteCarlo(ctx context.Context, rc runContext, result *backtest.Result) {
	mc, err := backtest.RunMonteCarlo(ctx, result, backtest.MonteCarloConfig{
		Iterations:     rc.btConfig.MonteCarloIterations,
		Seed:           rc.seed,
		InitialCapital: rc.btConfig.InitialCapital,
	})
	if err != nil {
		rc.logger.WithError(err).Warn("Monte Carlo skipped")
		return
	}
	rc.logger.WithFields(logrus.Fields{
		"mean_return":           mc.MeanReturn,
		"var_95":                mc.VaR95,
		"probability_of_profit": mc.ProbabilityOfProfit,
	}).Info("Monte Carlo completed")
}

func runWalkForward(ctx context.Context, rc runContext, symbol string, bars []models.Bar, signals []models.IntegratedSignal) {
	wf, err := backtest.RunWalkForward(ctx, rc.engine, symbol, bars, signals, backtest.WalkForwardConfig{
		TrainingBars: rc.cfg.Backtest.WalkForwardTrainBars,
		TestBars:     rc.cfg.Backtest.WalkForwardTestBars,
	})
	if err != nil {
		rc.logger.WithError(err).Warn("Walk-forward skipped")
		return
	}
	rc.logger.WithFields(logrus.Fields{
		"windows":     len(wf.Windows),
		"consistency": wf.ConsistencyScore,
		"overfit":     wf.OverfitScore,
	}).Info("Walk-forward completed")
}

func writeReports(rc runContext, symbol string, report backtest.Report) {
	if rc.btConfig.OutputPath == "" {
		return
	}
	htmlPath := rc.btConfig.OutputPath + "/" + symbol + ".html"
	if err := backtest.GenerateHTMLReport(report, htmlPath); err != nil {
		rc.logger.WithError(err).Warn("Failed to write HTML report")
	}
	csvPath := rc.btConfig.OutputPath + "/" + symbol + ".csv"
	if err := backtest.GenerateCSVExport(report, csvPath); err != nil {
		rc.logger.WithError(err).Warn("Failed to write CSV export")
	}
}

func persistResult(ctx context.Context, rc runContext, symbol string, result *backtest.Result, runMetrics backtest.Metrics) {
	payload, err := json.Marshal(result)
	if err != nil {
		rc.logger.Fatalf("Failed to serialize result: %v", err)
	}

	record := &models.BacktestRecord{
		ID:               uuid.New(),
		Symbol:           symbol,
		RunDate:          time.Now().UTC(),
		StartDate:        rc.btConfig.StartDate,
		EndDate:          rc.btConfig.EndDate,
		InitialCapital:   result.InitialCapital,
		FinalEquity:      runMetrics.FinalEquity,
		TotalReturn:      runMetrics.TotalReturn,
		AnnualizedReturn: runMetrics.AnnualizedReturn,
		SharpeRatio:      runMetrics.SharpeRatio,
		MaxDrawdown:      runMetrics.MaxDrawdown,
		TotalTrades:      runMetrics.TotalTrades,
		WinRate:          runMetrics.WinRate,
		ProfitFactor:     runMetrics.ProfitFactor,
		TotalCommission:  runMetrics.TotalCommission,
		FullResults:      payload,
		CreatedAt:        time.Now().UTC(),
	}

	if err := rc.resultRepo.SaveResult(ctx, record); err != nil {
		rc.logger.Fatalf("Failed to persist backtest result: %v", err)
	}
	if err := rc.tradeRepo.SaveTrades(ctx, record.ID, result.Trades); err != nil {
		rc.logger.Fatalf("Failed to persist trades: %v", err)
	}
	rc.logger.WithField("result_id", record.ID).Info("Result persisted")
}

func loadConfigWithSecrets(path string) *config.Config {
	bootLogger := logrus.New()

	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		bootLogger.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			bootLogger.Fatal("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			bootLogger.Fatalf("Failed to load secrets: %v", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		bootLogger.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

func buildBacktestConfig(cfg *config.Config, output, startOverride, endOverride string, appLogger *logrus.Logger) backtest.Config {
	btConfig, err := backtest.FromConfig(cfg)
	if err != nil {
		appLogger.Fatalf("Invalid backtest config: %v", err)
	}
	if output != "" {
		btConfig.OutputPath = output
	}
	if startOverride != "" {
		parsed, err := time.Parse("2006-01-02", startOverride)
		if err != nil {
			appLogger.Fatalf("Invalid start date: %v", err)
		}
		btConfig.StartDate = parsed
	}
	if endOverride != "" {
		parsed, err := time.Parse("2006-01-02", endOverride)
		if err != nil {
			appLogger.Fatalf("Invalid end date: %v", err)
		}
		btConfig.EndDate = parsed
	}
	return btConfig
}

func buildSignalConfig(cfg *config.Config) signal.Config {
	return signal.Config{
		ConfidenceThreshold: cfg.Signals.ConfidenceThreshold,
		MinIndicators:       cfg.Signals.MinIndicators,
		Weights:             cfg.Signals.Weights,
		TagBonus:            cfg.Signals.TagBonus,
		ConfidenceCap:       cfg.Signals.ConfidenceCap,
		ConfidenceFloor:     cfg.Signals.ConfidenceFloor,
	}
}

func buildPolicyConfig(cfg *config.Config) risk.PolicyConfig {
	return risk.PolicyConfig{
		MaxPositionPct:          cfg.Risk.MaxPositionPct,
		StopLossHighConfidence:  cfg.Risk.StopLossHighConfidence,
		StopLossLowConfidence:   cfg.Risk.StopLossLowConfidence,
		ConfidenceTier:          cfg.Risk.ConfidenceTier,
		TakeProfitPct:           cfg.Risk.TakeProfitPct,
		TrailingStopPct:         cfg.Risk.TrailingStopPct,
		TrailingActivationPct:   cfg.Risk.TrailingActivationPct,
		HighVolatilityThreshold: cfg.Risk.HighVolatilityThreshold,
		VolatilityAdjustment:    cfg.Risk.VolatilityAdjustment,
		CommissionRate:          cfg.Backtest.CommissionRate,
	}
}

func splitSymbols(raw string) []string {
	parts := strings.Split(raw, ",")
	symbols := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			symbols = append(symbols, strings.ToUpper(trimmed))
		}
	}
	return symbols
}
