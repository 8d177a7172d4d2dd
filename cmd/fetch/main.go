package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/signal-trader/internal/config"
	"github.com/yourusername/signal-trader/internal/logger"
	"github.com/yourusername/signal-trader/internal/marketdata"
	"github.com/yourusername/signal-trader/internal/scheduler"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile   string
	symbolsArg   string
	startArg     string
	endArg       string
	outputDir    string
	scheduleArg  string
	lookbackDays int
	appLogger    *logrus.Logger
	cfg          *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVarP(&symbolsArg, "symbols", "s", "", "Comma-separated symbols to fetch (required)")
	rootCmd.Flags().StringVar(&startArg, "start-date", "", "Start date (YYYY-MM-DD), defaults to backtest start")
	rootCmd.Flags().StringVar(&endArg, "end-date", "", "End date (YYYY-MM-DD), defaults to backtest end")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory, defaults to configured CSV directory")
	rootCmd.Flags().StringVar(&scheduleArg, "schedule", "", "Cron expression for recurring refresh (runs until interrupted)")
	rootCmd.Flags().IntVar(&lookbackDays, "lookback-days", 30, "Trailing window for scheduled refreshes")
	_ = rootCmd.MarkFlagRequired("symbols")
}

var rootCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download daily bars and store them as CSV files",
	Long:  `Fetches daily OHLCV bars from the configured market data provider and writes one CSV file per symbol for offline backtesting.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		appLogger = logger.NewLogger(cfg.App.LogLevel)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if scheduleArg != "" {
			return runScheduled()
		}
		return fetchSymbols()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func fetchSymbols() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start, end, err := resolveDateRange()
	if err != nil {
		return err
	}

	dir := outputDir
	if dir == "" {
		dir = cfg.MarketData.CSVDirectory
	}
	if dir == "" {
		dir = "data/bars"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	source, err := marketdata.NewSource(cfg.MarketData, log.New(os.Stderr, "marketdata ", log.LstdFlags))
	if err != nil {
		return fmt.Errorf("failed to create market data source: %w", err)
	}

	for _, symbol := range strings.Split(symbolsArg, ",") {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol == "" {
			continue
		}
		bars, err := source.FetchBars(ctx, symbol, start, end)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", symbol, err)
		}
		path := filepath.Join(dir, symbol+".csv")
		if err := marketdata.SaveBarsCSV(path, bars); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		appLogger.WithFields(logrus.Fields{
			"symbol": symbol,
			"bars":   len(bars),
			"path":   path,
		}).Info("Bars saved")
	}
	return nil
}

func runScheduled() error {
	dir := outputDir
	if dir == "" {
		dir = cfg.MarketData.CSVDirectory
	}
	if dir == "" {
		dir = "data/bars"
	}

	source, err := marketdata.NewSource(cfg.MarketData, log.New(os.Stderr, "marketdata ", log.LstdFlags))
	if err != nil {
		return fmt.Errorf("failed to create market data source: %w", err)
	}

	symbols := make([]string, 0)
	for _, part := range strings.Split(symbolsArg, ",") {
		if trimmed := strings.ToUpper(strings.TrimSpace(part)); trimmed != "" {
			symbols = append(symbols, trimmed)
		}
	}

	sched := scheduler.NewScheduler(source, dir, log.New(os.Stderr, "scheduler ", log.LstdFlags))
	if err := sched.ScheduleRefresh(scheduleArg, symbols, lookbackDays); err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	appLogger.WithFields(logrus.Fields{
		"schedule": scheduleArg,
		"next_run": sched.GetNextRun(),
	}).Info("Refresh scheduler running, press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	return sched.Stop()
}

func resolveDateRange() (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", cfg.Backtest.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid configured start date: %w", err)
	}
	end, err2 := time.Parse("2006-01-02", cfg.Backtest.EndDate)
	if err2 != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid configured end date: %w", err2)
	}
	if startArg != "" {
		start, err = time.Parse("2006-01-02", startArg)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date: %w", err)
		}
	}
	if endArg != "" {
		end, err = time.Parse("2006-01-02", endArg)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date: %w", err)
		}
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date must be after start date")
	}
	return start, end, nil
}
