// Package scheduler runs periodic bar refresh jobs so local CSV archives
// stay current without manual fetches.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yourusername/signal-trader/internal/marketdata"
)

// Scheduler manages recurring bar download jobs on a UTC cron clock.
type Scheduler struct {
	cron            *cron.Cron
	source          marketdata.BarSource
	outputDir       string
	logger          *log.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a scheduler that refreshes bars from the given source
// into per-symbol CSV files under outputDir.
func NewScheduler(source marketdata.BarSource, outputDir string, logger *log.Logger) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		source:          source,
		outputDir:       outputDir,
		logger:          logger,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleRefresh schedules a recurring download of the trailing lookback
// window for the given symbols.
func (s *Scheduler) ScheduleRefresh(cronExpression string, symbols []string, lookbackDays int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if len(symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}
	if lookbackDays <= 0 {
		lookbackDays = 30
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		s.refresh(ctx, symbols, lookbackDays)
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.Printf("Scheduled bar refresh for %s with cron expression: %s",
		strings.Join(symbols, ","), cronExpression)
	return nil
}

// refresh downloads and persists the trailing window for each symbol. A
// failure on one symbol does not abort the rest.
func (s *Scheduler) refresh(ctx context.Context, symbols []string, lookbackDays int) {
	endDate := time.Now().UTC()
	startDate := endDate.AddDate(0, 0, -lookbackDays)

	s.logger.Printf("Starting scheduled bar refresh for %d symbols (%s to %s)",
		len(symbols), startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))

	for _, symbol := range symbols {
		bars, err := s.source.FetchBars(ctx, symbol, startDate, endDate)
		if err != nil {
			s.logger.Printf("Error refreshing %s: %v", symbol, err)
			continue
		}
		path := filepath.Join(s.outputDir, symbol+".csv")
		if err := marketdata.SaveBarsCSV(path, bars); err != nil {
			s.logger.Printf("Error writing %s: %v", path, err)
			continue
		}
		s.logger.Printf("Refreshed %d bars for %s", len(bars), symbol)
	}
}

// Start starts the scheduler.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.Printf("Scheduler started with %d jobs", len(s.jobIDs))
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running refresh to
// finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(s.gracefulTimeout):
	}
	s.isRunning = false
	s.logger.Printf("Scheduler stopped")
	return nil
}

// IsRunning returns whether the scheduler is currently running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the earliest upcoming job time, or the zero time when
// nothing is scheduled.
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}
	return nextRun
}
