package database

import (
	"context"
	"fmt"

	"github.com/yourusername/signal-trader/internal/config"
)

// Initialize creates a database connection pool and ensures the result
// tables exist. Persistence is optional; callers should only invoke this
// when the database is enabled in configuration.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return db, nil
}

func ensureSchema(ctx context.Context, db *DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS backtest_results (
			id UUID PRIMARY KEY,
			symbol TEXT NOT NULL,
			run_date TIMESTAMPTZ NOT NULL,
			start_date TIMESTAMPTZ NOT NULL,
			end_date TIMESTAMPTZ NOT NULL,
			initial_capital DOUBLE PRECISION NOT NULL,
			final_equity DOUBLE PRECISION NOT NULL,
			total_return DOUBLE PRECISION NOT NULL,
			annualized_return DOUBLE PRECISION NOT NULL,
			sharpe_ratio DOUBLE PRECISION NOT NULL,
			max_drawdown DOUBLE PRECISION NOT NULL,
			total_trades INTEGER NOT NULL,
			win_rate DOUBLE PRECISION NOT NULL,
			profit_factor DOUBLE PRECISION NOT NULL,
			total_commission DOUBLE PRECISION NOT NULL,
			full_results JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_backtest_results_symbol
			ON backtest_results (symbol, run_date DESC)`,
		`CREATE TABLE IF NOT EXISTS trades (
			id UUID PRIMARY KEY,
			result_id UUID NOT NULL REFERENCES backtest_results (id) ON DELETE CASCADE,
			symbol TEXT NOT NULL,
			entry_timestamp TIMESTAMPTZ NOT NULL,
			exit_timestamp TIMESTAMPTZ NOT NULL,
			entry_price DOUBLE PRECISION NOT NULL,
			exit_price DOUBLE PRECISION NOT NULL,
			shares BIGINT NOT NULL,
			exit_reason TEXT NOT NULL,
			gross_pnl DOUBLE PRECISION NOT NULL,
			commission DOUBLE PRECISION NOT NULL,
			net_pnl DOUBLE PRECISION NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_result
			ON trades (result_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
