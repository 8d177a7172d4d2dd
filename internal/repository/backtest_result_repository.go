package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/signal-trader/internal/database"
	"github.com/yourusername/signal-trader/internal/models"
)

const (
	errScanBacktestResult  = "failed to scan backtest result: %w"
	backtestResultColumns  = `id, symbol, run_date, start_date, end_date, initial_capital, final_equity,
		total_return, annualized_return, sharpe_ratio, max_drawdown, total_trades,
		win_rate, profit_factor, total_commission, full_results, created_at`
)

// PostgresBacktestResultRepository implements BacktestResultRepository for PostgreSQL
type PostgresBacktestResultRepository struct {
	db *database.DB
}

// NewPostgresBacktestResultRepository creates a new backtest result repository
func NewPostgresBacktestResultRepository(db *database.DB) BacktestResultRepository {
	return &PostgresBacktestResultRepository{db: db}
}

// SaveResult inserts a backtest result summary
func (r *PostgresBacktestResultRepository) SaveResult(ctx context.Context, record *models.BacktestRecord) error {
	query := `
		INSERT INTO backtest_results (
			id, symbol, run_date, start_date, end_date,
			initial_capital, final_equity, total_return, annualized_return, sharpe_ratio,
			max_drawdown, total_trades, win_rate, profit_factor, total_commission,
			full_results, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		record.ID, record.Symbol, record.RunDate, record.StartDate, record.EndDate,
		record.InitialCapital, record.FinalEquity, record.TotalReturn, record.AnnualizedReturn, record.SharpeRatio,
		record.MaxDrawdown, record.TotalTrades, record.WinRate, record.ProfitFactor, record.TotalCommission,
		record.FullResults, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save backtest result: %w", err)
	}
	return nil
}

// GetByID retrieves a backtest result by ID
func (r *PostgresBacktestResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM backtest_results WHERE id = $1`, backtestResultColumns)

	record, err := scanBacktestRecord(r.db.GetPool().QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("backtest result %s not found", id)
		}
		return nil, err
	}
	return record, nil
}

// GetBySymbol retrieves the most recent backtest results for a symbol
func (r *PostgresBacktestResultRepository) GetBySymbol(ctx context.Context, symbol string, limit int) ([]*models.BacktestRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT %s FROM backtest_results WHERE symbol = $1 ORDER BY run_date DESC LIMIT $2`, backtestResultColumns)

	rows, err := r.db.GetPool().Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest results: %w", err)
	}
	defer rows.Close()

	return collectBacktestRecords(rows)
}

// GetByDateRange retrieves backtest results run within a date range
func (r *PostgresBacktestResultRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.BacktestRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM backtest_results WHERE run_date BETWEEN $1 AND $2 ORDER BY run_date DESC`, backtestResultColumns)

	rows, err := r.db.GetPool().Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest results: %w", err)
	}
	defer rows.Close()

	return collectBacktestRecords(rows)
}

// Delete removes a backtest result and its trades
func (r *PostgresBacktestResultRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.GetPool().Exec(ctx, `DELETE FROM backtest_results WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete backtest result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("backtest result %s not found", id)
	}
	return nil
}

func collectBacktestRecords(rows pgx.Rows) ([]*models.BacktestRecord, error) {
	var records []*models.BacktestRecord
	for rows.Next() {
		record, err := scanBacktestRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return records, nil
}

func scanBacktestRecord(row pgx.Row) (*models.BacktestRecord, error) {
	var record models.BacktestRecord
	err := row.Scan(
		&record.ID, &record.Symbol, &record.RunDate, &record.StartDate, &record.EndDate,
		&record.InitialCapital, &record.FinalEquity, &record.TotalReturn, &record.AnnualizedReturn, &record.SharpeRatio,
		&record.MaxDrawdown, &record.TotalTrades, &record.WinRate, &record.ProfitFactor, &record.TotalCommission,
		&record.FullResults, &record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf(errScanBacktestResult, err)
	}
	return &record, nil
}
