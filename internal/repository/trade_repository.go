package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/signal-trader/internal/database"
	"github.com/yourusername/signal-trader/internal/models"
)

// PostgresTradeRepository implements TradeRepository for PostgreSQL
type PostgresTradeRepository struct {
	db *database.DB
}

// NewPostgresTradeRepository creates a new trade repository
func NewPostgresTradeRepository(db *database.DB) TradeRepository {
	return &PostgresTradeRepository{db: db}
}

// SaveTrades inserts the trade log for a run in one transaction
func (r *PostgresTradeRepository) SaveTrades(ctx context.Context, resultID uuid.UUID, trades []*models.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		batch := &pgx.Batch{}
		query := `
			INSERT INTO trades (
				id, result_id, symbol, entry_timestamp, exit_timestamp,
				entry_price, exit_price, shares, exit_reason,
				gross_pnl, commission, net_pnl
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		`
		for _, trade := range trades {
			batch.Queue(query,
				trade.ID, resultID, trade.Symbol, trade.EntryTimestamp, trade.ExitTimestamp,
				trade.EntryPrice, trade.ExitPrice, trade.Shares, trade.ExitReason,
				trade.GrossPnL, trade.Commission, trade.NetPnL,
			)
		}

		results := tx.SendBatch(ctx, batch)
		defer results.Close()
		for range trades {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("failed to insert trade: %w", err)
			}
		}
		return nil
	})
}

// GetByResultID retrieves the trade log for a run
func (r *PostgresTradeRepository) GetByResultID(ctx context.Context, resultID uuid.UUID) ([]*models.Trade, error) {
	query := `
		SELECT id, symbol, entry_timestamp, exit_timestamp, entry_price, exit_price,
			shares, exit_reason, gross_pnl, commission, net_pnl
		FROM trades WHERE result_id = $1 ORDER BY exit_timestamp
	`

	rows, err := r.db.GetPool().Query(ctx, query, resultID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []*models.Trade
	for rows.Next() {
		var trade models.Trade
		err := rows.Scan(
			&trade.ID, &trade.Symbol, &trade.EntryTimestamp, &trade.ExitTimestamp,
			&trade.EntryPrice, &trade.ExitPrice, &trade.Shares, &trade.ExitReason,
			&trade.GrossPnL, &trade.Commission, &trade.NetPnL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, &trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return trades, nil
}
