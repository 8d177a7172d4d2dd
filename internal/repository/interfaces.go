package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/signal-trader/internal/models"
)

// BacktestResultRepository defines the interface for persisted run summaries
type BacktestResultRepository interface {
	SaveResult(ctx context.Context, record *models.BacktestRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRecord, error)
	GetBySymbol(ctx context.Context, symbol string, limit int) ([]*models.BacktestRecord, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.BacktestRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TradeRepository defines the interface for persisted trade logs
type TradeRepository interface {
	SaveTrades(ctx context.Context, resultID uuid.UUID, trades []*models.Trade) error
	GetByResultID(ctx context.Context, resultID uuid.UUID) ([]*models.Trade, error)
}
