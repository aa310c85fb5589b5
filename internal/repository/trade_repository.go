package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tradehook/internal/domain"
)

// TradeRepositoryImpl implements the TradeRepository interface
type TradeRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewTradeRepository creates a new TradeRepository
func NewTradeRepository(db *pgxpool.Pool) domain.TradeRepository {
	return &TradeRepositoryImpl{db: db}
}

// Save persists a new trade record
func (r *TradeRepositoryImpl) Save(ctx context.Context, trade *domain.Trade) error {
	query := `
		INSERT INTO trades (
			id, symbol, side, quantity, price, filled_price, order_id,
			status, error_message, signal_data, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`

	_, err := r.db.Exec(ctx, query,
		trade.ID,
		trade.Symbol,
		trade.Side,
		trade.Quantity,
		trade.Price,
		trade.FilledPrice,
		trade.OrderID,
		trade.Status,
		trade.ErrorMessage,
		trade.SignalData,
		trade.CreatedAt,
		trade.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to save trade: %w", err)
	}

	return nil
}

// Update modifies an existing trade
func (r *TradeRepositoryImpl) Update(ctx context.Context, trade *domain.Trade) error {
	query := `
		UPDATE trades
		SET filled_price = $1,
		    order_id = $2,
		    status = $3,
		    error_message = $4,
		    updated_at = $5
		WHERE id = $6
	`

	_, err := r.db.Exec(ctx, query,
		trade.FilledPrice,
		trade.OrderID,
		trade.Status,
		trade.ErrorMessage,
		trade.UpdatedAt,
		trade.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update trade: %w", err)
	}

	return nil
}

// GetRecent retrieves the most recent trades, newest first
func (r *TradeRepositoryImpl) GetRecent(ctx context.Context, limit int) ([]*domain.Trade, error) {
	query := `
		SELECT id, symbol, side, quantity, price, filled_price, order_id,
		       status, error_message, signal_data, created_at, updated_at
		FROM trades
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent trades: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// GetBySymbol retrieves the most recent trades for a symbol
func (r *TradeRepositoryImpl) GetBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Trade, error) {
	query := `
		SELECT id, symbol, side, quantity, price, filled_price, order_id,
		       status, error_message, signal_data, created_at, updated_at
		FROM trades
		WHERE symbol = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades by symbol: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// CountByStatus counts trades with the given status
func (r *TradeRepositoryImpl) CountByStatus(ctx context.Context, status string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM trades WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}
	return count, nil
}

func scanTrades(rows pgx.Rows) ([]*domain.Trade, error) {
	var trades []*domain.Trade
	for rows.Next() {
		trade := &domain.Trade{}
		err := rows.Scan(
			&trade.ID,
			&trade.Symbol,
			&trade.Side,
			&trade.Quantity,
			&trade.Price,
			&trade.FilledPrice,
			&trade.OrderID,
			&trade.Status,
			&trade.ErrorMessage,
			&trade.SignalData,
			&trade.CreatedAt,
			&trade.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	return trades, nil
}
