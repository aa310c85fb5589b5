package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tradehook/internal/domain"
)

// PairRepositoryImpl implements the PairRepository interface
type PairRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewPairRepository creates a new PairRepository
func NewPairRepository(db *pgxpool.Pool) domain.PairRepository {
	return &PairRepositoryImpl{db: db}
}

// Get retrieves the cached specification for a symbol.
// Returns nil, nil when the symbol has not been cached.
func (r *PairRepositoryImpl) Get(ctx context.Context, symbol string) (*domain.TradingPair, error) {
	query := `
		SELECT symbol, step_size, min_qty, min_notional, price_precision, updated_at
		FROM trading_pairs
		WHERE symbol = $1
	`

	pair := &domain.TradingPair{}
	err := r.db.QueryRow(ctx, query, symbol).Scan(
		&pair.Symbol,
		&pair.StepSize,
		&pair.MinQty,
		&pair.MinNotional,
		&pair.PricePrecision,
		&pair.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get trading pair %s: %w", symbol, err)
	}

	return pair, nil
}

// Upsert stores or refreshes a symbol specification
func (r *PairRepositoryImpl) Upsert(ctx context.Context, pair *domain.TradingPair) error {
	query := `
		INSERT INTO trading_pairs (symbol, step_size, min_qty, min_notional, price_precision, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (symbol) DO UPDATE SET
			step_size = EXCLUDED.step_size,
			min_qty = EXCLUDED.min_qty,
			min_notional = EXCLUDED.min_notional,
			price_precision = EXCLUDED.price_precision,
			updated_at = NOW()
	`

	_, err := r.db.Exec(ctx, query,
		pair.Symbol,
		pair.StepSize,
		pair.MinQty,
		pair.MinNotional,
		pair.PricePrecision,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert trading pair %s: %w", pair.Symbol, err)
	}

	return nil
}
