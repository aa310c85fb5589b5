package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tradehook/internal/domain"
)

// PositionRepositoryImpl implements the PositionRepository interface
type PositionRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewPositionRepository creates a new PositionRepository
func NewPositionRepository(db *pgxpool.Pool) domain.PositionRepository {
	return &PositionRepositoryImpl{db: db}
}

const positionColumns = `
	id, symbol, side, quantity, entry_price, mark_price,
	sl_price, tp_price, sl_order_id, tp_order_id,
	unrealized_pnl, realized_pnl, status, opened_at, closed_at`

// Save creates a new position
func (r *PositionRepositoryImpl) Save(ctx context.Context, position *domain.Position) error {
	query := `
		INSERT INTO positions (` + positionColumns + `
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
	`

	_, err := r.db.Exec(ctx, query,
		position.ID,
		position.Symbol,
		position.Side,
		position.Quantity,
		position.EntryPrice,
		position.MarkPrice,
		position.SLPrice,
		position.TPPrice,
		position.SLOrderID,
		position.TPOrderID,
		position.UnrealizedPnL,
		position.RealizedPnL,
		position.Status,
		position.OpenedAt,
		position.ClosedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to save position: %w", err)
	}

	return nil
}

// Update modifies an existing position
func (r *PositionRepositoryImpl) Update(ctx context.Context, position *domain.Position) error {
	query := `
		UPDATE positions
		SET quantity = $1,
		    entry_price = $2,
		    mark_price = $3,
		    sl_price = $4,
		    tp_price = $5,
		    sl_order_id = $6,
		    tp_order_id = $7,
		    unrealized_pnl = $8,
		    realized_pnl = $9,
		    status = $10,
		    closed_at = $11
		WHERE id = $12
	`

	_, err := r.db.Exec(ctx, query,
		position.Quantity,
		position.EntryPrice,
		position.MarkPrice,
		position.SLPrice,
		position.TPPrice,
		position.SLOrderID,
		position.TPOrderID,
		position.UnrealizedPnL,
		position.RealizedPnL,
		position.Status,
		position.ClosedAt,
		position.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update position: %w", err)
	}

	return nil
}

// GetOpenBySymbol retrieves the open position for a symbol.
// Returns nil, nil when no open position exists.
func (r *PositionRepositoryImpl) GetOpenBySymbol(ctx context.Context, symbol string) (*domain.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions
		WHERE symbol = $1 AND status = 'OPEN'
	`

	position, err := scanPosition(r.db.QueryRow(ctx, query, symbol))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open position for %s: %w", symbol, err)
	}

	return position, nil
}

// GetOpen retrieves all open positions
func (r *PositionRepositoryImpl) GetOpen(ctx context.Context) ([]*domain.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions
		WHERE status = 'OPEN'
		ORDER BY opened_at ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query open positions: %w", err)
	}
	defer rows.Close()

	return scanPositions(rows)
}

// GetByID retrieves a position by ID
func (r *PositionRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions
		WHERE id = $1
	`

	position, err := scanPosition(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get position by ID: %w", err)
	}

	return position, nil
}

// GetClosed retrieves closed positions, most recently closed first
func (r *PositionRepositoryImpl) GetClosed(ctx context.Context, limit int) ([]*domain.Position, error) {
	query := `
		SELECT ` + positionColumns + `
		FROM positions
		WHERE status = 'CLOSED'
		ORDER BY closed_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query closed positions: %w", err)
	}
	defer rows.Close()

	return scanPositions(rows)
}

func scanPosition(row pgx.Row) (*domain.Position, error) {
	position := &domain.Position{}
	err := row.Scan(
		&position.ID,
		&position.Symbol,
		&position.Side,
		&position.Quantity,
		&position.EntryPrice,
		&position.MarkPrice,
		&position.SLPrice,
		&position.TPPrice,
		&position.SLOrderID,
		&position.TPOrderID,
		&position.UnrealizedPnL,
		&position.RealizedPnL,
		&position.Status,
		&position.OpenedAt,
		&position.ClosedAt,
	)
	if err != nil {
		return nil, err
	}
	return position, nil
}

func scanPositions(rows pgx.Rows) ([]*domain.Position, error) {
	var positions []*domain.Position
	for rows.Next() {
		position, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, position)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return positions, nil
}
