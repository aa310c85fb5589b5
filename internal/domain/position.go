package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PositionStatus constants
const (
	PositionOpen   = "OPEN"
	PositionClosed = "CLOSED"
)

// Position tracks exposure for a single symbol. The ledger holds at most
// one open position per symbol; same-side entries merge into it.
type Position struct {
	ID            uuid.UUID  `json:"id"`
	Symbol        string     `json:"symbol"`
	Side          OrderSide  `json:"side"`
	Quantity      float64    `json:"quantity"`
	EntryPrice    float64    `json:"entry_price"`
	MarkPrice     float64    `json:"mark_price"` // refreshed from the exchange, never trusted stale
	SLPrice       *float64   `json:"sl_price,omitempty"`
	TPPrice       *float64   `json:"tp_price,omitempty"`
	SLOrderID     *string    `json:"sl_order_id,omitempty"` // linked protective orders, cancelled together on close
	TPOrderID     *string    `json:"tp_order_id,omitempty"`
	UnrealizedPnL float64    `json:"unrealized_pnl"`
	RealizedPnL   *float64   `json:"realized_pnl,omitempty"` // set when the position closes
	Status        string     `json:"status"`
	OpenedAt      time.Time  `json:"opened_at"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
}

// IsOpen reports whether the position is still open.
func (p *Position) IsOpen() bool {
	return p.Status == PositionOpen
}

// IsLong reports whether the position was opened with a buy.
func (p *Position) IsLong() bool {
	return p.Side == SideBuy
}

// PnL computes profit and loss at the given mark price:
// (mark - entry) * quantity * direction. Deterministic for a given
// entry/mark pair, so recomputation on every read is safe.
func (p *Position) PnL(markPrice float64) float64 {
	if p.IsLong() {
		return (markPrice - p.EntryPrice) * p.Quantity
	}
	return (p.EntryPrice - markPrice) * p.Quantity
}

// Merge folds a same-side fill into the position using a quantity-weighted
// average entry price.
func (p *Position) Merge(quantity, fillPrice float64) {
	total := p.Quantity + quantity
	if total <= 0 {
		return
	}
	p.EntryPrice = (p.EntryPrice*p.Quantity + fillPrice*quantity) / total
	p.Quantity = total
}

// Close marks the position closed at the given exit price.
func (p *Position) Close(exitPrice float64, closedAt time.Time) {
	pnl := p.PnL(exitPrice)
	p.MarkPrice = exitPrice
	p.RealizedPnL = &pnl
	p.UnrealizedPnL = 0
	p.Status = PositionClosed
	p.ClosedAt = &closedAt
}

// PositionRepository defines the interface for position persistence.
type PositionRepository interface {
	// Save creates a new position.
	Save(ctx context.Context, position *Position) error

	// Update modifies an existing position.
	Update(ctx context.Context, position *Position) error

	// GetOpenBySymbol retrieves the open position for a symbol.
	// Returns nil, nil when no open position exists.
	GetOpenBySymbol(ctx context.Context, symbol string) (*Position, error)

	// GetOpen retrieves all open positions.
	GetOpen(ctx context.Context) ([]*Position, error)

	// GetByID retrieves a position by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*Position, error)

	// GetClosed retrieves closed positions, most recently closed first.
	GetClosed(ctx context.Context, limit int) ([]*Position, error)
}
