package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderSide is the direction of an order.
type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

// Opposite returns the closing side for this side.
func (s OrderSide) Opposite() OrderSide {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// TradeStatus constants. FILLED, FAILED and CANCELLED are terminal:
// no trade ever transitions out of them.
const (
	TradePending   = "PENDING"
	TradeFilled    = "FILLED"
	TradeFailed    = "FAILED"
	TradeCancelled = "CANCELLED"
)

// Trade records a single order attempt, successful or not. Every signal
// that reaches the orchestrator produces exactly one Trade.
type Trade struct {
	ID           uuid.UUID `json:"id"`
	Symbol       string    `json:"symbol"`
	Side         OrderSide `json:"side"`
	Quantity     float64   `json:"quantity"`
	Price        *float64  `json:"price,omitempty"`        // requested price, nil for market orders
	FilledPrice  *float64  `json:"filled_price,omitempty"` // nil until the order fills
	OrderID      *string   `json:"order_id,omitempty"`     // exchange order ID
	Status       string    `json:"status"`
	ErrorMessage *string   `json:"error_message,omitempty"` // set only on FAILED
	SignalData   string    `json:"signal_data,omitempty"`   // raw webhook payload
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsTerminal reports whether the trade reached a final status.
func (t *Trade) IsTerminal() bool {
	return t.Status == TradeFilled || t.Status == TradeFailed || t.Status == TradeCancelled
}

// TradeRepository defines the interface for trade persistence.
type TradeRepository interface {
	// Save persists a new trade record.
	Save(ctx context.Context, trade *Trade) error

	// Update modifies an existing trade (status transition, fill price).
	Update(ctx context.Context, trade *Trade) error

	// GetRecent retrieves the most recent trades, newest first.
	GetRecent(ctx context.Context, limit int) ([]*Trade, error)

	// GetBySymbol retrieves the most recent trades for a symbol.
	GetBySymbol(ctx context.Context, symbol string, limit int) ([]*Trade, error)

	// CountByStatus counts trades with the given status.
	CountByStatus(ctx context.Context, status string) (int, error)
}
