package dto

import (
	"tradehook/internal/domain"
)

// TradeOutput represents a trade in API responses
type TradeOutput struct {
	ID           string   `json:"id"`
	Symbol       string   `json:"symbol"`
	Side         string   `json:"side"`
	Quantity     float64  `json:"quantity"`
	Price        *float64 `json:"price,omitempty"`
	FilledPrice  *float64 `json:"filled_price,omitempty"`
	OrderID      *string  `json:"order_id,omitempty"`
	Status       string   `json:"status"`
	ErrorMessage *string  `json:"error_message,omitempty"`
	CreatedAt    string   `json:"created_at"`
}

// ToTradeOutput converts a domain trade to its API representation
func ToTradeOutput(trade *domain.Trade) *TradeOutput {
	return &TradeOutput{
		ID:           trade.ID.String(),
		Symbol:       trade.Symbol,
		Side:         string(trade.Side),
		Quantity:     trade.Quantity,
		Price:        trade.Price,
		FilledPrice:  trade.FilledPrice,
		OrderID:      trade.OrderID,
		Status:       trade.Status,
		ErrorMessage: trade.ErrorMessage,
		CreatedAt:    trade.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// ToTradeOutputs converts a slice of domain trades
func ToTradeOutputs(trades []*domain.Trade) []*TradeOutput {
	out := make([]*TradeOutput, 0, len(trades))
	for _, t := range trades {
		out = append(out, ToTradeOutput(t))
	}
	return out
}

// PositionOutput represents a ledger position in API responses
type PositionOutput struct {
	ID            string   `json:"id"`
	Symbol        string   `json:"symbol"`
	Side          string   `json:"side"`
	Quantity      float64  `json:"quantity"`
	EntryPrice    float64  `json:"entry_price"`
	MarkPrice     float64  `json:"mark_price"`
	SLPrice       *float64 `json:"sl_price,omitempty"`
	TPPrice       *float64 `json:"tp_price,omitempty"`
	UnrealizedPnL float64  `json:"unrealized_pnl"`
	RealizedPnL   *float64 `json:"realized_pnl,omitempty"`
	Status        string   `json:"status"`
	OpenedAt      string   `json:"opened_at"`
	ClosedAt      *string  `json:"closed_at,omitempty"`
}

// ToPositionOutput converts a domain position to its API representation
func ToPositionOutput(position *domain.Position) *PositionOutput {
	out := &PositionOutput{
		ID:            position.ID.String(),
		Symbol:        position.Symbol,
		Side:          string(position.Side),
		Quantity:      position.Quantity,
		EntryPrice:    position.EntryPrice,
		MarkPrice:     position.MarkPrice,
		SLPrice:       position.SLPrice,
		TPPrice:       position.TPPrice,
		UnrealizedPnL: position.UnrealizedPnL,
		RealizedPnL:   position.RealizedPnL,
		Status:        position.Status,
		OpenedAt:      position.OpenedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if position.ClosedAt != nil {
		closed := position.ClosedAt.UTC().Format("2006-01-02T15:04:05Z")
		out.ClosedAt = &closed
	}
	return out
}

// ToPositionOutputs converts a slice of domain positions
func ToPositionOutputs(positions []*domain.Position) []*PositionOutput {
	out := make([]*PositionOutput, 0, len(positions))
	for _, p := range positions {
		out = append(out, ToPositionOutput(p))
	}
	return out
}
