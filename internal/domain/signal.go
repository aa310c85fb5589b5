package domain

import (
	"fmt"
	"strings"
)

// SignalAction is the instruction carried by an inbound webhook signal.
type SignalAction string

const (
	ActionBuy   SignalAction = "buy"
	ActionSell  SignalAction = "sell"
	ActionClose SignalAction = "close"
)

// WebhookPayload is the raw JSON body posted by the charting service.
// Optional numeric fields are pointers so that absent and zero are
// distinguishable during validation.
type WebhookPayload struct {
	Symbol          string   `json:"symbol"`
	Action          string   `json:"action"`
	Quantity        *float64 `json:"quantity,omitempty"`
	QuantityPercent *float64 `json:"quantity_percent,omitempty"`
	Price           *float64 `json:"price,omitempty"`
	StopLoss        *float64 `json:"stop_loss,omitempty"`
	TakeProfit      *float64 `json:"take_profit,omitempty"`
}

// Signal is a validated trade instruction. It is ephemeral and never
// persisted; the raw payload is stored on the resulting Trade instead.
type Signal struct {
	Symbol          string
	Action          SignalAction
	Quantity        *float64
	QuantityPercent *float64
	Price           *float64
	StopLoss        *float64
	TakeProfit      *float64
}

// ParseSignal validates a webhook payload and converts it into a Signal.
// It is a pure function: no network or database access.
func ParseSignal(p WebhookPayload) (*Signal, error) {
	symbol := strings.ToUpper(strings.TrimSpace(p.Symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol", ErrMissingField)
	}
	if strings.TrimSpace(p.Action) == "" {
		return nil, fmt.Errorf("%w: action", ErrMissingField)
	}

	action := SignalAction(strings.ToLower(strings.TrimSpace(p.Action)))
	switch action {
	case ActionBuy, ActionSell, ActionClose:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, p.Action)
	}

	if p.Quantity != nil && *p.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive, got %v", ErrInvalidQuantity, *p.Quantity)
	}
	if p.QuantityPercent != nil && (*p.QuantityPercent <= 0 || *p.QuantityPercent > 100) {
		return nil, fmt.Errorf("%w: quantity_percent must be in (0, 100], got %v", ErrInvalidQuantity, *p.QuantityPercent)
	}
	if p.Price != nil && *p.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive, got %v", ErrInvalidQuantity, *p.Price)
	}

	return &Signal{
		Symbol:          symbol,
		Action:          action,
		Quantity:        p.Quantity,
		QuantityPercent: p.QuantityPercent,
		Price:           p.Price,
		StopLoss:        p.StopLoss,
		TakeProfit:      p.TakeProfit,
	}, nil
}

// OrderSide returns the order side implied by a buy/sell action.
func (s *Signal) OrderSide() OrderSide {
	if s.Action == ActionSell {
		return SideSell
	}
	return SideBuy
}

// IsLimit reports whether the signal requests a limit order.
func (s *Signal) IsLimit() bool {
	return s.Price != nil
}
