package domain

import (
	"context"
	"time"
)

// OrderResult is the normalized outcome of an order placement. The
// orchestrator only ever sees this shape, never the exchange's raw
// response maps.
type OrderResult struct {
	OrderID     string
	Symbol      string
	Side        OrderSide
	Type        string // MARKET, LIMIT, STOP_MARKET, TAKE_PROFIT_MARKET
	Quantity    float64
	FilledPrice float64 // 0 when the order has not filled yet
	Status      string  // exchange status, e.g. NEW, FILLED
	PlacedAt    time.Time
}

// Filled reports whether the exchange filled the order immediately.
func (r *OrderResult) Filled() bool {
	return r.Status == "FILLED" && r.FilledPrice > 0
}

// LivePosition is a position as reported by the exchange, shown on the
// dashboard side by side with the ledger's positions.
type LivePosition struct {
	Symbol        string  `json:"symbol"`
	Side          string  `json:"side"`
	Size          float64 `json:"size"`
	EntryPrice    float64 `json:"entry_price"`
	MarkPrice     float64 `json:"mark_price"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
	Percentage    float64 `json:"percentage"`
	Leverage      int     `json:"leverage"`
}

// SymbolSpec is the exchange's trading specification for a symbol.
type SymbolSpec struct {
	Symbol         string
	StepSize       float64
	MinQty         float64
	MinNotional    float64
	PricePrecision int32
}

// ConnectionStatus reports the result of a connectivity check.
type ConnectionStatus struct {
	Connected  bool      `json:"connected"`
	Testnet    bool      `json:"testnet"`
	ServerTime time.Time `json:"server_time,omitzero"`
}

// ExchangeClient is the boundary to the remote trading API. Implementations
// shape requests and normalize responses; no business logic lives behind it.
// All calls are synchronous and respect the passed context.
type ExchangeClient interface {
	// GetBalance retrieves the available balance of the quote asset (USDT).
	GetBalance(ctx context.Context) (float64, error)

	// GetPrice retrieves the current mark price for a symbol.
	GetPrice(ctx context.Context, symbol string) (float64, error)

	// PlaceMarketOrder places a market order.
	PlaceMarketOrder(ctx context.Context, symbol string, side OrderSide, quantity float64) (*OrderResult, error)

	// PlaceLimitOrder places a limit order at the given price.
	PlaceLimitOrder(ctx context.Context, symbol string, side OrderSide, quantity, price float64) (*OrderResult, error)

	// PlaceStopMarketOrder places a protective stop-market order.
	PlaceStopMarketOrder(ctx context.Context, symbol string, side OrderSide, quantity, stopPrice float64) (*OrderResult, error)

	// PlaceTakeProfitOrder places a protective take-profit-market order.
	PlaceTakeProfitOrder(ctx context.Context, symbol string, side OrderSide, quantity, stopPrice float64) (*OrderResult, error)

	// CancelOrder cancels an open order by its exchange ID.
	CancelOrder(ctx context.Context, symbol, orderID string) error

	// GetOpenPositions retrieves all non-zero positions held on the exchange.
	GetOpenPositions(ctx context.Context) ([]*LivePosition, error)

	// GetSymbolSpec retrieves the trading specification for a symbol.
	GetSymbolSpec(ctx context.Context, symbol string) (*SymbolSpec, error)

	// SetLeverage sets the leverage for a symbol.
	SetLeverage(ctx context.Context, symbol string, leverage int) error

	// TestConnectivity checks reachability and reports the active mode.
	TestConnectivity(ctx context.Context) (*ConnectionStatus, error)
}

// ExchangeProvider yields the exchange client for the current credentials.
// Callers fetch a client per operation; the provider swaps the underlying
// client when settings change.
type ExchangeProvider interface {
	Client() (ExchangeClient, error)
}

// Notifier pushes human-readable trade events to an external channel.
// Implementations must be best effort: a notification failure never fails
// the operation that triggered it.
type Notifier interface {
	NotifyTrade(trade *Trade)
	NotifyPositionClosed(position *Position)
}
