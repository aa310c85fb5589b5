package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TradingPair mirrors the exchange-reported specification for a symbol.
// Order quantities and prices are rounded against it before submission so
// the exchange does not reject them for precision violations.
type TradingPair struct {
	Symbol         string    `json:"symbol"`
	StepSize       float64   `json:"step_size"`
	MinQty         float64   `json:"min_qty"`
	MinNotional    float64   `json:"min_notional"`
	PricePrecision int32     `json:"price_precision"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RoundQuantity rounds a quantity down to the pair's step size. Floats
// accumulate error under repeated step arithmetic, so the rounding is done
// in decimal space.
func (p *TradingPair) RoundQuantity(qty float64) float64 {
	if p.StepSize <= 0 {
		return qty
	}
	step := decimal.NewFromFloat(p.StepSize)
	d := decimal.NewFromFloat(qty)
	rounded, _ := d.Div(step).Floor().Mul(step).Float64()
	return rounded
}

// RoundPrice rounds a price to the pair's price precision.
func (p *TradingPair) RoundPrice(price float64) float64 {
	rounded, _ := decimal.NewFromFloat(price).Round(p.PricePrecision).Float64()
	return rounded
}

// MeetsMinimums reports whether an order of the given quantity and price
// satisfies the pair's minimum quantity and notional requirements.
func (p *TradingPair) MeetsMinimums(qty, price float64) bool {
	if p.MinQty > 0 && qty < p.MinQty {
		return false
	}
	if p.MinNotional > 0 && qty*price < p.MinNotional {
		return false
	}
	return true
}

// PairRepository caches exchange symbol specifications.
type PairRepository interface {
	// Get retrieves the cached specification for a symbol.
	// Returns nil, nil when the symbol has not been cached.
	Get(ctx context.Context, symbol string) (*TradingPair, error)

	// Upsert stores or refreshes a symbol specification.
	Upsert(ctx context.Context, pair *TradingPair) error
}
