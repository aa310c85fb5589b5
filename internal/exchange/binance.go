package exchange

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"

	"tradehook/internal/domain"
)

const (
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"

	quoteAsset = "USDT"
)

// Client implements domain.ExchangeClient against Binance USD-M futures.
type Client struct {
	futuresClient *futures.Client
	testnet       bool
}

// NewClient creates a Binance futures client. Testnet and production use
// different base URLs; the flag comes from bot settings.
func NewClient(apiKey, apiSecret string, testnet bool) *Client {
	client := futures.NewClient(apiKey, apiSecret)
	if testnet {
		client.BaseURL = baseURLTestnet
	} else {
		client.BaseURL = baseURLProduction
	}

	return &Client{
		futuresClient: client,
		testnet:       testnet,
	}
}

// Testnet reports whether the client targets the sandbox environment.
func (c *Client) Testnet() bool {
	return c.testnet
}

// translateError maps Binance API errors onto the domain's exchange error
// taxonomy so callers never branch on exchange-specific codes.
func translateError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		var mapped error
		switch apiErr.Code {
		case -1003:
			mapped = domain.ErrRateLimited
		case -1022, -2014, -2015:
			mapped = domain.ErrAuthFailed
		case -1121:
			mapped = domain.ErrSymbolNotFound
		case -2010, -2022, -4003, -4014:
			mapped = domain.ErrOrderRejected
		case -2013:
			mapped = domain.ErrOrderNotFound
		case -2019, -3005, -3041:
			mapped = domain.ErrInsufficientFunds
		default:
			mapped = domain.ErrOrderRejected
		}
		return fmt.Errorf("%s: %w: %s (code %d)", operation, mapped, apiErr.Message, apiErr.Code)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", operation, err)
	}

	return fmt.Errorf("%s: %w: %v", operation, domain.ErrExchangeUnavailable, err)
}

// GetBalance retrieves the available USDT balance of the futures account.
func (c *Client) GetBalance(ctx context.Context) (float64, error) {
	op := "GetBalance"
	account, err := c.futuresClient.NewGetAccountService().Do(ctx)
	if err != nil {
		return 0, translateError(err, op)
	}

	for _, asset := range account.Assets {
		if asset.Asset == quoteAsset {
			balance, err := strconv.ParseFloat(asset.AvailableBalance, 64)
			if err != nil {
				return 0, fmt.Errorf("%s: could not parse balance %q: %w", op, asset.AvailableBalance, err)
			}
			return balance, nil
		}
	}

	return 0, fmt.Errorf("%s: asset %s not found in account", op, quoteAsset)
}

// GetPrice retrieves the current mark price for a symbol.
func (c *Client) GetPrice(ctx context.Context, symbol string) (float64, error) {
	op := "GetPrice"
	indexes, err := c.futuresClient.NewPremiumIndexService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, translateError(err, op)
	}
	if len(indexes) == 0 {
		return 0, fmt.Errorf("%s: %w: %s", op, domain.ErrSymbolNotFound, symbol)
	}

	price, err := strconv.ParseFloat(indexes[0].MarkPrice, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: could not parse mark price %q: %w", op, indexes[0].MarkPrice, err)
	}
	return price, nil
}

// PlaceMarketOrder places a market order.
func (c *Client) PlaceMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity float64) (*domain.OrderResult, error) {
	op := "PlaceMarketOrder"
	order, err := c.futuresClient.NewCreateOrderService().
		Symbol(symbol).
		Side(futures.SideType(side)).
		Type(futures.OrderTypeMarket).
		Quantity(formatFloat(quantity)).
		NewOrderResponseType(futures.NewOrderRespTypeRESULT).
		Do(ctx)
	if err != nil {
		return nil, translateError(err, op)
	}

	result := translateOrder(order)
	log.Printf("[OK] %s: %s %s qty=%s filled=%.8f status=%s", op, side, symbol, formatFloat(quantity), result.FilledPrice, result.Status)
	return result, nil
}

// PlaceLimitOrder places a GTC limit order at the given price.
func (c *Client) PlaceLimitOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity, price float64) (*domain.OrderResult, error) {
	op := "PlaceLimitOrder"
	order, err := c.futuresClient.NewCreateOrderService().
		Symbol(symbol).
		Side(futures.SideType(side)).
		Type(futures.OrderTypeLimit).
		TimeInForce(futures.TimeInForceTypeGTC).
		Quantity(formatFloat(quantity)).
		Price(formatFloat(price)).
		NewOrderResponseType(futures.NewOrderRespTypeRESULT).
		Do(ctx)
	if err != nil {
		return nil, translateError(err, op)
	}

	result := translateOrder(order)
	log.Printf("[OK] %s: %s %s qty=%s price=%s status=%s", op, side, symbol, formatFloat(quantity), formatFloat(price), result.Status)
	return result, nil
}

// PlaceStopMarketOrder places a protective stop-market order that closes
// the position when triggered. closePosition orders cover the whole
// position, so the quantity is not sent.
func (c *Client) PlaceStopMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity, stopPrice float64) (*domain.OrderResult, error) {
	op := "PlaceStopMarketOrder"
	order, err := c.futuresClient.NewCreateOrderService().
		Symbol(symbol).
		Side(futures.SideType(side)).
		Type(futures.OrderTypeStopMarket).
		StopPrice(formatFloat(stopPrice)).
		ClosePosition(true).
		Do(ctx)
	if err != nil {
		return nil, translateError(err, op)
	}

	result := translateOrder(order)
	log.Printf("[OK] %s: %s %s stop=%s", op, side, symbol, formatFloat(stopPrice))
	return result, nil
}

// PlaceTakeProfitOrder places a protective take-profit-market order.
func (c *Client) PlaceTakeProfitOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity, stopPrice float64) (*domain.OrderResult, error) {
	op := "PlaceTakeProfitOrder"
	order, err := c.futuresClient.NewCreateOrderService().
		Symbol(symbol).
		Side(futures.SideType(side)).
		Type(futures.OrderTypeTakeProfitMarket).
		StopPrice(formatFloat(stopPrice)).
		ClosePosition(true).
		Do(ctx)
	if err != nil {
		return nil, translateError(err, op)
	}

	result := translateOrder(order)
	log.Printf("[OK] %s: %s %s stop=%s", op, side, symbol, formatFloat(stopPrice))
	return result, nil
}

// CancelOrder cancels an open order by its exchange ID.
func (c *Client) CancelOrder(ctx context.Context, symbol, orderID string) error {
	op := "CancelOrder"
	id, err := strconv.ParseInt(orderID, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: invalid order ID %q: %w", op, orderID, err)
	}

	_, err = c.futuresClient.NewCancelOrderService().
		Symbol(symbol).
		OrderID(id).
		Do(ctx)
	if err != nil {
		return translateError(err, op)
	}

	log.Printf("[OK] %s: %s order %s cancelled", op, symbol, orderID)
	return nil
}

// GetOpenPositions retrieves all non-zero positions held on the exchange.
func (c *Client) GetOpenPositions(ctx context.Context) ([]*domain.LivePosition, error) {
	op := "GetOpenPositions"
	risks, err := c.futuresClient.NewGetPositionRiskService().Do(ctx)
	if err != nil {
		return nil, translateError(err, op)
	}

	var positions []*domain.LivePosition
	for _, risk := range risks {
		amt, _ := strconv.ParseFloat(risk.PositionAmt, 64)
		if amt == 0 {
			continue
		}

		entry, _ := strconv.ParseFloat(risk.EntryPrice, 64)
		mark, _ := strconv.ParseFloat(risk.MarkPrice, 64)
		pnl, _ := strconv.ParseFloat(risk.UnRealizedProfit, 64)
		leverage, _ := strconv.Atoi(risk.Leverage)

		side := string(domain.SideBuy)
		size := amt
		if amt < 0 {
			side = string(domain.SideSell)
			size = -amt
		}

		var percentage float64
		if entry > 0 && size > 0 && leverage > 0 {
			percentage = pnl / (size * entry / float64(leverage)) * 100
		}

		positions = append(positions, &domain.LivePosition{
			Symbol:        risk.Symbol,
			Side:          side,
			Size:          size,
			EntryPrice:    entry,
			MarkPrice:     mark,
			UnrealizedPnL: pnl,
			Percentage:    percentage,
			Leverage:      leverage,
		})
	}

	return positions, nil
}

// GetSymbolSpec retrieves the trading specification for a symbol.
func (c *Client) GetSymbolSpec(ctx context.Context, symbol string) (*domain.SymbolSpec, error) {
	op := "GetSymbolSpec"
	info, err := c.futuresClient.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, translateError(err, op)
	}

	for _, s := range info.Symbols {
		if s.Symbol != symbol {
			continue
		}

		spec := &domain.SymbolSpec{
			Symbol:         s.Symbol,
			PricePrecision: int32(s.PricePrecision),
		}
		if f := s.LotSizeFilter(); f != nil {
			spec.StepSize, _ = strconv.ParseFloat(f.StepSize, 64)
			spec.MinQty, _ = strconv.ParseFloat(f.MinQuantity, 64)
		}
		if f := s.MinNotionalFilter(); f != nil {
			spec.MinNotional, _ = strconv.ParseFloat(f.Notional, 64)
		}
		return spec, nil
	}

	return nil, fmt.Errorf("%s: %w: %s", op, domain.ErrSymbolNotFound, symbol)
}

// SetLeverage sets the leverage for a symbol.
func (c *Client) SetLeverage(ctx context.Context, symbol string, leverage int) error {
	op := "SetLeverage"
	_, err := c.futuresClient.NewChangeLeverageService().
		Symbol(symbol).
		Leverage(leverage).
		Do(ctx)
	if err != nil {
		return translateError(err, op)
	}
	return nil
}

// TestConnectivity checks reachability and reports the active mode.
func (c *Client) TestConnectivity(ctx context.Context) (*domain.ConnectionStatus, error) {
	serverTimeMs, err := c.futuresClient.NewServerTimeService().Do(ctx)
	if err != nil {
		return &domain.ConnectionStatus{Connected: false, Testnet: c.testnet}, translateError(err, "TestConnectivity")
	}

	return &domain.ConnectionStatus{
		Connected:  true,
		Testnet:    c.testnet,
		ServerTime: time.UnixMilli(serverTimeMs),
	}, nil
}

func translateOrder(order *futures.CreateOrderResponse) *domain.OrderResult {
	avgPrice, _ := strconv.ParseFloat(order.AvgPrice, 64)
	quantity, _ := strconv.ParseFloat(order.OrigQuantity, 64)

	return &domain.OrderResult{
		OrderID:     strconv.FormatInt(order.OrderID, 10),
		Symbol:      order.Symbol,
		Side:        domain.OrderSide(order.Side),
		Type:        string(order.Type),
		Quantity:    quantity,
		FilledPrice: avgPrice,
		Status:      string(order.Status),
		PlacedAt:    time.UnixMilli(order.UpdateTime),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
