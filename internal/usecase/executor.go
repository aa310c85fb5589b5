package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"tradehook/internal/domain"
)

// Executor turns validated signals into exchange orders and ledger records.
// Every signal that reaches Execute produces exactly one Trade row, terminal
// by the time Execute returns unless a limit order is resting on the book.
type Executor struct {
	tradeRepo    domain.TradeRepository
	positionRepo domain.PositionRepository
	settingsRepo domain.SettingsRepository
	pairRepo     domain.PairRepository
	provider     domain.ExchangeProvider
	notifier     domain.Notifier

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewExecutor creates a new signal executor. The notifier may be nil.
func NewExecutor(
	tradeRepo domain.TradeRepository,
	positionRepo domain.PositionRepository,
	settingsRepo domain.SettingsRepository,
	pairRepo domain.PairRepository,
	provider domain.ExchangeProvider,
	notifier domain.Notifier,
) *Executor {
	return &Executor{
		tradeRepo:    tradeRepo,
		positionRepo: positionRepo,
		settingsRepo: settingsRepo,
		pairRepo:     pairRepo,
		provider:     provider,
		notifier:     notifier,
		locks:        make(map[string]*sync.Mutex),
	}
}

// symbolLock returns the mutex serializing executions for one symbol.
// Signals for different symbols run concurrently.
func (e *Executor) symbolLock(symbol string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.locks[symbol]
	if !ok {
		l = &sync.Mutex{}
		e.locks[symbol] = l
	}
	return l
}

// Execute processes a validated signal end to end: position checks, sizing,
// order placement, ledger updates and notifications. The returned error is
// reserved for infrastructure faults (database unreachable); execution
// failures such as a rejected order come back as a FAILED trade with a nil
// error.
func (e *Executor) Execute(ctx context.Context, signal *domain.Signal, rawPayload string) (*domain.Trade, error) {
	settings, err := e.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	lock := e.symbolLock(signal.Symbol)
	lock.Lock()
	defer lock.Unlock()

	if signal.Action == domain.ActionClose {
		return e.executeClose(ctx, signal, rawPayload)
	}
	return e.executeOpen(ctx, signal, rawPayload, settings)
}

// executeClose closes the open position for the signal's symbol with a
// market order on the opposite side.
func (e *Executor) executeClose(ctx context.Context, signal *domain.Signal, rawPayload string) (*domain.Trade, error) {
	position, err := e.positionRepo.GetOpenBySymbol(ctx, signal.Symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to look up position: %w", err)
	}

	if position == nil {
		trade := newTrade(signal.Symbol, domain.SideSell, 0, nil, rawPayload)
		if err := e.failTrade(ctx, trade, fmt.Errorf("%w for %s", domain.ErrNoOpenPosition, signal.Symbol), true); err != nil {
			return nil, err
		}
		return trade, nil
	}

	side := position.Side.Opposite()
	trade := newTrade(signal.Symbol, side, position.Quantity, nil, rawPayload)
	if err := e.tradeRepo.Save(ctx, trade); err != nil {
		return nil, fmt.Errorf("failed to save trade: %w", err)
	}

	client, err := e.provider.Client()
	if err != nil {
		return trade, e.failTrade(ctx, trade, err, false)
	}

	result, err := client.PlaceMarketOrder(ctx, signal.Symbol, side, position.Quantity)
	if err != nil {
		return trade, e.failTrade(ctx, trade, err, false)
	}

	exitPrice := result.FilledPrice
	if exitPrice <= 0 {
		if price, perr := client.GetPrice(ctx, signal.Symbol); perr == nil {
			exitPrice = price
		} else {
			exitPrice = position.MarkPrice
		}
	}

	e.cancelProtectiveOrders(ctx, client, position)

	position.Close(exitPrice, time.Now().UTC())
	position.SLOrderID = nil
	position.TPOrderID = nil
	if err := e.positionRepo.Update(ctx, position); err != nil {
		return nil, fmt.Errorf("failed to close position: %w", err)
	}

	trade.Status = domain.TradeFilled
	trade.FilledPrice = &exitPrice
	trade.OrderID = &result.OrderID
	trade.UpdatedAt = time.Now().UTC()
	if err := e.tradeRepo.Update(ctx, trade); err != nil {
		return nil, fmt.Errorf("failed to update trade: %w", err)
	}

	log.Printf("[OK] Closed %s %s position: qty=%v exit=%v pnl=%v",
		signal.Symbol, position.Side, position.Quantity, exitPrice, *position.RealizedPnL)

	if e.notifier != nil {
		e.notifier.NotifyPositionClosed(position)
		e.notifier.NotifyTrade(trade)
	}
	return trade, nil
}

// executeOpen handles buy and sell signals: conflict checks, position
// sizing, order placement and the ledger update on fill.
func (e *Executor) executeOpen(ctx context.Context, signal *domain.Signal, rawPayload string, settings *domain.BotSettings) (*domain.Trade, error) {
	side := signal.OrderSide()

	existing, err := e.positionRepo.GetOpenBySymbol(ctx, signal.Symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to look up position: %w", err)
	}
	if existing != nil && existing.Side != side {
		trade := newTrade(signal.Symbol, side, 0, signal.Price, rawPayload)
		if err := e.failTrade(ctx, trade, fmt.Errorf("%w: %s is %s", domain.ErrPositionConflict, signal.Symbol, existing.Side), true); err != nil {
			return nil, err
		}
		return trade, nil
	}

	if !settings.IsActive {
		trade := newTrade(signal.Symbol, side, 0, signal.Price, rawPayload)
		if err := e.failTrade(ctx, trade, fmt.Errorf("trading is disabled in settings"), true); err != nil {
			return nil, err
		}
		return trade, nil
	}

	client, err := e.provider.Client()
	if err != nil {
		trade := newTrade(signal.Symbol, side, 0, signal.Price, rawPayload)
		if ferr := e.failTrade(ctx, trade, err, true); ferr != nil {
			return nil, ferr
		}
		return trade, nil
	}

	refPrice, err := e.referencePrice(ctx, client, signal)
	if err != nil {
		trade := newTrade(signal.Symbol, side, 0, signal.Price, rawPayload)
		if ferr := e.failTrade(ctx, trade, err, true); ferr != nil {
			return nil, ferr
		}
		return trade, nil
	}

	quantity, err := e.resolveQuantity(ctx, client, signal, settings, refPrice)
	if err != nil {
		trade := newTrade(signal.Symbol, side, 0, signal.Price, rawPayload)
		if ferr := e.failTrade(ctx, trade, err, true); ferr != nil {
			return nil, ferr
		}
		return trade, nil
	}

	pair, err := e.pairSpec(ctx, client, signal.Symbol)
	if err == nil && pair != nil {
		quantity = pair.RoundQuantity(quantity)
		if !pair.MeetsMinimums(quantity, refPrice) {
			trade := newTrade(signal.Symbol, side, quantity, signal.Price, rawPayload)
			if ferr := e.failTrade(ctx, trade, fmt.Errorf("%w: %v below exchange minimums for %s", domain.ErrInvalidQuantity, quantity, signal.Symbol), true); ferr != nil {
				return nil, ferr
			}
			return trade, nil
		}
	}

	trade := newTrade(signal.Symbol, side, quantity, signal.Price, rawPayload)
	if err := e.tradeRepo.Save(ctx, trade); err != nil {
		return nil, fmt.Errorf("failed to save trade: %w", err)
	}

	if settings.Leverage > 0 {
		if err := client.SetLeverage(ctx, signal.Symbol, settings.Leverage); err != nil {
			log.Printf("WARNING: could not set leverage for %s: %v", signal.Symbol, err)
		}
	}

	var result *domain.OrderResult
	if signal.IsLimit() {
		price := *signal.Price
		if pair != nil {
			price = pair.RoundPrice(price)
		}
		result, err = client.PlaceLimitOrder(ctx, signal.Symbol, side, quantity, price)
	} else {
		result, err = client.PlaceMarketOrder(ctx, signal.Symbol, side, quantity)
	}
	if err != nil {
		return trade, e.failTrade(ctx, trade, err, false)
	}

	if result.Status == "FILLED" && result.FilledPrice <= 0 {
		// A fill reported without an average price still carries exposure.
		// Substitute the current mark so the trade terminates and the
		// position is recorded.
		if price, perr := client.GetPrice(ctx, signal.Symbol); perr == nil && price > 0 {
			result.FilledPrice = price
		} else {
			result.FilledPrice = refPrice
		}
	}

	trade.OrderID = &result.OrderID
	trade.UpdatedAt = time.Now().UTC()
	if result.Filled() {
		trade.Status = domain.TradeFilled
		trade.FilledPrice = &result.FilledPrice
	}
	if err := e.tradeRepo.Update(ctx, trade); err != nil {
		return nil, fmt.Errorf("failed to update trade: %w", err)
	}

	if result.Filled() {
		if err := e.recordFill(ctx, client, signal, settings, existing, side, quantity, result.FilledPrice); err != nil {
			return nil, err
		}
	}

	log.Printf("[OK] Executed %s %s: qty=%v status=%s", side, signal.Symbol, quantity, trade.Status)
	if e.notifier != nil {
		e.notifier.NotifyTrade(trade)
	}
	return trade, nil
}

// recordFill updates the position ledger after a filled entry order and
// attaches protective stop-loss / take-profit orders.
func (e *Executor) recordFill(ctx context.Context, client domain.ExchangeClient, signal *domain.Signal, settings *domain.BotSettings, existing *domain.Position, side domain.OrderSide, quantity, fillPrice float64) error {
	now := time.Now().UTC()

	position := existing
	if position != nil {
		// The old protective pair triggers at levels computed from the
		// previous entry, and its IDs are replaced below. Cancel before
		// merging so nothing stale survives on the exchange.
		e.cancelProtectiveOrders(ctx, client, position)
		position.SLPrice = nil
		position.SLOrderID = nil
		position.TPPrice = nil
		position.TPOrderID = nil
		position.Merge(quantity, fillPrice)
		position.MarkPrice = fillPrice
		position.UnrealizedPnL = position.PnL(fillPrice)
		if err := e.positionRepo.Update(ctx, position); err != nil {
			return fmt.Errorf("failed to merge position: %w", err)
		}
	} else {
		position = &domain.Position{
			ID:         uuid.New(),
			Symbol:     signal.Symbol,
			Side:       side,
			Quantity:   quantity,
			EntryPrice: fillPrice,
			MarkPrice:  fillPrice,
			Status:     domain.PositionOpen,
			OpenedAt:   now,
		}
		if err := e.positionRepo.Save(ctx, position); err != nil {
			return fmt.Errorf("failed to save position: %w", err)
		}
	}

	e.placeProtectiveOrders(ctx, client, signal, settings, position)
	return nil
}

// placeProtectiveOrders attaches stop-loss and take-profit orders to a
// freshly filled position. Prices come from the signal when given,
// otherwise from the configured percentages. Failures are logged and the
// position stays unprotected; the entry itself is already done.
func (e *Executor) placeProtectiveOrders(ctx context.Context, client domain.ExchangeClient, signal *domain.Signal, settings *domain.BotSettings, position *domain.Position) {
	closeSide := position.Side.Opposite()
	changed := false

	slPrice := protectivePrice(signal.StopLoss, settings.StopLossPercent, position, true)
	if slPrice > 0 {
		result, err := client.PlaceStopMarketOrder(ctx, position.Symbol, closeSide, position.Quantity, slPrice)
		if err != nil {
			log.Printf("WARNING: stop-loss order failed for %s: %v", position.Symbol, err)
		} else {
			position.SLPrice = &slPrice
			position.SLOrderID = &result.OrderID
			changed = true
		}
	}

	tpPrice := protectivePrice(signal.TakeProfit, settings.TakeProfitPercent, position, false)
	if tpPrice > 0 {
		result, err := client.PlaceTakeProfitOrder(ctx, position.Symbol, closeSide, position.Quantity, tpPrice)
		if err != nil {
			log.Printf("WARNING: take-profit order failed for %s: %v", position.Symbol, err)
		} else {
			position.TPPrice = &tpPrice
			position.TPOrderID = &result.OrderID
			changed = true
		}
	}

	if changed {
		if err := e.positionRepo.Update(ctx, position); err != nil {
			log.Printf("ERROR: failed to store protective order IDs for %s: %v", position.Symbol, err)
		}
	}
}

// cancelProtectiveOrders cancels the linked SL/TP orders before closing a
// position so no stray reduce-only order survives the close.
func (e *Executor) cancelProtectiveOrders(ctx context.Context, client domain.ExchangeClient, position *domain.Position) {
	for _, orderID := range []*string{position.SLOrderID, position.TPOrderID} {
		if orderID == nil {
			continue
		}
		if err := client.CancelOrder(ctx, position.Symbol, *orderID); err != nil {
			log.Printf("WARNING: could not cancel protective order %s for %s: %v", *orderID, position.Symbol, err)
		}
	}
}

// referencePrice returns the price used for sizing: the signal's limit
// price when present, otherwise the current mark price.
func (e *Executor) referencePrice(ctx context.Context, client domain.ExchangeClient, signal *domain.Signal) (float64, error) {
	if signal.Price != nil {
		return *signal.Price, nil
	}
	return client.GetPrice(ctx, signal.Symbol)
}

// resolveQuantity determines the order quantity in base-asset units.
// Priority: explicit quantity, balance percentage, configured default,
// risk-based sizing. The result is clamped to the configured maximum
// position size (quote notional).
func (e *Executor) resolveQuantity(ctx context.Context, client domain.ExchangeClient, signal *domain.Signal, settings *domain.BotSettings, price float64) (float64, error) {
	leverage := float64(settings.Leverage)
	if leverage < 1 {
		leverage = 1
	}

	var quantity float64
	switch {
	case signal.Quantity != nil:
		quantity = *signal.Quantity

	case signal.QuantityPercent != nil:
		balance, err := client.GetBalance(ctx)
		if err != nil {
			return 0, err
		}
		quantity = balance * (*signal.QuantityPercent / 100) * leverage / price

	case settings.DefaultQuantity > 0:
		quantity = settings.DefaultQuantity

	case settings.RiskPercentage > 0:
		balance, err := client.GetBalance(ctx)
		if err != nil {
			return 0, err
		}
		quantity = balance * (settings.RiskPercentage / 100) * leverage / price

	default:
		return 0, fmt.Errorf("%w: no quantity in signal and no default configured", domain.ErrInvalidQuantity)
	}

	if settings.MaxPositionSize > 0 && quantity*price > settings.MaxPositionSize {
		quantity = settings.MaxPositionSize / price
	}
	if quantity <= 0 {
		return 0, fmt.Errorf("%w: resolved quantity is zero", domain.ErrInvalidQuantity)
	}
	return quantity, nil
}

// pairSpec returns the symbol specification, refreshing the cache from the
// exchange when the symbol has not been seen before.
func (e *Executor) pairSpec(ctx context.Context, client domain.ExchangeClient, symbol string) (*domain.TradingPair, error) {
	pair, err := e.pairRepo.Get(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if pair != nil {
		return pair, nil
	}

	spec, err := client.GetSymbolSpec(ctx, symbol)
	if err != nil {
		return nil, err
	}

	pair = &domain.TradingPair{
		Symbol:         spec.Symbol,
		StepSize:       spec.StepSize,
		MinQty:         spec.MinQty,
		MinNotional:    spec.MinNotional,
		PricePrecision: spec.PricePrecision,
	}
	if err := e.pairRepo.Upsert(ctx, pair); err != nil {
		log.Printf("WARNING: could not cache pair spec for %s: %v", symbol, err)
	}
	return pair, nil
}

// failTrade marks a trade FAILED with the error message. When save is true
// the trade has not been persisted yet and is inserted; otherwise the
// existing row is updated.
func (e *Executor) failTrade(ctx context.Context, trade *domain.Trade, cause error, save bool) error {
	msg := cause.Error()
	trade.Status = domain.TradeFailed
	trade.ErrorMessage = &msg
	trade.UpdatedAt = time.Now().UTC()

	log.Printf("ERROR: trade %s %s %s failed: %v", trade.Side, trade.Symbol, trade.ID, cause)

	var err error
	if save {
		err = e.tradeRepo.Save(ctx, trade)
	} else {
		err = e.tradeRepo.Update(ctx, trade)
	}
	if err != nil {
		return fmt.Errorf("failed to record failed trade: %w", err)
	}

	if e.notifier != nil {
		e.notifier.NotifyTrade(trade)
	}
	return nil
}

// protectivePrice computes the SL or TP trigger price. An explicit override
// from the signal wins; otherwise the configured percentage is applied to
// the entry price in the direction matching the position side.
func protectivePrice(override *float64, percent float64, position *domain.Position, isStopLoss bool) float64 {
	if override != nil && *override > 0 {
		return *override
	}
	if percent <= 0 {
		return 0
	}

	offset := position.EntryPrice * percent / 100
	long := position.IsLong()
	if isStopLoss == long {
		return position.EntryPrice - offset
	}
	return position.EntryPrice + offset
}

func newTrade(symbol string, side domain.OrderSide, quantity float64, price *float64, rawPayload string) *domain.Trade {
	now := time.Now().UTC()
	return &domain.Trade{
		ID:         uuid.New(),
		Symbol:     symbol,
		Side:       side,
		Quantity:   quantity,
		Price:      price,
		Status:     domain.TradePending,
		SignalData: rawPayload,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
