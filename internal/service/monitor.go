package service

import (
	"context"
	"log"
	"time"

	"tradehook/internal/domain"
)

// PositionMonitor keeps the position ledger honest between signals: it
// refreshes mark prices and unrealized PnL from the exchange and detects
// positions that were closed outside the webhook flow, typically by a
// stop-loss or take-profit order firing.
type PositionMonitor struct {
	positionRepo domain.PositionRepository
	provider     domain.ExchangeProvider
	notifier     domain.Notifier
}

// NewPositionMonitor creates a new PositionMonitor. The notifier may be nil.
func NewPositionMonitor(
	positionRepo domain.PositionRepository,
	provider domain.ExchangeProvider,
	notifier domain.Notifier,
) *PositionMonitor {
	return &PositionMonitor{
		positionRepo: positionRepo,
		provider:     provider,
		notifier:     notifier,
	}
}

// Run performs one monitoring pass. It is invoked from the scheduler; a
// failed pass is logged and retried on the next tick, never escalated.
func (m *PositionMonitor) Run(ctx context.Context) {
	open, err := m.positionRepo.GetOpen(ctx)
	if err != nil {
		log.Printf("ERROR: [CRON] monitor could not load open positions: %v", err)
		return
	}
	if len(open) == 0 {
		return
	}

	client, err := m.provider.Client()
	if err != nil {
		log.Printf("[CRON] monitor skipped, no exchange client: %v", err)
		return
	}

	live, err := client.GetOpenPositions(ctx)
	if err != nil {
		log.Printf("ERROR: [CRON] monitor could not fetch exchange positions: %v", err)
		return
	}

	liveBySymbol := make(map[string]*domain.LivePosition, len(live))
	for _, p := range live {
		liveBySymbol[p.Symbol] = p
	}

	for _, position := range open {
		if lp, ok := liveBySymbol[position.Symbol]; ok {
			m.refresh(ctx, position, lp.MarkPrice)
		} else {
			m.reconcileClosed(ctx, client, position)
		}
	}
}

// refresh updates a position's mark price and unrealized PnL.
func (m *PositionMonitor) refresh(ctx context.Context, position *domain.Position, markPrice float64) {
	if markPrice <= 0 {
		return
	}

	position.MarkPrice = markPrice
	position.UnrealizedPnL = position.PnL(markPrice)
	if err := m.positionRepo.Update(ctx, position); err != nil {
		log.Printf("ERROR: [CRON] monitor could not update %s: %v", position.Symbol, err)
	}
}

// reconcileClosed handles a ledger position the exchange no longer holds:
// a protective order fired or the position was closed manually. The ledger
// entry is closed at the current price and the surviving protective order
// is cancelled.
func (m *PositionMonitor) reconcileClosed(ctx context.Context, client domain.ExchangeClient, position *domain.Position) {
	exitPrice := position.MarkPrice
	if price, err := client.GetPrice(ctx, position.Symbol); err == nil && price > 0 {
		exitPrice = price
	}

	for _, orderID := range []*string{position.SLOrderID, position.TPOrderID} {
		if orderID == nil {
			continue
		}
		if err := client.CancelOrder(ctx, position.Symbol, *orderID); err != nil {
			// Usually ErrOrderNotFound for the order that fired.
			log.Printf("[CRON] protective order %s for %s already gone: %v", *orderID, position.Symbol, err)
		}
	}

	position.Close(exitPrice, time.Now().UTC())
	position.SLOrderID = nil
	position.TPOrderID = nil
	if err := m.positionRepo.Update(ctx, position); err != nil {
		log.Printf("ERROR: [CRON] monitor could not close %s: %v", position.Symbol, err)
		return
	}

	log.Printf("[CRON] Reconciled %s: closed on exchange, exit=%v pnl=%v",
		position.Symbol, exitPrice, *position.RealizedPnL)

	if m.notifier != nil {
		m.notifier.NotifyPositionClosed(position)
	}
}
