package usecase

import (
	"context"
	"fmt"
	"log"

	"tradehook/internal/domain"
)

// PositionsOverview pairs the ledger's open positions with what the
// exchange reports, so drift between the two is visible on the dashboard.
type PositionsOverview struct {
	Ledger []*domain.Position     `json:"ledger"`
	Live   []*domain.LivePosition `json:"live"`
}

// ReportingService serves the dashboard and the JSON read API. It never
// mutates the ledger.
type ReportingService struct {
	tradeRepo    domain.TradeRepository
	positionRepo domain.PositionRepository
	provider     domain.ExchangeProvider
}

// NewReportingService creates a new ReportingService.
func NewReportingService(
	tradeRepo domain.TradeRepository,
	positionRepo domain.PositionRepository,
	provider domain.ExchangeProvider,
) *ReportingService {
	return &ReportingService{
		tradeRepo:    tradeRepo,
		positionRepo: positionRepo,
		provider:     provider,
	}
}

// RecentTrades returns the most recent trades, newest first.
func (s *ReportingService) RecentTrades(ctx context.Context, limit int) ([]*domain.Trade, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.tradeRepo.GetRecent(ctx, limit)
}

// TradesBySymbol returns the most recent trades for one symbol.
func (s *ReportingService) TradesBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Trade, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.tradeRepo.GetBySymbol(ctx, symbol, limit)
}

// Positions returns open ledger positions alongside the exchange's own
// view. The exchange half is best effort: when the client is not
// configured or the call fails, the ledger half still renders.
func (s *ReportingService) Positions(ctx context.Context) (*PositionsOverview, error) {
	ledger, err := s.positionRepo.GetOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load open positions: %w", err)
	}

	overview := &PositionsOverview{Ledger: ledger}

	client, err := s.provider.Client()
	if err != nil {
		return overview, nil
	}

	live, err := client.GetOpenPositions(ctx)
	if err != nil {
		log.Printf("WARNING: could not fetch live positions: %v", err)
		return overview, nil
	}
	overview.Live = live
	return overview, nil
}

// ClosedPositions returns closed positions, most recently closed first.
func (s *ReportingService) ClosedPositions(ctx context.Context, limit int) ([]*domain.Position, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.positionRepo.GetClosed(ctx, limit)
}

// Balance returns the available quote-asset balance on the exchange.
func (s *ReportingService) Balance(ctx context.Context) (float64, error) {
	client, err := s.provider.Client()
	if err != nil {
		return 0, err
	}
	return client.GetBalance(ctx)
}

// Analytics aggregates win/loss statistics over closed positions and the
// failure count from the trade log.
func (s *ReportingService) Analytics(ctx context.Context) (*domain.TradingAnalytics, error) {
	closed, err := s.positionRepo.GetClosed(ctx, 500)
	if err != nil {
		return nil, fmt.Errorf("failed to load closed positions: %w", err)
	}

	analytics := domain.ComputeAnalytics(closed)
	return &analytics, nil
}

// TestConnection checks exchange reachability and reports the active mode.
// A failed check is a result, not an error: the handler renders it as a
// disconnected status.
func (s *ReportingService) TestConnection(ctx context.Context) *domain.ConnectionStatus {
	client, err := s.provider.Client()
	if err != nil {
		return &domain.ConnectionStatus{Connected: false}
	}

	status, err := client.TestConnectivity(ctx)
	if err != nil {
		log.Printf("WARNING: connectivity check failed: %v", err)
	}
	return status
}
