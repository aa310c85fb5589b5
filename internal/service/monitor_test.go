package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradehook/internal/domain"
)

type monitorPositionRepo struct {
	open    []*domain.Position
	updated []*domain.Position
}

func (m *monitorPositionRepo) Save(ctx context.Context, p *domain.Position) error { return nil }
func (m *monitorPositionRepo) Update(ctx context.Context, p *domain.Position) error {
	m.updated = append(m.updated, p)
	return nil
}
func (m *monitorPositionRepo) GetOpenBySymbol(ctx context.Context, symbol string) (*domain.Position, error) {
	return nil, nil
}
func (m *monitorPositionRepo) GetOpen(ctx context.Context) ([]*domain.Position, error) {
	return m.open, nil
}
func (m *monitorPositionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Position, error) {
	return nil, nil
}
func (m *monitorPositionRepo) GetClosed(ctx context.Context, limit int) ([]*domain.Position, error) {
	return nil, nil
}

type monitorExchange struct {
	live      []*domain.LivePosition
	price     float64
	cancelled []string
}

func (m *monitorExchange) GetBalance(ctx context.Context) (float64, error) { return 0, nil }
func (m *monitorExchange) GetPrice(ctx context.Context, symbol string) (float64, error) {
	return m.price, nil
}
func (m *monitorExchange) PlaceMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity float64) (*domain.OrderResult, error) {
	return nil, nil
}
func (m *monitorExchange) PlaceLimitOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity, price float64) (*domain.OrderResult, error) {
	return nil, nil
}
func (m *monitorExchange) PlaceStopMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity, stopPrice float64) (*domain.OrderResult, error) {
	return nil, nil
}
func (m *monitorExchange) PlaceTakeProfitOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity, stopPrice float64) (*domain.OrderResult, error) {
	return nil, nil
}
func (m *monitorExchange) CancelOrder(ctx context.Context, symbol, orderID string) error {
	m.cancelled = append(m.cancelled, orderID)
	return nil
}
func (m *monitorExchange) GetOpenPositions(ctx context.Context) ([]*domain.LivePosition, error) {
	return m.live, nil
}
func (m *monitorExchange) GetSymbolSpec(ctx context.Context, symbol string) (*domain.SymbolSpec, error) {
	return nil, nil
}
func (m *monitorExchange) SetLeverage(ctx context.Context, symbol string, leverage int) error {
	return nil
}
func (m *monitorExchange) TestConnectivity(ctx context.Context) (*domain.ConnectionStatus, error) {
	return &domain.ConnectionStatus{Connected: true}, nil
}

type monitorProvider struct {
	client domain.ExchangeClient
	err    error
}

func (m *monitorProvider) Client() (domain.ExchangeClient, error) { return m.client, m.err }

func openPosition(symbol string, side domain.OrderSide, qty, entry float64) *domain.Position {
	return &domain.Position{
		ID:         uuid.New(),
		Symbol:     symbol,
		Side:       side,
		Quantity:   qty,
		EntryPrice: entry,
		MarkPrice:  entry,
		Status:     domain.PositionOpen,
		OpenedAt:   time.Now().UTC(),
	}
}

func TestMonitorRefreshesMarkPrice(t *testing.T) {
	position := openPosition("BTCUSDT", domain.SideBuy, 0.5, 40000)
	repo := &monitorPositionRepo{open: []*domain.Position{position}}
	ex := &monitorExchange{
		live: []*domain.LivePosition{{Symbol: "BTCUSDT", MarkPrice: 41000}},
	}

	monitor := NewPositionMonitor(repo, &monitorProvider{client: ex}, nil)
	monitor.Run(context.Background())

	require.Len(t, repo.updated, 1)
	assert.Equal(t, 41000.0, position.MarkPrice)
	assert.InDelta(t, 500, position.UnrealizedPnL, 1e-9)
	assert.Equal(t, domain.PositionOpen, position.Status)
}

func TestMonitorReconcilesClosedPosition(t *testing.T) {
	slID, tpID := "3001", "3002"
	position := openPosition("ETHUSDT", domain.SideSell, 2, 3000)
	position.SLOrderID = &slID
	position.TPOrderID = &tpID

	repo := &monitorPositionRepo{open: []*domain.Position{position}}
	ex := &monitorExchange{price: 2900} // gone from the exchange, price moved

	monitor := NewPositionMonitor(repo, &monitorProvider{client: ex}, nil)
	monitor.Run(context.Background())

	require.Len(t, repo.updated, 1)
	assert.Equal(t, domain.PositionClosed, position.Status)
	require.NotNil(t, position.RealizedPnL)
	assert.InDelta(t, 200, *position.RealizedPnL, 1e-9) // short: (3000-2900)*2
	assert.ElementsMatch(t, []string{slID, tpID}, ex.cancelled)
	assert.Nil(t, position.SLOrderID)
	assert.Nil(t, position.TPOrderID)
}

func TestMonitorSkipsWhenNotConfigured(t *testing.T) {
	position := openPosition("BTCUSDT", domain.SideBuy, 1, 40000)
	repo := &monitorPositionRepo{open: []*domain.Position{position}}

	monitor := NewPositionMonitor(repo, &monitorProvider{err: domain.ErrNotConfigured}, nil)
	monitor.Run(context.Background())

	assert.Empty(t, repo.updated)
	assert.Equal(t, domain.PositionOpen, position.Status)
}

func TestMonitorSkipsWhenNoOpenPositions(t *testing.T) {
	repo := &monitorPositionRepo{}
	ex := &monitorExchange{}

	monitor := NewPositionMonitor(repo, &monitorProvider{client: ex}, nil)
	monitor.Run(context.Background())

	assert.Empty(t, repo.updated)
}
