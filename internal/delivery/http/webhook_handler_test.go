package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradehook/internal/domain"
	"tradehook/internal/usecase"
)

// Minimal mocks: enough for the validation and close-without-position paths,
// which never reach the exchange.

type stubTradeRepo struct {
	saved []*domain.Trade
}

func (s *stubTradeRepo) Save(ctx context.Context, trade *domain.Trade) error {
	s.saved = append(s.saved, trade)
	return nil
}
func (s *stubTradeRepo) Update(ctx context.Context, trade *domain.Trade) error { return nil }
func (s *stubTradeRepo) GetRecent(ctx context.Context, limit int) ([]*domain.Trade, error) {
	return nil, nil
}
func (s *stubTradeRepo) GetBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.Trade, error) {
	return nil, nil
}
func (s *stubTradeRepo) CountByStatus(ctx context.Context, status string) (int, error) {
	return 0, nil
}

type stubPositionRepo struct{}

func (s *stubPositionRepo) Save(ctx context.Context, p *domain.Position) error   { return nil }
func (s *stubPositionRepo) Update(ctx context.Context, p *domain.Position) error { return nil }
func (s *stubPositionRepo) GetOpenBySymbol(ctx context.Context, symbol string) (*domain.Position, error) {
	return nil, nil
}
func (s *stubPositionRepo) GetOpen(ctx context.Context) ([]*domain.Position, error) {
	return nil, nil
}
func (s *stubPositionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Position, error) {
	return nil, nil
}
func (s *stubPositionRepo) GetClosed(ctx context.Context, limit int) ([]*domain.Position, error) {
	return nil, nil
}

type stubSettingsRepo struct{}

func (s *stubSettingsRepo) Get(ctx context.Context) (*domain.BotSettings, error) {
	return &domain.BotSettings{ID: 1, IsActive: true}, nil
}
func (s *stubSettingsRepo) Update(ctx context.Context, settings *domain.BotSettings) error {
	return nil
}

type stubPairRepo struct{}

func (s *stubPairRepo) Get(ctx context.Context, symbol string) (*domain.TradingPair, error) {
	return nil, nil
}
func (s *stubPairRepo) Upsert(ctx context.Context, pair *domain.TradingPair) error { return nil }

type stubProvider struct{}

func (s *stubProvider) Client() (domain.ExchangeClient, error) {
	return nil, domain.ErrNotConfigured
}

func newTestHandler(trades *stubTradeRepo) *WebhookHandler {
	executor := usecase.NewExecutor(
		trades, &stubPositionRepo{}, &stubSettingsRepo{}, &stubPairRepo{}, &stubProvider{}, nil,
	)
	return NewWebhookHandler(executor)
}

func postWebhook(handler *WebhookHandler, body string) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, handler.Handle(c)
}

func TestWebhookRejectsInvalidJSON(t *testing.T) {
	handler := newTestHandler(&stubTradeRepo{})

	rec, err := postWebhook(handler, `{not json`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookRejectsInvalidSignal(t *testing.T) {
	trades := &stubTradeRepo{}
	handler := newTestHandler(trades)

	cases := map[string]string{
		"missing symbol":    `{"action":"buy","quantity":1}`,
		"missing action":    `{"symbol":"BTCUSDT"}`,
		"unknown action":    `{"symbol":"BTCUSDT","action":"hold"}`,
		"negative quantity": `{"symbol":"BTCUSDT","action":"buy","quantity":-1}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec, err := postWebhook(handler, body)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	// Validation failures leave no trace in the ledger
	assert.Empty(t, trades.saved)
}

func TestWebhookCloseWithoutPositionReturns200(t *testing.T) {
	trades := &stubTradeRepo{}
	handler := newTestHandler(trades)

	rec, err := postWebhook(handler, `{"symbol":"ETHUSDT","action":"close"}`)
	require.NoError(t, err)

	// A valid signal that fails execution is still a 200: the sender
	// gets the trade outcome, not a transport error.
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "Signal rejected", resp.Message)

	require.Len(t, trades.saved, 1)
	assert.Equal(t, domain.TradeFailed, trades.saved[0].Status)
}

func TestWebhookRecordsRawPayload(t *testing.T) {
	trades := &stubTradeRepo{}
	handler := newTestHandler(trades)

	body := `{"symbol":"ethusdt","action":"close"}`
	_, err := postWebhook(handler, body)
	require.NoError(t, err)

	require.Len(t, trades.saved, 1)
	assert.Equal(t, body, trades.saved[0].SignalData)
}
