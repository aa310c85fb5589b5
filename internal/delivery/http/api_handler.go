package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"tradehook/internal/delivery/http/dto"
	"tradehook/internal/domain"
	"tradehook/internal/usecase"
)

// APIHandler serves the JSON read API backing the dashboard widgets.
type APIHandler struct {
	reporting *usecase.ReportingService
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(reporting *usecase.ReportingService) *APIHandler {
	return &APIHandler{reporting: reporting}
}

// GetTrades returns recent trades, optionally filtered by symbol.
// GET /api/trades?symbol=BTCUSDT&limit=50
func (h *APIHandler) GetTrades(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	symbol := c.QueryParam("symbol")

	var (
		trades []*domain.Trade
		err    error
	)
	if symbol != "" {
		trades, err = h.reporting.TradesBySymbol(c.Request().Context(), symbol, limit)
	} else {
		trades, err = h.reporting.RecentTrades(c.Request().Context(), limit)
	}
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to load trades", err)
	}

	return SuccessResponse(c, dto.ToTradeOutputs(trades))
}

// GetPositions returns open ledger positions and the exchange's live view.
// GET /api/positions
func (h *APIHandler) GetPositions(c echo.Context) error {
	overview, err := h.reporting.Positions(c.Request().Context())
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to load positions", err)
	}

	return SuccessResponse(c, map[string]interface{}{
		"ledger": dto.ToPositionOutputs(overview.Ledger),
		"live":   overview.Live,
	})
}

// GetBalance returns the available exchange balance.
// GET /api/balance
func (h *APIHandler) GetBalance(c echo.Context) error {
	balance, err := h.reporting.Balance(c.Request().Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotConfigured) {
			return ErrorResponse(c, http.StatusServiceUnavailable, "Exchange client is not configured", nil)
		}
		return InternalServerErrorResponse(c, "Failed to fetch balance", err)
	}

	return SuccessResponse(c, map[string]interface{}{
		"asset":   "USDT",
		"balance": balance,
	})
}

// TestConnection checks exchange reachability.
// GET /api/test-connection
func (h *APIHandler) TestConnection(c echo.Context) error {
	status := h.reporting.TestConnection(c.Request().Context())
	return SuccessResponse(c, status)
}

// GetAnalytics returns win/loss statistics over closed positions.
// GET /api/analytics
func (h *APIHandler) GetAnalytics(c echo.Context) error {
	analytics, err := h.reporting.Analytics(c.Request().Context())
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to compute analytics", err)
	}
	return SuccessResponse(c, analytics)
}
