package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"tradehook/internal/delivery/http/dto"
	"tradehook/internal/domain"
	"tradehook/internal/usecase"
)

// WebhookHandler receives trade signals from the charting service.
type WebhookHandler struct {
	executor *usecase.Executor
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(executor *usecase.Executor) *WebhookHandler {
	return &WebhookHandler{executor: executor}
}

// Handle processes an inbound signal.
// POST /webhook
//
// Validation failures are 400s with no side effects. Once a signal passes
// validation the response is 200 with the resulting trade, FAILED included:
// the sender fired a valid signal and gets told what became of it. Only
// infrastructure faults produce a 500.
func (h *WebhookHandler) Handle(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<16))
	if err != nil {
		return BadRequestResponse(c, "Could not read request body")
	}

	var payload domain.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return BadRequestResponse(c, "Invalid JSON payload")
	}

	signal, err := domain.ParseSignal(payload)
	if err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "Invalid signal", err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	trade, err := h.executor.Execute(ctx, signal, string(body))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrorResponse(c, http.StatusGatewayTimeout, "Signal execution timed out", nil)
		}
		return InternalServerErrorResponse(c, "Signal execution failed", err)
	}

	message := "Signal executed"
	if trade.Status == domain.TradeFailed {
		message = "Signal rejected"
	}
	return SuccessMessageResponse(c, message, dto.ToTradeOutput(trade))
}
