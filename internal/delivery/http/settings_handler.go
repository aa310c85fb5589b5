package http

import (
	"errors"

	"github.com/labstack/echo/v4"

	"tradehook/internal/delivery/http/dto"
	"tradehook/internal/domain"
	"tradehook/internal/usecase"
)

// SettingsHandler serves the settings read/update API.
type SettingsHandler struct {
	settings *usecase.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settings *usecase.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get returns the current settings with the API key masked.
// GET /api/settings
func (h *SettingsHandler) Get(c echo.Context) error {
	settings, err := h.settings.Get(c.Request().Context())
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to load settings", err)
	}
	return SuccessResponse(c, dto.ToSettingsOutput(settings))
}

// Update persists new settings and swaps the exchange client.
// POST /api/settings
func (h *SettingsHandler) Update(c echo.Context) error {
	var input dto.SettingsInput
	if err := c.Bind(&input); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	updated, err := h.settings.Update(c.Request().Context(), usecase.UpdateSettingsInput{
		APIKey:            input.APIKey,
		APISecret:         input.APISecret,
		Testnet:           input.Testnet,
		DefaultQuantity:   input.DefaultQuantity,
		MaxPositionSize:   input.MaxPositionSize,
		RiskPercentage:    input.RiskPercentage,
		Leverage:          input.Leverage,
		StopLossPercent:   input.StopLossPercent,
		TakeProfitPercent: input.TakeProfitPercent,
		IsActive:          input.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrModeLocked):
			return ConflictResponse(c, err.Error())
		case errors.Is(err, domain.ErrInvalidQuantity):
			return BadRequestResponse(c, err.Error())
		default:
			return InternalServerErrorResponse(c, "Failed to update settings", err)
		}
	}

	return SuccessMessageResponse(c, "Settings updated", dto.ToSettingsOutput(updated))
}
