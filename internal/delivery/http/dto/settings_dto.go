package dto

import (
	"tradehook/internal/domain"
)

// SettingsInput is the settings update payload. The API secret may be left
// empty to keep the stored one.
type SettingsInput struct {
	APIKey            string  `json:"api_key" form:"api_key"`
	APISecret         string  `json:"api_secret" form:"api_secret"`
	Testnet           bool    `json:"testnet" form:"testnet"`
	DefaultQuantity   float64 `json:"default_quantity" form:"default_quantity"`
	MaxPositionSize   float64 `json:"max_position_size" form:"max_position_size"`
	RiskPercentage    float64 `json:"risk_percentage" form:"risk_percentage"`
	Leverage          int     `json:"leverage" form:"leverage"`
	StopLossPercent   float64 `json:"stop_loss_percent" form:"stop_loss_percent"`
	TakeProfitPercent float64 `json:"take_profit_percent" form:"take_profit_percent"`
	IsActive          bool    `json:"is_active" form:"is_active"`
}

// SettingsOutput is the settings API representation. The API key is masked
// and the secret is never included.
type SettingsOutput struct {
	APIKey            string  `json:"api_key"`
	Testnet           bool    `json:"testnet"`
	DefaultQuantity   float64 `json:"default_quantity"`
	MaxPositionSize   float64 `json:"max_position_size"`
	RiskPercentage    float64 `json:"risk_percentage"`
	Leverage          int     `json:"leverage"`
	StopLossPercent   float64 `json:"stop_loss_percent"`
	TakeProfitPercent float64 `json:"take_profit_percent"`
	IsActive          bool    `json:"is_active"`
}

// ToSettingsOutput converts domain settings to their API representation
func ToSettingsOutput(settings *domain.BotSettings) *SettingsOutput {
	return &SettingsOutput{
		APIKey:            settings.MaskedAPIKey(),
		Testnet:           settings.Testnet,
		DefaultQuantity:   settings.DefaultQuantity,
		MaxPositionSize:   settings.MaxPositionSize,
		RiskPercentage:    settings.RiskPercentage,
		Leverage:          settings.Leverage,
		StopLossPercent:   settings.StopLossPercent,
		TakeProfitPercent: settings.TakeProfitPercent,
		IsActive:          settings.IsActive,
	}
}
