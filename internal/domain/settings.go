package domain

import (
	"context"
	"time"
)

// BotSettings is the singleton configuration record for the bot: exchange
// credentials, risk parameters and the testnet/live mode flag. It is read
// by every order execution and written only through the settings update
// operation.
type BotSettings struct {
	ID                int64     `json:"id"`
	APIKey            string    `json:"api_key"`
	APISecret         string    `json:"-"` // never serialized
	Testnet           bool      `json:"testnet"`
	DefaultQuantity   float64   `json:"default_quantity"`
	MaxPositionSize   float64   `json:"max_position_size"`
	RiskPercentage    float64   `json:"risk_percentage"`
	Leverage          int       `json:"leverage"`
	StopLossPercent   float64   `json:"stop_loss_percent"`
	TakeProfitPercent float64   `json:"take_profit_percent"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// MaskedAPIKey returns the API key with all but the last four characters
// hidden, for display on the settings page.
func (s *BotSettings) MaskedAPIKey() string {
	if len(s.APIKey) <= 4 {
		return "****"
	}
	return "****" + s.APIKey[len(s.APIKey)-4:]
}

// SettingsRepository defines the interface for bot settings persistence.
// Get always returns a record: the migration seeds a default row.
type SettingsRepository interface {
	// Get retrieves the singleton settings record.
	Get(ctx context.Context) (*BotSettings, error)

	// Update persists changes to the settings record.
	Update(ctx context.Context, settings *BotSettings) error
}
