package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"tradehook/internal/domain"
)

// ExchangeReconfigurer rebuilds the exchange client after a settings
// change so new credentials take effect without a restart.
type ExchangeReconfigurer interface {
	Reconfigure(apiKey, apiSecret string, testnet bool)
}

// UpdateSettingsInput carries the editable settings fields. APISecret left
// empty keeps the stored secret.
type UpdateSettingsInput struct {
	APIKey            string
	APISecret         string
	Testnet           bool
	DefaultQuantity   float64
	MaxPositionSize   float64
	RiskPercentage    float64
	Leverage          int
	StopLossPercent   float64
	TakeProfitPercent float64
	IsActive          bool
}

// SettingsService manages the singleton bot configuration.
type SettingsService struct {
	settingsRepo domain.SettingsRepository
	positionRepo domain.PositionRepository
	reconfigurer ExchangeReconfigurer
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(
	settingsRepo domain.SettingsRepository,
	positionRepo domain.PositionRepository,
	reconfigurer ExchangeReconfigurer,
) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		positionRepo: positionRepo,
		reconfigurer: reconfigurer,
	}
}

// Get returns the current settings.
func (s *SettingsService) Get(ctx context.Context) (*domain.BotSettings, error) {
	return s.settingsRepo.Get(ctx)
}

// Update validates and persists new settings, then swaps the exchange
// client. Switching between testnet and live is refused while any position
// is open: the two environments do not share state, and an open position
// would be orphaned by the switch.
func (s *SettingsService) Update(ctx context.Context, input UpdateSettingsInput) (*domain.BotSettings, error) {
	current, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if input.Leverage < 0 || input.Leverage > 125 {
		return nil, fmt.Errorf("%w: leverage must be between 0 and 125", domain.ErrInvalidQuantity)
	}
	if input.RiskPercentage < 0 || input.RiskPercentage > 100 {
		return nil, fmt.Errorf("%w: risk percentage must be between 0 and 100", domain.ErrInvalidQuantity)
	}

	if input.Testnet != current.Testnet {
		open, err := s.positionRepo.GetOpen(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to check open positions: %w", err)
		}
		if len(open) > 0 {
			return nil, fmt.Errorf("%w: %d open", domain.ErrModeLocked, len(open))
		}
	}

	secret := input.APISecret
	if secret == "" {
		secret = current.APISecret
	}

	current.APIKey = input.APIKey
	current.APISecret = secret
	current.Testnet = input.Testnet
	current.DefaultQuantity = input.DefaultQuantity
	current.MaxPositionSize = input.MaxPositionSize
	current.RiskPercentage = input.RiskPercentage
	current.Leverage = input.Leverage
	current.StopLossPercent = input.StopLossPercent
	current.TakeProfitPercent = input.TakeProfitPercent
	current.IsActive = input.IsActive
	current.UpdatedAt = time.Now().UTC()

	if err := s.settingsRepo.Update(ctx, current); err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}

	s.reconfigurer.Reconfigure(current.APIKey, current.APISecret, current.Testnet)
	log.Println("[OK] Settings updated")
	return current, nil
}
