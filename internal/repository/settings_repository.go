package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"tradehook/internal/domain"
)

// SettingsRepositoryImpl implements the SettingsRepository interface.
// The migration seeds a single row with id = 1; all reads and writes
// target that row.
type SettingsRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db *pgxpool.Pool) domain.SettingsRepository {
	return &SettingsRepositoryImpl{db: db}
}

// Get retrieves the singleton settings record
func (r *SettingsRepositoryImpl) Get(ctx context.Context) (*domain.BotSettings, error) {
	query := `
		SELECT id, api_key, api_secret, testnet, default_quantity,
		       max_position_size, risk_percentage, leverage,
		       stop_loss_percent, take_profit_percent, is_active,
		       created_at, updated_at
		FROM bot_settings
		WHERE id = 1
	`

	settings := &domain.BotSettings{}
	err := r.db.QueryRow(ctx, query).Scan(
		&settings.ID,
		&settings.APIKey,
		&settings.APISecret,
		&settings.Testnet,
		&settings.DefaultQuantity,
		&settings.MaxPositionSize,
		&settings.RiskPercentage,
		&settings.Leverage,
		&settings.StopLossPercent,
		&settings.TakeProfitPercent,
		&settings.IsActive,
		&settings.CreatedAt,
		&settings.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get bot settings: %w", err)
	}

	return settings, nil
}

// Update persists changes to the settings record
func (r *SettingsRepositoryImpl) Update(ctx context.Context, settings *domain.BotSettings) error {
	query := `
		UPDATE bot_settings
		SET api_key = $1,
		    api_secret = $2,
		    testnet = $3,
		    default_quantity = $4,
		    max_position_size = $5,
		    risk_percentage = $6,
		    leverage = $7,
		    stop_loss_percent = $8,
		    take_profit_percent = $9,
		    is_active = $10,
		    updated_at = $11
		WHERE id = 1
	`

	_, err := r.db.Exec(ctx, query,
		settings.APIKey,
		settings.APISecret,
		settings.Testnet,
		settings.DefaultQuantity,
		settings.MaxPositionSize,
		settings.RiskPercentage,
		settings.Leverage,
		settings.StopLossPercent,
		settings.TakeProfitPercent,
		settings.IsActive,
		time.Now().UTC(),
	)

	if err != nil {
		return fmt.Errorf("failed to update bot settings: %w", err)
	}

	return nil
}
