package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradehook/internal/domain"
)

type mockReconfigurer struct {
	calls []struct {
		apiKey  string
		testnet bool
	}
}

func (m *mockReconfigurer) Reconfigure(apiKey, apiSecret string, testnet bool) {
	m.calls = append(m.calls, struct {
		apiKey  string
		testnet bool
	}{apiKey, testnet})
}

func newSettingsFixture() (*SettingsService, *mockSettingsRepo, *mockPositionRepo, *mockReconfigurer) {
	settings := &mockSettingsRepo{settings: testSettings()}
	posns := newMockPositionRepo()
	rec := &mockReconfigurer{}
	return NewSettingsService(settings, posns, rec), settings, posns, rec
}

func baseInput() UpdateSettingsInput {
	return UpdateSettingsInput{
		APIKey:            "newkey",
		APISecret:         "newsecret",
		Testnet:           true,
		DefaultQuantity:   0.02,
		MaxPositionSize:   5000,
		RiskPercentage:    2,
		Leverage:          10,
		StopLossPercent:   1,
		TakeProfitPercent: 3,
		IsActive:          true,
	}
}

func TestSettingsUpdate(t *testing.T) {
	svc, repo, _, rec := newSettingsFixture()

	updated, err := svc.Update(context.Background(), baseInput())
	require.NoError(t, err)

	assert.Equal(t, "newkey", updated.APIKey)
	assert.Equal(t, "newsecret", updated.APISecret)
	assert.Equal(t, 10, updated.Leverage)
	assert.Equal(t, updated, repo.settings)

	// Exchange client rebuilt with the new credentials
	require.Len(t, rec.calls, 1)
	assert.Equal(t, "newkey", rec.calls[0].apiKey)
	assert.True(t, rec.calls[0].testnet)
}

func TestSettingsUpdateKeepsSecretWhenBlank(t *testing.T) {
	svc, repo, _, _ := newSettingsFixture()

	input := baseInput()
	input.APISecret = ""
	_, err := svc.Update(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "secret", repo.settings.APISecret, "blank secret keeps the stored one")
}

func TestSettingsModeFlipLockedWhileOpen(t *testing.T) {
	svc, repo, posns, rec := newSettingsFixture()
	posns.open["BTCUSDT"] = &domain.Position{
		ID: uuid.New(), Symbol: "BTCUSDT", Side: domain.SideBuy,
		Quantity: 1, Status: domain.PositionOpen,
	}

	input := baseInput()
	input.Testnet = false // flip from testnet to live
	_, err := svc.Update(context.Background(), input)

	assert.ErrorIs(t, err, domain.ErrModeLocked)
	assert.True(t, repo.settings.Testnet, "settings unchanged after refusal")
	assert.Empty(t, rec.calls, "client not rebuilt after refusal")
}

func TestSettingsModeFlipAllowedWhenFlat(t *testing.T) {
	svc, _, _, rec := newSettingsFixture()

	input := baseInput()
	input.Testnet = false
	updated, err := svc.Update(context.Background(), input)
	require.NoError(t, err)

	assert.False(t, updated.Testnet)
	require.Len(t, rec.calls, 1)
	assert.False(t, rec.calls[0].testnet)
}

func TestSettingsValidation(t *testing.T) {
	svc, _, _, _ := newSettingsFixture()

	input := baseInput()
	input.Leverage = 200
	_, err := svc.Update(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	input = baseInput()
	input.RiskPercentage = 150
	_, err = svc.Update(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}
