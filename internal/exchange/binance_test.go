package exchange

import (
	"errors"
	"fmt"
	"testing"

	"github.com/adshao/go-binance/v2/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradehook/internal/domain"
)

func apiErr(code int64, msg string) error {
	return &common.APIError{Code: code, Message: msg}
}

func TestTranslateError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"rate limit", apiErr(-1003, "Too many requests"), domain.ErrRateLimited},
		{"invalid key", apiErr(-2014, "API-key format invalid"), domain.ErrAuthFailed},
		{"invalid signature", apiErr(-1022, "Signature invalid"), domain.ErrAuthFailed},
		{"permission denied", apiErr(-2015, "Invalid API-key, IP, or permissions"), domain.ErrAuthFailed},
		{"unknown symbol", apiErr(-1121, "Invalid symbol"), domain.ErrSymbolNotFound},
		{"rejected", apiErr(-2010, "Order would immediately trigger"), domain.ErrOrderRejected},
		{"unknown order", apiErr(-2013, "Order does not exist"), domain.ErrOrderNotFound},
		{"margin insufficient", apiErr(-2019, "Margin is insufficient"), domain.ErrInsufficientFunds},
		{"balance insufficient", apiErr(-3005, "Insufficient balance"), domain.ErrInsufficientFunds},
		{"unmapped code falls back to rejected", apiErr(-9999, "Unknown"), domain.ErrOrderRejected},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := translateError(tc.err, "PlaceMarketOrder")
			assert.ErrorIs(t, got, tc.want)
		})
	}

	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, translateError(nil, "GetBalance"))
	})

	t.Run("transport errors map to unavailable", func(t *testing.T) {
		got := translateError(fmt.Errorf("connection refused"), "GetBalance")
		assert.ErrorIs(t, got, domain.ErrExchangeUnavailable)
	})

	t.Run("original message is preserved", func(t *testing.T) {
		got := translateError(apiErr(-2019, "Margin is insufficient"), "PlaceMarketOrder")
		assert.Contains(t, got.Error(), "Margin is insufficient")
		assert.Contains(t, got.Error(), "PlaceMarketOrder")
	})
}

func TestNewClientBaseURL(t *testing.T) {
	testnet := NewClient("key", "secret", true)
	assert.Equal(t, baseURLTestnet, testnet.futuresClient.BaseURL)
	assert.True(t, testnet.Testnet())

	live := NewClient("key", "secret", false)
	assert.Equal(t, baseURLProduction, live.futuresClient.BaseURL)
	assert.False(t, live.Testnet())
}

func TestProviderLifecycle(t *testing.T) {
	t.Run("unconfigured provider yields ErrNotConfigured", func(t *testing.T) {
		p := NewProvider("", "", true)
		_, err := p.Client()
		assert.ErrorIs(t, err, domain.ErrNotConfigured)
	})

	t.Run("configured provider yields a client", func(t *testing.T) {
		p := NewProvider("key", "secret", true)
		client, err := p.Client()
		require.NoError(t, err)
		assert.NotNil(t, client)
		assert.True(t, p.Testnet())
	})

	t.Run("reconfigure swaps mode and credentials", func(t *testing.T) {
		p := NewProvider("key", "secret", true)
		p.Reconfigure("newkey", "newsecret", false)

		client, err := p.Client()
		require.NoError(t, err)
		assert.False(t, p.Testnet())

		c, ok := client.(*Client)
		require.True(t, ok)
		assert.Equal(t, baseURLProduction, c.futuresClient.BaseURL)
	})

	t.Run("clearing credentials disables trading", func(t *testing.T) {
		p := NewProvider("key", "secret", true)
		p.Reconfigure("", "", true)
		_, err := p.Client()
		assert.ErrorIs(t, err, domain.ErrNotConfigured)
	})
}

func TestTranslateErrorHidesAPIError(t *testing.T) {
	wrapped := translateError(apiErr(-1003, "slow down"), "GetPrice")
	var target *common.APIError
	assert.False(t, errors.As(wrapped, &target), "adapter never leaks raw API errors to errors.As targets")
}
