package exchange

import (
	"fmt"
	"log"
	"sync"

	"tradehook/internal/domain"
)

// Provider hands out the current exchange client and swaps it atomically
// when credentials or the testnet flag change through the settings page.
// Callers must fetch the client per operation instead of holding onto it.
type Provider struct {
	mu      sync.RWMutex
	client  *Client
	testnet bool
}

// NewProvider builds a provider from the stored settings. When no API key
// is configured yet the provider starts empty and Client returns
// domain.ErrNotConfigured until Reconfigure is called.
func NewProvider(apiKey, apiSecret string, testnet bool) *Provider {
	p := &Provider{testnet: testnet}
	if apiKey != "" && apiSecret != "" {
		p.client = NewClient(apiKey, apiSecret, testnet)
		mode := "live"
		if testnet {
			mode = "testnet"
		}
		log.Printf("[OK] Exchange client initialized (%s mode)", mode)
	} else {
		log.Println("WARNING: exchange API credentials not configured, trading disabled")
	}
	return p
}

// Client returns the active exchange client.
func (p *Provider) Client() (domain.ExchangeClient, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.client == nil {
		return nil, fmt.Errorf("exchange client: %w", domain.ErrNotConfigured)
	}
	return p.client, nil
}

// Reconfigure replaces the active client with one built from the new
// credentials. In-flight calls keep the old client; new calls get the
// replacement.
func (p *Provider) Reconfigure(apiKey, apiSecret string, testnet bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.testnet = testnet
	if apiKey == "" || apiSecret == "" {
		p.client = nil
		log.Println("WARNING: exchange credentials cleared, trading disabled")
		return
	}

	p.client = NewClient(apiKey, apiSecret, testnet)
	mode := "live"
	if testnet {
		mode = "testnet"
	}
	log.Printf("[OK] Exchange client reconfigured (%s mode)", mode)
}

// Testnet reports the mode of the active configuration.
func (p *Provider) Testnet() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.testnet
}
