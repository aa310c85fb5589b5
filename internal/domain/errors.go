package domain

import "errors"

// Validation errors. These are client-caused and must never reach the
// exchange: the webhook handler maps them to a 400 response.
var (
	ErrMissingField    = errors.New("missing required field")
	ErrInvalidAction   = errors.New("invalid action")
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// Ledger errors. Surfaced to the caller as a FAILED trade for manual
// resolution, never retried automatically.
var (
	ErrNoOpenPosition   = errors.New("no open position")
	ErrPositionConflict = errors.New("position conflict: opposite side already open")
)

// Exchange adapter errors. The adapter wraps underlying API errors with
// these so the orchestrator never inspects exchange-specific codes.
var (
	ErrExchangeUnavailable = errors.New("exchange API is unavailable")
	ErrAuthFailed          = errors.New("exchange authentication failed")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrOrderRejected       = errors.New("order rejected by exchange")
	ErrOrderNotFound       = errors.New("order not found on the exchange")
	ErrSymbolNotFound      = errors.New("symbol not found")
	ErrRateLimited         = errors.New("API rate limit exceeded")
	ErrNotConfigured       = errors.New("exchange client is not configured")
)

// Settings errors.
var (
	ErrModeLocked = errors.New("cannot switch testnet mode while positions are open")
)
