package marketdata

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/signal-trader/internal/models"
)

// BarSource defines the interface for fetching OHLCV bars from a provider
type BarSource interface {
	// FetchBars retrieves daily bars for a symbol within the date range
	FetchBars(ctx context.Context, symbol string, startDate, endDate time.Time) ([]models.Bar, error)

	// Name returns the name of the provider
	Name() string

	// IsEnabled returns whether this provider is currently enabled
	IsEnabled() bool
}

// ProviderError represents errors from bar provider operations
type ProviderError struct {
	Provider string // Provider name
	Code     string // Error code (e.g., "rate_limit_exceeded")
	Message  string // Error message
	Err      error  // Underlying error
}

func (e ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + ": " + e.Code + ": " + e.Message
}

func (e ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

// Error constructors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("data not found")
	ErrInvalidData          = errors.New("invalid data format")
	ErrNetworkError         = errors.New("network error")
	ErrServerError          = errors.New("server error")
)

// NewProviderError creates a new provider error
func NewProviderError(provider, code, message string, err error) ProviderError {
	return ProviderError{
		Provider: provider,
		Code:     code,
		Message:  message,
		Err:      err,
	}
}
