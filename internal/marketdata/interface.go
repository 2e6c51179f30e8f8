// Package marketdata supplies historical candles, instrument reference data
// and venue trading schedules to the simulation engine.
package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/stratlab/internal/models"
)

// Provider is the market-data collaborator consumed by the engine.
// GetCandles returns candles ordered by time ascending whose time falls in
// the half-open interval [from, to).
type Provider interface {
	GetInstrument(ctx context.Context, figi string) (models.Instrument, error)
	GetCandles(ctx context.Context, figi string, from, to time.Time, interval models.CandleInterval) ([]models.Candle, error)
	GetTradingSchedule(ctx context.Context, figi string, from, to time.Time) ([]models.TradingDay, error)
}

// Error codes for provider failures.
const (
	ErrCodeNetworkError         = "NETWORK_ERROR"
	ErrCodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	ErrCodeRateLimitExceeded    = "RATE_LIMIT_EXCEEDED"
	ErrCodeInvalidData          = "INVALID_DATA"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeServerError          = "SERVER_ERROR"
)

// ProviderError is a typed error describing a market-data failure.
type ProviderError struct {
	Source  string
	Code    string
	Message string
	Err     error
}

// NewProviderError creates a new provider error.
func NewProviderError(source, code, message string, err error) *ProviderError {
	return &ProviderError{Source: source, Code: code, Message: message, Err: err}
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Source, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Source, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error {
	return e.Err
}
