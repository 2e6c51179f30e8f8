package backtest

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/stratlab/internal/models"
)

// minInterval is the shortest span a back-test may cover; anything shorter
// cannot produce meaningful statistics.
const minInterval = 24 * time.Hour

// Interval is the simulated time span of one back-test invocation.
type Interval struct {
	From time.Time
	To   time.Time
}

// Validate rejects intervals touching the future or shorter than one day.
func (i Interval) Validate(now time.Time) error {
	if i.From.After(now) || i.To.After(now) {
		return fmt.Errorf("interval [%s, %s] must not be in the future", i.From, i.To)
	}
	if !i.From.Before(i.To) {
		return fmt.Errorf("interval start %s must be before end %s", i.From, i.To)
	}
	if i.To.Sub(i.From) < minInterval {
		return fmt.Errorf("interval must span at least %s, got %s", minInterval, i.To.Sub(i.From))
	}
	return nil
}

// Days returns the interval length in days.
func (i Interval) Days() float64 {
	return i.To.Sub(i.From).Hours() / 24
}

// BalanceConfig describes the cash seeded into every simulated account and
// the optional recurring contribution. Immutable input to a run.
type BalanceConfig struct {
	Currency       string
	InitialBalance decimal.Decimal
	Increment      decimal.Decimal
	Schedule       string // standard cron expression, empty disables injections
}

// Validate checks balance amounts and the schedule expression.
func (b BalanceConfig) Validate() error {
	if b.Currency == "" {
		return fmt.Errorf("balance currency is required")
	}
	if b.InitialBalance.IsNegative() {
		return fmt.Errorf("initial balance must not be negative, got %s", b.InitialBalance)
	}
	if b.Increment.IsNegative() {
		return fmt.Errorf("balance increment must not be negative, got %s", b.Increment)
	}
	if b.Schedule != "" {
		if _, err := ParseInjectionSchedule(b.Schedule); err != nil {
			return err
		}
	}
	return nil
}

// BotConfig defines one independent simulation: account, instrument, candle
// granularity, commission, and the strategy with its parameters.
type BotConfig struct {
	AccountID      string
	Figi           string
	Granularity    models.CandleInterval
	CommissionRate decimal.Decimal
	StrategyType   string
	StrategyParams map[string]any
}

// Validate checks the static parts of the configuration.
func (c BotConfig) Validate() error {
	if c.Figi == "" {
		return fmt.Errorf("figi is required")
	}
	if _, err := c.Granularity.Duration(); err != nil {
		return err
	}
	if c.CommissionRate.IsNegative() {
		return fmt.Errorf("commission rate must not be negative, got %s", c.CommissionRate)
	}
	if c.StrategyType == "" {
		return fmt.Errorf("strategy type is required")
	}
	return nil
}

// Description identifies the configuration in logs and error strings.
func (c BotConfig) Description() string {
	return fmt.Sprintf("%s/%s %s strategy=%s", c.AccountID, c.Figi, c.Granularity, c.StrategyType)
}
