package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yourusername/stratlab/internal/models"
)

// BalanceSummary aggregates the cash side of a completed run.
type BalanceSummary struct {
	InitialInvestment  decimal.Decimal `json:"initial_investment"`
	TotalInvestment    decimal.Decimal `json:"total_investment"`
	WeightedInvestment decimal.Decimal `json:"weighted_investment"`
	FinalBalance       decimal.Decimal `json:"final_balance"`
	FinalTotalValue    decimal.Decimal `json:"final_total_value"`
}

// ProfitSummary normalizes the run outcome against invested capital.
type ProfitSummary struct {
	Absolute           decimal.Decimal `json:"absolute"`
	Relative           decimal.Decimal `json:"relative"`
	AnnualizedRelative decimal.Decimal `json:"annualized_relative"`
}

// BackTestResult is the outcome of one configuration's run. Either the
// numeric fields are fully populated and Error is empty, or the run failed
// and Error describes the configuration, the elapsed wall-clock time and the
// failure; never both.
type BackTestResult struct {
	ID         uuid.UUID              `json:"id"`
	Config     BotConfig              `json:"config"`
	Interval   Interval               `json:"interval"`
	Balance    BalanceSummary         `json:"balance"`
	Profit     ProfitSummary          `json:"profit"`
	Positions  []models.Position      `json:"positions,omitempty"`
	Trades     []models.Trade         `json:"trades,omitempty"`
	Injections []models.CashInjection `json:"injections,omitempty"`
	Candles    []models.Candle        `json:"candles,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Elapsed    time.Duration          `json:"elapsed"`
}

// Failed reports whether the run errored.
func (r BackTestResult) Failed() bool {
	return r.Error != ""
}

// ResultWriter is the report-writer collaborator. Write failures are logged
// by the orchestrator and never invalidate computed results.
type ResultWriter interface {
	WriteBackTestResults(ctx context.Context, results []BackTestResult) error
}

// newErrorResult builds the all-default result recorded for a failed
// configuration.
func newErrorResult(cfg BotConfig, interval Interval, initialBalance decimal.Decimal, elapsed time.Duration, err error) BackTestResult {
	return BackTestResult{
		ID:       uuid.New(),
		Config:   cfg,
		Interval: interval,
		Balance: BalanceSummary{
			InitialInvestment:  initialBalance,
			TotalInvestment:    initialBalance,
			WeightedInvestment: initialBalance,
			FinalBalance:       initialBalance,
			FinalTotalValue:    initialBalance,
		},
		Error:   fmt.Sprintf("%s failed after %s: %v", cfg.Description(), elapsed.Round(time.Millisecond), err),
		Elapsed: elapsed,
	}
}

// weightedAverageInvestment is the time-weighted average of the cumulative
// investment step function over the interval: the initial balance carries
// full weight, every injection is weighted by the fraction of the interval
// remaining after it lands. With no injections it equals the initial
// balance exactly.
func weightedAverageInvestment(initialBalance decimal.Decimal, injections []models.CashInjection, interval Interval) decimal.Decimal {
	duration := interval.To.Sub(interval.From).Seconds()
	if duration <= 0 {
		return initialBalance
	}

	weighted := initialBalance
	for _, injection := range injections {
		remaining := interval.To.Sub(injection.Time).Seconds()
		if remaining <= 0 {
			continue
		}
		if remaining > duration {
			remaining = duration
		}
		weight := decimal.NewFromFloat(remaining / duration)
		weighted = weighted.Add(injection.Amount.Mul(weight))
	}
	return weighted
}
