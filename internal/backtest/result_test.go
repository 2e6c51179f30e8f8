package backtest

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/stratlab/internal/models"
)

func testInterval() Interval {
	return Interval{
		From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
	}
}

func TestWeightedInvestmentNoInjections(t *testing.T) {
	weighted := weightedAverageInvestment(decimal.NewFromInt(10000), nil, testInterval())
	assert.True(t, weighted.Equal(decimal.NewFromInt(10000)))
}

func TestWeightedInvestmentMidpointInjection(t *testing.T) {
	interval := testInterval()
	injections := []models.CashInjection{
		{Time: time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), Currency: "RUB", Amount: decimal.NewFromInt(1000)},
	}

	// Injected halfway through: carries half its weight.
	weighted := weightedAverageInvestment(decimal.NewFromInt(10000), injections, interval)
	assert.True(t, weighted.Equal(decimal.NewFromInt(10500)), weighted.String())
}

func TestWeightedInvestmentInjectionAtEnd(t *testing.T) {
	interval := testInterval()
	injections := []models.CashInjection{
		{Time: interval.To, Currency: "RUB", Amount: decimal.NewFromInt(1000)},
	}

	weighted := weightedAverageInvestment(decimal.NewFromInt(10000), injections, interval)
	assert.True(t, weighted.Equal(decimal.NewFromInt(10000)), weighted.String())
}

func TestWeightedInvestmentInjectionAtStart(t *testing.T) {
	interval := testInterval()
	injections := []models.CashInjection{
		{Time: interval.From, Currency: "RUB", Amount: decimal.NewFromInt(1000)},
	}

	weighted := weightedAverageInvestment(decimal.NewFromInt(10000), injections, interval)
	assert.True(t, weighted.Equal(decimal.NewFromInt(11000)), weighted.String())
}

func TestNewErrorResult(t *testing.T) {
	cfg := BotConfig{
		AccountID:    "acc-1",
		Figi:         "BBG000000001",
		Granularity:  models.Interval1Min,
		StrategyType: "accumulate",
	}
	initial := decimal.NewFromInt(10000)

	result := newErrorResult(cfg, testInterval(), initial, 1500*time.Millisecond, errors.New("boom"))

	assert.True(t, result.Failed())
	assert.True(t, strings.Contains(result.Error, "boom"), result.Error)
	assert.True(t, strings.Contains(result.Error, "1.5s"), result.Error)
	assert.True(t, result.Balance.InitialInvestment.Equal(initial))
	assert.True(t, result.Balance.FinalTotalValue.Equal(initial))
	assert.True(t, result.Profit.Absolute.IsZero())
	assert.Empty(t, result.Trades)
}

func TestIntervalValidate(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		interval Interval
		wantErr  bool
	}{
		{
			name:     "valid",
			interval: testInterval(),
			wantErr:  false,
		},
		{
			name: "future end",
			interval: Interval{
				From: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
			},
			wantErr: true,
		},
		{
			name: "reversed",
			interval: Interval{
				From: time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			},
			wantErr: true,
		},
		{
			name: "too short",
			interval: Interval{
				From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.interval.Validate(now)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBalanceConfigValidate(t *testing.T) {
	valid := BalanceConfig{
		Currency:       "RUB",
		InitialBalance: decimal.NewFromInt(10000),
		Increment:      decimal.NewFromInt(1000),
		Schedule:       "0 12 * * 1",
	}
	require.NoError(t, valid.Validate())

	noCurrency := valid
	noCurrency.Currency = ""
	assert.Error(t, noCurrency.Validate())

	negative := valid
	negative.InitialBalance = decimal.NewFromInt(-1)
	assert.Error(t, negative.Validate())

	badSchedule := valid
	badSchedule.Schedule = "nope"
	assert.Error(t, badSchedule.Validate())
}

func TestBotConfigValidate(t *testing.T) {
	valid := BotConfig{
		AccountID:      "acc-1",
		Figi:           "BBG000000001",
		Granularity:    models.Interval1Min,
		CommissionRate: decimal.NewFromFloat(0.003),
		StrategyType:   "accumulate",
	}
	require.NoError(t, valid.Validate())

	noFigi := valid
	noFigi.Figi = ""
	assert.Error(t, noFigi.Validate())

	badGranularity := valid
	badGranularity.Granularity = "2min"
	assert.Error(t, badGranularity.Validate())

	negativeRate := valid
	negativeRate.CommissionRate = decimal.NewFromFloat(-0.1)
	assert.Error(t, negativeRate.Validate())

	noStrategy := valid
	noStrategy.StrategyType = ""
	assert.Error(t, noStrategy.Validate())
}
