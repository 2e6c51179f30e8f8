package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/stratlab/internal/models"
)

var staticInstrument = models.Instrument{
	Figi:     "BBG000000001",
	Ticker:   "TEST",
	Currency: "RUB",
	Lot:      1,
}

func candleAt(ts time.Time, close float64) models.Candle {
	price := decimal.NewFromFloat(close)
	return models.Candle{Open: price, High: price, Low: price, Close: price, Time: ts, Complete: true}
}

func TestStaticProviderInstrumentLookup(t *testing.T) {
	provider := NewStaticProvider()
	provider.AddInstrument(staticInstrument)

	instrument, err := provider.GetInstrument(context.Background(), staticInstrument.Figi)
	require.NoError(t, err)
	assert.Equal(t, "TEST", instrument.Ticker)

	_, err = provider.GetInstrument(context.Background(), "BBG_GHOST")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInstrumentNotFound)
}

func TestStaticProviderCandleWindow(t *testing.T) {
	base := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	provider := NewStaticProvider()
	for i := 0; i < 5; i++ {
		provider.AddCandles(staticInstrument.Figi, candleAt(base.Add(time.Duration(i)*time.Minute), 100+float64(i)))
	}

	// Half-open window: the candle at to is excluded, the one at from kept.
	candles, err := provider.GetCandles(context.Background(), staticInstrument.Figi,
		base.Add(time.Minute), base.Add(3*time.Minute), models.Interval1Min)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.True(t, candles[0].Close.Equal(decimal.NewFromInt(101)))
	assert.True(t, candles[1].Close.Equal(decimal.NewFromInt(102)))
}

func TestStaticProviderSortsCandles(t *testing.T) {
	base := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	provider := NewStaticProvider()
	provider.AddCandles(staticInstrument.Figi,
		candleAt(base.Add(2*time.Minute), 102),
		candleAt(base, 100),
		candleAt(base.Add(time.Minute), 101),
	)

	candles, err := provider.GetCandles(context.Background(), staticInstrument.Figi,
		base, base.Add(time.Hour), models.Interval1Min)
	require.NoError(t, err)
	require.Len(t, candles, 3)
	for i := 1; i < len(candles); i++ {
		assert.True(t, candles[i-1].Time.Before(candles[i].Time))
	}
}

func TestStaticProviderUnknownFigiHasNoCandles(t *testing.T) {
	provider := NewStaticProvider()
	candles, err := provider.GetCandles(context.Background(), "BBG_GHOST",
		time.Now().Add(-time.Hour), time.Now(), models.Interval1Min)
	require.NoError(t, err)
	assert.Empty(t, candles)
}

func TestStaticProviderScheduleWindow(t *testing.T) {
	provider := NewStaticProvider()
	for day := 10; day <= 12; day++ {
		date := time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
		provider.AddTradingDays(staticInstrument.Figi, models.TradingDay{
			Date:         date,
			IsTradingDay: true,
			StartTime:    date.Add(10 * time.Hour),
			EndTime:      date.Add(18 * time.Hour),
		})
	}

	from := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)
	days, err := provider.GetTradingSchedule(context.Background(), staticInstrument.Figi, from, to)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, 11, days[0].Date.Day())
	assert.Equal(t, 12, days[1].Date.Day())
}
