package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/stratlab/internal/models"
)

// countingProvider wraps a StaticProvider and counts gateway hits.
type countingProvider struct {
	inner       *StaticProvider
	instruments int
	candles     int
	schedules   int
}

func (p *countingProvider) GetInstrument(ctx context.Context, figi string) (models.Instrument, error) {
	p.instruments++
	return p.inner.GetInstrument(ctx, figi)
}

func (p *countingProvider) GetCandles(ctx context.Context, figi string, from, to time.Time, interval models.CandleInterval) ([]models.Candle, error) {
	p.candles++
	return p.inner.GetCandles(ctx, figi, from, to, interval)
}

func (p *countingProvider) GetTradingSchedule(ctx context.Context, figi string, from, to time.Time) ([]models.TradingDay, error) {
	p.schedules++
	return p.inner.GetTradingSchedule(ctx, figi, from, to)
}

func newCountingProvider() *countingProvider {
	static := NewStaticProvider()
	static.AddInstrument(staticInstrument)
	base := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	static.AddCandles(staticInstrument.Figi, candleAt(base, 100), candleAt(base.Add(time.Minute), 101))
	return &countingProvider{inner: static}
}

func TestCachedProviderInstrumentHitsGatewayOnce(t *testing.T) {
	counting := newCountingProvider()
	cached := NewCachedProvider(counting, time.Minute)

	for i := 0; i < 3; i++ {
		instrument, err := cached.GetInstrument(context.Background(), staticInstrument.Figi)
		require.NoError(t, err)
		assert.Equal(t, "TEST", instrument.Ticker)
	}
	assert.Equal(t, 1, counting.instruments)
}

func TestCachedProviderDoesNotCacheErrors(t *testing.T) {
	counting := newCountingProvider()
	cached := NewCachedProvider(counting, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := cached.GetInstrument(context.Background(), "BBG_GHOST")
		require.Error(t, err)
	}
	assert.Equal(t, 2, counting.instruments)
}

func TestCachedProviderCandlesKeyedByQuery(t *testing.T) {
	counting := newCountingProvider()
	cached := NewCachedProvider(counting, time.Minute)

	base := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)

	first, err := cached.GetCandles(context.Background(), staticInstrument.Figi, base, base.Add(time.Minute), models.Interval1Min)
	require.NoError(t, err)
	require.Len(t, first, 1)

	again, err := cached.GetCandles(context.Background(), staticInstrument.Figi, base, base.Add(time.Minute), models.Interval1Min)
	require.NoError(t, err)
	assert.Len(t, again, 1)
	assert.Equal(t, 1, counting.candles)

	// A different window is a different cache key.
	wider, err := cached.GetCandles(context.Background(), staticInstrument.Figi, base, base.Add(2*time.Minute), models.Interval1Min)
	require.NoError(t, err)
	assert.Len(t, wider, 2)
	assert.Equal(t, 2, counting.candles)
}

func TestCachedProviderScheduleCached(t *testing.T) {
	counting := newCountingProvider()
	counting.inner.AddTradingDays(staticInstrument.Figi, models.TradingDay{
		Date:         time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		IsTradingDay: true,
	})
	cached := NewCachedProvider(counting, time.Minute)

	from := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	for i := 0; i < 2; i++ {
		days, err := cached.GetTradingSchedule(context.Background(), staticInstrument.Figi, from, to)
		require.NoError(t, err)
		require.Len(t, days, 1)
	}
	assert.Equal(t, 1, counting.schedules)
}
