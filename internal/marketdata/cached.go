package marketdata

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/yourusername/stratlab/internal/models"
)

// CachedProvider decorates a Provider with a TTL cache. Historical candle
// pages and schedules are immutable, so repeated back-test runs over the
// same interval hit the gateway once.
type CachedProvider struct {
	inner Provider
	cache *gocache.Cache
}

// NewCachedProvider creates a caching decorator around inner.
func NewCachedProvider(inner Provider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// GetInstrument retrieves instrument reference data, cached by figi.
func (p *CachedProvider) GetInstrument(ctx context.Context, figi string) (models.Instrument, error) {
	key := "instrument:" + figi
	if v, ok := p.cache.Get(key); ok {
		return v.(models.Instrument), nil
	}
	instrument, err := p.inner.GetInstrument(ctx, figi)
	if err != nil {
		return models.Instrument{}, err
	}
	p.cache.SetDefault(key, instrument)
	return instrument, nil
}

// GetCandles retrieves candles, cached per exact query.
func (p *CachedProvider) GetCandles(ctx context.Context, figi string, from, to time.Time, interval models.CandleInterval) ([]models.Candle, error) {
	key := fmt.Sprintf("candles:%s:%d:%d:%s", figi, from.UnixNano(), to.UnixNano(), interval)
	if v, ok := p.cache.Get(key); ok {
		return v.([]models.Candle), nil
	}
	candles, err := p.inner.GetCandles(ctx, figi, from, to, interval)
	if err != nil {
		return nil, err
	}
	p.cache.SetDefault(key, candles)
	return candles, nil
}

// GetTradingSchedule retrieves the trading schedule, cached per exact query.
func (p *CachedProvider) GetTradingSchedule(ctx context.Context, figi string, from, to time.Time) ([]models.TradingDay, error) {
	key := fmt.Sprintf("schedule:%s:%d:%d", figi, from.UnixNano(), to.UnixNano())
	if v, ok := p.cache.Get(key); ok {
		return v.([]models.TradingDay), nil
	}
	days, err := p.inner.GetTradingSchedule(ctx, figi, from, to)
	if err != nil {
		return nil, err
	}
	p.cache.SetDefault(key, days)
	return days, nil
}
