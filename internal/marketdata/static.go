package marketdata

import (
	"context"
	"sort"
	"time"

	"github.com/yourusername/stratlab/internal/models"
)

// StaticProvider serves candles and schedules from memory. Used in tests and
// for offline replay of previously exported series.
type StaticProvider struct {
	instruments map[string]models.Instrument
	candles     map[string][]models.Candle
	schedules   map[string][]models.TradingDay
}

// NewStaticProvider creates an empty in-memory provider.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		instruments: make(map[string]models.Instrument),
		candles:     make(map[string][]models.Candle),
		schedules:   make(map[string][]models.TradingDay),
	}
}

// AddInstrument registers an instrument.
func (p *StaticProvider) AddInstrument(instrument models.Instrument) {
	p.instruments[instrument.Figi] = instrument
}

// AddCandles appends candles for a figi and keeps the series time-ordered.
func (p *StaticProvider) AddCandles(figi string, candles ...models.Candle) {
	series := append(p.candles[figi], candles...)
	sort.Slice(series, func(i, j int) bool { return series[i].Time.Before(series[j].Time) })
	p.candles[figi] = series
}

// AddTradingDays registers schedule entries for a figi.
func (p *StaticProvider) AddTradingDays(figi string, days ...models.TradingDay) {
	p.schedules[figi] = append(p.schedules[figi], days...)
}

// GetInstrument implements Provider.
func (p *StaticProvider) GetInstrument(ctx context.Context, figi string) (models.Instrument, error) {
	_ = ctx
	instrument, ok := p.instruments[figi]
	if !ok {
		return models.Instrument{}, NewProviderError("static", ErrCodeNotFound, figi, models.ErrInstrumentNotFound)
	}
	return instrument, nil
}

// GetCandles implements Provider: candles with time in [from, to).
func (p *StaticProvider) GetCandles(ctx context.Context, figi string, from, to time.Time, interval models.CandleInterval) ([]models.Candle, error) {
	_ = ctx
	_ = interval
	var out []models.Candle
	for _, c := range p.candles[figi] {
		if c.Time.Before(from) || !c.Time.Before(to) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// GetTradingSchedule implements Provider.
func (p *StaticProvider) GetTradingSchedule(ctx context.Context, figi string, from, to time.Time) ([]models.TradingDay, error) {
	_ = ctx
	var out []models.TradingDay
	for _, d := range p.schedules[figi] {
		if d.Date.Before(from.Truncate(24*time.Hour)) || d.Date.After(to) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}
