// Package backtest implements the simulation engine: a synthetic exchange
// that replays historical candles minute by minute against per-account
// ledgers and aggregates performance across strategy configurations.
package backtest

import (
	"sort"
	"time"

	"github.com/yourusername/stratlab/internal/models"
)

// AlignStart snaps t forward to the nearest minute inside a trading window.
// Never moves backward, so any start time inside the same non-trading gap
// converges to the same first simulated tick.
func AlignStart(t time.Time, days []models.TradingDay) (time.Time, error) {
	return tradingMinuteAt(ceilToMinute(t), days)
}

// NextTradingMinute returns the first trading minute strictly after t given
// the venue schedule. Pure and deterministic.
func NextTradingMinute(t time.Time, days []models.TradingDay) (time.Time, error) {
	return tradingMinuteAt(t.Truncate(time.Minute).Add(time.Minute), days)
}

// tradingMinuteAt returns candidate if it falls inside a trading window,
// otherwise the start of the next window. Windows are half-open
// [StartTime, EndTime).
func tradingMinuteAt(candidate time.Time, days []models.TradingDay) (time.Time, error) {
	windows := make([]models.TradingDay, 0, len(days))
	for _, d := range days {
		if d.IsTradingDay && d.EndTime.After(d.StartTime) {
			windows = append(windows, d)
		}
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i].StartTime.Before(windows[j].StartTime) })

	for _, w := range windows {
		if !candidate.Before(w.EndTime) {
			continue
		}
		if w.Contains(candidate) {
			return candidate, nil
		}
		if w.StartTime.After(candidate) {
			return ceilToMinute(w.StartTime), nil
		}
	}
	return time.Time{}, models.ErrScheduleExhausted
}

func ceilToMinute(t time.Time) time.Time {
	truncated := t.Truncate(time.Minute)
	if truncated.Equal(t) {
		return t
	}
	return truncated.Add(time.Minute)
}
