package models

import "time"

// Instrument describes a tradable instrument as reported by the market-data
// provider. The engine treats it as read-only reference data.
type Instrument struct {
	Figi     string `json:"figi"`
	Ticker   string `json:"ticker"`
	Currency string `json:"currency"`
	Lot      int64  `json:"lot"`
}

// TradingDay is one calendar day of the venue trading schedule.
type TradingDay struct {
	Date         time.Time `json:"date"`
	IsTradingDay bool      `json:"is_trading_day"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

// Contains reports whether t falls inside the day's trading window.
// The window is half-open: [StartTime, EndTime).
func (d TradingDay) Contains(t time.Time) bool {
	if !d.IsTradingDay {
		return false
	}
	return !t.Before(d.StartTime) && t.Before(d.EndTime)
}
