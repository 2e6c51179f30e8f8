package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CandleInterval identifies the time bucket size of a candle series.
type CandleInterval string

// Supported candle intervals.
const (
	Interval1Min  CandleInterval = "1min"
	Interval5Min  CandleInterval = "5min"
	Interval15Min CandleInterval = "15min"
	IntervalHour  CandleInterval = "hour"
	IntervalDay   CandleInterval = "day"
)

// Duration returns the bucket length of the interval.
func (i CandleInterval) Duration() (time.Duration, error) {
	switch i {
	case Interval1Min:
		return time.Minute, nil
	case Interval5Min:
		return 5 * time.Minute, nil
	case Interval15Min:
		return 15 * time.Minute, nil
	case IntervalHour:
		return time.Hour, nil
	case IntervalDay:
		return 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown candle interval %q", string(i))
	}
}

// Candle is one OHLC price record. Prices are exact decimals.
type Candle struct {
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
	Time     time.Time       `json:"time"`
	Complete bool            `json:"complete"`
}
