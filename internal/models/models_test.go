package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandleIntervalDuration(t *testing.T) {
	tests := []struct {
		interval CandleInterval
		want     time.Duration
	}{
		{Interval1Min, time.Minute},
		{Interval5Min, 5 * time.Minute},
		{Interval15Min, 15 * time.Minute},
		{IntervalHour, time.Hour},
		{IntervalDay, 24 * time.Hour},
	}
	for _, tt := range tests {
		got, err := tt.interval.Duration()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := CandleInterval("2min").Duration()
	assert.Error(t, err)
}

func TestTradingDayContains(t *testing.T) {
	start := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 10, 18, 0, 0, 0, time.UTC)
	day := TradingDay{
		Date:         time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		IsTradingDay: true,
		StartTime:    start,
		EndTime:      end,
	}

	assert.True(t, day.Contains(start))
	assert.True(t, day.Contains(end.Add(-time.Minute)))
	assert.False(t, day.Contains(end))
	assert.False(t, day.Contains(start.Add(-time.Second)))

	holiday := day
	holiday.IsTradingDay = false
	assert.False(t, holiday.Contains(start))
}
