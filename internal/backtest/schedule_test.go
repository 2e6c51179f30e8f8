package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInjectionScheduleInvalid(t *testing.T) {
	_, err := ParseInjectionSchedule("not a schedule")
	assert.Error(t, err)

	_, err = ParseInjectionSchedule("")
	assert.Error(t, err)
}

func TestInjectionScheduleExpression(t *testing.T) {
	schedule, err := ParseInjectionSchedule("0 12 * * 1")
	require.NoError(t, err)
	assert.Equal(t, "0 12 * * 1", schedule.Expression())
}

func TestMatchesBetweenDaily(t *testing.T) {
	schedule, err := ParseInjectionSchedule("0 12 * * *")
	require.NoError(t, err)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 7, schedule.MatchesBetween(from, to))
}

func TestMatchesBetweenBoundaries(t *testing.T) {
	schedule, err := ParseInjectionSchedule("0 12 * * *")
	require.NoError(t, err)

	noon := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	// from is exclusive: an activation exactly at from is not counted
	assert.Equal(t, 0, schedule.MatchesBetween(noon, noon.Add(time.Hour)))

	// to is inclusive: an activation exactly at to is counted
	assert.Equal(t, 1, schedule.MatchesBetween(noon.Add(-time.Hour), noon))
}

func TestMatchesBetweenEmptyRange(t *testing.T) {
	schedule, err := ParseInjectionSchedule("* * * * *")
	require.NoError(t, err)

	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, schedule.MatchesBetween(at, at))
}

func TestMatchesBetweenEveryMinute(t *testing.T) {
	schedule, err := ParseInjectionSchedule("* * * * *")
	require.NoError(t, err)

	from := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 5, schedule.MatchesBetween(from, from.Add(5*time.Minute)))
}
