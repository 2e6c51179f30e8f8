package backtest

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// InjectionSchedule matches a standard five-field cron expression against
// simulated time ranges. It is independent of any scheduling runtime; the
// engine only needs to know how many times the schedule fired between two
// ticks.
type InjectionSchedule struct {
	expression string
	schedule   cron.Schedule
}

// ParseInjectionSchedule parses a standard cron expression.
func ParseInjectionSchedule(expression string) (*InjectionSchedule, error) {
	schedule, err := cron.ParseStandard(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule expression %q: %w", expression, err)
	}
	return &InjectionSchedule{expression: expression, schedule: schedule}, nil
}

// Expression returns the original cron expression.
func (s *InjectionSchedule) Expression() string {
	return s.expression
}

// MatchesBetween counts schedule activations in the half-open interval
// (fromExclusive, toInclusive].
func (s *InjectionSchedule) MatchesBetween(fromExclusive, toInclusive time.Time) int {
	count := 0
	next := s.schedule.Next(fromExclusive)
	for !next.IsZero() && !next.After(toInclusive) {
		count++
		next = s.schedule.Next(next)
	}
	return count
}
