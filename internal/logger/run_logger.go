package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// RunLogger emits structured events for back-test runs.
type RunLogger struct {
	logger *logrus.Logger
}

// NewRunLogger creates a run logger on top of the base logger.
func NewRunLogger(logger *logrus.Logger) *RunLogger {
	return &RunLogger{logger: logger}
}

// LogRunStarted records the start of one configuration run.
func (l *RunLogger) LogRunStarted(accountID, figi, strategy string, from, to time.Time) {
	l.logger.WithFields(logrus.Fields{
		"component":  "backtest",
		"event_type": "run_started",
		"account_id": accountID,
		"figi":       figi,
		"strategy":   strategy,
		"from":       from,
		"to":         to,
	}).Info("Back-test run started")
}

// LogRunFinished records the outcome of one configuration run.
func (l *RunLogger) LogRunFinished(accountID, figi, strategy string, finalValue, profit string, trades int, elapsed time.Duration) {
	l.logger.WithFields(logrus.Fields{
		"component":   "backtest",
		"event_type":  "run_finished",
		"account_id":  accountID,
		"figi":        figi,
		"strategy":    strategy,
		"final_value": finalValue,
		"profit":      profit,
		"trades":      trades,
		"elapsed_ms":  elapsed.Milliseconds(),
	}).Info("Back-test run finished")
}

// LogRunFailed records a failed configuration run.
func (l *RunLogger) LogRunFailed(accountID, figi, strategy, reason string, elapsed time.Duration) {
	l.logger.WithFields(logrus.Fields{
		"component":  "backtest",
		"event_type": "run_failed",
		"account_id": accountID,
		"figi":       figi,
		"strategy":   strategy,
		"reason":     reason,
		"elapsed_ms": elapsed.Milliseconds(),
	}).Warn("Back-test run failed")
}
