package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	log := NewLogger("nonsense")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewLoggerDebugLevel(t *testing.T) {
	log := NewLogger("debug")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestRunLoggerStarted(t *testing.T) {
	log, buf := setupTestLogger()
	runLogger := NewRunLogger(log)

	runLogger.LogRunStarted(
		"acc-1",
		"BBG000000001",
		"golden_cross",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "acc-1", logEntry["account_id"])
	assert.Equal(t, "backtest", logEntry["component"])
	assert.Equal(t, "run_started", logEntry["event_type"])
}

func TestRunLoggerFinished(t *testing.T) {
	log, buf := setupTestLogger()
	runLogger := NewRunLogger(log)

	runLogger.LogRunFinished("acc-1", "BBG000000001", "take_profit", "10003.7", "3.7", 1, 250*time.Millisecond)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "10003.7", logEntry["final_value"])
	assert.Equal(t, float64(1), logEntry["trades"])
}

func TestRunLoggerFailed(t *testing.T) {
	log, buf := setupTestLogger()
	runLogger := NewRunLogger(log)

	runLogger.LogRunFailed("acc-1", "BBG000000001", "extrema", "instrument not found", time.Second)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "run_failed", logEntry["event_type"])
	assert.Equal(t, "instrument not found", logEntry["reason"])
}

func TestRunLoggerJSONFormat(t *testing.T) {
	log, buf := setupTestLogger()
	runLogger := NewRunLogger(log)

	runLogger.LogRunFinished("acc-1", "BBG000000001", "accumulate", "10000", "0", 0, time.Second)

	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	assert.NoError(t, err)
	assert.NotEmpty(t, logEntry)
}

func BenchmarkRunLoggerFinished(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	runLogger := NewRunLogger(log)

	for i := 0; i < b.N; i++ {
		runLogger.LogRunFinished("acc-1", "BBG000000001", "accumulate", "10000", "0", 0, time.Second)
	}
}
