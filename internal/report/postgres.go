package report

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/stratlab/internal/backtest"
	"github.com/yourusername/stratlab/internal/repository"
)

// PostgresWriter persists results through the result repository.
type PostgresWriter struct {
	repo   repository.ResultRepository
	logger *logrus.Logger
}

// NewPostgresWriter creates a database-backed result writer.
func NewPostgresWriter(repo repository.ResultRepository, logger *logrus.Logger) *PostgresWriter {
	if logger == nil {
		logger = logrus.New()
	}
	return &PostgresWriter{repo: repo, logger: logger}
}

// WriteBackTestResults stores every result in one transaction.
func (w *PostgresWriter) WriteBackTestResults(ctx context.Context, results []backtest.BackTestResult) error {
	if err := w.repo.SaveResults(ctx, results); err != nil {
		return fmt.Errorf("failed to persist back-test results: %w", err)
	}
	w.logger.WithField("count", len(results)).Info("Persisted back-test results")
	return nil
}

// MultiWriter fans results out to several writers; the first failure wins
// but every writer still runs.
type MultiWriter struct {
	writers []backtest.ResultWriter
}

// NewMultiWriter composes writers into one.
func NewMultiWriter(writers ...backtest.ResultWriter) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteBackTestResults delivers the results to every writer.
func (w *MultiWriter) WriteBackTestResults(ctx context.Context, results []backtest.BackTestResult) error {
	var firstErr error
	for _, writer := range w.writers {
		if err := writer.WriteBackTestResults(ctx, results); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
