package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/stratlab/internal/backtest"
)

// CSVWriter appends one summary row per result to a timestamped file under
// its output directory.
type CSVWriter struct {
	dir    string
	logger *logrus.Logger
}

// NewCSVWriter creates a CSV writer rooted at dir.
func NewCSVWriter(dir string, logger *logrus.Logger) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &CSVWriter{dir: dir, logger: logger}, nil
}

var csvHeader = []string{
	"id", "account_id", "figi", "granularity", "strategy",
	"interval_from", "interval_to",
	"initial_investment", "total_investment", "weighted_investment",
	"final_balance", "final_total_value",
	"profit_absolute", "profit_relative", "profit_annualized",
	"trades", "injections", "elapsed_ms", "error",
}

// WriteBackTestResults writes all results to a new file and logs its path.
func (w *CSVWriter) WriteBackTestResults(_ context.Context, results []backtest.BackTestResult) error {
	path := filepath.Join(w.dir, fmt.Sprintf("backtest-%s.csv", time.Now().UTC().Format("20060102-150405")))
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	for _, result := range results {
		record := []string{
			result.ID.String(),
			result.Config.AccountID,
			result.Config.Figi,
			string(result.Config.Granularity),
			result.Config.StrategyType,
			result.Interval.From.Format(time.RFC3339),
			result.Interval.To.Format(time.RFC3339),
			result.Balance.InitialInvestment.String(),
			result.Balance.TotalInvestment.String(),
			result.Balance.WeightedInvestment.String(),
			result.Balance.FinalBalance.String(),
			result.Balance.FinalTotalValue.String(),
			result.Profit.Absolute.String(),
			result.Profit.Relative.String(),
			result.Profit.AnnualizedRelative.String(),
			strconv.Itoa(len(result.Trades)),
			strconv.Itoa(len(result.Injections)),
			strconv.FormatInt(result.Elapsed.Milliseconds(), 10),
			result.Error,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush report file: %w", err)
	}

	w.logger.WithField("path", path).Info("Wrote back-test report")
	return nil
}
