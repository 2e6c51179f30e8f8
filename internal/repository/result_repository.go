// Package repository persists back-test results in PostgreSQL.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/stratlab/internal/backtest"
	"github.com/yourusername/stratlab/internal/database"
	"github.com/yourusername/stratlab/internal/models"
)

const errScanResult = "failed to scan back-test result: %w"

// ResultRepository stores and retrieves back-test results.
type ResultRepository interface {
	SaveResults(ctx context.Context, results []backtest.BackTestResult) error
	GetByFigi(ctx context.Context, figi string) ([]backtest.BackTestResult, error)
	GetLatest(ctx context.Context, limit int) ([]backtest.BackTestResult, error)
}

// PostgresResultRepository implements ResultRepository for PostgreSQL
type PostgresResultRepository struct {
	db *database.DB
}

// NewPostgresResultRepository creates a new result repository
func NewPostgresResultRepository(db *database.DB) ResultRepository {
	return &PostgresResultRepository{db: db}
}

// SaveResults inserts all results inside one transaction.
func (r *PostgresResultRepository) SaveResults(ctx context.Context, results []backtest.BackTestResult) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			INSERT INTO backtest_results (
				id, account_id, figi, granularity, strategy_type, strategy_params,
				interval_from, interval_to,
				initial_investment, total_investment, weighted_investment,
				final_balance, final_total_value,
				profit_absolute, profit_relative, profit_annualized,
				run_error, elapsed_ms, details, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		`
		for _, result := range results {
			params, err := json.Marshal(result.Config.StrategyParams)
			if err != nil {
				return fmt.Errorf("failed to marshal strategy params: %w", err)
			}
			details, err := json.Marshal(resultDetails{
				Positions:  result.Positions,
				Trades:     result.Trades,
				Injections: result.Injections,
			})
			if err != nil {
				return fmt.Errorf("failed to marshal result details: %w", err)
			}

			if _, err := tx.Exec(ctx, query,
				result.ID, result.Config.AccountID, result.Config.Figi,
				string(result.Config.Granularity), result.Config.StrategyType, params,
				result.Interval.From, result.Interval.To,
				result.Balance.InitialInvestment, result.Balance.TotalInvestment, result.Balance.WeightedInvestment,
				result.Balance.FinalBalance, result.Balance.FinalTotalValue,
				result.Profit.Absolute, result.Profit.Relative, result.Profit.AnnualizedRelative,
				result.Error, result.Elapsed.Milliseconds(), details, time.Now().UTC(),
			); err != nil {
				return fmt.Errorf("failed to save back-test result %s: %w", result.ID, err)
			}
		}
		return nil
	})
}

// GetByFigi retrieves results for one instrument, newest first.
func (r *PostgresResultRepository) GetByFigi(ctx context.Context, figi string) ([]backtest.BackTestResult, error) {
	query := selectColumns + ` FROM backtest_results WHERE figi = $1 ORDER BY created_at DESC`
	rows, err := r.db.GetPool().Query(ctx, query, figi)
	if err != nil {
		return nil, fmt.Errorf("failed to query back-test results: %w", err)
	}
	defer rows.Close()
	return scanResults(rows)
}

// GetLatest retrieves the most recent results.
func (r *PostgresResultRepository) GetLatest(ctx context.Context, limit int) ([]backtest.BackTestResult, error) {
	query := selectColumns + ` FROM backtest_results ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest back-test results: %w", err)
	}
	defer rows.Close()
	return scanResults(rows)
}

const selectColumns = `
	SELECT id, account_id, figi, granularity, strategy_type, strategy_params,
		interval_from, interval_to,
		initial_investment, total_investment, weighted_investment,
		final_balance, final_total_value,
		profit_absolute, profit_relative, profit_annualized,
		run_error, elapsed_ms, details`

// resultDetails is the JSONB payload carrying the full run artifacts.
type resultDetails struct {
	Positions  any `json:"positions,omitempty"`
	Trades     any `json:"trades,omitempty"`
	Injections any `json:"injections,omitempty"`
}

func scanResults(rows pgx.Rows) ([]backtest.BackTestResult, error) {
	var results []backtest.BackTestResult
	for rows.Next() {
		var (
			result    backtest.BackTestResult
			id        uuid.UUID
			gran      string
			params    []byte
			details   []byte
			elapsedMS int64
			runError  string
		)
		if err := rows.Scan(
			&id, &result.Config.AccountID, &result.Config.Figi, &gran,
			&result.Config.StrategyType, &params,
			&result.Interval.From, &result.Interval.To,
			&result.Balance.InitialInvestment, &result.Balance.TotalInvestment, &result.Balance.WeightedInvestment,
			&result.Balance.FinalBalance, &result.Balance.FinalTotalValue,
			&result.Profit.Absolute, &result.Profit.Relative, &result.Profit.AnnualizedRelative,
			&runError, &elapsedMS, &details,
		); err != nil {
			return nil, fmt.Errorf(errScanResult, err)
		}
		result.ID = id
		result.Config.Granularity = models.CandleInterval(gran)
		result.Error = runError
		result.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		if len(params) > 0 {
			if err := json.Unmarshal(params, &result.Config.StrategyParams); err != nil {
				return nil, fmt.Errorf("failed to unmarshal strategy params: %w", err)
			}
		}
		results = append(results, result)
	}
	return results, rows.Err()
}
