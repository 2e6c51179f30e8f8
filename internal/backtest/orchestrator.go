package backtest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/stratlab/internal/logger"
	"github.com/yourusername/stratlab/internal/marketdata"
	"github.com/yourusername/stratlab/internal/metrics"
	"github.com/yourusername/stratlab/internal/strategy"
)

// Orchestrator runs many strategy configurations against historical data on
// a bounded worker pool and aggregates one result per configuration.
type Orchestrator struct {
	provider marketdata.Provider
	writer   ResultWriter
	poolSize int
	logger   *logrus.Logger
	runLog   *logger.RunLogger
}

// NewOrchestrator creates an orchestrator. The pool size must be greater
// than one; sequential execution defeats the purpose of batch runs.
func NewOrchestrator(provider marketdata.Provider, writer ResultWriter, poolSize int, log *logrus.Logger) (*Orchestrator, error) {
	if provider == nil {
		return nil, fmt.Errorf("market data provider is required")
	}
	if poolSize <= 1 {
		return nil, fmt.Errorf("worker pool size must be greater than 1, got %d", poolSize)
	}
	if log == nil {
		log = logrus.New()
	}
	return &Orchestrator{
		provider: provider,
		writer:   writer,
		poolSize: poolSize,
		logger:   log,
		runLog:   logger.NewRunLogger(log),
	}, nil
}

// RunBackTest simulates every configuration over the interval and returns
// one result per configuration, sorted by final total value descending.
// A failing configuration yields an errored result and never disturbs its
// siblings; persistence failures are logged and never propagated.
func (o *Orchestrator) RunBackTest(ctx context.Context, configs []BotConfig, balance BalanceConfig, interval Interval, persist bool) ([]BackTestResult, error) {
	if err := interval.Validate(time.Now()); err != nil {
		return nil, fmt.Errorf("invalid interval: %w", err)
	}
	if err := balance.Validate(); err != nil {
		return nil, fmt.Errorf("invalid balance config: %w", err)
	}

	o.logger.WithFields(logrus.Fields{
		"configs": len(configs),
		"from":    interval.From,
		"to":      interval.To,
		"workers": o.poolSize,
	}).Info("Starting back-test run")

	results := make([]BackTestResult, len(configs))

	// Every job is queued before the workers start; submission never blocks.
	jobs := make(chan int, len(configs))
	for idx := range configs {
		jobs <- idx
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < o.poolSize; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = o.runConfiguration(ctx, configs[idx], balance, interval)
			}
		}()
	}
	wg.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Balance.FinalTotalValue.GreaterThan(results[j].Balance.FinalTotalValue)
	})

	for _, result := range results {
		status := "success"
		if result.Failed() {
			status = "failure"
		}
		metrics.RecordBacktestRun(status)
		metrics.RecordBacktestDuration(result.Elapsed.Seconds())
	}

	if persist {
		o.writeResults(ctx, results)
	}
	return results, nil
}

// runConfiguration executes one configuration end to end. Every failure
// inside the task, panics included, is converted into an errored result.
func (o *Orchestrator) runConfiguration(ctx context.Context, cfg BotConfig, balance BalanceConfig, interval Interval) (result BackTestResult) {
	start := time.Now()
	metrics.ActiveBacktests.Inc()
	defer metrics.ActiveBacktests.Dec()
	o.runLog.LogRunStarted(cfg.AccountID, cfg.Figi, cfg.StrategyType, interval.From, interval.To)
	defer func() {
		if r := recover(); r != nil {
			result = newErrorResult(cfg, interval, balance.InitialBalance, time.Since(start), fmt.Errorf("panic: %v", r))
			o.logger.WithField("config", cfg.Description()).Error(result.Error)
		}
	}()

	fail := func(err error) BackTestResult {
		res := newErrorResult(cfg, interval, balance.InitialBalance, time.Since(start), err)
		o.runLog.LogRunFailed(cfg.AccountID, cfg.Figi, cfg.StrategyType, err.Error(), time.Since(start))
		return res
	}

	if err := cfg.Validate(); err != nil {
		return fail(err)
	}
	strat, err := strategy.New(cfg.StrategyType, cfg.StrategyParams)
	if err != nil {
		return fail(err)
	}
	instrument, err := o.provider.GetInstrument(ctx, cfg.Figi)
	if err != nil {
		return fail(err)
	}
	days, err := o.provider.GetTradingSchedule(ctx, cfg.Figi, interval.From, interval.To)
	if err != nil {
		return fail(fmt.Errorf("failed to load trading schedule: %w", err))
	}

	var injections *InjectionSchedule
	if balance.Schedule != "" && balance.Increment.Sign() > 0 {
		injections, err = ParseInjectionSchedule(balance.Schedule)
		if err != nil {
			return fail(err)
		}
	}

	ledger := NewLedger(cfg.AccountID, balance.Currency, balance.InitialBalance)
	now, err := AlignStart(interval.From, days)
	if err != nil {
		return fail(fmt.Errorf("no trading minutes inside interval: %w", err))
	}
	ledger.SetTime(now)
	bot := NewBot(instrument, cfg, strat, ledger, o.provider, interval.From, o.logger)

	prev := now
	for !now.After(interval.To) {
		if err := bot.Tick(ctx, now); err != nil {
			return fail(err)
		}
		if injections != nil {
			for fired := injections.MatchesBetween(prev, now); fired > 0; fired-- {
				if err := ledger.ApplyCashInjection(balance.Currency, balance.Increment, now); err != nil {
					return fail(err)
				}
			}
		}
		prev = now
		next, err := NextTradingMinute(now, days)
		if err != nil {
			// Schedule exhausted before the interval end: the run simply
			// stops at the venue's last trading minute.
			break
		}
		now = next
	}

	result = o.buildResult(cfg, balance, interval, ledger, bot, time.Since(start))
	o.runLog.LogRunFinished(
		cfg.AccountID, cfg.Figi, cfg.StrategyType,
		result.Balance.FinalTotalValue.String(), result.Profit.Absolute.String(),
		len(result.Trades), result.Elapsed,
	)
	return result
}

func (o *Orchestrator) buildResult(cfg BotConfig, balance BalanceConfig, interval Interval, ledger *Ledger, bot *Bot, elapsed time.Duration) BackTestResult {
	injected := decimal.Zero
	for _, injection := range ledger.Injections() {
		injected = injected.Add(injection.Amount)
	}
	totalInvestment := balance.InitialBalance.Add(injected)
	weighted := weightedAverageInvestment(balance.InitialBalance, ledger.Injections(), interval)

	finalBalance := ledger.Balance(balance.Currency)
	totalValue := finalBalance
	lastClose, priced := bot.LastClose()
	for _, position := range ledger.Positions() {
		mark := position.AveragePrice
		if priced {
			mark = lastClose
		}
		totalValue = totalValue.Add(mark.Mul(decimal.NewFromInt(position.Quantity)))
	}

	absolute := totalValue.Sub(totalInvestment)
	relative := decimal.Zero
	annualized := decimal.Zero
	if weighted.Sign() > 0 {
		relative = absolute.Div(weighted)
		years := decimal.NewFromFloat(interval.Days() / 365)
		if years.Sign() > 0 {
			annualized = relative.Div(years)
		}
	}

	return BackTestResult{
		ID:       uuid.New(),
		Config:   cfg,
		Interval: interval,
		Balance: BalanceSummary{
			InitialInvestment:  balance.InitialBalance,
			TotalInvestment:    totalInvestment,
			WeightedInvestment: weighted,
			FinalBalance:       finalBalance,
			FinalTotalValue:    totalValue,
		},
		Profit: ProfitSummary{
			Absolute:           absolute,
			Relative:           relative,
			AnnualizedRelative: annualized,
		},
		Positions:  ledger.Positions(),
		Trades:     ledger.Trades(),
		Injections: ledger.Injections(),
		Candles:    bot.Candles(),
		Elapsed:    elapsed,
	}
}

// writeResults hands the results to the report writer. The writer runs
// inside its own guard: whatever it does cannot invalidate the run.
func (o *Orchestrator) writeResults(ctx context.Context, results []BackTestResult) {
	if o.writer == nil {
		o.logger.Warn("Persistence requested but no report writer configured")
		return
	}
	defer func() {
		if r := recover(); r != nil {
			o.logger.WithField("panic", r).Error("Report writer panicked")
		}
	}()
	if err := o.writer.WriteBackTestResults(ctx, results); err != nil && !errors.Is(err, context.Canceled) {
		o.logger.WithError(err).Error("Failed to write back-test results")
	}
}
