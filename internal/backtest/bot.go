package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/stratlab/internal/marketdata"
	"github.com/yourusername/stratlab/internal/metrics"
	"github.com/yourusername/stratlab/internal/models"
	"github.com/yourusername/stratlab/internal/strategy"
)

// recentTradesWindow bounds the trailing operations handed to strategies.
const recentTradesWindow = 7 * 24 * time.Hour

// Bot binds one strategy and one ledger to one instrument. On every tick it
// pulls unseen candles, builds a snapshot, asks the strategy for a decision
// and executes it against the ledger.
type Bot struct {
	instrument     models.Instrument
	granularity    models.CandleInterval
	commissionRate decimal.Decimal
	strat          strategy.Strategy
	ledger         *Ledger
	provider       marketdata.Provider
	mem            *strategy.Memory
	candles        []models.Candle
	cursor         time.Time
	logger         *logrus.Entry
}

// NewBot creates a bot starting its candle cursor at start.
func NewBot(instrument models.Instrument, cfg BotConfig, strat strategy.Strategy, ledger *Ledger, provider marketdata.Provider, start time.Time, logger *logrus.Logger) *Bot {
	if logger == nil {
		logger = logrus.New()
	}
	return &Bot{
		instrument:     instrument,
		granularity:    cfg.Granularity,
		commissionRate: cfg.CommissionRate,
		strat:          strat,
		ledger:         ledger,
		provider:       provider,
		mem:            strategy.NewMemory(),
		cursor:         start,
		logger: logger.WithFields(logrus.Fields{
			"figi":     instrument.Figi,
			"strategy": strat.Name(),
		}),
	}
}

// Tick runs one simulated minute at now. A tick without new candles advances
// nothing but the candle cursor; strategy failures and ledger violations are
// returned to the orchestrator, never swallowed here.
func (b *Bot) Tick(ctx context.Context, now time.Time) error {
	fetched, err := b.provider.GetCandles(ctx, b.instrument.Figi, b.cursor, now.Add(time.Nanosecond), b.granularity)
	if err != nil {
		return fmt.Errorf("failed to fetch candles: %w", err)
	}
	b.cursor = now.Add(time.Nanosecond)

	fresh := b.appendCandles(fetched)
	if fresh == 0 {
		return nil
	}

	b.ledger.SetTime(now)
	snapshot := b.ledger.Snapshot(b.instrument.Figi, b.instrument.Currency)
	data := &strategy.DecisionData{
		Instrument:     b.instrument,
		Candles:        b.candles,
		Balance:        snapshot.Balance,
		Position:       snapshot.Position,
		RecentTrades:   b.ledger.TradeHistory(now.Add(-recentTradesWindow), now.Add(time.Nanosecond), b.instrument.Figi),
		CommissionRate: b.commissionRate,
		Time:           now,
	}

	decision, err := b.strat.Decide(data, b.mem)
	if err != nil {
		return fmt.Errorf("strategy %s failed: %w", b.strat.Name(), err)
	}
	metrics.RecordStrategyDecision(b.strat.Name(), string(decision.Action))

	switch decision.Action {
	case strategy.ActionWait:
		return nil
	case strategy.ActionBuy, strategy.ActionSell:
		direction := models.DirectionBuy
		if decision.Action == strategy.ActionSell {
			direction = models.DirectionSell
		}
		price := b.candles[len(b.candles)-1].Close
		trade, err := b.ledger.ApplyExecution(b.instrument, direction, decision.Quantity, price, b.commissionRate)
		if err != nil {
			return err
		}
		metrics.RecordSimulatedTrade(string(trade.Direction))
		b.logger.WithFields(logrus.Fields{
			"direction":  trade.Direction,
			"quantity":   trade.Quantity,
			"price":      trade.Price.String(),
			"commission": trade.Commission.String(),
			"time":       trade.Time,
		}).Debug("Executed simulated trade")
		return nil
	default:
		return fmt.Errorf("strategy %s returned unknown action %q", b.strat.Name(), string(decision.Action))
	}
}

// appendCandles extends the run's candle history, deduplicated by time, and
// returns how many candles were actually new.
func (b *Bot) appendCandles(fetched []models.Candle) int {
	fresh := 0
	for _, candle := range fetched {
		if len(b.candles) > 0 && !candle.Time.After(b.candles[len(b.candles)-1].Time) {
			continue
		}
		b.candles = append(b.candles, candle)
		fresh++
	}
	return fresh
}

// Candles returns the candle history consumed so far.
func (b *Bot) Candles() []models.Candle {
	return b.candles
}

// LastClose returns the close of the most recent consumed candle.
func (b *Bot) LastClose() (decimal.Decimal, bool) {
	if len(b.candles) == 0 {
		return decimal.Zero, false
	}
	return b.candles[len(b.candles)-1].Close, true
}
