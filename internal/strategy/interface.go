// Package strategy defines the decision contract of the simulation engine and
// the built-in decision policies.
package strategy

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/stratlab/internal/models"
)

// Action is what a strategy wants the bot to do on the current tick.
type Action string

// Decision actions.
const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionWait Action = "WAIT"
)

// Decision is the outcome of one strategy evaluation. Quantity is the number
// of lots and must be positive for BUY and SELL; WAIT carries no quantity.
type Decision struct {
	Action   Action
	Quantity int64
}

// Wait is the no-op decision.
func Wait() Decision {
	return Decision{Action: ActionWait}
}

// DecisionData is the immutable snapshot a strategy decides on. It is built
// fresh every tick; strategies must not retain or mutate it.
type DecisionData struct {
	Instrument     models.Instrument
	Candles        []models.Candle
	Balance        decimal.Decimal
	Position       *models.Position
	RecentTrades   []models.Trade
	CommissionRate decimal.Decimal
	Time           time.Time
}

// LastPrice returns the close of the most recent candle.
func (d *DecisionData) LastPrice() decimal.Decimal {
	if len(d.Candles) == 0 {
		return decimal.Zero
	}
	return d.Candles[len(d.Candles)-1].Close
}

// MaxAffordableLots returns the largest BUY quantity the current balance
// covers at the given price, commission included.
func (d *DecisionData) MaxAffordableLots(price decimal.Decimal) int64 {
	if price.Sign() <= 0 {
		return 0
	}
	unitCost := price.Add(price.Mul(d.CommissionRate))
	return d.Balance.Div(unitCost).IntPart()
}

// HeldLots returns the quantity of the current position, zero if flat.
func (d *DecisionData) HeldLots() int64 {
	if d.Position == nil {
		return 0
	}
	return d.Position.Quantity
}

// Memory carries one bot's private cross-tick state. The engine owns the
// container and threads it into every Decide call; only the strategy that
// created the value inside may interpret it.
type Memory struct {
	value any
}

// NewMemory creates an empty memory container.
func NewMemory() *Memory {
	return &Memory{}
}

// Get returns the stored value, nil before the first Set.
func (m *Memory) Get() any {
	return m.value
}

// Set replaces the stored value.
func (m *Memory) Set(v any) {
	m.value = v
}

// Strategy is a pure decision policy. All inputs come from the snapshot; the
// only mutable state permitted is the value the strategy keeps in mem.
// A strategy that needs more candles than the snapshot holds must WAIT.
type Strategy interface {
	Name() string
	MinCandles() int
	Decide(data *DecisionData, mem *Memory) (Decision, error)
	Parameters() map[string]any
}
