package backtest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yourusername/stratlab/internal/models"
)

// minorUnitPlaces is the number of decimal places of the currency minor
// unit; commission amounts are rounded half-up to it.
const minorUnitPlaces = 2

// Ledger owns one simulated account: cash balance per currency, open
// positions, and the append-only trade and injection logs. A ledger is
// exclusively owned by one bot and is not safe for concurrent use.
type Ledger struct {
	accountID  string
	now        time.Time
	balances   map[string]decimal.Decimal
	positions  map[string]*models.Position
	trades     []models.Trade
	injections []models.CashInjection
}

// AccountSnapshot is an immutable view of the ledger for decision building.
type AccountSnapshot struct {
	AccountID string
	Time      time.Time
	Currency  string
	Balance   decimal.Decimal
	Position  *models.Position
}

// NewLedger creates a ledger seeded with the initial balance.
func NewLedger(accountID, currency string, initialBalance decimal.Decimal) *Ledger {
	balances := map[string]decimal.Decimal{currency: initialBalance}
	return &Ledger{
		accountID: accountID,
		balances:  balances,
		positions: make(map[string]*models.Position),
	}
}

// SetTime moves the ledger's simulated clock.
func (l *Ledger) SetTime(t time.Time) {
	l.now = t
}

// Now returns the current simulated timestamp.
func (l *Ledger) Now() time.Time {
	return l.now
}

// Balance returns the cash balance for the currency.
func (l *Ledger) Balance(currency string) decimal.Decimal {
	return l.balances[currency]
}

// ApplyExecution executes a simulated order against the account. BUY debits
// notional plus commission and re-averages the position entry price; SELL
// credits notional minus commission and shrinks the position, removing it
// entirely at zero quantity. Unaffordable or oversized orders fail loudly
// and leave the ledger unchanged; they are contract violations of the
// requesting strategy, never clamped.
func (l *Ledger) ApplyExecution(instrument models.Instrument, direction models.Direction, quantity int64, price decimal.Decimal, commissionRate decimal.Decimal) (models.Trade, error) {
	if quantity <= 0 {
		return models.Trade{}, fmt.Errorf("execution quantity must be positive, got %d", quantity)
	}

	notional := price.Mul(decimal.NewFromInt(quantity))
	// Half-up to the currency minor unit.
	commission := notional.Mul(commissionRate).Round(minorUnitPlaces)
	currency := instrument.Currency
	balance := l.balances[currency]

	switch direction {
	case models.DirectionBuy:
		total := notional.Add(commission)
		if balance.LessThan(total) {
			return models.Trade{}, fmt.Errorf("buy %d x %s for %s %s with balance %s: %w",
				quantity, instrument.Figi, total.String(), currency, balance.String(), models.ErrInsufficientFunds)
		}
		l.balances[currency] = balance.Sub(total)
		l.addToPosition(instrument, quantity, price)

	case models.DirectionSell:
		position, ok := l.positions[instrument.Figi]
		if !ok || position.Quantity < quantity {
			held := int64(0)
			if ok {
				held = position.Quantity
			}
			return models.Trade{}, fmt.Errorf("sell %d x %s with %d held: %w",
				quantity, instrument.Figi, held, models.ErrInsufficientPosition)
		}
		l.balances[currency] = balance.Add(notional.Sub(commission))
		position.Quantity -= quantity
		if position.Quantity == 0 {
			delete(l.positions, instrument.Figi)
		}

	default:
		return models.Trade{}, fmt.Errorf("unknown trade direction %q", string(direction))
	}

	trade := models.Trade{
		ID:         uuid.New(),
		Time:       l.now,
		Figi:       instrument.Figi,
		Direction:  direction,
		Price:      price,
		Quantity:   quantity,
		Commission: commission,
		Currency:   currency,
	}
	l.trades = append(l.trades, trade)
	return trade, nil
}

func (l *Ledger) addToPosition(instrument models.Instrument, quantity int64, price decimal.Decimal) {
	position, ok := l.positions[instrument.Figi]
	if !ok {
		l.positions[instrument.Figi] = &models.Position{
			Figi:         instrument.Figi,
			Currency:     instrument.Currency,
			Quantity:     quantity,
			AveragePrice: price,
		}
		return
	}

	oldQty := decimal.NewFromInt(position.Quantity)
	newQty := decimal.NewFromInt(quantity)
	totalCost := position.AveragePrice.Mul(oldQty).Add(price.Mul(newQty))
	position.AveragePrice = totalCost.Div(oldQty.Add(newQty))
	position.Quantity += quantity
}

// ApplyCashInjection unconditionally credits cash and records the event.
func (l *Ledger) ApplyCashInjection(currency string, amount decimal.Decimal, at time.Time) error {
	if amount.IsNegative() {
		return fmt.Errorf("injection of %s %s: %w", amount.String(), currency, models.ErrNegativeAmount)
	}
	l.balances[currency] = l.balances[currency].Add(amount)
	l.injections = append(l.injections, models.CashInjection{Time: at, Currency: currency, Amount: amount})
	return nil
}

// Snapshot returns an immutable view for the given instrument and currency.
func (l *Ledger) Snapshot(figi, currency string) AccountSnapshot {
	snapshot := AccountSnapshot{
		AccountID: l.accountID,
		Time:      l.now,
		Currency:  currency,
		Balance:   l.balances[currency],
	}
	if position, ok := l.positions[figi]; ok {
		copied := *position
		snapshot.Position = &copied
	}
	return snapshot
}

// TradeHistory returns trades with time in [from, to), oldest first,
// filtered by figi when it is non-empty.
func (l *Ledger) TradeHistory(from, to time.Time, figi string) []models.Trade {
	var out []models.Trade
	for _, t := range l.trades {
		if t.Time.Before(from) || !t.Time.Before(to) {
			continue
		}
		if figi != "" && t.Figi != figi {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Trades returns a copy of the full trade log.
func (l *Ledger) Trades() []models.Trade {
	return append([]models.Trade(nil), l.trades...)
}

// Injections returns a copy of the injection log.
func (l *Ledger) Injections() []models.CashInjection {
	return append([]models.CashInjection(nil), l.injections...)
}

// Positions returns copies of the open positions.
func (l *Ledger) Positions() []models.Position {
	out := make([]models.Position, 0, len(l.positions))
	for _, p := range l.positions {
		out = append(out, *p)
	}
	return out
}
