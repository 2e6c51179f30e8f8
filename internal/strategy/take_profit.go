package strategy

import "github.com/shopspring/decimal"

// TakeProfitStrategy buys immediately and holds until the position can be
// closed with at least MinProfit relative gain over cost including the
// commission paid on both legs.
type TakeProfitStrategy struct {
	MinProfit decimal.Decimal
}

// NewTakeProfitStrategy creates a new take-profit strategy.
func NewTakeProfitStrategy(params map[string]any) *TakeProfitStrategy {
	return &TakeProfitStrategy{
		MinProfit: decimalParam(params, "min_profit", decimal.NewFromFloat(0.01)),
	}
}

// Name returns strategy name
func (s *TakeProfitStrategy) Name() string {
	return "take_profit"
}

// MinCandles returns the trailing window requirement
func (s *TakeProfitStrategy) MinCandles() int {
	return 1
}

// Decide enters a position when flat and exits once the profit target over
// cost-plus-commission is reached.
func (s *TakeProfitStrategy) Decide(data *DecisionData, mem *Memory) (Decision, error) {
	_ = mem
	if len(data.Candles) < s.MinCandles() {
		return Wait(), nil
	}
	price := data.LastPrice()

	if data.Position == nil {
		qty := data.MaxAffordableLots(price)
		if qty < 1 {
			return Wait(), nil
		}
		return Decision{Action: ActionBuy, Quantity: qty}, nil
	}

	one := decimal.NewFromInt(1)
	// Net proceeds per lot after the sell commission must beat the entry
	// cost per lot including the buy commission by MinProfit.
	netPerLot := price.Mul(one.Sub(data.CommissionRate))
	costPerLot := data.Position.AveragePrice.Mul(one.Add(data.CommissionRate))
	target := costPerLot.Mul(one.Add(s.MinProfit))
	if netPerLot.GreaterThanOrEqual(target) {
		return Decision{Action: ActionSell, Quantity: data.Position.Quantity}, nil
	}
	return Wait(), nil
}

// Parameters returns strategy parameters for reporting
func (s *TakeProfitStrategy) Parameters() map[string]any {
	return map[string]any{
		"min_profit": s.MinProfit.InexactFloat64(),
	}
}
