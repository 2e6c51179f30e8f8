package strategy

// AccumulateStrategy buys as many lots as the balance affords on every tick
// and never sells. It is the baseline buy-and-hold policy with periodic
// contributions picked up as soon as they arrive.
type AccumulateStrategy struct{}

// NewAccumulateStrategy creates a new accumulate strategy.
func NewAccumulateStrategy(params map[string]any) *AccumulateStrategy {
	_ = params
	return &AccumulateStrategy{}
}

// Name returns strategy name
func (s *AccumulateStrategy) Name() string {
	return "accumulate"
}

// MinCandles returns the trailing window requirement
func (s *AccumulateStrategy) MinCandles() int {
	return 1
}

// Decide buys the maximum affordable quantity or waits.
func (s *AccumulateStrategy) Decide(data *DecisionData, mem *Memory) (Decision, error) {
	_ = mem
	if len(data.Candles) < s.MinCandles() {
		return Wait(), nil
	}
	qty := data.MaxAffordableLots(data.LastPrice())
	if qty < 1 {
		return Wait(), nil
	}
	return Decision{Action: ActionBuy, Quantity: qty}, nil
}

// Parameters returns strategy parameters for reporting
func (s *AccumulateStrategy) Parameters() map[string]any {
	return map[string]any{}
}
