package strategy

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/yourusername/stratlab/internal/models"
)

// GoldenCrossStrategy trades fast/slow moving-average crossovers gated by a
// trailing volatility index: signals fire only while per-tick return
// volatility stays under MaxVolatility.
type GoldenCrossStrategy struct {
	FastWindow       int
	SlowWindow       int
	VolatilityWindow int
	MaxVolatility    float64
}

type crossState struct {
	prevFast decimal.Decimal
	prevSlow decimal.Decimal
	primed   bool
}

// NewGoldenCrossStrategy creates a new golden-cross strategy.
func NewGoldenCrossStrategy(params map[string]any) *GoldenCrossStrategy {
	s := &GoldenCrossStrategy{
		FastWindow:       intParam(params, "fast_window", 5),
		SlowWindow:       intParam(params, "slow_window", 20),
		VolatilityWindow: intParam(params, "volatility_window", 20),
		MaxVolatility:    floatParam(params, "max_volatility", 0.05),
	}
	if s.FastWindow < 1 {
		s.FastWindow = 1
	}
	if s.SlowWindow <= s.FastWindow {
		s.SlowWindow = s.FastWindow + 1
	}
	if s.VolatilityWindow < 2 {
		s.VolatilityWindow = 2
	}
	return s
}

// Name returns strategy name
func (s *GoldenCrossStrategy) Name() string {
	return "golden_cross"
}

// MinCandles returns the trailing window requirement
func (s *GoldenCrossStrategy) MinCandles() int {
	if s.SlowWindow >= s.VolatilityWindow+1 {
		return s.SlowWindow
	}
	return s.VolatilityWindow + 1
}

// Decide buys the maximum affordable quantity on an upward crossover and
// closes the position on a downward one. The previous averages live in mem
// so crossings survive between ticks.
func (s *GoldenCrossStrategy) Decide(data *DecisionData, mem *Memory) (Decision, error) {
	if len(data.Candles) < s.MinCandles() {
		return Wait(), nil
	}

	fast := movingAverage(data.Candles, s.FastWindow)
	slow := movingAverage(data.Candles, s.SlowWindow)

	state, _ := mem.Get().(*crossState)
	if state == nil || !state.primed {
		mem.Set(&crossState{prevFast: fast, prevSlow: slow, primed: true})
		return Wait(), nil
	}
	crossedUp := state.prevFast.LessThanOrEqual(state.prevSlow) && fast.GreaterThan(slow)
	crossedDown := state.prevFast.GreaterThanOrEqual(state.prevSlow) && fast.LessThan(slow)
	state.prevFast = fast
	state.prevSlow = slow

	if returnVolatility(data.Candles, s.VolatilityWindow) > s.MaxVolatility {
		return Wait(), nil
	}

	if crossedUp {
		qty := data.MaxAffordableLots(data.LastPrice())
		if qty < 1 {
			return Wait(), nil
		}
		return Decision{Action: ActionBuy, Quantity: qty}, nil
	}
	if crossedDown {
		held := data.HeldLots()
		if held < 1 {
			return Wait(), nil
		}
		return Decision{Action: ActionSell, Quantity: held}, nil
	}
	return Wait(), nil
}

// Parameters returns strategy parameters for reporting
func (s *GoldenCrossStrategy) Parameters() map[string]any {
	return map[string]any{
		"fast_window":       s.FastWindow,
		"slow_window":       s.SlowWindow,
		"volatility_window": s.VolatilityWindow,
		"max_volatility":    s.MaxVolatility,
	}
}

func movingAverage(candles []models.Candle, window int) decimal.Decimal {
	tail := candles[len(candles)-window:]
	sum := decimal.Zero
	for _, c := range tail {
		sum = sum.Add(c.Close)
	}
	return sum.Div(decimal.NewFromInt(int64(window)))
}

// returnVolatility is the standard deviation of per-tick simple returns over
// the trailing window. Used as a gate only, so float precision is fine.
func returnVolatility(candles []models.Candle, window int) float64 {
	tail := candles[len(candles)-window-1:]
	returns := make([]float64, 0, window)
	for i := 1; i < len(tail); i++ {
		prev := tail[i-1].Close.InexactFloat64()
		if prev == 0 {
			continue
		}
		returns = append(returns, tail[i].Close.InexactFloat64()/prev-1)
	}
	if len(returns) == 0 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	variance := 0.0
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}
	variance /= float64(len(returns))
	return math.Sqrt(variance)
}
