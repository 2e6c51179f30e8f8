package strategy

// ExtremaStrategy trades on detected local price extrema inside a trailing
// window: it buys after the window minimum settles at the expected lag from
// the window edge and sells the whole position on the mirrored maximum.
type ExtremaStrategy struct {
	Window      int
	ExpectedLag int
}

// NewExtremaStrategy creates a new extrema strategy.
func NewExtremaStrategy(params map[string]any) *ExtremaStrategy {
	s := &ExtremaStrategy{
		Window:      intParam(params, "window", 15),
		ExpectedLag: intParam(params, "expected_lag", 2),
	}
	if s.Window < 3 {
		s.Window = 3
	}
	if s.ExpectedLag < 0 || s.ExpectedLag >= s.Window {
		s.ExpectedLag = s.Window / 2
	}
	return s
}

// Name returns strategy name
func (s *ExtremaStrategy) Name() string {
	return "extrema"
}

// MinCandles returns the trailing window requirement
func (s *ExtremaStrategy) MinCandles() int {
	return s.Window
}

// Decide compares the position of the actual window min/max against the
// expected lag index and trades when they line up.
func (s *ExtremaStrategy) Decide(data *DecisionData, mem *Memory) (Decision, error) {
	_ = mem
	if len(data.Candles) < s.MinCandles() {
		return Wait(), nil
	}

	window := data.Candles[len(data.Candles)-s.Window:]
	minIdx, maxIdx := 0, 0
	for i, c := range window {
		if c.Close.LessThan(window[minIdx].Close) {
			minIdx = i
		}
		if c.Close.GreaterThan(window[maxIdx].Close) {
			maxIdx = i
		}
	}

	expected := s.Window - 1 - s.ExpectedLag
	if minIdx == expected && maxIdx != expected {
		qty := data.MaxAffordableLots(data.LastPrice())
		if qty < 1 {
			return Wait(), nil
		}
		return Decision{Action: ActionBuy, Quantity: qty}, nil
	}
	if maxIdx == expected && minIdx != expected {
		held := data.HeldLots()
		if held < 1 {
			return Wait(), nil
		}
		return Decision{Action: ActionSell, Quantity: held}, nil
	}
	return Wait(), nil
}

// Parameters returns strategy parameters for reporting
func (s *ExtremaStrategy) Parameters() map[string]any {
	return map[string]any{
		"window":       s.Window,
		"expected_lag": s.ExpectedLag,
	}
}
