package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// New builds a strategy from its configured type name and parameter map.
func New(name string, params map[string]any) (Strategy, error) {
	switch name {
	case "accumulate":
		return NewAccumulateStrategy(params), nil
	case "take_profit":
		return NewTakeProfitStrategy(params), nil
	case "extrema":
		return NewExtremaStrategy(params), nil
	case "golden_cross":
		return NewGoldenCrossStrategy(params), nil
	default:
		return nil, fmt.Errorf("unknown strategy type %q", name)
	}
}

// Names lists the registered strategy type names.
func Names() []string {
	return []string{"accumulate", "take_profit", "extrema", "golden_cross"}
}

func intParam(params map[string]any, key string, def int) int {
	v, ok := params[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return def
	}
}

func floatParam(params map[string]any, key string, def float64) float64 {
	v, ok := params[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return def
	}
}

func decimalParam(params map[string]any, key string, def decimal.Decimal) decimal.Decimal {
	v, ok := params[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return def
		}
		return d
	default:
		return def
	}
}
