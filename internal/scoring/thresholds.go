package scoring

import "github.com/wonny/aegis-screener/internal/contracts"

// Thresholds are the comparison bounds used by the rule tables
type Thresholds struct {
	// Opportunity
	RSILow    float64 `yaml:"rsi_low" json:"rsi_low"`
	RSIHigh   float64 `yaml:"rsi_high" json:"rsi_high"`
	ReturnMin float64 `yaml:"return_min" json:"return_min"`
	ReturnMax float64 `yaml:"return_max" json:"return_max"`

	// Momentum
	RSIBuyBelow  float64 `yaml:"rsi_buy_below" json:"rsi_buy_below"`
	RSISellAbove float64 `yaml:"rsi_sell_above" json:"rsi_sell_above"`
}

// DefaultThresholds returns the 40/60 RSI band and ±5% return band
func DefaultThresholds() Thresholds {
	return Thresholds{
		RSILow:       40,
		RSIHigh:      60,
		ReturnMin:    -5,
		ReturnMax:    5,
		RSIBuyBelow:  40,
		RSISellAbove: 60,
	}
}

// Validate checks the bounds are ordered and inside the RSI range
func (t Thresholds) Validate() error {
	if t.RSILow < 0 || t.RSIHigh > 100 || t.RSILow > t.RSIHigh {
		return contracts.InvalidConfigError{Field: "thresholds.rsi_low/rsi_high", Message: "must satisfy 0 <= rsi_low <= rsi_high <= 100"}
	}
	if t.ReturnMin > t.ReturnMax {
		return contracts.InvalidConfigError{Field: "thresholds.return_min/return_max", Message: "return_min must be <= return_max"}
	}
	if t.RSIBuyBelow < 0 || t.RSISellAbove > 100 || t.RSIBuyBelow > t.RSISellAbove {
		return contracts.InvalidConfigError{Field: "thresholds.rsi_buy_below/rsi_sell_above", Message: "must satisfy 0 <= rsi_buy_below <= rsi_sell_above <= 100"}
	}
	return nil
}
