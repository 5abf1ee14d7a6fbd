package scoring

import "github.com/wonny/aegis-screener/internal/contracts"

// Side is the score column a rule contributes to
type Side int

const (
	SideTotal Side = iota // opportunity score
	SideBuy
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return "total"
	}
}

// Rule awards Points to Side when Predicate holds.
// Predicate receives the values of Requires in order, all of them defined.
type Rule struct {
	Name      string
	Requires  []contracts.Indicator
	Points    int
	Side      Side
	Predicate func(v []float64) bool
}

// OpportunityRules builds the trend / mean-reversion table (0..6)
func OpportunityRules(t Thresholds) []Rule {
	return []Rule{
		{
			Name:      "sma_fast_above_slow",
			Requires:  []contracts.Indicator{contracts.IndicatorSMAFast, contracts.IndicatorSMASlow},
			Points:    2,
			Side:      SideTotal,
			Predicate: func(v []float64) bool { return v[0] > v[1] },
		},
		{
			Name:      "rsi_in_band",
			Requires:  []contracts.Indicator{contracts.IndicatorRSI},
			Points:    2,
			Side:      SideTotal,
			Predicate: func(v []float64) bool { return t.RSILow <= v[0] && v[0] <= t.RSIHigh },
		},
		{
			Name:      "volume_fast_above_slow",
			Requires:  []contracts.Indicator{contracts.IndicatorVolumeSMAFast, contracts.IndicatorVolumeSMASlow},
			Points:    1,
			Side:      SideTotal,
			Predicate: func(v []float64) bool { return v[0] > v[1] },
		},
		{
			Name:      "return_in_band",
			Requires:  []contracts.Indicator{contracts.IndicatorReturnN},
			Points:    1,
			Side:      SideTotal,
			Predicate: func(v []float64) bool { return t.ReturnMin <= v[0] && v[0] <= t.ReturnMax },
		},
	}
}

// MomentumRules builds the buy/sell table (each side 0..3).
// Strict comparisons on both sides, so equality awards neither.
func MomentumRules(t Thresholds) []Rule {
	rsi := []contracts.Indicator{contracts.IndicatorRSI}
	macd := []contracts.Indicator{contracts.IndicatorMACD, contracts.IndicatorSignal}
	sma := []contracts.Indicator{contracts.IndicatorSMAFast, contracts.IndicatorSMASlow}

	return []Rule{
		{Name: "rsi_oversold", Requires: rsi, Points: 1, Side: SideBuy, Predicate: func(v []float64) bool { return v[0] < t.RSIBuyBelow }},
		{Name: "rsi_overbought", Requires: rsi, Points: 1, Side: SideSell, Predicate: func(v []float64) bool { return v[0] > t.RSISellAbove }},
		{Name: "macd_above_signal", Requires: macd, Points: 1, Side: SideBuy, Predicate: func(v []float64) bool { return v[0] > v[1] }},
		{Name: "macd_below_signal", Requires: macd, Points: 1, Side: SideSell, Predicate: func(v []float64) bool { return v[0] < v[1] }},
		{Name: "sma_fast_above_slow", Requires: sma, Points: 1, Side: SideBuy, Predicate: func(v []float64) bool { return v[0] > v[1] }},
		{Name: "sma_fast_below_slow", Requires: sma, Points: 1, Side: SideSell, Predicate: func(v []float64) bool { return v[0] < v[1] }},
	}
}
