package scoring

import (
	"fmt"

	"github.com/wonny/aegis-screener/internal/contracts"
)

// Engine applies one rule table to the last IndicatorSet of a ticker
type Engine struct {
	mode  contracts.Mode
	rules []Rule
}

// NewEngine selects the rule table for mode
func NewEngine(mode contracts.Mode, t Thresholds) (*Engine, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	switch mode {
	case contracts.ModeOpportunity:
		return &Engine{mode: mode, rules: OpportunityRules(t)}, nil
	case contracts.ModeMomentum:
		return &Engine{mode: mode, rules: MomentumRules(t)}, nil
	default:
		return nil, contracts.InvalidConfigError{Field: "mode", Message: fmt.Sprintf("unknown mode %q", mode)}
	}
}

// Requires lists the distinct indicators referenced by the rule table, in rule order
func (e *Engine) Requires() []contracts.Indicator {
	seen := make(map[contracts.Indicator]bool)
	var out []contracts.Indicator
	for _, rule := range e.rules {
		for _, name := range rule.Requires {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

// Mode returns the engine's scoring mode
func (e *Engine) Mode() contracts.Mode {
	return e.mode
}

// Rules returns the active rule table
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Score evaluates every rule; any referenced undefined indicator fails the whole score
func (e *Engine) Score(set contracts.IndicatorSet) (contracts.Score, error) {
	var score contracts.Score

	for _, rule := range e.rules {
		values := make([]float64, len(rule.Requires))
		for i, name := range rule.Requires {
			v := set.Value(name)
			if !v.Valid {
				return contracts.Score{}, contracts.UndefinedIndicatorError{Indicator: name, Rule: rule.Name}
			}
			values[i] = v.Float64
		}

		if !rule.Predicate(values) {
			continue
		}

		switch rule.Side {
		case SideBuy:
			score.Buy += rule.Points
		case SideSell:
			score.Sell += rule.Points
		default:
			score.Total += rule.Points
		}
	}

	return score, nil
}

// MaxPoints returns the highest score attainable on side
func (e *Engine) MaxPoints(side Side) int {
	total := 0
	for _, rule := range e.rules {
		if rule.Side == side {
			total += rule.Points
		}
	}
	return total
}
