package contracts

// Mode selects the scoring policy
type Mode string

const (
	ModeOpportunity Mode = "opportunity" // trend / mean-reversion, single score 0..6
	ModeMomentum    Mode = "momentum"    // independent buy/sell scores 0..3
)

// ParseMode validates a mode string
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeOpportunity, ModeMomentum:
		return Mode(s), nil
	default:
		return "", InvalidConfigError{Field: "mode", Message: "must be opportunity or momentum, got " + s}
	}
}

// Score is the output of a scoring policy.
// Opportunity mode fills Total; momentum mode fills Buy and Sell.
type Score struct {
	Total int `json:"total"`
	Buy   int `json:"buy"`
	Sell  int `json:"sell"`
}

// ScoreResult is the ephemeral per-ticker result of one analysis run
type ScoreResult struct {
	Ticker   string       `json:"ticker"`
	Sector   string       `json:"sector,omitempty"`
	Mode     Mode         `json:"mode"`
	Snapshot IndicatorSet `json:"snapshot"`
	Score    Score        `json:"score"`
}

// OutcomeStatus classifies how a ticker's pipeline ended
type OutcomeStatus string

const (
	OutcomeScored  OutcomeStatus = "scored"
	OutcomeSkipped OutcomeStatus = "skipped" // empty fetch or insufficient history
	OutcomeFailed  OutcomeStatus = "failed"
)

// TickerOutcome is the explicit per-ticker result of a run.
// Result is set only when Status is OutcomeScored.
type TickerOutcome struct {
	Ticker string         `json:"ticker"`
	Status OutcomeStatus  `json:"status"`
	Result *ScoreResult   `json:"result,omitempty"`
	Series []IndicatorSet `json:"-"`
	Err    error          `json:"-"`
	Reason string         `json:"reason,omitempty"`
}
