package contracts

import (
	"errors"
	"fmt"
)

// ErrNoData is returned by a BarSource when the provider has nothing for a ticker
var ErrNoData = errors.New("no data returned")

// InsufficientHistoryError means there are too few bars for the configured windows
type InsufficientHistoryError struct {
	Have int
	Need int
}

func (e InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history: have %d bars, need %d", e.Have, e.Need)
}

// UndefinedIndicatorError means a scoring rule referenced an indicator with no value
type UndefinedIndicatorError struct {
	Indicator Indicator
	Rule      string
}

func (e UndefinedIndicatorError) Error() string {
	return fmt.Sprintf("rule %q references undefined indicator %s", e.Rule, e.Indicator)
}

// InvalidConfigError reports a non-positive or inconsistent option
type InvalidConfigError struct {
	Field   string
	Message string
}

func (e InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Message)
}

// IsSkip reports whether err means "skip this ticker" rather than a fault
func IsSkip(err error) bool {
	var ih InsufficientHistoryError
	return errors.As(err, &ih) || errors.Is(err, ErrNoData)
}
