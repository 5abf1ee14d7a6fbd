package indicators

import (
	"fmt"

	"github.com/wonny/aegis-screener/internal/contracts"
)

// RSISmoothing selects how average gain/loss are smoothed
type RSISmoothing string

const (
	RSISimple RSISmoothing = "simple" // rolling arithmetic mean
	RSIWilder RSISmoothing = "wilder" // Wilder recursive smoothing, seeded by the simple mean
)

// Config enumerates the indicator windows.
// All windows must be positive; fast windows must be shorter than slow ones.
type Config struct {
	SMAFastWindow int          `yaml:"sma_fast_window" json:"sma_fast_window"`
	SMASlowWindow int          `yaml:"sma_slow_window" json:"sma_slow_window"`
	RSIWindow     int          `yaml:"rsi_window" json:"rsi_window"`
	RSISmoothing  RSISmoothing `yaml:"rsi_smoothing" json:"rsi_smoothing"`

	MACDEnabled    bool `yaml:"macd_enabled" json:"macd_enabled"`
	MACDFastSpan   int  `yaml:"macd_fast_span" json:"macd_fast_span"`
	MACDSlowSpan   int  `yaml:"macd_slow_span" json:"macd_slow_span"`
	MACDSignalSpan int  `yaml:"macd_signal_span" json:"macd_signal_span"`

	VolumeEnabled    bool `yaml:"volume_enabled" json:"volume_enabled"`
	VolumeFastWindow int  `yaml:"volume_window_fast" json:"volume_window_fast"`
	VolumeSlowWindow int  `yaml:"volume_window_slow" json:"volume_window_slow"`

	ReturnWindow int `yaml:"return_window" json:"return_window"`
}

// OpportunityConfig returns the trend / mean-reversion defaults (5/20/14)
func OpportunityConfig() Config {
	return Config{
		SMAFastWindow:    5,
		SMASlowWindow:    20,
		RSIWindow:        14,
		RSISmoothing:     RSISimple,
		MACDEnabled:      false,
		MACDFastSpan:     12,
		MACDSlowSpan:     26,
		MACDSignalSpan:   9,
		VolumeEnabled:    true,
		VolumeFastWindow: 5,
		VolumeSlowWindow: 20,
		ReturnWindow:     5,
	}
}

// MomentumConfig returns the buy/sell momentum defaults (5/20/9, MACD 12/26/9)
func MomentumConfig() Config {
	return Config{
		SMAFastWindow:    5,
		SMASlowWindow:    20,
		RSIWindow:        9,
		RSISmoothing:     RSIWilder,
		MACDEnabled:      true,
		MACDFastSpan:     12,
		MACDSlowSpan:     26,
		MACDSignalSpan:   9,
		VolumeEnabled:    false,
		VolumeFastWindow: 5,
		VolumeSlowWindow: 20,
		ReturnWindow:     5,
	}
}

// ConfigForMode returns the preset matching a scoring mode
func ConfigForMode(mode contracts.Mode) Config {
	if mode == contracts.ModeMomentum {
		return MomentumConfig()
	}
	return OpportunityConfig()
}

// Validate rejects non-positive or inconsistent windows
func (c Config) Validate() error {
	positive := []struct {
		field string
		value int
	}{
		{"sma_fast_window", c.SMAFastWindow},
		{"sma_slow_window", c.SMASlowWindow},
		{"rsi_window", c.RSIWindow},
		{"macd_fast_span", c.MACDFastSpan},
		{"macd_slow_span", c.MACDSlowSpan},
		{"macd_signal_span", c.MACDSignalSpan},
		{"volume_window_fast", c.VolumeFastWindow},
		{"volume_window_slow", c.VolumeSlowWindow},
		{"return_window", c.ReturnWindow},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return contracts.InvalidConfigError{Field: p.field, Message: fmt.Sprintf("must be > 0, got %d", p.value)}
		}
	}

	if c.SMAFastWindow >= c.SMASlowWindow {
		return contracts.InvalidConfigError{Field: "sma_fast_window", Message: "must be < sma_slow_window"}
	}
	if c.MACDFastSpan >= c.MACDSlowSpan {
		return contracts.InvalidConfigError{Field: "macd_fast_span", Message: "must be < macd_slow_span"}
	}
	if c.VolumeFastWindow >= c.VolumeSlowWindow {
		return contracts.InvalidConfigError{Field: "volume_window_fast", Message: "must be < volume_window_slow"}
	}

	switch c.RSISmoothing {
	case RSISimple, RSIWilder:
	default:
		return contracts.InvalidConfigError{Field: "rsi_smoothing", Message: fmt.Sprintf("must be simple or wilder, got %q", c.RSISmoothing)}
	}

	return nil
}

// Switch names the enable flag governing an indicator, "" when it is always computed
func Switch(name contracts.Indicator) string {
	switch name {
	case contracts.IndicatorMACD, contracts.IndicatorSignal:
		return "macd_enabled"
	case contracts.IndicatorVolumeSMAFast, contracts.IndicatorVolumeSMASlow:
		return "volume_enabled"
	default:
		return ""
	}
}

// Provides reports whether Compute fills name on scorable bars
func (c Config) Provides(name contracts.Indicator) bool {
	switch Switch(name) {
	case "macd_enabled":
		return c.MACDEnabled
	case "volume_enabled":
		return c.VolumeEnabled
	default:
		return true
	}
}

// RequiredBars is the minimum series length for every active indicator
// to be defined on the last bar.
func (c Config) RequiredBars() int {
	longest := max(c.SMAFastWindow, c.SMASlowWindow, c.RSIWindow, c.ReturnWindow)
	if c.VolumeEnabled {
		longest = max(longest, c.VolumeFastWindow, c.VolumeSlowWindow)
	}
	if c.MACDEnabled {
		longest = max(longest, c.MACDFastSpan, c.MACDSlowSpan, c.MACDSignalSpan)
	}
	need := longest + 1

	// signal line is first defined at index slow+signal-2
	if c.MACDEnabled {
		need = max(need, c.MACDSlowSpan+c.MACDSignalSpan-1)
	}
	return need
}
