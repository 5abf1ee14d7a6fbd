package indicators

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-screener/internal/contracts"
	"github.com/wonny/aegis-screener/pkg/logger"
)

func makeBars(closes []float64, volume float64) []contracts.Bar {
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]contracts.Bar, len(closes))
	for i, c := range closes {
		bars[i] = contracts.Bar{
			Time:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: volume,
		}
	}
	return bars
}

func flatThenRising() []float64 {
	closes := make([]float64, 0, 24)
	for i := 0; i < 19; i++ {
		closes = append(closes, 100)
	}
	return append(closes, 101, 102, 103, 104, 105)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"opportunity defaults", func(c *Config) {}, ""},
		{"zero sma fast", func(c *Config) { c.SMAFastWindow = 0 }, "sma_fast_window"},
		{"negative rsi", func(c *Config) { c.RSIWindow = -1 }, "rsi_window"},
		{"fast not shorter than slow", func(c *Config) { c.SMAFastWindow = 20 }, "sma_fast_window"},
		{"macd spans inverted", func(c *Config) { c.MACDFastSpan = 30 }, "macd_fast_span"},
		{"volume windows inverted", func(c *Config) { c.VolumeFastWindow = 25 }, "volume_window_fast"},
		{"unknown smoothing", func(c *Config) { c.RSISmoothing = "ema" }, "rsi_smoothing"},
		{"zero return window", func(c *Config) { c.ReturnWindow = 0 }, "return_window"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := OpportunityConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			var cfgErr contracts.InvalidConfigError
			require.True(t, errors.As(err, &cfgErr), "expected InvalidConfigError, got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestConfig_RequiredBars(t *testing.T) {
	assert.Equal(t, 21, OpportunityConfig().RequiredBars())
	assert.Equal(t, 34, MomentumConfig().RequiredBars())
}

func TestCompute_InsufficientHistory(t *testing.T) {
	_, err := Compute(makeBars(make([]float64, 10), 1), OpportunityConfig())

	var ih contracts.InsufficientHistoryError
	require.True(t, errors.As(err, &ih))
	assert.Equal(t, 10, ih.Have)
	assert.Equal(t, 21, ih.Need)
	assert.True(t, contracts.IsSkip(err))
}

func TestCompute_EmptyInput(t *testing.T) {
	_, err := Compute(nil, MomentumConfig())

	var ih contracts.InsufficientHistoryError
	assert.True(t, errors.As(err, &ih))
}

func TestCompute_InvalidConfig(t *testing.T) {
	cfg := OpportunityConfig()
	cfg.SMASlowWindow = 0

	_, err := Compute(makeBars(flatThenRising(), 1), cfg)

	var cfgErr contracts.InvalidConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestCompute_LengthAndTimestamps(t *testing.T) {
	bars := makeBars(flatThenRising(), 1000)
	series, err := Compute(bars, OpportunityConfig())
	require.NoError(t, err)
	require.Len(t, series, len(bars))

	for i := range bars {
		assert.Equal(t, bars[i].Time, series[i].Time)
		assert.Equal(t, bars[i].Close, series[i].Close)
	}
}

func TestCompute_NoLookAhead(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 50 + float64((i*7)%11) - float64(i%4)
	}
	bars := makeBars(closes, 500)
	cfg := MomentumConfig()

	full, err := Compute(bars, cfg)
	require.NoError(t, err)

	for cut := cfg.RequiredBars(); cut < len(bars); cut += 5 {
		prefix, err := Compute(bars[:cut], cfg)
		require.NoError(t, err)
		for i := range prefix {
			assert.Equal(t, full[i], prefix[i], "cut %d index %d", cut, i)
		}
	}
}

func TestCompute_ModeSpecificFields(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 10 + float64(i%5)
	}
	bars := makeBars(closes, 100)

	opp, err := Compute(bars, OpportunityConfig())
	require.NoError(t, err)
	last, _ := contracts.Last(opp)
	assert.False(t, last.MACD.Valid)
	assert.False(t, last.Signal.Valid)
	assert.True(t, last.VolumeSMAFast.Valid)
	assert.True(t, last.VolumeSMASlow.Valid)

	mom, err := Compute(bars, MomentumConfig())
	require.NoError(t, err)
	last, _ = contracts.Last(mom)
	assert.True(t, last.MACD.Valid)
	assert.True(t, last.Signal.Valid)
	assert.False(t, last.VolumeSMAFast.Valid)
}

func TestCompute_RisingSeries(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 20 + float64(i)
	}

	series, err := Compute(makeBars(closes, 10), OpportunityConfig())
	require.NoError(t, err)

	for i := 19; i < len(series); i++ {
		s := series[i]
		require.True(t, s.SMAFast.Valid && s.SMASlow.Valid)
		assert.Greater(t, s.SMAFast.Float64, s.SMASlow.Float64, "index %d", i)
		require.True(t, s.RSI.Valid)
		assert.Equal(t, 100.0, s.RSI.Float64)
	}
}

func TestCompute_FlatThenRising(t *testing.T) {
	series, err := Compute(makeBars(flatThenRising(), 1000), OpportunityConfig())
	require.NoError(t, err)

	last, ok := contracts.Last(series)
	require.True(t, ok)

	assert.InDelta(t, 103.0, last.SMAFast.Float64, 1e-9)
	assert.InDelta(t, 100.75, last.SMASlow.Float64, 1e-9)
	assert.Greater(t, last.RSI.Float64, 60.0)
	assert.InDelta(t, 5.0, last.ReturnN.Float64, 1e-9)
	assert.Equal(t, last.VolumeSMAFast, last.VolumeSMASlow)
}

func TestCalculator_Calculate(t *testing.T) {
	calc, err := NewCalculator(OpportunityConfig(), logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, OpportunityConfig(), calc.Config())

	series, err := calc.Calculate("AAPL", makeBars(flatThenRising(), 1000))
	require.NoError(t, err)
	assert.Len(t, series, 24)

	_, err = NewCalculator(Config{}, logger.Nop())
	assert.Error(t, err)
}

func TestConfig_Provides(t *testing.T) {
	opp := OpportunityConfig()
	assert.True(t, opp.Provides(contracts.IndicatorVolumeSMAFast))
	assert.False(t, opp.Provides(contracts.IndicatorMACD))
	assert.False(t, opp.Provides(contracts.IndicatorSignal))
	assert.True(t, opp.Provides(contracts.IndicatorRSI))

	mom := MomentumConfig()
	assert.True(t, mom.Provides(contracts.IndicatorSignal))
	assert.False(t, mom.Provides(contracts.IndicatorVolumeSMASlow))

	assert.Equal(t, "macd_enabled", Switch(contracts.IndicatorSignal))
	assert.Equal(t, "volume_enabled", Switch(contracts.IndicatorVolumeSMAFast))
	assert.Empty(t, Switch(contracts.IndicatorReturnN))
}
