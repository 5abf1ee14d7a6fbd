package indicators

import (
	"github.com/guregu/null/v6"

	"github.com/wonny/aegis-screener/internal/contracts"
	"github.com/wonny/aegis-screener/pkg/logger"
)

// Compute derives one IndicatorSet per bar.
// bars must already be time-ordered; the result has the same length.
// Every value at index i depends only on bars[0..i].
func Compute(bars []contracts.Bar, cfg Config) ([]contracts.IndicatorSet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if need := cfg.RequiredBars(); len(bars) < need {
		return nil, contracts.InsufficientHistoryError{Have: len(bars), Need: need}
	}

	closes := contracts.Closes(bars)

	smaFast := SMA(closes, cfg.SMAFastWindow)
	smaSlow := SMA(closes, cfg.SMASlowWindow)
	rsi := RSI(closes, cfg.RSIWindow, cfg.RSISmoothing)
	ret := PercentChange(closes, cfg.ReturnWindow)

	var macd, signal, volFast, volSlow []null.Float
	if cfg.MACDEnabled {
		macd, signal = MACD(closes, cfg.MACDFastSpan, cfg.MACDSlowSpan, cfg.MACDSignalSpan)
	}
	if cfg.VolumeEnabled {
		volumes := contracts.Volumes(bars)
		volFast = SMA(volumes, cfg.VolumeFastWindow)
		volSlow = SMA(volumes, cfg.VolumeSlowWindow)
	}

	out := make([]contracts.IndicatorSet, len(bars))
	for i, b := range bars {
		set := contracts.IndicatorSet{
			Time:    b.Time,
			Close:   b.Close,
			SMAFast: smaFast[i],
			SMASlow: smaSlow[i],
			RSI:     rsi[i],
			ReturnN: ret[i],
		}
		if cfg.MACDEnabled {
			set.MACD = macd[i]
			set.Signal = signal[i]
		}
		if cfg.VolumeEnabled {
			set.VolumeSMAFast = volFast[i]
			set.VolumeSMASlow = volSlow[i]
		}
		out[i] = set
	}
	return out, nil
}

// Calculator binds a validated Config to a logger
// ⭐ SSOT: 기술적 지표 계산은 여기서만
type Calculator struct {
	config Config
	logger *logger.Logger
}

// NewCalculator creates a calculator, rejecting invalid windows up front
func NewCalculator(cfg Config, log *logger.Logger) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{config: cfg, logger: log}, nil
}

// Config returns the calculator's windows
func (c *Calculator) Config() Config {
	return c.config
}

// Calculate computes the indicator series for one ticker
func (c *Calculator) Calculate(ticker string, bars []contracts.Bar) ([]contracts.IndicatorSet, error) {
	series, err := Compute(bars, c.config)
	if err != nil {
		return nil, err
	}

	last, _ := contracts.Last(series)
	c.logger.WithFields(map[string]interface{}{
		"ticker":   ticker,
		"bars":     len(bars),
		"sma_fast": last.SMAFast,
		"sma_slow": last.SMASlow,
		"rsi":      last.RSI,
		"return_n": last.ReturnN,
	}).Debug("Calculated indicators")

	return series, nil
}
