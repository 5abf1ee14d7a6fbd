package contracts

import (
	"time"

	"github.com/guregu/null/v6"
)

// IndicatorSet holds the derived indicators for a single bar.
// Each value is Valid only once its window is fully populated by history.
type IndicatorSet struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`

	SMAFast null.Float `json:"sma_fast"`
	SMASlow null.Float `json:"sma_slow"`
	RSI     null.Float `json:"rsi"`

	MACD   null.Float `json:"macd"`
	Signal null.Float `json:"signal"`

	VolumeSMAFast null.Float `json:"volume_sma_fast"`
	VolumeSMASlow null.Float `json:"volume_sma_slow"`

	ReturnN null.Float `json:"return_n"` // percent, not fraction
}

// Indicator names a field of IndicatorSet
type Indicator string

const (
	IndicatorSMAFast       Indicator = "sma_fast"
	IndicatorSMASlow       Indicator = "sma_slow"
	IndicatorRSI           Indicator = "rsi"
	IndicatorMACD          Indicator = "macd"
	IndicatorSignal        Indicator = "signal"
	IndicatorVolumeSMAFast Indicator = "volume_sma_fast"
	IndicatorVolumeSMASlow Indicator = "volume_sma_slow"
	IndicatorReturnN       Indicator = "return_n"
)

// Value returns the named indicator
func (s IndicatorSet) Value(name Indicator) null.Float {
	switch name {
	case IndicatorSMAFast:
		return s.SMAFast
	case IndicatorSMASlow:
		return s.SMASlow
	case IndicatorRSI:
		return s.RSI
	case IndicatorMACD:
		return s.MACD
	case IndicatorSignal:
		return s.Signal
	case IndicatorVolumeSMAFast:
		return s.VolumeSMAFast
	case IndicatorVolumeSMASlow:
		return s.VolumeSMASlow
	case IndicatorReturnN:
		return s.ReturnN
	default:
		return null.Float{}
	}
}

// Last returns the most recent IndicatorSet of a series
func Last(series []IndicatorSet) (IndicatorSet, bool) {
	if len(series) == 0 {
		return IndicatorSet{}, false
	}
	return series[len(series)-1], true
}
