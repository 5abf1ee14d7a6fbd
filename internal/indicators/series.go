package indicators

import (
	"math"

	"github.com/guregu/null/v6"
	"github.com/markcheno/go-talib"
)

// defined wraps v, treating NaN and ±Inf as undefined
func defined(v float64) null.Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}

// SMA is the arithmetic mean of the trailing window values.
// Undefined for indices < window-1.
func SMA(values []float64, window int) []null.Float {
	out := make([]null.Float, len(values))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		var sum float64
		for _, v := range values[i-window+1 : i+1] {
			sum += v
		}
		out[i] = defined(sum / float64(window))
	}
	return out
}

// EMA is the exponential moving average with smoothing 2/(span+1).
// The first defined value, at index span-1, is the simple mean of the first
// span values (talib seeding); earlier indices are undefined.
func EMA(values []float64, span int) []null.Float {
	out := make([]null.Float, len(values))
	if span <= 0 || len(values) < span {
		return out
	}
	raw := talib.Ema(values, span)
	for i := span - 1; i < len(values); i++ {
		out[i] = defined(raw[i])
	}
	return out
}

// MACD returns EMA(fast)-EMA(slow) and the EMA(signal) of that difference.
// MACD is defined from slow-1; the signal line from slow+signal-2.
func MACD(closes []float64, fast, slow, signal int) (macd, signalLine []null.Float) {
	macd = make([]null.Float, len(closes))
	signalLine = make([]null.Float, len(closes))
	if len(closes) < slow {
		return macd, signalLine
	}

	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)

	start := slow - 1
	diff := make([]float64, 0, len(closes)-start)
	for i := start; i < len(closes); i++ {
		if !emaFast[i].Valid || !emaSlow[i].Valid {
			return macd, signalLine
		}
		d := emaFast[i].Float64 - emaSlow[i].Float64
		macd[i] = defined(d)
		diff = append(diff, d)
	}

	sig := EMA(diff, signal)
	for j, v := range sig {
		signalLine[start+j] = v
	}
	return macd, signalLine
}

// PercentChange is (v[i]/v[i-n] - 1) * 100, undefined for i < n
// or when the base value is zero.
func PercentChange(values []float64, n int) []null.Float {
	out := make([]null.Float, len(values))
	if n <= 0 {
		return out
	}
	for i := n; i < len(values); i++ {
		base := values[i-n]
		if base == 0 {
			continue
		}
		out[i] = defined((values[i] - base) / base * 100)
	}
	return out
}
