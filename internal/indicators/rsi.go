package indicators

import "github.com/guregu/null/v6"

// RSI computes the relative strength index over window deltas.
// Defined for indices >= window. A window with gains and no losses
// saturates at 100; a window with neither is undefined.
func RSI(closes []float64, window int, smoothing RSISmoothing) []null.Float {
	n := len(closes)
	out := make([]null.Float, n)
	if window <= 0 || n <= window {
		return out
	}

	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else if delta < 0 {
			losses[i] = -delta
		}
	}

	w := float64(window)

	if smoothing == RSIWilder {
		var avgGain, avgLoss float64
		for i := 1; i <= window; i++ {
			avgGain += gains[i]
			avgLoss += losses[i]
		}
		avgGain /= w
		avgLoss /= w
		out[window] = rsiFromAverages(avgGain, avgLoss)

		for i := window + 1; i < n; i++ {
			avgGain = (avgGain*(w-1) + gains[i]) / w
			avgLoss = (avgLoss*(w-1) + losses[i]) / w
			out[i] = rsiFromAverages(avgGain, avgLoss)
		}
		return out
	}

	for i := window; i < n; i++ {
		var sumGain, sumLoss float64
		for j := i - window + 1; j <= i; j++ {
			sumGain += gains[j]
			sumLoss += losses[j]
		}
		out[i] = rsiFromAverages(sumGain/w, sumLoss/w)
	}
	return out
}

func rsiFromAverages(avgGain, avgLoss float64) null.Float {
	switch {
	case avgGain == 0 && avgLoss == 0:
		// flat window
		return null.Float{}
	case avgLoss == 0:
		return null.FloatFrom(100)
	}
	rs := avgGain / avgLoss
	return defined(100 - 100/(1+rs))
}
