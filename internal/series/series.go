package series

import (
	"fmt"
	"sort"

	"github.com/wonny/aegis-screener/internal/contracts"
)

// Series is an immutable, strictly time-ordered run of daily bars for one ticker
type Series struct {
	ticker string
	bars   []contracts.Bar
}

// NewSeries copies bars and rejects out-of-order or duplicate timestamps
func NewSeries(ticker string, bars []contracts.Bar) (*Series, error) {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Time.After(bars[i-1].Time) {
			return nil, fmt.Errorf("%s: bar %d at %s is not after %s", ticker, i, bars[i].Time.Format("2006-01-02"), bars[i-1].Time.Format("2006-01-02"))
		}
	}

	own := make([]contracts.Bar, len(bars))
	copy(own, bars)
	return &Series{ticker: ticker, bars: own}, nil
}

// Ticker returns the series symbol
func (s *Series) Ticker() string {
	return s.ticker
}

// Len returns the number of bars
func (s *Series) Len() int {
	return len(s.bars)
}

// Bars returns a copy of the bars, oldest first
func (s *Series) Bars() []contracts.Bar {
	out := make([]contracts.Bar, len(s.bars))
	copy(out, s.bars)
	return out
}

// Normalize sorts bars by time and keeps the last bar for each duplicate timestamp
func Normalize(bars []contracts.Bar) []contracts.Bar {
	out := make([]contracts.Bar, len(bars))
	copy(out, bars)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})

	deduped := out[:0]
	for _, b := range out {
		if n := len(deduped); n > 0 && deduped[n-1].Time.Equal(b.Time) {
			deduped[n-1] = b
			continue
		}
		deduped = append(deduped, b)
	}
	return deduped
}
