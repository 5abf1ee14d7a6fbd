package series

import (
	"context"
	"time"

	"github.com/wonny/aegis-screener/internal/contracts"
)

// StaticSource serves fixed in-memory bars, for tests and offline runs
type StaticSource struct {
	Bars   map[string][]contracts.Bar
	Errors map[string]error
}

// NewStaticSource creates an empty StaticSource
func NewStaticSource() *StaticSource {
	return &StaticSource{
		Bars:   make(map[string][]contracts.Bar),
		Errors: make(map[string]error),
	}
}

// Fetch implements contracts.BarSource; lookback is ignored
func (s *StaticSource) Fetch(ctx context.Context, ticker string, lookback time.Duration) ([]contracts.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := s.Errors[ticker]; ok {
		return nil, err
	}

	bars, ok := s.Bars[ticker]
	if !ok || len(bars) == 0 {
		return nil, contracts.ErrNoData
	}

	out := make([]contracts.Bar, len(bars))
	copy(out, bars)
	return out, nil
}
