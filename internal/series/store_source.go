package series

import (
	"context"
	"time"

	"github.com/wonny/aegis-screener/internal/contracts"
)

// BarReader is the read side of PriceRepository
type BarReader interface {
	GetRange(ctx context.Context, ticker string, from, to time.Time) ([]contracts.Bar, error)
}

// StoreSource serves bars from the database instead of the network
type StoreSource struct {
	repo BarReader
	now  func() time.Time
}

// NewStoreSource creates a BarSource over repo
func NewStoreSource(repo BarReader) *StoreSource {
	return &StoreSource{repo: repo, now: time.Now}
}

// Fetch implements contracts.BarSource
func (s *StoreSource) Fetch(ctx context.Context, ticker string, lookback time.Duration) ([]contracts.Bar, error) {
	to := s.now()
	bars, err := s.repo.GetRange(ctx, ticker, to.Add(-lookback), to)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, contracts.ErrNoData
	}
	return bars, nil
}
