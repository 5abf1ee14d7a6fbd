package series

import (
	"context"
	"time"

	"github.com/wonny/aegis-screener/internal/contracts"
	"github.com/wonny/aegis-screener/pkg/logger"
)

// BarWriter is the write side of PriceRepository
type BarWriter interface {
	SaveBars(ctx context.Context, ticker string, bars []contracts.Bar) error
}

// SyncResult summarizes one Syncer run
type SyncResult struct {
	Tickers int               `json:"tickers"`
	Saved   int               `json:"saved"` // bars
	Failed  map[string]string `json:"failed,omitempty"`
}

// Syncer copies bars from a remote source into the store
type Syncer struct {
	source contracts.BarSource
	store  BarWriter
	logger *logger.Logger
}

// NewSyncer creates a new syncer
func NewSyncer(source contracts.BarSource, store BarWriter, log *logger.Logger) *Syncer {
	return &Syncer{
		source: source,
		store:  store,
		logger: log,
	}
}

// Sync fetches and saves every ticker; one ticker's failure never stops the rest
func (s *Syncer) Sync(ctx context.Context, tickers []string, lookback time.Duration) (*SyncResult, error) {
	result := &SyncResult{Tickers: len(tickers), Failed: map[string]string{}}

	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		bars, err := s.source.Fetch(ctx, ticker, lookback)
		if err == nil {
			bars = Normalize(bars)
			err = s.store.SaveBars(ctx, ticker, bars)
		}
		if err != nil {
			result.Failed[ticker] = err.Error()
			s.logger.WithError(err).WithField("ticker", ticker).Warn("Bar sync failed")
			continue
		}
		result.Saved += len(bars)
	}

	s.logger.WithFields(map[string]interface{}{
		"tickers": result.Tickers,
		"saved":   result.Saved,
		"failed":  len(result.Failed),
	}).Info("Bar sync completed")

	return result, nil
}
