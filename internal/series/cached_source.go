package series

import (
	"context"
	"time"

	"github.com/wonny/aegis-screener/internal/contracts"
	"github.com/wonny/aegis-screener/pkg/logger"
	"github.com/wonny/aegis-screener/pkg/redis"
)

// BarCache is the subset of redis.Cache used for bars
type BarCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CachedSource puts a JSON cache in front of another BarSource
type CachedSource struct {
	next   contracts.BarSource
	cache  BarCache
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedSource wraps next with cache
func NewCachedSource(next contracts.BarSource, cache BarCache, ttl time.Duration, log *logger.Logger) *CachedSource {
	return &CachedSource{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: log,
	}
}

// Fetch implements contracts.BarSource.
// Cache errors degrade to a direct fetch; empty results are never cached.
func (s *CachedSource) Fetch(ctx context.Context, ticker string, lookback time.Duration) ([]contracts.Bar, error) {
	key := redis.BarsKey(ticker, lookback)

	var cached []contracts.Bar
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.WithError(err).WithField("ticker", ticker).Warn("Bar cache read failed")
	}
	if found && len(cached) > 0 {
		return cached, nil
	}

	bars, err := s.next.Fetch(ctx, ticker, lookback)
	if err != nil {
		return nil, err
	}

	if len(bars) == 0 {
		return bars, nil
	}
	if err := s.cache.Set(ctx, key, bars, s.ttl); err != nil {
		s.logger.WithError(err).WithField("ticker", ticker).Warn("Bar cache write failed")
	}
	return bars, nil
}
