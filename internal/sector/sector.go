package sector

import (
	"context"
	"time"

	"github.com/wonny/aegis-screener/pkg/logger"
	"github.com/wonny/aegis-screener/pkg/redis"
)

// Lookup fetches the provider's raw sector name for a ticker
type Lookup interface {
	FetchSector(ctx context.Context, ticker string) (string, error)
}

// Cache is the subset of redis.Cache used for sector names
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Translator maps provider sector names to display names
type Translator struct {
	names   map[string]string
	unknown string
}

// NewTranslator copies names so later edits to the source map have no effect
func NewTranslator(names map[string]string, unknown string) *Translator {
	own := make(map[string]string, len(names))
	for k, v := range names {
		own[k] = v
	}
	return &Translator{names: own, unknown: unknown}
}

// Translate returns the display name, or raw itself when untranslated.
// A provider page without a sector reads as "Unknown".
func (t *Translator) Translate(raw string) string {
	if raw == "" {
		raw = "Unknown"
	}
	if name, ok := t.names[raw]; ok {
		return name
	}
	return raw
}

// Unknown is the label used when the lookup itself fails
func (t *Translator) Unknown() string {
	return t.unknown
}

// Resolver implements contracts.SectorResolver; it never fails
type Resolver struct {
	lookup     Lookup
	translator *Translator
	cache      Cache
	ttl        time.Duration
	logger     *logger.Logger
}

// NewResolver creates a resolver; cache may be nil
func NewResolver(lookup Lookup, translator *Translator, cache Cache, ttl time.Duration, log *logger.Logger) *Resolver {
	return &Resolver{
		lookup:     lookup,
		translator: translator,
		cache:      cache,
		ttl:        ttl,
		logger:     log,
	}
}

// Sector returns the translated sector, or the unknown label on any lookup error
func (r *Resolver) Sector(ctx context.Context, ticker string) string {
	key := redis.SectorKey(ticker)

	if r.cache != nil {
		var raw string
		if found, err := r.cache.Get(ctx, key, &raw); err == nil && found {
			return r.translator.Translate(raw)
		}
	}

	raw, err := r.lookup.FetchSector(ctx, ticker)
	if err != nil {
		r.logger.WithError(err).WithField("ticker", ticker).Warn("Sector lookup failed")
		return r.translator.Unknown()
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, raw, r.ttl); err != nil {
			r.logger.WithError(err).WithField("ticker", ticker).Debug("Sector cache write failed")
		}
	}

	return r.translator.Translate(raw)
}
