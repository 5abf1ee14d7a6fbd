package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/aegis-screener/pkg/logger"
)

// MemoryCache is an in-process JSON cache with per-entry TTL.
// It stands in for Redis when REDIS_ENABLED is false so long-running servers still reuse fetches.
// ⭐ SSOT: 프로세스 내 캐싱은 이 구조체에서만
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
	logger  *logger.Logger
}

type entry struct {
	data    []byte
	expires time.Time
}

// NewMemoryCache creates a new memory cache
func NewMemoryCache(log *logger.Logger) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		now:     time.Now,
		logger:  log,
	}
}

// Get decodes a live entry into dest; expired entries read as a miss
func (c *MemoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.RLock()
	e, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists || !c.now().Before(e.expires) {
		return false, nil
	}

	if err := json.Unmarshal(e.data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}
	return true, nil
}

// Set stores value for ttl; a non-positive ttl is ignored
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	c.mu.Lock()
	c.entries[key] = entry{data: data, expires: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

// Delete removes an entry
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Len returns the number of stored entries, expired ones included
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// CleanExpired removes expired entries
func (c *MemoryCache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	count := 0

	for key, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, key)
			count++
		}
	}

	if count > 0 {
		c.logger.WithField("count", count).Info("Cleaned expired entries from cache")
	}

	return count
}

// Stats returns cache statistics
func (c *MemoryCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{TotalCount: len(c.entries)}
	now := c.now()
	for _, e := range c.entries {
		if !now.Before(e.expires) {
			stats.ExpiredCount++
		}
		stats.Bytes += len(e.data)
	}
	stats.LiveCount = stats.TotalCount - stats.ExpiredCount

	return stats
}

// Stats represents cache statistics
type Stats struct {
	TotalCount   int `json:"total_count"`
	LiveCount    int `json:"live_count"`
	ExpiredCount int `json:"expired_count"`
	Bytes        int `json:"bytes"`
}
