package jobs

import (
	"context"

	"github.com/wonny/aegis-screener/internal/cache"
	"github.com/wonny/aegis-screener/pkg/logger"
)

// CacheCleanupJob drops expired entries from the in-process cache
type CacheCleanupJob struct {
	cache  *cache.MemoryCache
	logger *logger.Logger
}

// NewCacheCleanupJob creates a new cache cleanup job
func NewCacheCleanupJob(c *cache.MemoryCache, log *logger.Logger) *CacheCleanupJob {
	return &CacheCleanupJob{
		cache:  c,
		logger: log,
	}
}

// Name returns the job name
func (j *CacheCleanupJob) Name() string {
	return "cache_cleanup"
}

// Schedule returns the cron schedule (every 15 minutes)
func (j *CacheCleanupJob) Schedule() string {
	return "0 */15 * * * *"
}

// Run executes the cache cleanup
func (j *CacheCleanupJob) Run(ctx context.Context) error {
	removed := j.cache.CleanExpired()
	j.logger.WithFields(map[string]interface{}{
		"removed":   removed,
		"remaining": j.cache.Len(),
	}).Debug("Cache cleanup completed")
	return nil
}
