package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/aegis-screener/internal/series"
	"github.com/wonny/aegis-screener/pkg/logger"
)

// BarSyncJob refreshes the Postgres bar store from the market data provider
type BarSyncJob struct {
	syncer   *series.Syncer
	tickers  []string
	lookback time.Duration
	schedule string
	logger   *logger.Logger
}

// NewBarSyncJob creates a new bar sync job
func NewBarSyncJob(syncer *series.Syncer, tickers []string, lookback time.Duration, schedule string, log *logger.Logger) *BarSyncJob {
	return &BarSyncJob{
		syncer:   syncer,
		tickers:  tickers,
		lookback: lookback,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *BarSyncJob) Name() string {
	return "bar_sync"
}

// Schedule returns the cron schedule (with seconds)
func (j *BarSyncJob) Schedule() string {
	return j.schedule
}

// Run syncs every ticker; it fails only when no ticker could be synced
func (j *BarSyncJob) Run(ctx context.Context) error {
	result, err := j.syncer.Sync(ctx, j.tickers, j.lookback)
	if err != nil {
		return fmt.Errorf("bar sync: %w", err)
	}

	if result.Tickers > 0 && len(result.Failed) == result.Tickers {
		return fmt.Errorf("bar sync: all %d tickers failed", result.Tickers)
	}

	if len(result.Failed) > 0 {
		j.logger.WithField("failed", result.Failed).Warn("Bar sync partially failed")
	}
	return nil
}
