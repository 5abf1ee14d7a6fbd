package jobs

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/wonny/aegis-screener/internal/brain"
	"github.com/wonny/aegis-screener/internal/export"
	"github.com/wonny/aegis-screener/internal/selection"
	"github.com/wonny/aegis-screener/pkg/logger"
)

// ScreenJob runs the screener on a schedule and exports the selected charts
// ⭐ SSOT: 정기 스크리닝은 이 Job에서만
type ScreenJob struct {
	orchestrator *brain.Orchestrator
	run          brain.RunConfig
	schedule     string
	exportDir    string
	writer       export.Writer // nil disables chart export
	logger       *logger.Logger

	mu   sync.RWMutex
	last *brain.RunResult
}

// NewScreenJob creates a new screening job
func NewScreenJob(
	o *brain.Orchestrator,
	run brain.RunConfig,
	schedule string,
	exportDir string,
	writer export.Writer,
	log *logger.Logger,
) *ScreenJob {
	return &ScreenJob{
		orchestrator: o,
		run:          run,
		schedule:     schedule,
		exportDir:    exportDir,
		writer:       writer,
		logger:       log,
	}
}

// Name returns the job name
func (j *ScreenJob) Name() string {
	return "screen_" + string(j.orchestrator.Mode())
}

// Schedule returns the cron schedule (with seconds)
func (j *ScreenJob) Schedule() string {
	return j.schedule
}

// Run executes one screening pass.
// Each run gets a fresh RunID, so exports land in their own directory.
func (j *ScreenJob) Run(ctx context.Context) error {
	result, err := j.orchestrator.Run(ctx, j.run, nil)
	if err != nil {
		return fmt.Errorf("screening run: %w", err)
	}

	j.mu.Lock()
	j.last = result
	j.mu.Unlock()

	for _, key := range selection.KeysForMode(result.Mode) {
		ranking, ok := result.Rankings[key]
		if !ok {
			continue
		}
		for _, entry := range ranking.Top(j.run.TopN) {
			j.logger.WithFields(map[string]interface{}{
				"order":  key,
				"rank":   entry.Rank,
				"ticker": entry.Ticker,
				"sector": entry.Sector,
				"score":  entry.Score,
			}).Info("Top ticker")
		}
	}

	if j.writer == nil {
		return nil
	}

	dir := filepath.Join(j.exportDir, result.RunID)
	for _, ticker := range result.ChartOrder {
		path, err := export.WriteFile(dir, ticker, result.Charts[ticker], j.writer)
		if err != nil {
			return fmt.Errorf("export %s: %w", ticker, err)
		}
		j.logger.WithFields(map[string]interface{}{
			"ticker": ticker,
			"path":   path,
		}).Debug("Chart exported")
	}

	return nil
}

// LastResult returns the most recent successful run, or nil
func (j *ScreenJob) LastResult() *brain.RunResult {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.last
}
