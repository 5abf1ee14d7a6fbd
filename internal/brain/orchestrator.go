package brain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/aegis-screener/internal/contracts"
	"github.com/wonny/aegis-screener/internal/pipeline"
	"github.com/wonny/aegis-screener/internal/selection"
	"github.com/wonny/aegis-screener/pkg/logger"
)

// Orchestrator coordinates one screening run: pipeline → ranking → chart selection
// ⭐ SSOT: 스크리닝 실행 조율은 여기서만
type Orchestrator struct {
	runner *pipeline.Runner
	ranker *selection.Ranker
	logger *logger.Logger
}

// RunConfig holds configuration for a screening run
type RunConfig struct {
	RunID      string
	StrategyID string
	ConfigHash string
	Tickers    []string
	TopN       int // charts per ranking
}

// RunResult holds the results of a complete screening run
type RunResult struct {
	RunID      string                                    `json:"run_id"`
	StrategyID string                                    `json:"strategy_id"`
	ConfigHash string                                    `json:"config_hash"`
	Mode       contracts.Mode                            `json:"mode"`
	StartedAt  time.Time                                 `json:"started_at"`
	Duration   time.Duration                             `json:"duration"`
	Outcomes   []contracts.TickerOutcome                 `json:"outcomes"`
	Rankings   map[selection.OrderKey]*selection.Ranking `json:"rankings"`
	Charts     map[string][]contracts.IndicatorSet       `json:"-"`
	ChartOrder []string                                  `json:"chart_order"`
	Cancelled  bool                                      `json:"cancelled"`
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(runner *pipeline.Runner, ranker *selection.Ranker, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		runner: runner,
		ranker: ranker,
		logger: log,
	}
}

// Mode returns the scoring mode of the underlying pipeline
func (o *Orchestrator) Mode() contracts.Mode {
	return o.runner.Mode()
}

// Run executes the pipeline over every ticker and ranks the outcomes.
// A cancelled run still ranks whatever completed and sets Cancelled.
func (o *Orchestrator) Run(ctx context.Context, config RunConfig, progress pipeline.ProgressFunc) (*RunResult, error) {
	startTime := time.Now()
	if config.RunID == "" {
		config.RunID = GenerateRunID()
	}

	result := &RunResult{
		RunID:      config.RunID,
		StrategyID: config.StrategyID,
		ConfigHash: config.ConfigHash,
		Mode:       o.runner.Mode(),
		StartedAt:  startTime,
		Charts:     make(map[string][]contracts.IndicatorSet),
		ChartOrder: []string{},
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":      config.RunID,
		"strategy_id": config.StrategyID,
		"mode":        result.Mode,
		"tickers":     len(config.Tickers),
		"top_n":       config.TopN,
	}).Info("Starting screening run")

	outcomes, err := o.runner.Run(ctx, config.Tickers, progress)
	if err != nil {
		result.Cancelled = true
		o.logger.WithError(err).Warn("Screening run interrupted, ranking completed tickers")
	}
	result.Outcomes = outcomes

	rankings, rankErr := o.ranker.RankAll(result.Mode, outcomes)
	if rankErr != nil {
		return result, fmt.Errorf("ranking failed: %w", rankErr)
	}
	result.Rankings = rankings

	o.selectCharts(result, config.TopN)
	result.Duration = time.Since(startTime)

	o.logger.WithFields(map[string]interface{}{
		"run_id":   config.RunID,
		"duration": result.Duration.String(),
		"charts":   len(result.ChartOrder),
	}).Info("Screening run completed")

	return result, err
}

// selectCharts keeps the indicator series of the top N of every ranking, in ranking order
func (o *Orchestrator) selectCharts(result *RunResult, topN int) {
	series := make(map[string][]contracts.IndicatorSet, len(result.Outcomes))
	for _, outcome := range result.Outcomes {
		if outcome.Series != nil {
			series[outcome.Ticker] = outcome.Series
		}
	}

	for _, key := range selection.KeysForMode(result.Mode) {
		ranking, ok := result.Rankings[key]
		if !ok {
			continue
		}
		for _, entry := range ranking.Top(topN) {
			if _, dup := result.Charts[entry.Ticker]; dup {
				continue
			}
			s, ok := series[entry.Ticker]
			if !ok {
				continue
			}
			result.Charts[entry.Ticker] = s
			result.ChartOrder = append(result.ChartOrder, entry.Ticker)
		}
	}
}

// Chart returns the indicator series for any single ticker
func (o *Orchestrator) Chart(ctx context.Context, ticker string) ([]contracts.IndicatorSet, error) {
	return o.runner.Series(ctx, ticker)
}

// GenerateRunID returns a sortable, collision-free run identifier
func GenerateRunID() string {
	return fmt.Sprintf("run_%s_%s", time.Now().UTC().Format("20060102_150405"), uuid.NewString()[:8])
}
