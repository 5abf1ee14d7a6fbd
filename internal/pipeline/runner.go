package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/aegis-screener/internal/contracts"
	"github.com/wonny/aegis-screener/internal/indicators"
	"github.com/wonny/aegis-screener/internal/scoring"
	"github.com/wonny/aegis-screener/internal/series"
	"github.com/wonny/aegis-screener/pkg/logger"
)

// Options tune one batch run
type Options struct {
	Lookback   time.Duration
	MinHistory int  // bars; shorter series are skipped before computing
	Workers    int  // concurrent tickers
	Floor      int  // opportunity mode: sectors are resolved only at or above it
	KeepSeries bool // attach the full IndicatorSet series to scored outcomes
}

// ProgressFunc observes each finished ticker; calls are serialized
type ProgressFunc func(done, total int, outcome contracts.TickerOutcome)

// Runner fans the per-ticker fetch → compute → score pipeline out over a worker pool
// ⭐ SSOT: 종목별 파이프라인은 여기서만
type Runner struct {
	source  contracts.BarSource
	calc    *indicators.Calculator
	engine  *scoring.Engine
	sectors contracts.SectorResolver
	opts    Options
	logger  *logger.Logger
}

// NewRunner creates a runner; sectors may be nil
func NewRunner(
	source contracts.BarSource,
	calc *indicators.Calculator,
	engine *scoring.Engine,
	sectors contracts.SectorResolver,
	opts Options,
	log *logger.Logger,
) (*Runner, error) {
	if opts.Workers <= 0 {
		return nil, contracts.InvalidConfigError{Field: "workers", Message: fmt.Sprintf("must be > 0, got %d", opts.Workers)}
	}
	if opts.Lookback <= 0 {
		return nil, contracts.InvalidConfigError{Field: "lookback", Message: "must be > 0"}
	}

	for _, name := range engine.Requires() {
		if !calc.Config().Provides(name) {
			return nil, contracts.InvalidConfigError{
				Field:   indicators.Switch(name),
				Message: fmt.Sprintf("%s mode scores %s; must be enabled", engine.Mode(), name),
			}
		}
	}

	return &Runner{
		source:  source,
		calc:    calc,
		engine:  engine,
		sectors: sectors,
		opts:    opts,
		logger:  log,
	}, nil
}

// Mode returns the scoring mode of the engine
func (r *Runner) Mode() contracts.Mode {
	return r.engine.Mode()
}

// Run analyzes every ticker and returns outcomes in universe order.
// Cancellation stops launching tickers; unlaunched ones are reported as failed.
func (r *Runner) Run(ctx context.Context, tickers []string, progress ProgressFunc) ([]contracts.TickerOutcome, error) {
	start := time.Now()
	outcomes := make([]contracts.TickerOutcome, len(tickers))
	launched := make([]bool, len(tickers))

	var mu sync.Mutex
	done := 0

	g := new(errgroup.Group)
	g.SetLimit(r.opts.Workers)

	for i, ticker := range tickers {
		if ctx.Err() != nil {
			break
		}
		launched[i] = true

		g.Go(func() error {
			outcome := r.Analyze(ctx, ticker)
			outcomes[i] = outcome

			if progress != nil {
				mu.Lock()
				done++
				progress(done, len(tickers), outcome)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, ticker := range tickers {
		if !launched[i] {
			outcomes[i] = failed(ticker, ctx.Err())
		}
	}

	counts := map[contracts.OutcomeStatus]int{}
	for _, o := range outcomes {
		counts[o.Status]++
	}
	r.logger.WithFields(map[string]interface{}{
		"mode":     r.engine.Mode(),
		"tickers":  len(tickers),
		"scored":   counts[contracts.OutcomeScored],
		"skipped":  counts[contracts.OutcomeSkipped],
		"failed":   counts[contracts.OutcomeFailed],
		"duration": time.Since(start).String(),
	}).Info("Pipeline run completed")

	return outcomes, ctx.Err()
}

// Analyze runs the pipeline for one ticker and never returns an error:
// every failure is folded into the outcome's Status.
func (r *Runner) Analyze(ctx context.Context, ticker string) contracts.TickerOutcome {
	sets, err := r.compute(ctx, ticker)
	if err != nil {
		return r.classify(ticker, err)
	}

	last, _ := contracts.Last(sets)
	score, err := r.engine.Score(last)
	if err != nil {
		return r.classify(ticker, err)
	}

	result := &contracts.ScoreResult{
		Ticker:   ticker,
		Mode:     r.engine.Mode(),
		Snapshot: last,
		Score:    score,
	}
	if r.sectors != nil && r.qualifies(score) {
		result.Sector = r.sectors.Sector(ctx, ticker)
	}

	outcome := contracts.TickerOutcome{
		Ticker: ticker,
		Status: contracts.OutcomeScored,
		Result: result,
	}
	if r.opts.KeepSeries {
		outcome.Series = sets
	}
	return outcome
}

// Series returns the full indicator series for one ticker, for charting
func (r *Runner) Series(ctx context.Context, ticker string) ([]contracts.IndicatorSet, error) {
	return r.compute(ctx, ticker)
}

func (r *Runner) compute(ctx context.Context, ticker string) ([]contracts.IndicatorSet, error) {
	bars, err := r.source.Fetch(ctx, ticker, r.opts.Lookback)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, contracts.ErrNoData
	}

	s, err := series.NewSeries(ticker, bars)
	if err != nil {
		return nil, err
	}

	if s.Len() < r.opts.MinHistory {
		return nil, contracts.InsufficientHistoryError{Have: s.Len(), Need: r.opts.MinHistory}
	}

	return r.calc.Calculate(ticker, s.Bars())
}

func (r *Runner) qualifies(score contracts.Score) bool {
	if r.engine.Mode() == contracts.ModeOpportunity {
		return score.Total >= r.opts.Floor
	}
	return true
}

func (r *Runner) classify(ticker string, err error) contracts.TickerOutcome {
	if contracts.IsSkip(err) {
		r.logger.WithFields(map[string]interface{}{
			"ticker": ticker,
			"reason": err.Error(),
		}).Warn("Ticker skipped")

		return contracts.TickerOutcome{
			Ticker: ticker,
			Status: contracts.OutcomeSkipped,
			Err:    err,
			Reason: err.Error(),
		}
	}

	level := r.logger.WithError(err).WithField("ticker", ticker)
	var undef contracts.UndefinedIndicatorError
	if errors.As(err, &undef) {
		level.Warn("Ticker not scorable")
	} else {
		level.Error("Ticker failed")
	}
	return failed(ticker, err)
}

func failed(ticker string, err error) contracts.TickerOutcome {
	return contracts.TickerOutcome{
		Ticker: ticker,
		Status: contracts.OutcomeFailed,
		Err:    err,
		Reason: err.Error(),
	}
}
