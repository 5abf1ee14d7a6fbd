package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-screener/internal/contracts"
	"github.com/wonny/aegis-screener/internal/indicators"
	"github.com/wonny/aegis-screener/internal/scoring"
	"github.com/wonny/aegis-screener/internal/series"
	"github.com/wonny/aegis-screener/pkg/logger"
)

func makeBars(closes []float64, volumes []float64) []contracts.Bar {
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]contracts.Bar, len(closes))
	for i, c := range closes {
		v := 1_000_000.0
		if volumes != nil {
			v = volumes[i]
		}
		bars[i] = contracts.Bar{Time: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: v}
	}
	return bars
}

// zigzag alternates up and down moves so RSI stays near the middle of its range
func zigzag(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)*0.1
		if i%2 == 1 {
			out[i] -= 0.5
		}
	}
	return out
}

func rising(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

type fixedSectors map[string]string

func (f fixedSectors) Sector(ctx context.Context, ticker string) string {
	if s, ok := f[ticker]; ok {
		return s
	}
	return "不明"
}

func newRunner(t *testing.T, mode contracts.Mode, src contracts.BarSource, opts Options) *Runner {
	t.Helper()

	calc, err := indicators.NewCalculator(indicators.ConfigForMode(mode), logger.Nop())
	require.NoError(t, err)
	engine, err := scoring.NewEngine(mode, scoring.DefaultThresholds())
	require.NoError(t, err)

	if opts.Workers == 0 {
		opts.Workers = 4
	}
	if opts.Lookback == 0 {
		opts.Lookback = 92 * 24 * time.Hour
	}

	r, err := NewRunner(src, calc, engine, fixedSectors{"AAPL": "情報技術"}, opts, logger.Nop())
	require.NoError(t, err)
	return r
}

func TestNewRunner_Validation(t *testing.T) {
	calc, _ := indicators.NewCalculator(indicators.OpportunityConfig(), logger.Nop())
	engine, _ := scoring.NewEngine(contracts.ModeOpportunity, scoring.DefaultThresholds())

	_, err := NewRunner(series.NewStaticSource(), calc, engine, nil, Options{Workers: 0, Lookback: time.Hour}, logger.Nop())
	var cfgErr contracts.InvalidConfigError
	assert.True(t, errors.As(err, &cfgErr))

	_, err = NewRunner(series.NewStaticSource(), calc, engine, nil, Options{Workers: 1}, logger.Nop())
	assert.True(t, errors.As(err, &cfgErr))
}

func TestNewRunner_RejectsDisabledScoredIndicator(t *testing.T) {
	cfg := indicators.MomentumConfig()
	cfg.MACDEnabled = false
	calc, err := indicators.NewCalculator(cfg, logger.Nop())
	require.NoError(t, err)
	engine, err := scoring.NewEngine(contracts.ModeMomentum, scoring.DefaultThresholds())
	require.NoError(t, err)

	_, err = NewRunner(series.NewStaticSource(), calc, engine, nil, Options{Workers: 1, Lookback: time.Hour}, logger.Nop())
	var cfgErr contracts.InvalidConfigError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.Equal(t, "macd_enabled", cfgErr.Field)
}

func TestRun_OutcomesInUniverseOrder(t *testing.T) {
	src := series.NewStaticSource()
	src.Bars["AAPL"] = makeBars(zigzag(40), nil)
	src.Bars["SHORT"] = makeBars(rising(10), nil)
	src.Errors["DOWN"] = errors.New("connection reset")
	src.Bars["MSFT"] = makeBars(rising(40), nil)

	r := newRunner(t, contracts.ModeOpportunity, src, Options{MinHistory: 0, Floor: 3})
	tickers := []string{"AAPL", "SHORT", "EMPTY", "DOWN", "MSFT"}

	outcomes, err := r.Run(context.Background(), tickers, nil)
	require.NoError(t, err)
	require.Len(t, outcomes, len(tickers))

	for i, o := range outcomes {
		assert.Equal(t, tickers[i], o.Ticker)
	}

	assert.Equal(t, contracts.OutcomeScored, outcomes[0].Status)
	assert.Equal(t, contracts.OutcomeSkipped, outcomes[1].Status)
	var ih contracts.InsufficientHistoryError
	require.True(t, errors.As(outcomes[1].Err, &ih))
	assert.Equal(t, 10, ih.Have)
	assert.Equal(t, 21, ih.Need)

	assert.Equal(t, contracts.OutcomeSkipped, outcomes[2].Status)
	assert.ErrorIs(t, outcomes[2].Err, contracts.ErrNoData)

	assert.Equal(t, contracts.OutcomeFailed, outcomes[3].Status)
	assert.Equal(t, "connection reset", outcomes[3].Reason)

	assert.Equal(t, contracts.OutcomeScored, outcomes[4].Status)
}

func TestRun_MinHistory(t *testing.T) {
	src := series.NewStaticSource()
	src.Bars["AAPL"] = makeBars(zigzag(25), nil)

	r := newRunner(t, contracts.ModeOpportunity, src, Options{MinHistory: 30})
	outcome := r.Analyze(context.Background(), "AAPL")

	assert.Equal(t, contracts.OutcomeSkipped, outcome.Status)
	var ih contracts.InsufficientHistoryError
	require.True(t, errors.As(outcome.Err, &ih))
	assert.Equal(t, 30, ih.Need)
}

func TestAnalyze_SectorOnlyForQualifying(t *testing.T) {
	src := series.NewStaticSource()
	// rising: SMA cross +2, RSI 100 outside band, flat volume, return ~5%+ → low score
	src.Bars["AAPL"] = makeBars(rising(40), nil)

	r := newRunner(t, contracts.ModeOpportunity, src, Options{Floor: 6})
	outcome := r.Analyze(context.Background(), "AAPL")
	require.Equal(t, contracts.OutcomeScored, outcome.Status)
	assert.Less(t, outcome.Result.Score.Total, 6)
	assert.Empty(t, outcome.Result.Sector)

	r = newRunner(t, contracts.ModeOpportunity, src, Options{Floor: 0})
	outcome = r.Analyze(context.Background(), "AAPL")
	assert.Equal(t, "情報技術", outcome.Result.Sector)
}

func TestAnalyze_KeepSeries(t *testing.T) {
	src := series.NewStaticSource()
	src.Bars["AAPL"] = makeBars(zigzag(40), nil)

	r := newRunner(t, contracts.ModeOpportunity, src, Options{})
	assert.Nil(t, r.Analyze(context.Background(), "AAPL").Series)

	r = newRunner(t, contracts.ModeOpportunity, src, Options{KeepSeries: true})
	outcome := r.Analyze(context.Background(), "AAPL")
	assert.Len(t, outcome.Series, 40)

	last, _ := contracts.Last(outcome.Series)
	assert.Equal(t, last, outcome.Result.Snapshot)
}

func TestAnalyze_UnorderedBarsFail(t *testing.T) {
	bars := makeBars(zigzag(40), nil)
	bars[5], bars[6] = bars[6], bars[5]

	src := series.NewStaticSource()
	src.Bars["AAPL"] = bars

	outcome := newRunner(t, contracts.ModeOpportunity, src, Options{}).Analyze(context.Background(), "AAPL")
	assert.Equal(t, contracts.OutcomeFailed, outcome.Status)
}

func TestAnalyze_FlatSeriesIsNotScorable(t *testing.T) {
	flat := make([]float64, 40)
	for i := range flat {
		flat[i] = 50
	}
	src := series.NewStaticSource()
	src.Bars["FLAT"] = makeBars(flat, nil)

	outcome := newRunner(t, contracts.ModeOpportunity, src, Options{}).Analyze(context.Background(), "FLAT")
	assert.Equal(t, contracts.OutcomeFailed, outcome.Status)
	var undef contracts.UndefinedIndicatorError
	require.True(t, errors.As(outcome.Err, &undef))
	assert.Equal(t, contracts.IndicatorRSI, undef.Indicator)
}

func TestRun_Momentum(t *testing.T) {
	src := series.NewStaticSource()
	src.Bars["NVDA"] = makeBars(rising(60), nil)
	src.Bars["SHORT"] = makeBars(rising(30), nil) // momentum needs 34

	r := newRunner(t, contracts.ModeMomentum, src, Options{})
	outcomes, err := r.Run(context.Background(), []string{"NVDA", "SHORT"}, nil)
	require.NoError(t, err)

	require.Equal(t, contracts.OutcomeScored, outcomes[0].Status)
	score := outcomes[0].Result.Score
	// a linear rise leaves MACD level with its signal, so only SMA and RSI are certain
	assert.GreaterOrEqual(t, score.Buy, 1, "sma fast above slow")
	assert.GreaterOrEqual(t, score.Sell, 1, "rsi 100 > 60")
	assert.LessOrEqual(t, score.Buy+score.Sell, 3)
	assert.Equal(t, "不明", outcomes[0].Result.Sector, "momentum resolves every scored ticker")

	assert.Equal(t, contracts.OutcomeSkipped, outcomes[1].Status)
}

func TestRun_Progress(t *testing.T) {
	src := series.NewStaticSource()
	tickers := []string{"A", "B", "C", "D", "E", "F"}
	for _, tk := range tickers {
		src.Bars[tk] = makeBars(zigzag(40), nil)
	}

	var mu sync.Mutex
	seen := map[string]bool{}
	lastDone := 0

	r := newRunner(t, contracts.ModeOpportunity, src, Options{Workers: 3})
	_, err := r.Run(context.Background(), tickers, func(done, total int, o contracts.TickerOutcome) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, len(tickers), total)
		assert.Equal(t, lastDone+1, done)
		lastDone = done
		seen[o.Ticker] = true
	})
	require.NoError(t, err)
	assert.Len(t, seen, len(tickers))
}

func TestRun_Cancelled(t *testing.T) {
	src := series.NewStaticSource()
	src.Bars["AAPL"] = makeBars(zigzag(40), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newRunner(t, contracts.ModeOpportunity, src, Options{})
	outcomes, err := r.Run(ctx, []string{"AAPL", "MSFT"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.Equal(t, contracts.OutcomeFailed, o.Status)
	}
}

func TestSeries(t *testing.T) {
	src := series.NewStaticSource()
	src.Bars["AAPL"] = makeBars(zigzag(40), nil)

	r := newRunner(t, contracts.ModeOpportunity, src, Options{})
	sets, err := r.Series(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Len(t, sets, 40)

	_, err = r.Series(context.Background(), "NONE")
	assert.True(t, contracts.IsSkip(err))
}
