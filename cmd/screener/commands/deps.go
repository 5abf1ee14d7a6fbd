package commands

import (
	"context"
	"fmt"

	"github.com/wonny/aegis-screener/internal/brain"
	"github.com/wonny/aegis-screener/internal/cache"
	"github.com/wonny/aegis-screener/internal/contracts"
	"github.com/wonny/aegis-screener/internal/external/yahoo"
	"github.com/wonny/aegis-screener/internal/indicators"
	"github.com/wonny/aegis-screener/internal/pipeline"
	"github.com/wonny/aegis-screener/internal/scoring"
	"github.com/wonny/aegis-screener/internal/sector"
	"github.com/wonny/aegis-screener/internal/selection"
	"github.com/wonny/aegis-screener/internal/series"
	"github.com/wonny/aegis-screener/internal/strategyconfig"
	"github.com/wonny/aegis-screener/pkg/config"
	"github.com/wonny/aegis-screener/pkg/database"
	"github.com/wonny/aegis-screener/pkg/logger"
	"github.com/wonny/aegis-screener/pkg/redis"
)

const (
	sourceYahoo = "yahoo"
	sourceDB    = "db"
)

// app holds the process-wide dependencies shared by every command
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	strategy *strategyconfig.Config
	hash     string

	db     *database.DB  // nil unless DATABASE_URL is set
	redis  *redis.Client // disabled client unless REDIS_ENABLED
	cache  series.BarCache
	memory *cache.MemoryCache // set when Redis is disabled
	yahoo  *yahoo.Client
}

// newApp loads config, strategy and connections
func newApp(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load strategy
	path := cfg.StrategyFile
	if strategyFile != "" {
		path = strategyFile
	}
	strategy, err := strategyconfig.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}
	if modeFlag != "" {
		mode, err := contracts.ParseMode(modeFlag)
		if err != nil {
			return nil, err
		}
		if mode != strategy.Mode {
			strategy.Mode = mode
			strategy.Indicators = nil
		}
	}
	if err := strategyconfig.Validate(strategy); err != nil {
		return nil, fmt.Errorf("invalid strategy: %w", err)
	}
	for _, w := range strategyconfig.Warn(strategy) {
		log.WithFields(map[string]interface{}{
			"code": w.Code,
		}).Warn(w.Message)
	}
	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return nil, fmt.Errorf("hash strategy: %w", err)
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		strategy: strategy,
		hash:     hash,
	}

	// 4. Connect to database (optional)
	if cfg.Database.Enabled() {
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.db = db
		log.Info("Connected to database")
	}

	// 5. Connect to redis (optional)
	rc, err := redis.New(ctx, cfg)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.redis = rc
	if rc.Enabled() {
		a.cache = redis.NewCache(rc, "screener")
	} else {
		a.memory = cache.NewMemoryCache(log)
		a.cache = a.memory
	}

	// 6. Create Yahoo client
	httpClient, err := yahoo.NewHTTPClient(cfg.Yahoo, log)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("create http client: %w", err)
	}
	a.yahoo = yahoo.NewClient(httpClient, cfg.Yahoo, log)

	log.WithFields(map[string]interface{}{
		"strategy_id": strategy.Meta.StrategyID,
		"mode":        strategy.Mode,
		"tickers":     len(strategy.Universe.Tickers),
		"hash":        hash[:12],
		"database":    a.db != nil,
		"redis":       rc.Enabled(),
	}).Debug("Dependencies initialized")

	return a, nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}

// priceRepository returns the bar store, which requires DATABASE_URL
func (a *app) priceRepository() (*series.PriceRepository, error) {
	if a.db == nil {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	return series.NewPriceRepository(a.db.Pool), nil
}

// barSource returns the --source backend
func (a *app) barSource() (contracts.BarSource, error) {
	switch sourceFlag {
	case sourceYahoo:
		return series.NewCachedSource(a.yahoo, a.cache, a.cfg.Redis.CacheTTL, a.log), nil
	case sourceDB:
		repo, err := a.priceRepository()
		if err != nil {
			return nil, fmt.Errorf("--source db: %w", err)
		}
		return series.NewStoreSource(repo), nil
	default:
		return nil, fmt.Errorf("unknown source %q (valid: yahoo, db)", sourceFlag)
	}
}

// sectorResolver translates Yahoo profile sectors with the strategy dictionary
func (a *app) sectorResolver() *sector.Resolver {
	translator := sector.NewTranslator(a.strategy.Sectors.Names, a.strategy.Sectors.Unknown)
	return sector.NewResolver(a.yahoo, translator, a.cache, a.cfg.Redis.CacheTTL, a.log)
}

// orchestrator wires the pipeline for mode.
// The strategy's own mode uses its indicator windows; the other mode uses presets.
func (a *app) orchestrator(mode contracts.Mode, keepSeries bool) (*brain.Orchestrator, error) {
	source, err := a.barSource()
	if err != nil {
		return nil, err
	}

	indicatorCfg := indicators.ConfigForMode(mode)
	if mode == a.strategy.Mode {
		indicatorCfg = a.strategy.IndicatorConfig()
	}
	calc, err := indicators.NewCalculator(indicatorCfg, a.log)
	if err != nil {
		return nil, fmt.Errorf("create calculator: %w", err)
	}

	engine, err := scoring.NewEngine(mode, a.strategy.Scoring.Thresholds)
	if err != nil {
		return nil, fmt.Errorf("create scoring engine: %w", err)
	}

	floor := a.strategy.Scoring.Floor
	runner, err := pipeline.NewRunner(source, calc, engine, a.sectorResolver(), pipeline.Options{
		Lookback:   a.strategy.Universe.Lookback(),
		MinHistory: a.strategy.Universe.MinHistory,
		Workers:    a.cfg.Workers,
		Floor:      floor,
		KeepSeries: keepSeries,
	}, a.log)
	if err != nil {
		return nil, fmt.Errorf("create runner: %w", err)
	}

	return brain.NewOrchestrator(runner, selection.NewRanker(floor, a.log), a.log), nil
}

// runConfig returns the run template for the strategy universe
func (a *app) runConfig(topN int) brain.RunConfig {
	if topN <= 0 {
		topN = a.strategy.Chart.TopN
	}
	return brain.RunConfig{
		StrategyID: a.strategy.Meta.StrategyID,
		ConfigHash: a.hash,
		Tickers:    a.strategy.Universe.Tickers,
		TopN:       topN,
	}
}
