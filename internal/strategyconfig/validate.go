package strategyconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // schedule.timezone must resolve on hosts without zoneinfo

	"github.com/robfig/cron/v3"

	"github.com/wonny/aegis-screener/internal/contracts"
	"github.com/wonny/aegis-screener/internal/indicators"
	"github.com/wonny/aegis-screener/internal/scoring"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// CronParser accepts six-field specs (with seconds) and descriptors like @daily
var CronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// === Mode ===
	if _, err := contracts.ParseMode(string(cfg.Mode)); err != nil {
		return ValidationError{"mode", "must be opportunity or momentum"}
	}

	// === Universe ===
	if len(cfg.Universe.Tickers) == 0 {
		return ValidationError{"universe.tickers", "must not be empty"}
	}
	seen := make(map[string]bool, len(cfg.Universe.Tickers))
	for _, t := range cfg.Universe.Tickers {
		if strings.TrimSpace(t) == "" {
			return ValidationError{"universe.tickers", "blank ticker"}
		}
		if seen[t] {
			return ValidationError{"universe.tickers", fmt.Sprintf("duplicate ticker %s", t)}
		}
		seen[t] = true
	}
	if cfg.Universe.LookbackDays <= 0 {
		return ValidationError{"universe.lookback_days", "must be > 0"}
	}
	if cfg.Universe.MinHistory < 0 {
		return ValidationError{"universe.min_history", "must be >= 0"}
	}

	// === Indicators ===
	if err := cfg.IndicatorConfig().Validate(); err != nil {
		var ic contracts.InvalidConfigError
		if errors.As(err, &ic) {
			return ValidationError{"indicators." + ic.Field, ic.Message}
		}
		return ValidationError{"indicators", err.Error()}
	}

	// === Scoring ===
	if cfg.Scoring.Floor < 0 || cfg.Scoring.Floor > 6 {
		return ValidationError{"scoring.floor", "must be in [0, 6]"}
	}
	if err := cfg.Scoring.Thresholds.Validate(); err != nil {
		var ic contracts.InvalidConfigError
		if errors.As(err, &ic) {
			return ValidationError{"scoring." + ic.Field, ic.Message}
		}
		return ValidationError{"scoring.thresholds", err.Error()}
	}

	// === Mode ↔ Indicators ===
	engine, err := scoring.NewEngine(cfg.Mode, cfg.Scoring.Thresholds)
	if err != nil {
		return ValidationError{"mode", err.Error()}
	}
	ic := cfg.IndicatorConfig()
	for _, name := range engine.Requires() {
		if !ic.Provides(name) {
			flag := indicators.Switch(name)
			return ValidationError{"indicators." + flag, fmt.Sprintf("%s mode scores %s; must be true", cfg.Mode, name)}
		}
	}

	// === Chart ===
	if cfg.Chart.TopN < 1 || cfg.Chart.TopN > 5 {
		return ValidationError{"chart.top_n", "must be in [1, 5]"}
	}

	// === Sectors ===
	if cfg.Sectors.Unknown == "" {
		return ValidationError{"sectors.unknown", "required"}
	}

	// === Schedule ===
	if cfg.Schedule.Enabled {
		if _, err := CronParser.Parse(cfg.Schedule.Cron); err != nil {
			return ValidationError{"schedule.cron", err.Error()}
		}
		if _, err := time.LoadLocation(cfg.Schedule.Timezone); err != nil {
			return ValidationError{"schedule.timezone", err.Error()}
		}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// 거래일 ≈ 달력일 × 5/7
	tradingDays := cfg.Universe.LookbackDays * 5 / 7
	need := cfg.IndicatorConfig().RequiredBars()
	if cfg.Universe.MinHistory > need {
		need = cfg.Universe.MinHistory
	}
	if tradingDays < need {
		warnings = append(warnings, Warning{
			Code:    "SHORT_LOOKBACK",
			Message: fmt.Sprintf("lookback of %d days yields ~%d bars, fewer than the %d required; most tickers will be skipped", cfg.Universe.LookbackDays, tradingDays, need),
		})
	}

	if cfg.Mode == contracts.ModeMomentum && cfg.Scoring.Floor > 0 {
		warnings = append(warnings, Warning{
			Code:    "FLOOR_IGNORED",
			Message: "scoring.floor has no effect in momentum mode",
		})
	}

	if len(cfg.Sectors.Names) == 0 {
		warnings = append(warnings, Warning{
			Code:    "NO_SECTOR_NAMES",
			Message: "sector names will be shown untranslated",
		})
	}

	return warnings
}
