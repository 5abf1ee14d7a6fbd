package strategyconfig

import (
	"time"

	"github.com/wonny/aegis-screener/internal/contracts"
	"github.com/wonny/aegis-screener/internal/indicators"
	"github.com/wonny/aegis-screener/internal/scoring"
)

// Config는 스크리닝 전략의 전체 설정
type Config struct {
	Meta       Meta               `yaml:"meta" json:"meta"`
	Mode       contracts.Mode     `yaml:"mode" json:"mode"`
	Universe   Universe           `yaml:"universe" json:"universe"`
	Indicators *indicators.Config `yaml:"indicators,omitempty" json:"indicators,omitempty"` // nil → mode preset
	Scoring    Scoring            `yaml:"scoring" json:"scoring"`
	Chart      Chart              `yaml:"chart" json:"chart"`
	Sectors    Sectors            `yaml:"sectors" json:"sectors"`
	Schedule   Schedule           `yaml:"schedule" json:"schedule"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Universe 대상 종목과 조회 기간
type Universe struct {
	Tickers      []string `yaml:"tickers" json:"tickers"`
	LookbackDays int      `yaml:"lookback_days" json:"lookback_days"` // calendar days
	MinHistory   int      `yaml:"min_history" json:"min_history"`     // bars; fewer → skipped
}

// Lookback returns the fetch window as a duration
func (u Universe) Lookback() time.Duration {
	return time.Duration(u.LookbackDays) * 24 * time.Hour
}

// Scoring 점수 기준
type Scoring struct {
	Floor      int                `yaml:"floor" json:"floor"` // opportunity mode only
	Thresholds scoring.Thresholds `yaml:"thresholds" json:"thresholds"`
}

// Chart 상위 종목 차트
type Chart struct {
	TopN int `yaml:"top_n" json:"top_n"` // 1..5
}

// Sectors 섹터명 번역
type Sectors struct {
	Names   map[string]string `yaml:"names" json:"names"`     // provider name → display name
	Unknown string            `yaml:"unknown" json:"unknown"` // lookup failure
}

// Schedule 정기 실행
type Schedule struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Cron     string `yaml:"cron" json:"cron"` // with seconds field
	Timezone string `yaml:"timezone" json:"timezone"`
}

// IndicatorConfig returns the explicit indicator windows or the preset for Mode
func (c *Config) IndicatorConfig() indicators.Config {
	if c.Indicators != nil {
		return *c.Indicators
	}
	return indicators.ConfigForMode(c.Mode)
}

// DefaultTickers is the default 26-name US growth universe
var DefaultTickers = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "META",
	"NVDA", "AMD", "INTC", "TSM", "ASML",
	"TSLA", "NFLX", "ADBE", "CRM", "ORCL",
	"PYPL", "SQ", "COIN", "SOFI",
	"SHOP", "UBER", "ABNB", "DASH",
	"PLTR", "SNOW", "RBLX",
}

// DefaultSectorNames translates Yahoo sector names to Japanese
func DefaultSectorNames() map[string]string {
	return map[string]string{
		"Technology":             "情報技術",
		"Consumer Cyclical":      "一般消費財",
		"Consumer Defensive":     "生活必需品",
		"Healthcare":             "ヘルスケア",
		"Financial Services":     "金融",
		"Communication Services": "通信サービス",
		"Industrials":            "資本財",
		"Energy":                 "エネルギー",
		"Utilities":              "公益事業",
		"Real Estate":            "不動産",
		"Basic Materials":        "素材",
	}
}

// Default returns the built-in opportunity screen
func Default() *Config {
	tickers := make([]string, len(DefaultTickers))
	copy(tickers, DefaultTickers)

	return &Config{
		Meta: Meta{
			StrategyID: "us_short_term",
			Version:    "1.0.0",
		},
		Mode: contracts.ModeOpportunity,
		Universe: Universe{
			Tickers:      tickers,
			LookbackDays: 92, // ~3 months
			MinHistory:   30,
		},
		Scoring: Scoring{
			Floor:      3,
			Thresholds: scoring.DefaultThresholds(),
		},
		Chart: Chart{TopN: 3},
		Sectors: Sectors{
			Names:   DefaultSectorNames(),
			Unknown: "不明",
		},
		Schedule: Schedule{
			Enabled:  false,
			Cron:     "0 30 16 * * 1-5",
			Timezone: "America/New_York",
		},
	}
}
