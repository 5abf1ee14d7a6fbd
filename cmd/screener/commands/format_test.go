package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"

	"github.com/wonny/aegis-screener/internal/brain"
	"github.com/wonny/aegis-screener/internal/contracts"
	"github.com/wonny/aegis-screener/internal/selection"
)

func TestFormatOne(t *testing.T) {
	assert.Equal(t, "-", formatOne(null.Float{}))
	assert.Equal(t, "55.0", formatOne(null.FloatFrom(55)))
	assert.Equal(t, "42.4", formatOne(null.FloatFrom(42.35)))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "-", formatPercent(null.Float{}))
	assert.Equal(t, "+5.0%", formatPercent(null.FloatFrom(5)))
	assert.Equal(t, "-2.3%", formatPercent(null.FloatFrom(-2.3)))
	assert.Equal(t, "0.0%", formatPercent(null.FloatFrom(0)))
}

func sampleRanking() *selection.Ranking {
	return &selection.Ranking{
		Key:   selection.OrderOpportunity,
		Floor: 3,
		Entries: []selection.Entry{
			{Rank: 1, Ticker: "NVDA", Sector: "情報技術", Score: 6, RSI: null.FloatFrom(55.2), ReturnN: null.FloatFrom(3.1)},
			{Rank: 2, Ticker: "UBER", Sector: "資本財", Score: 4, RSI: null.FloatFrom(48), ReturnN: null.FloatFrom(-1.4)},
		},
		Excluded: []selection.Exclusion{{Ticker: "SQ", Status: contracts.OutcomeSkipped, Reason: "no data returned"}},
		Stats:    selection.Stats{Total: 3, Scored: 2, Ranked: 2, Skipped: 1},
	}
}

func TestRenderRanking(t *testing.T) {
	out := RenderRanking(sampleRanking(), 0)

	assert.Contains(t, out, "TICKER")
	assert.Contains(t, out, "NVDA")
	assert.Contains(t, out, "情報技術")
	assert.Contains(t, out, "+3.1%")
	assert.Contains(t, out, "-1.4%")

	limited := RenderRanking(sampleRanking(), 1)
	assert.Contains(t, limited, "NVDA")
	assert.NotContains(t, limited, "UBER")
}

func TestPrintResult(t *testing.T) {
	result := &brain.RunResult{
		RunID:      "20250102T213000Z",
		StrategyID: "us_short_term",
		Mode:       contracts.ModeOpportunity,
		Duration:   1500 * time.Millisecond,
		Rankings:   map[selection.OrderKey]*selection.Ranking{selection.OrderOpportunity: sampleRanking()},
	}

	var buf bytes.Buffer
	printResult(&buf, result, 3)
	out := buf.String()

	assert.Contains(t, out, "20250102T213000Z")
	assert.Contains(t, out, "Opportunities")
	assert.Contains(t, out, "skipped 1")
	assert.Contains(t, out, "SQ skipped: no data returned")
}
