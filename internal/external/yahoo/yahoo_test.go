package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-screener/internal/contracts"
	"github.com/wonny/aegis-screener/pkg/config"
	"github.com/wonny/aegis-screener/pkg/logger"
)

// 2025-01-02 and 2025-01-03 14:30 UTC (09:30 New York), plus a duplicate and a null row
const chartFixture = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "AAPL", "gmtoffset": -18000},
      "timestamp": [1735911000, 1735828200, 1735997400, 1735911000],
      "indicators": {
        "quote": [{
          "open":   [101.0, 100.0, null, 102.0],
          "high":   [103.0, 102.0, 104.0, 104.0],
          "low":    [100.0, 99.0, 101.0, 101.0],
          "close":  [102.0, 101.0, 103.0, 103.0],
          "volume": [2000, 1000, 3000, 2500]
        }],
        "adjclose": [{"adjclose": [102.0, 50.5, 103.0, 103.0]}]
      }
    }],
    "error": null
  }
}`

func TestParseChart(t *testing.T) {
	bars, err := parseChart([]byte(chartFixture))
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), bars[0].Time)
	assert.Equal(t, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), bars[1].Time)

	// adjclose/close = 0.5 scales the whole first bar
	assert.InDelta(t, 50.0, bars[0].Open, 1e-9)
	assert.InDelta(t, 51.0, bars[0].High, 1e-9)
	assert.InDelta(t, 50.5, bars[0].Close, 1e-9)
	assert.Equal(t, 1000.0, bars[0].Volume)

	// duplicate timestamp keeps the later row
	assert.Equal(t, 102.0, bars[1].Open)
	assert.Equal(t, 2500.0, bars[1].Volume)
}

func TestParseChart_Errors(t *testing.T) {
	_, err := parseChart([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	assert.ErrorIs(t, err, contracts.ErrNoData)

	_, err = parseChart([]byte(`{"chart":{"result":[],"error":null}}`))
	assert.ErrorIs(t, err, contracts.ErrNoData)

	_, err = parseChart([]byte(`{"chart":{"result":null,"error":{"code":"Bad Request","description":"Invalid input"}}}`))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, contracts.ErrNoData)

	_, err = parseChart([]byte(`<html>`))
	assert.Error(t, err)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.YahooConfig{
		ChartURL:          server.URL + "/v8/finance/chart",
		ProfileURL:        server.URL + "/quote",
		RequestsPerSecond: 100,
		Timeout:           time.Second,
	}
	httpClient, err := NewHTTPClient(cfg, logger.Nop())
	require.NoError(t, err)
	httpClient.WithRetry(1, time.Millisecond)

	return NewClient(httpClient, cfg, logger.Nop())
}

func TestFetch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.NotEmpty(t, r.URL.Query().Get("period1"))
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		w.Write([]byte(chartFixture))
	})

	bars, err := client.Fetch(context.Background(), "AAPL", 92*24*time.Hour)
	require.NoError(t, err)
	assert.Len(t, bars, 2)
}

func TestFetch_NotFoundIsNoData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"delisted"}}}`))
	})

	_, err := client.Fetch(context.Background(), "SQ", time.Hour)
	assert.ErrorIs(t, err, contracts.ErrNoData)
	assert.True(t, contracts.IsSkip(err))
}

func TestFetch_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Fetch(context.Background(), "AAPL", time.Hour)
	assert.Error(t, err)
	assert.False(t, contracts.IsSkip(err))
}

func TestParseSector(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "definition list",
			html: `<section><dl><div><dt>Sector:</dt><dd><a href="/sectors/technology">Technology</a></dd></div><div><dt>Industry:</dt><dd>Consumer Electronics</dd></div></dl></section>`,
			want: "Technology",
		},
		{
			name: "labelled spans",
			html: `<p><span>Sector(s)</span>: <span class="Fw(600)">Communication Services</span><br/><span>Industry</span>: <span class="Fw(600)">Internet Content</span></p>`,
			want: "Communication Services",
		},
		{
			name: "no sector",
			html: `<html><body><h1>ETF</h1></body></html>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSector([]byte(tt.html))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetchSector(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/NVDA/profile") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`<dl><dt>Sector:</dt><dd>Technology</dd></dl>`))
	})

	sector, err := client.FetchSector(context.Background(), "NVDA")
	require.NoError(t, err)
	assert.Equal(t, "Technology", sector)

	_, err = client.FetchSector(context.Background(), "MISSING")
	assert.Error(t, err)
}
