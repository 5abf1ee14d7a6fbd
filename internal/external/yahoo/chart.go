package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/wonny/aegis-screener/internal/contracts"
	"github.com/wonny/aegis-screener/internal/series"
	"github.com/wonny/aegis-screener/pkg/httputil"
)

// chartResponse mirrors /v8/finance/chart; every quote value may be null
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		GMTOffset int64  `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// Fetch implements contracts.BarSource over the daily chart endpoint
func (c *Client) Fetch(ctx context.Context, ticker string, lookback time.Duration) ([]contracts.Bar, error) {
	now := time.Now()
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("period1", strconv.FormatInt(now.Add(-lookback).Unix(), 10))
	params.Set("period2", strconv.FormatInt(now.Unix(), 10))
	params.Set("events", "div,splits")

	fullURL := fmt.Sprintf("%s/%s?%s", c.chartURL, url.PathEscape(ticker), params.Encode())

	body, err := c.httpClient.GetBody(ctx, fullURL)
	if err != nil {
		var statusErr *httputil.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%s: %w", ticker, contracts.ErrNoData)
		}
		return nil, fmt.Errorf("fetch chart for %s: %w", ticker, err)
	}

	bars, err := parseChart(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ticker, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"count":  len(bars),
	}).Debug("Fetched bars")

	return bars, nil
}

// parseChart converts a chart payload into adjusted, sorted, deduplicated bars.
// Rows with any null OHLC value are dropped.
func parseChart(body []byte) ([]contracts.Bar, error) {
	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}

	if resp.Chart.Error != nil {
		if resp.Chart.Error.Code == "Not Found" {
			return nil, contracts.ErrNoData
		}
		return nil, fmt.Errorf("chart error %s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, contracts.ErrNoData
	}

	result := resp.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	at := func(values []*float64, i int) (float64, bool) {
		if i >= len(values) || values[i] == nil {
			return 0, false
		}
		return *values[i], true
	}

	bars := make([]contracts.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o, ok1 := at(quote.Open, i)
		h, ok2 := at(quote.High, i)
		l, ok3 := at(quote.Low, i)
		cl, ok4 := at(quote.Close, i)
		if !(ok1 && ok2 && ok3 && ok4) {
			continue
		}
		v, _ := at(quote.Volume, i)

		// Split/dividend adjustment scales every price by adjclose/close
		if a, ok := at(adj, i); ok && cl != 0 {
			ratio := a / cl
			o, h, l, cl = o*ratio, h*ratio, l*ratio, a
		}

		// Exchange-local trading date at UTC midnight
		local := time.Unix(ts+result.Meta.GMTOffset, 0).UTC()
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)

		bars = append(bars, contracts.Bar{Time: day, Open: o, High: h, Low: l, Close: cl, Volume: v})
	}

	if len(bars) == 0 {
		return nil, contracts.ErrNoData
	}
	return series.Normalize(bars), nil
}
