package yahoo

import (
	"github.com/wonny/aegis-screener/pkg/config"
	"github.com/wonny/aegis-screener/pkg/httputil"
	"github.com/wonny/aegis-screener/pkg/logger"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// Client handles communication with Yahoo Finance
// ⭐ SSOT: Yahoo Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	chartURL   string
	profileURL string
}

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, cfg config.YahooConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		chartURL:   cfg.ChartURL,
		profileURL: cfg.ProfileURL,
	}
}

// NewHTTPClient builds the rate-limited, retrying transport Yahoo needs
func NewHTTPClient(cfg config.YahooConfig, log *logger.Logger) (*httputil.Client, error) {
	return httputil.New(log, cfg.Timeout).
		WithRateLimit(cfg.RequestsPerSecond).
		WithHeader("User-Agent", userAgent).
		WithProxy(cfg.Proxy)
}
