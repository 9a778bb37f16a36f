// Package coingecko implements domain.MarketSource against the CoinGecko v3 REST API.
package coingecko

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"crypto_dash/internal/domain"
)

const (
	DefaultBaseURL  = "https://api.coingecko.com/api/v3"
	DefaultCurrency = "usd"
	DefaultPerPage  = 50
	DefaultTimeout  = 10 * time.Second

	// apiKeyParam carries the demo API key on every request.
	apiKeyParam = "x_cg_demo_api_key"
)

// Options configures a Client. Zero values fall back to the defaults above.
type Options struct {
	BaseURL    string
	APIKey     string
	VsCurrency string
	PerPage    int
	Timeout    time.Duration
	RetryCount int
	UserAgent  string
}

// Client fetches market data from CoinGecko
type Client struct {
	http     *resty.Client
	apiKey   string
	currency string
	perPage  int
}

// NewClient creates a new CoinGecko client
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.VsCurrency == "" {
		opts.VsCurrency = DefaultCurrency
	}
	if opts.PerPage <= 0 {
		opts.PerPage = DefaultPerPage
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	httpClient := resty.New().
		SetTransport(&http.Transport{
			Proxy: http.ProxyFromEnvironment,
		}).
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetHeader("Accept", "application/json")
	if opts.UserAgent != "" {
		httpClient.SetHeader("User-Agent", opts.UserAgent)
	}

	return &Client{
		http:     httpClient,
		apiKey:   opts.APIKey,
		currency: opts.VsCurrency,
		perPage:  opts.PerPage,
	}
}

// FetchMarkets returns page 1 of the markets listing, market-cap descending.
func (c *Client) FetchMarkets(ctx context.Context) ([]domain.CoinRecord, error) {
	params := map[string]string{
		"vs_currency":             c.currency,
		"order":                   "market_cap_desc",
		"per_page":                strconv.Itoa(c.perPage),
		"page":                    "1",
		"price_change_percentage": "24h",
		"sparkline":               "false",
		"locale":                  "en",
	}

	var coins []domain.CoinRecord
	if err := c.get(ctx, "markets", "/coins/markets", nil, params, &coins); err != nil {
		return nil, err
	}
	return coins, nil
}

// FetchCoinDetail returns the detail object of a single coin.
func (c *Client) FetchCoinDetail(ctx context.Context, id string) (*domain.CoinDetail, error) {
	if id == "" {
		return nil, domain.ErrEmptyCoinID
	}

	params := map[string]string{
		"localization":   "false",
		"tickers":        "false",
		"market_data":    "true",
		"community_data": "false",
		"developer_data": "false",
		"sparkline":      "false",
	}

	var detail domain.CoinDetail
	if err := c.get(ctx, "coin detail", "/coins/{id}", map[string]string{"id": id}, params, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FetchMarketChart returns the price history of a coin over the last days.
func (c *Client) FetchMarketChart(ctx context.Context, id string, days int) ([]domain.PricePoint, error) {
	if id == "" {
		return nil, domain.ErrEmptyCoinID
	}

	params := map[string]string{
		"vs_currency": c.currency,
		"days":        strconv.Itoa(days),
	}

	var chart marketChartResponse
	if err := c.get(ctx, "market chart", "/coins/{id}/market_chart", map[string]string{"id": id}, params, &chart); err != nil {
		return nil, err
	}
	return chart.toPoints(), nil
}

// get issues a GET and decodes the JSON body into out. Every failure is
// reported as a *domain.FetchError.
func (c *Client) get(ctx context.Context, op, path string, pathParams, query map[string]string, out any) error {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParams(query)
	if c.apiKey != "" {
		req.SetQueryParam(apiKeyParam, c.apiKey)
	}
	if len(pathParams) > 0 {
		req.SetPathParams(pathParams)
	}

	resp, err := req.Get(path)
	if err != nil {
		return domain.NewFetchError(op, err)
	}

	if !resp.IsSuccess() {
		return domain.NewStatusError(op, resp.StatusCode())
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return domain.NewFetchError(op, err)
	}
	return nil
}
