package coingecko

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"tradepulse/internal/market"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// Discovery filters for DiscoverVolatile: small caps with real volume moving
// hard in either direction over the last 24h.
const (
	discoverMaxMarketCap = 500_000_000
	discoverMinVolume    = 100_000
	discoverMinChangePct = 5.0
	discoverLimit        = 10
)

// Source reads prices, OHLC history and market stats from the CoinGecko
// free-tier REST API.
type Source struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ market.Source = (*Source)(nil)

type Option func(*Source)

// WithBaseURL overrides the API endpoint, used by tests.
func WithBaseURL(u string) Option {
	return func(s *Source) { s.baseURL = u }
}

func New(apiKey string, opts ...Option) *Source {
	s := &Source{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) Name() string { return "coingecko" }

func (s *Source) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := s.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if s.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("fetching %s: HTTP status %d", path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

// CurrentPrice returns the spot USD price, or 0 with an error when the coin
// cannot be priced.
func (s *Source) CurrentPrice(ctx context.Context, coinID string) (float64, error) {
	params := url.Values{"ids": {coinID}, "vs_currencies": {"usd"}}
	body, err := s.get(ctx, "/simple/price", params)
	if err != nil {
		return 0, err
	}
	price := gjson.GetBytes(body, coinID+".usd")
	if !price.Exists() {
		return 0, fmt.Errorf("no price for %s", coinID)
	}
	return price.Float(), nil
}

// OHLC returns daily candles over the requested window.
func (s *Source) OHLC(ctx context.Context, coinID string, days int) ([]market.Candle, error) {
	if days <= 0 {
		days = 30
	}
	params := url.Values{"vs_currency": {"usd"}, "days": {fmt.Sprint(days)}}
	body, err := s.get(ctx, "/coins/"+coinID+"/ohlc", params)
	if err != nil {
		return nil, err
	}
	rows := gjson.ParseBytes(body).Array()
	out := make([]market.Candle, 0, len(rows))
	for _, row := range rows {
		cols := row.Array()
		if len(cols) < 5 {
			continue
		}
		out = append(out, market.Candle{
			Timestamp: cols[0].Int(),
			Open:      cols[1].Float(),
			High:      cols[2].Float(),
			Low:       cols[3].Float(),
			Close:     cols[4].Float(),
		})
	}
	return out, nil
}

// Snapshot returns name, volume and 24h change for one coin.
func (s *Source) Snapshot(ctx context.Context, coinID string) (market.Stats, error) {
	params := url.Values{"vs_currency": {"usd"}, "ids": {coinID}}
	body, err := s.get(ctx, "/coins/markets", params)
	if err != nil {
		return market.Stats{}, err
	}
	rows := gjson.ParseBytes(body).Array()
	if len(rows) == 0 {
		return market.Stats{}, fmt.Errorf("no market data for %s", coinID)
	}
	row := rows[0]
	stats := market.Stats{
		Name:         row.Get("name").String(),
		Volume24h:    row.Get("total_volume").Float(),
		MarketCap:    row.Get("market_cap").Float(),
		Change24hPct: row.Get("price_change_percentage_24h").Float(),
	}
	if stats.Name == "" {
		stats.Name = coinID
	}
	return stats, nil
}

// DiscoverVolatile scans the top-volume coins for small caps that moved at
// least 5% in the last 24h.
func (s *Source) DiscoverVolatile(ctx context.Context) ([]string, error) {
	params := url.Values{
		"vs_currency": {"usd"},
		"order":       {"volume_desc"},
		"per_page":    {"100"},
		"sparkline":   {"false"},
	}
	body, err := s.get(ctx, "/coins/markets", params)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, row := range gjson.ParseBytes(body).Array() {
		marketCap := row.Get("market_cap").Float()
		change := row.Get("price_change_percentage_24h").Float()
		volume := row.Get("total_volume").Float()
		if marketCap >= discoverMaxMarketCap || volume <= discoverMinVolume {
			continue
		}
		if change < discoverMinChangePct && change > -discoverMinChangePct {
			continue
		}
		out = append(out, row.Get("id").String())
		if len(out) >= discoverLimit {
			break
		}
	}
	return out, nil
}
