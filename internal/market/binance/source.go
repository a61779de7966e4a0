package binance

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/adshao/go-binance/v2"

	"tradepulse/internal/market"
)

// Discovery filters mirror the CoinGecko source, minus the market-cap bound
// which the ticker endpoint cannot provide.
const (
	discoverMinQuoteVolume = 100_000
	discoverMinChangePct   = 5.0
	discoverLimit          = 10
)

// knownSymbols maps the default tracked coin IDs onto Binance spot symbols.
// Anything else falls back to UPPER(id)+USDT.
var knownSymbols = map[string]string{
	"bitcoin":  "BTCUSDT",
	"ethereum": "ETHUSDT",
	"solana":   "SOLUSDT",
	"pepe":     "PEPEUSDT",
	"bonk":     "BONKUSDT",
	"dogecoin": "DOGEUSDT",
}

// Source implements market.Source on the Binance spot API. Asset IDs produced
// by DiscoverVolatile are raw exchange symbols; they stay opaque downstream.
type Source struct {
	client *binance.Client
}

var _ market.Source = (*Source)(nil)

func New(apiKey, secretKey string) *Source {
	return &Source{client: binance.NewClient(apiKey, secretKey)}
}

func (s *Source) Name() string { return "binance" }

func symbolFor(coinID string) string {
	if sym, ok := knownSymbols[strings.ToLower(strings.TrimSpace(coinID))]; ok {
		return sym
	}
	sym := strings.ToUpper(strings.TrimSpace(coinID))
	if !strings.HasSuffix(sym, "USDT") {
		sym += "USDT"
	}
	return sym
}

func (s *Source) CurrentPrice(ctx context.Context, coinID string) (float64, error) {
	prices, err := s.client.NewListPricesService().Symbol(symbolFor(coinID)).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetching price for %s: %w", coinID, err)
	}
	if len(prices) == 0 {
		return 0, fmt.Errorf("no price for %s", coinID)
	}
	price, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing price for %s: %w", coinID, err)
	}
	return price, nil
}

func (s *Source) OHLC(ctx context.Context, coinID string, days int) ([]market.Candle, error) {
	if days <= 0 {
		days = 30
	}
	kls, err := s.client.NewKlinesService().
		Symbol(symbolFor(coinID)).
		Interval("1d").
		Limit(days).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching klines for %s: %w", coinID, err)
	}
	out := make([]market.Candle, 0, len(kls))
	for _, k := range kls {
		open, _ := strconv.ParseFloat(k.Open, 64)
		high, _ := strconv.ParseFloat(k.High, 64)
		low, _ := strconv.ParseFloat(k.Low, 64)
		closePx, _ := strconv.ParseFloat(k.Close, 64)
		out = append(out, market.Candle{
			Timestamp: k.OpenTime,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePx,
		})
	}
	return out, nil
}

func (s *Source) Snapshot(ctx context.Context, coinID string) (market.Stats, error) {
	sym := symbolFor(coinID)
	stats, err := s.client.NewListPriceChangeStatsService().Symbol(sym).Do(ctx)
	if err != nil {
		return market.Stats{}, fmt.Errorf("fetching stats for %s: %w", coinID, err)
	}
	if len(stats) == 0 {
		return market.Stats{}, fmt.Errorf("no market data for %s", coinID)
	}
	st := stats[0]
	volume, _ := strconv.ParseFloat(st.QuoteVolume, 64)
	change, _ := strconv.ParseFloat(st.PriceChangePercent, 64)
	return market.Stats{
		Name:         sym,
		Volume24h:    volume,
		Change24hPct: change,
	}, nil
}

func (s *Source) DiscoverVolatile(ctx context.Context) ([]string, error) {
	stats, err := s.client.NewListPriceChangeStatsService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching ticker stats: %w", err)
	}
	type mover struct {
		symbol string
		volume float64
	}
	var movers []mover
	for _, st := range stats {
		if !strings.HasSuffix(st.Symbol, "USDT") {
			continue
		}
		volume, _ := strconv.ParseFloat(st.QuoteVolume, 64)
		change, _ := strconv.ParseFloat(st.PriceChangePercent, 64)
		if volume <= discoverMinQuoteVolume {
			continue
		}
		if change < discoverMinChangePct && change > -discoverMinChangePct {
			continue
		}
		movers = append(movers, mover{symbol: st.Symbol, volume: volume})
	}
	sort.Slice(movers, func(i, j int) bool { return movers[i].volume > movers[j].volume })
	if len(movers) > discoverLimit {
		movers = movers[:discoverLimit]
	}
	out := make([]string, 0, len(movers))
	for _, m := range movers {
		out = append(out, m.symbol)
	}
	return out, nil
}
