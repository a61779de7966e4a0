package market

import (
	"context"
	"fmt"
	"strings"
)

// Candle is one OHLC bar.
type Candle struct {
	Timestamp int64   `json:"ts"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
}

// Stats is the aggregate market snapshot for one coin.
type Stats struct {
	Name         string  `json:"name"`
	Volume24h    float64 `json:"total_volume"`
	MarketCap    float64 `json:"market_cap"`
	Change24hPct float64 `json:"price_change_percentage_24h"`
}

// Source supplies market data for the trading cycle. Implementations degrade
// on upstream failures: a zero price or empty slice with an error, never a
// panic. The orchestrator skips coins it cannot price.
type Source interface {
	Name() string
	CurrentPrice(ctx context.Context, coinID string) (float64, error)
	OHLC(ctx context.Context, coinID string, days int) ([]Candle, error)
	Snapshot(ctx context.Context, coinID string) (Stats, error)
	DiscoverVolatile(ctx context.Context) ([]string, error)
}

// FormatCandles renders the tail of a candle series the way it is embedded
// into the oracle prompt.
func FormatCandles(candles []Candle, tail int) string {
	if tail > 0 && len(candles) > tail {
		candles = candles[len(candles)-tail:]
	}
	parts := make([]string, 0, len(candles))
	for _, c := range candles {
		parts = append(parts, fmt.Sprintf("[%d, %g, %g, %g, %g]", c.Timestamp, c.Open, c.High, c.Low, c.Close))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
