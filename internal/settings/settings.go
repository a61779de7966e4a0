package settings

import (
	"context"
	"strings"

	"tradepulse/internal/logger"
)

// Settings carries the trading tunables. They live in the document store so
// they can be changed without redeploying; Defaults() is the fallback whenever
// the store is unreachable or a field is missing.
type Settings struct {
	OrderAmountUSD float64  `json:"order_amount"`
	TakeProfitPct  float64  `json:"take_profit"`
	StopLossPct    float64  `json:"stop_loss"`
	CoinsToTrack   []string `json:"coins_to_track"`
	PromptTemplate string   `json:"prompt_template"`
	MinVolume24h   float64  `json:"min_volume_24h"`
}

const defaultPromptTemplate = "You are an aggressive crypto trader chasing volatile opportunities for quick marginal gains. " +
	"Analyze this OHLC data for {coin_name} over the last 30 days. Current price: ${current_price}.\n" +
	"Spot potential pumps, high volatility spikes, or momentum shifts—even if risky. Embrace hype if volume supports it; aim for 3-10% swings.\n" +
	"Decide: BUY (if any upside potential soon), SELL (only on clear downturn), or HOLD (only if flat).\n" +
	"Look at the data and decide immediately.\n" +
	"Respond ONLY with one word: BUY, SELL, or HOLD.\n" +
	"No explanation, no punctuation, nothing else."

// Defaults returns the built-in settings document.
func Defaults() Settings {
	return Settings{
		OrderAmountUSD: 50,
		TakeProfitPct:  15,
		StopLossPct:    8,
		CoinsToTrack:   []string{"bitcoin", "ethereum", "solana", "pepe", "bonk"},
		PromptTemplate: defaultPromptTemplate,
		MinVolume24h:   100000,
	}
}

// TakeProfitFraction converts the stored percent into a fraction.
func (s Settings) TakeProfitFraction() float64 { return s.TakeProfitPct / 100 }

// StopLossFraction converts the stored percent into a fraction.
func (s Settings) StopLossFraction() float64 { return s.StopLossPct / 100 }

// merge fills any zero-valued field from the defaults so a partially written
// settings document still yields a usable configuration.
func (s Settings) merge(def Settings) Settings {
	if s.OrderAmountUSD <= 0 {
		s.OrderAmountUSD = def.OrderAmountUSD
	}
	if s.TakeProfitPct <= 0 {
		s.TakeProfitPct = def.TakeProfitPct
	}
	if s.StopLossPct <= 0 {
		s.StopLossPct = def.StopLossPct
	}
	if len(s.CoinsToTrack) == 0 {
		s.CoinsToTrack = append([]string(nil), def.CoinsToTrack...)
	}
	if strings.TrimSpace(s.PromptTemplate) == "" {
		s.PromptTemplate = def.PromptTemplate
	}
	if s.MinVolume24h <= 0 {
		s.MinVolume24h = def.MinVolume24h
	}
	return s
}

// Loader is the subset of the document store the provider needs.
type Loader interface {
	LoadSettings(ctx context.Context) (Settings, error)
}

// Provider reads settings from the store, falling back to Defaults() when the
// store is unreachable. The degradation never propagates to callers.
type Provider struct {
	loader Loader
}

func NewProvider(loader Loader) *Provider {
	return &Provider{loader: loader}
}

// Get returns the effective settings for this cycle.
func (p *Provider) Get(ctx context.Context) Settings {
	def := Defaults()
	if p == nil || p.loader == nil {
		return def
	}
	loaded, err := p.loader.LoadSettings(ctx)
	if err != nil {
		logger.Warnf("settings: load failed, using defaults: %v", err)
		return def
	}
	return loaded.merge(def)
}
