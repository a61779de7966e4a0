package app

import (
	"fmt"
	"strings"

	"tradepulse/internal/config"
	"tradepulse/internal/logger"
	"tradepulse/internal/market"
	"tradepulse/internal/market/binance"
	"tradepulse/internal/market/coingecko"
)

// buildMarketSource picks the market data implementation from config.
func buildMarketSource(cfg config.MarketConfig) (market.Source, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Source)) {
	case "", "coingecko":
		if cfg.APIKey == "" {
			logger.Infof("market: coingecko source without API key (free tier limits apply)")
		}
		return coingecko.New(cfg.APIKey), nil
	case "binance":
		return binance.New(cfg.APIKey, ""), nil
	default:
		return nil, fmt.Errorf("unknown market source %q", cfg.Source)
	}
}
