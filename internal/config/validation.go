package config

import (
	"fmt"
	"strings"
)

func validate(c *Config) error {
	if err := c.Cycle.validate(); err != nil {
		return err
	}
	if err := c.Market.validate(); err != nil {
		return err
	}
	if err := c.Oracle.validate(); err != nil {
		return err
	}
	return nil
}

func (c *CycleConfig) validate() error {
	if c.IntervalMinutes < 1 {
		return fmt.Errorf("cycle.interval_minutes must be >= 1")
	}
	return nil
}

func (m *MarketConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(m.Source)) {
	case "coingecko", "binance":
		return nil
	default:
		return fmt.Errorf("market.source must be coingecko or binance, got %q", m.Source)
	}
}

func (o *OracleConfig) validate() error {
	if strings.TrimSpace(o.Model) == "" {
		return fmt.Errorf("oracle.model cannot be empty")
	}
	if o.TimeoutSeconds < 1 {
		return fmt.Errorf("oracle.timeout_seconds must be >= 1")
	}
	if o.MaxRetries < 0 {
		return fmt.Errorf("oracle.max_retries must be >= 0")
	}
	return nil
}
