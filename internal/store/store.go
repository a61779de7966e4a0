package store

import (
	"context"

	"tradepulse/internal/settings"
	"tradepulse/internal/trader"
)

// Store is the full persistence surface: portfolio and settings documents in
// the gorm-backed document store, trade and equity audit rows in the
// append-only log store.
type Store interface {
	LoadPortfolio(ctx context.Context) (*trader.Portfolio, error)
	SavePortfolio(ctx context.Context, p *trader.Portfolio) error
	LoadSettings(ctx context.Context) (settings.Settings, error)

	AppendTrade(ctx context.Context, rec trader.TradeRecord) error
	AppendEquity(ctx context.Context, pt trader.EquityPoint) error
	ListTrades(ctx context.Context, limit int) ([]trader.TradeRecord, error)
	ListEquity(ctx context.Context, limit int) ([]trader.EquityPoint, error)

	Close() error
}

// Docs is the document half of Store.
type Docs interface {
	LoadPortfolio(ctx context.Context) (*trader.Portfolio, error)
	SavePortfolio(ctx context.Context, p *trader.Portfolio) error
	LoadSettings(ctx context.Context) (settings.Settings, error)
	Close() error
}

// Logs is the append-only half of Store.
type Logs interface {
	AppendTrade(ctx context.Context, rec trader.TradeRecord) error
	AppendEquity(ctx context.Context, pt trader.EquityPoint) error
	ListTrades(ctx context.Context, limit int) ([]trader.TradeRecord, error)
	ListEquity(ctx context.Context, limit int) ([]trader.EquityPoint, error)
	Close() error
}

// Combined stitches the two halves into one Store.
type Combined struct {
	Docs Docs
	Logs Logs
}

var _ Store = (*Combined)(nil)

func NewCombined(docs Docs, logs Logs) *Combined {
	return &Combined{Docs: docs, Logs: logs}
}

func (c *Combined) LoadPortfolio(ctx context.Context) (*trader.Portfolio, error) {
	return c.Docs.LoadPortfolio(ctx)
}

func (c *Combined) SavePortfolio(ctx context.Context, p *trader.Portfolio) error {
	return c.Docs.SavePortfolio(ctx, p)
}

func (c *Combined) LoadSettings(ctx context.Context) (settings.Settings, error) {
	return c.Docs.LoadSettings(ctx)
}

func (c *Combined) AppendTrade(ctx context.Context, rec trader.TradeRecord) error {
	return c.Logs.AppendTrade(ctx, rec)
}

func (c *Combined) AppendEquity(ctx context.Context, pt trader.EquityPoint) error {
	return c.Logs.AppendEquity(ctx, pt)
}

func (c *Combined) ListTrades(ctx context.Context, limit int) ([]trader.TradeRecord, error) {
	return c.Logs.ListTrades(ctx, limit)
}

func (c *Combined) ListEquity(ctx context.Context, limit int) ([]trader.EquityPoint, error) {
	return c.Logs.ListEquity(ctx, limit)
}

func (c *Combined) Close() error {
	var first error
	if c.Docs != nil {
		if err := c.Docs.Close(); err != nil {
			first = err
		}
	}
	if c.Logs != nil {
		if err := c.Logs.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
