package trader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tradepulse/internal/logger"
	"tradepulse/internal/settings"
)

// FeeRate is the simulated transaction cost, applied on exit only.
const FeeRate = 0.01

// netGainExitPct closes any position whose net-of-fee gain reaches this
// percentage, independent of the configured take-profit threshold.
const netGainExitPct = 5.0

var (
	// ErrInsufficientFunds signals a buy larger than the available balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrAlreadyHolding signals a buy for a coin with an open position.
	ErrAlreadyHolding = errors.New("position already open")
	// ErrNoPosition signals a sell for a coin without an open position.
	ErrNoPosition = errors.New("no open position")
)

// Store is the persistence surface the engine writes through. Writes are
// fire-and-forget: a failure is logged and the in-memory state stands.
type Store interface {
	LoadPortfolio(ctx context.Context) (*Portfolio, error)
	SavePortfolio(ctx context.Context, p *Portfolio) error
	AppendTrade(ctx context.Context, rec TradeRecord) error
	AppendEquity(ctx context.Context, pt EquityPoint) error
}

// Engine owns the in-memory portfolio for one evaluation cycle: it executes
// simulated buy/sell transitions, evaluates exit conditions, and emits audit
// records. It is not safe for concurrent use; the orchestrator runs cycles
// one at a time.
type Engine struct {
	store     Store
	cfg       settings.Settings
	portfolio *Portfolio

	nowFn func() time.Time
	idFn  func() string
}

// NewEngine loads the portfolio from the store. An unreachable store degrades
// to a fresh in-memory portfolio rather than failing the cycle.
func NewEngine(ctx context.Context, store Store, cfg settings.Settings) *Engine {
	e := &Engine{
		store: store,
		cfg:   cfg,
		nowFn: time.Now,
		idFn:  uuid.NewString,
	}
	e.portfolio = e.loadPortfolio(ctx)
	return e
}

func (e *Engine) loadPortfolio(ctx context.Context) *Portfolio {
	if e.store == nil {
		return NewPortfolio()
	}
	p, err := e.store.LoadPortfolio(ctx)
	if err != nil {
		logger.Warnf("engine: portfolio load failed, starting from defaults: %v", err)
		return NewPortfolio()
	}
	if p.Holdings == nil {
		p.Holdings = make(map[string]Position)
	}
	return p
}

// Portfolio exposes the engine's live portfolio state.
func (e *Engine) Portfolio() *Portfolio { return e.portfolio }

// OpenPosition executes a simulated buy of the configured order amount.
// currentPrice must be strictly positive; callers filter out zero prices
// before invoking.
func (e *Engine) OpenPosition(ctx context.Context, coinID string, currentPrice float64, reason string) error {
	if _, held := e.portfolio.Holdings[coinID]; held {
		return fmt.Errorf("buy %s: %w", coinID, ErrAlreadyHolding)
	}
	if e.portfolio.BalanceUSD < e.cfg.OrderAmountUSD {
		return fmt.Errorf("buy %s: %w", coinID, ErrInsufficientFunds)
	}

	quantity := e.cfg.OrderAmountUSD / currentPrice
	e.portfolio.Holdings[coinID] = Position{
		Quantity:   quantity,
		EntryPrice: currentPrice,
		CostUSD:    e.cfg.OrderAmountUSD,
	}
	e.portfolio.BalanceUSD -= e.cfg.OrderAmountUSD

	e.persist(ctx)
	logger.Infof("simulated BUY: %v of %s at $%v", quantity, coinID, currentPrice)
	e.appendTrade(ctx, TradeRecord{
		ID:         e.idFn(),
		Timestamp:  e.nowFn(),
		Action:     ActionBuy,
		Coin:       coinID,
		Price:      currentPrice,
		Quantity:   formatQuantity(quantity),
		Reason:     reason,
		BalanceUSD: e.portfolio.BalanceUSD,
		TotalValue: e.TotalValue(),
	})
	return nil
}

// ClosePosition executes a simulated sell of the entire position, crediting
// the net proceeds after the exit fee.
func (e *Engine) ClosePosition(ctx context.Context, coinID string, currentPrice float64, reason string) error {
	holding, held := e.portfolio.Holdings[coinID]
	if !held {
		return fmt.Errorf("sell %s: %w", coinID, ErrNoPosition)
	}

	grossProceeds := holding.Quantity * currentPrice
	netProceeds := grossProceeds * (1 - FeeRate)
	realizedPnL := netProceeds - holding.CostUSD

	e.portfolio.BalanceUSD += netProceeds
	delete(e.portfolio.Holdings, coinID)

	e.persist(ctx)
	logger.Infof("simulated SELL: %s for $%.2f (%s, P/L: $%.2f)", coinID, netProceeds, reason, realizedPnL)
	e.appendTrade(ctx, TradeRecord{
		ID:         e.idFn(),
		Timestamp:  e.nowFn(),
		Action:     ActionSell,
		Coin:       coinID,
		Price:      currentPrice,
		Quantity:   QuantityAll,
		PnL:        &realizedPnL,
		Reason:     reason,
		BalanceUSD: e.portfolio.BalanceUSD,
		TotalValue: e.TotalValue(),
	})
	return nil
}

// CoinPerformance returns the percent gain of a held position if it were sold
// at currentPrice, net of the exit fee. Returns 0 when no position is held or
// the recorded cost basis is zero.
func (e *Engine) CoinPerformance(coinID string, currentPrice float64) float64 {
	holding, held := e.portfolio.Holdings[coinID]
	if !held {
		return 0
	}
	if holding.CostUSD == 0 {
		return 0
	}
	netValue := holding.Quantity * currentPrice * (1 - FeeRate)
	return ((netValue - holding.CostUSD) / holding.CostUSD) * 100
}

// CheckSellConditions evaluates the exit rules in fixed priority order and
// returns the reason of the first rule that matches:
//
//  1. net-of-fee gain at or above 5%
//  2. fixed take-profit on the raw price
//  3. fixed stop-loss on the raw price
func (e *Engine) CheckSellConditions(coinID string, currentPrice float64) (string, bool) {
	holding, held := e.portfolio.Holdings[coinID]
	if !held {
		return "", false
	}

	gainPct := e.CoinPerformance(coinID, currentPrice)
	if decimalGTE(gainPct, netGainExitPct) {
		return fmt.Sprintf("profit taking (%.2f%% net gain after fees)", gainPct), true
	}
	if decimalGTE(currentPrice, holding.EntryPrice*(1+e.cfg.TakeProfitFraction())) {
		return fmt.Sprintf("take profit (fixed %.0f%%)", e.cfg.TakeProfitPct), true
	}
	if decimalLTE(currentPrice, holding.EntryPrice*(1-e.cfg.StopLossFraction())) {
		return fmt.Sprintf("stop loss (fixed %.0f%%)", e.cfg.StopLossPct), true
	}
	return "", false
}

// PortfolioPerformance aggregates cost basis and fee-adjusted net value across
// all holdings. A coin missing from currentPrices is valued at its entry
// price, treating it as unchanged rather than failing the aggregate.
func (e *Engine) PortfolioPerformance(currentPrices map[string]float64) (totalCost, totalNetValue, gainPct float64) {
	if len(e.portfolio.Holdings) == 0 {
		return 0, 0, 0
	}
	for coinID, holding := range e.portfolio.Holdings {
		price := currentPrices[coinID]
		if price == 0 {
			price = holding.EntryPrice
		}
		totalCost += holding.CostUSD
		totalNetValue += holding.Quantity * price * (1 - FeeRate)
	}
	if totalCost > 0 {
		gainPct = ((totalNetValue - totalCost) / totalCost) * 100
	}
	return totalCost, totalNetValue, gainPct
}

// CloseAllPositions sells every held coin that has a usable price. Coins with
// a missing or non-positive price stay held and are logged.
func (e *Engine) CloseAllPositions(ctx context.Context, currentPrices map[string]float64) {
	held := e.portfolio.HeldCoins()
	logger.Infof("closing all %d positions...", len(held))
	for _, coinID := range held {
		price := currentPrices[coinID]
		if price <= 0 {
			logger.Warnf("could not sell %s: price missing", coinID)
			continue
		}
		if err := e.ClosePosition(ctx, coinID, price, "portfolio take profit"); err != nil {
			logger.Warnf("could not sell %s: %v", coinID, err)
		}
	}
}

// TotalValue returns cash plus holdings valued at their entry price. This is
// a book-value figure, not mark-to-market; the equity log is built on it.
func (e *Engine) TotalValue() float64 {
	total := e.portfolio.BalanceUSD
	for _, holding := range e.portfolio.Holdings {
		total += holding.Quantity * holding.EntryPrice
	}
	return total
}

// RecordEquityPoint appends one equity snapshot, rounded to cents.
func (e *Engine) RecordEquityPoint(ctx context.Context) {
	if e.store == nil {
		return
	}
	pt := EquityPoint{
		ID:            e.idFn(),
		Timestamp:     e.nowFn(),
		TotalValue:    round2(e.TotalValue()),
		BalanceUSD:    round2(e.portfolio.BalanceUSD),
		HoldingsCount: len(e.portfolio.Holdings),
	}
	if err := e.store.AppendEquity(ctx, pt); err != nil {
		logger.Warnf("engine: equity append failed: %v", err)
	}
}

func (e *Engine) persist(ctx context.Context) {
	if e.store == nil {
		return
	}
	if err := e.store.SavePortfolio(ctx, e.portfolio); err != nil {
		logger.Warnf("engine: portfolio save failed: %v", err)
	}
}

func (e *Engine) appendTrade(ctx context.Context, rec TradeRecord) {
	if e.store == nil {
		return
	}
	if err := e.store.AppendTrade(ctx, rec); err != nil {
		logger.Warnf("engine: trade append failed: %v", err)
	}
}
