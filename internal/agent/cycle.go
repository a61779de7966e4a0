package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"tradepulse/internal/analysis/indicator"
	"tradepulse/internal/logger"
	"tradepulse/internal/market"
	"tradepulse/internal/oracle"
	"tradepulse/internal/prompt"
	"tradepulse/internal/settings"
	"tradepulse/internal/store"
	"tradepulse/internal/trader"
)

// ohlcDays is the candle window fetched per coin and referenced by the
// default prompt text.
const ohlcDays = 30

// promptCandleTail caps how many candles go into the prompt.
const promptCandleTail = 5

// ErrNoPromptTemplate aborts a cycle when neither the settings document nor
// the local fallback file yields a template.
var ErrNoPromptTemplate = errors.New("no prompt template available")

// Service runs the trading cycle: discover and merge tracked coins, gather
// market data, query the oracle, and drive the engine. Overlapping triggers
// collapse into one run through the single-flight group; the engine itself
// has no locking.
type Service struct {
	store    store.Store
	settings *settings.Provider
	source   market.Source
	oracle   oracle.Client
	prompts  *prompt.Manager

	group singleflight.Group
}

func NewService(st store.Store, prov *settings.Provider, src market.Source, orc oracle.Client, prompts *prompt.Manager) *Service {
	return &Service{
		store:    st,
		settings: prov,
		source:   src,
		oracle:   orc,
		prompts:  prompts,
	}
}

// CycleSummary reports what one cycle did.
type CycleSummary struct {
	StartedAt  time.Time
	Duration   time.Duration
	Evaluated  int
	Skipped    int
	Buys       int
	Sells      int
	Holds      int
	BalanceUSD float64
	TotalValue float64
	Holdings   []string
}

// RunCycle executes one trading cycle. Concurrent callers share a single
// execution keyed on the portfolio identifier.
func (s *Service) RunCycle(ctx context.Context) (CycleSummary, error) {
	v, err, _ := s.group.Do(trader.DefaultPortfolioID, func() (any, error) {
		return s.runCycle(ctx)
	})
	if err != nil {
		return CycleSummary{}, err
	}
	return v.(CycleSummary), nil
}

func (s *Service) runCycle(ctx context.Context) (CycleSummary, error) {
	start := time.Now()
	logger.Infof("starting trading cycle...")

	cfg := s.settings.Get(ctx)
	engine := trader.NewEngine(ctx, s.store, cfg)

	tracked := append([]string(nil), cfg.CoinsToTrack...)
	volatile, err := s.source.DiscoverVolatile(ctx)
	if err != nil {
		logger.Warnf("volatile coin discovery failed: %v", err)
	} else if len(volatile) > 0 {
		logger.Infof("top volatile coins discovered: %v", volatile)
	}
	tracked = mergeCoins(tracked, volatile)

	held := engine.Portfolio().HeldCoins()
	tracked = mergeCoins(tracked, held)

	logger.Infof("current USD balance: $%.2f", engine.Portfolio().BalanceUSD)
	logger.Infof("current holdings: %v", held)
	s.logPortfolioStatus(ctx, engine, held)

	template := strings.TrimSpace(cfg.PromptTemplate)
	if template == "" {
		template = s.prompts.Template()
		if template == "" {
			logger.Errorf("prompt template not found in settings or local file")
			return CycleSummary{}, ErrNoPromptTemplate
		}
		logger.Infof("using local prompt template fallback")
	}

	logger.Infof("tracking %d coins: %v", len(tracked), tracked)

	sum := CycleSummary{StartedAt: start}
	for _, coinID := range tracked {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		s.processCoin(ctx, engine, cfg, template, coinID, &sum)
	}

	engine.RecordEquityPoint(ctx)

	sum.BalanceUSD = engine.Portfolio().BalanceUSD
	sum.TotalValue = engine.TotalValue()
	sum.Holdings = engine.Portfolio().HeldCoins()
	sum.Duration = time.Since(start)
	logger.Infof("trading cycle completed in %s: %d evaluated, %d skipped, %d buys, %d sells, balance $%.2f, total value $%.2f",
		sum.Duration.Round(time.Millisecond), sum.Evaluated, sum.Skipped, sum.Buys, sum.Sells, sum.BalanceUSD, sum.TotalValue)
	return sum, nil
}

// processCoin handles one coin; any failure skips the coin and the cycle
// moves on.
func (s *Service) processCoin(ctx context.Context, engine *trader.Engine, cfg settings.Settings, template, coinID string, sum *CycleSummary) {
	stats, err := s.source.Snapshot(ctx, coinID)
	if err != nil {
		logger.Warnf("skipping %s: no market data: %v", coinID, err)
		sum.Skipped++
		return
	}
	if stats.Volume24h < cfg.MinVolume24h {
		logger.Infof("skipping %s: low volume (%.0f)", coinID, stats.Volume24h)
		sum.Skipped++
		return
	}

	candles, err := s.source.OHLC(ctx, coinID, ohlcDays)
	if err != nil || len(candles) == 0 {
		logger.Warnf("skipping %s: no OHLC data: %v", coinID, err)
		sum.Skipped++
		return
	}

	price, err := s.source.CurrentPrice(ctx, coinID)
	if err != nil || price <= 0 {
		logger.Warnf("skipping %s: invalid price: %v", coinID, err)
		sum.Skipped++
		return
	}

	coinName := stats.Name
	if coinName == "" {
		coinName = coinID
	}

	text := prompt.Render(template, coinName, price)
	text += fmt.Sprintf("\nOHLC data (last %d daily candles): %s", promptCandleTail, market.FormatCandles(candles, promptCandleTail))
	if snap, ok := indicator.Compute(candles); ok {
		text += "\n" + snap.PromptLine()
	}

	signal := s.oracle.Signal(ctx, text)
	logger.Infof("signal for %s: %s", coinID, signal)

	sum.Evaluated++

	// exit rules outrank the signal for held positions
	if reason, ok := engine.CheckSellConditions(coinID, price); ok {
		if err := engine.ClosePosition(ctx, coinID, price, reason); err != nil {
			logger.Errorf("error processing %s: %v", coinID, err)
			return
		}
		sum.Sells++
		return
	}

	switch signal {
	case oracle.SignalBuy:
		err := engine.OpenPosition(ctx, coinID, price, "AI signal")
		switch {
		case err == nil:
			sum.Buys++
		case errors.Is(err, trader.ErrAlreadyHolding):
			logger.Infof("HOLD for %s: already holding a position", coinID)
			sum.Holds++
		case errors.Is(err, trader.ErrInsufficientFunds):
			logger.Infof("HOLD for %s: insufficient funds", coinID)
			sum.Holds++
		default:
			logger.Errorf("error processing %s: %v", coinID, err)
		}
	case oracle.SignalSell:
		err := engine.ClosePosition(ctx, coinID, price, "AI signal")
		switch {
		case err == nil:
			sum.Sells++
		case errors.Is(err, trader.ErrNoPosition):
			logger.Infof("HOLD for %s: no position to sell", coinID)
			sum.Holds++
		default:
			logger.Errorf("error processing %s: %v", coinID, err)
		}
	default:
		logger.Infof("HOLD for %s: neutral signal", coinID)
		sum.Holds++
	}
}

func (s *Service) logPortfolioStatus(ctx context.Context, engine *trader.Engine, held []string) {
	if len(held) == 0 {
		return
	}
	prices := make(map[string]float64, len(held))
	for _, coinID := range held {
		price, err := s.source.CurrentPrice(ctx, coinID)
		if err != nil {
			continue
		}
		prices[coinID] = price
	}
	cost, netValue, gainPct := engine.PortfolioPerformance(prices)
	logger.Infof("portfolio status: cost $%.2f, net value (after fees) $%.2f, gain %.2f%%", cost, netValue, gainPct)
}

// mergeCoins appends the extras not already present, preserving order.
func mergeCoins(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base))
	for _, c := range base {
		seen[c] = struct{}{}
	}
	for _, c := range extra {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		base = append(base, c)
	}
	return base
}
