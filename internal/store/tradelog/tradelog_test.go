package tradelog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradepulse/internal/trader"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "log.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTradeRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	buy := trader.TradeRecord{
		ID:         "t-1",
		Timestamp:  ts,
		Action:     trader.ActionBuy,
		Coin:       "bitcoin",
		Price:      50000,
		Quantity:   "0.001",
		Reason:     "AI signal",
		BalanceUSD: 950,
		TotalValue: 1000,
	}
	pnl := 9.4
	sell := trader.TradeRecord{
		ID:         "t-2",
		Timestamp:  ts.Add(5 * time.Minute),
		Action:     trader.ActionSell,
		Coin:       "bitcoin",
		Price:      60000,
		Quantity:   trader.QuantityAll,
		PnL:        &pnl,
		Reason:     "take profit",
		BalanceUSD: 1009.4,
		TotalValue: 1009.4,
	}
	require.NoError(t, s.AppendTrade(ctx, buy))
	require.NoError(t, s.AppendTrade(ctx, sell))

	got, err := s.ListTrades(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// newest first
	assert.Equal(t, "t-2", got[0].ID)
	assert.Equal(t, trader.ActionSell, got[0].Action)
	assert.Equal(t, trader.QuantityAll, got[0].Quantity)
	require.NotNil(t, got[0].PnL)
	assert.Equal(t, 9.4, *got[0].PnL)
	assert.Equal(t, ts.Add(5*time.Minute), got[0].Timestamp)

	assert.Equal(t, "t-1", got[1].ID)
	assert.Equal(t, trader.ActionBuy, got[1].Action)
	assert.Equal(t, "0.001", got[1].Quantity)
	assert.Nil(t, got[1].PnL)
	assert.Equal(t, "AI signal", got[1].Reason)
}

func TestListTradesLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		rec := trader.TradeRecord{
			ID:        string(rune('a' + i)),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Action:    trader.ActionBuy,
			Coin:      "bitcoin",
			Quantity:  "1",
		}
		require.NoError(t, s.AppendTrade(ctx, rec))
	}

	got, err := s.ListTrades(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "e", got[0].ID)
	assert.Equal(t, "d", got[1].ID)
}

func TestEquityRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		pt := trader.EquityPoint{
			ID:            string(rune('a' + i)),
			Timestamp:     base.Add(time.Duration(i) * time.Hour),
			TotalValue:    1000 + float64(i),
			BalanceUSD:    900 + float64(i),
			HoldingsCount: i,
		}
		require.NoError(t, s.AppendEquity(ctx, pt))
	}

	got, err := s.ListEquity(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// oldest first, ready to plot
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, 1000.0, got[0].TotalValue)
	assert.Equal(t, "c", got[2].ID)
	assert.Equal(t, 2, got[2].HoldingsCount)
	assert.Equal(t, base, got[0].Timestamp)
}
