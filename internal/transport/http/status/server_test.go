package statushttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradepulse/internal/settings"
	"tradepulse/internal/trader"
)

type fakeStore struct {
	portfolio *trader.Portfolio
	trades    []trader.TradeRecord
	equity    []trader.EquityPoint

	lastTradesLimit int
	failLoad        bool
}

func (f *fakeStore) LoadPortfolio(ctx context.Context) (*trader.Portfolio, error) {
	if f.failLoad {
		return nil, errors.New("store down")
	}
	if f.portfolio == nil {
		f.portfolio = trader.NewPortfolio()
	}
	return f.portfolio, nil
}

func (f *fakeStore) SavePortfolio(ctx context.Context, p *trader.Portfolio) error { return nil }

func (f *fakeStore) LoadSettings(ctx context.Context) (settings.Settings, error) {
	return settings.Defaults(), nil
}

func (f *fakeStore) AppendTrade(ctx context.Context, rec trader.TradeRecord) error { return nil }

func (f *fakeStore) AppendEquity(ctx context.Context, pt trader.EquityPoint) error { return nil }

func (f *fakeStore) ListTrades(ctx context.Context, limit int) ([]trader.TradeRecord, error) {
	f.lastTradesLimit = limit
	return f.trades, nil
}

func (f *fakeStore) ListEquity(ctx context.Context, limit int) ([]trader.EquityPoint, error) {
	return f.equity, nil
}

func (f *fakeStore) Close() error { return nil }

func newTestServer(t *testing.T, st *fakeStore) *Server {
	t.Helper()
	s, err := NewServer(ServerConfig{Addr: ":0", Store: st})
	require.NoError(t, err)
	return s
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestNewServerRequiresStore(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	w := get(newTestServer(t, &fakeStore{}), "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestPortfolioEndpoint(t *testing.T) {
	p := trader.NewPortfolio()
	p.BalanceUSD = 950
	p.Holdings["bitcoin"] = trader.Position{Quantity: 0.001, EntryPrice: 50000, CostUSD: 50}

	w := get(newTestServer(t, &fakeStore{portfolio: p}), "/api/portfolio")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		ID         string                     `json:"id"`
		BalanceUSD float64                    `json:"balance_usd"`
		Holdings   map[string]trader.Position `json:"holdings"`
		TotalValue float64                    `json:"total_value"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, trader.DefaultPortfolioID, body.ID)
	assert.InDelta(t, 950.0, body.BalanceUSD, 1e-9)
	assert.InDelta(t, 1000.0, body.TotalValue, 1e-9)
	assert.Contains(t, body.Holdings, "bitcoin")
}

func TestPortfolioEndpointStoreError(t *testing.T) {
	w := get(newTestServer(t, &fakeStore{failLoad: true}), "/api/portfolio")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestTradesEndpoint(t *testing.T) {
	st := &fakeStore{trades: []trader.TradeRecord{
		{ID: "t1", Action: trader.ActionBuy, Coin: "bitcoin"},
	}}
	s := newTestServer(t, st)

	w := get(s, "/api/trades")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, defaultTradesLimit, st.lastTradesLimit)

	var body struct {
		Count  int                  `json:"count"`
		Trades []trader.TradeRecord `json:"trades"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "t1", body.Trades[0].ID)

	get(s, "/api/trades?limit=7")
	assert.Equal(t, 7, st.lastTradesLimit)

	get(s, "/api/trades?limit=bogus")
	assert.Equal(t, defaultTradesLimit, st.lastTradesLimit)
}

func TestEquityEndpointEmpty(t *testing.T) {
	w := get(newTestServer(t, &fakeStore{}), "/api/equity")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"equity":[],"count":0}`, w.Body.String())
}

func TestReportPage(t *testing.T) {
	st := &fakeStore{equity: []trader.EquityPoint{
		{ID: "e1", Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), TotalValue: 1000, BalanceUSD: 1000},
		{ID: "e2", Timestamp: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), TotalValue: 1010.5, BalanceUSD: 950},
	}}
	w := get(newTestServer(t, st), "/report")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "echarts")
	assert.Contains(t, w.Body.String(), "Equity curve")
}
