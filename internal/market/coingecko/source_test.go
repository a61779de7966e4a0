package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSource(t *testing.T, handler http.HandlerFunc) *Source {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New("test-key", WithBaseURL(srv.URL))
}

func TestCurrentPrice(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "test-key", r.Header.Get("x-cg-demo-api-key"))
		w.Write([]byte(`{"bitcoin":{"usd":50123.45}}`))
	})

	price, err := s.CurrentPrice(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, 50123.45, price)
}

func TestCurrentPriceMissingCoin(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	price, err := s.CurrentPrice(context.Background(), "nope")
	assert.Error(t, err)
	assert.Zero(t, price)
}

func TestCurrentPriceServerError(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	price, err := s.CurrentPrice(context.Background(), "bitcoin")
	assert.Error(t, err)
	assert.Zero(t, price)
}

func TestOHLC(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin/ohlc", r.URL.Path)
		assert.Equal(t, "30", r.URL.Query().Get("days"))
		w.Write([]byte(`[[1717200000000,50000,51000,49500,50500],[1717286400000,50500,52000,50400,51900]]`))
	})

	candles, err := s.OHLC(context.Background(), "bitcoin", 30)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, int64(1717200000000), candles[0].Timestamp)
	assert.Equal(t, 50000.0, candles[0].Open)
	assert.Equal(t, 51900.0, candles[1].Close)
}

func TestSnapshot(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/markets", r.URL.Path)
		w.Write([]byte(`[{"id":"bitcoin","name":"Bitcoin","total_volume":12345678,"market_cap":900000000000,"price_change_percentage_24h":2.5}]`))
	})

	stats, err := s.Snapshot(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, "Bitcoin", stats.Name)
	assert.Equal(t, 12345678.0, stats.Volume24h)
	assert.Equal(t, 2.5, stats.Change24hPct)
}

func TestDiscoverVolatile(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "volume_desc", r.URL.Query().Get("order"))
		w.Write([]byte(`[
			{"id":"bigcap","market_cap":900000000000,"price_change_percentage_24h":9,"total_volume":5000000},
			{"id":"mover","market_cap":200000000,"price_change_percentage_24h":7.5,"total_volume":400000},
			{"id":"flat","market_cap":100000000,"price_change_percentage_24h":1.2,"total_volume":900000},
			{"id":"dumper","market_cap":50000000,"price_change_percentage_24h":-12,"total_volume":250000},
			{"id":"illiquid","market_cap":30000000,"price_change_percentage_24h":20,"total_volume":5000}
		]`))
	})

	coins, err := s.DiscoverVolatile(context.Background())
	require.NoError(t, err)
	// large caps, flat movers and illiquid coins are all filtered out
	assert.Equal(t, []string{"mover", "dumper"}, coins)
}
