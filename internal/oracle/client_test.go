package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		raw  string
		want Signal
	}{
		{"BUY", SignalBuy},
		{" buy \n", SignalBuy},
		{"Sell", SignalSell},
		{"HOLD", SignalHold},
		{"", SignalHold},
		{"BUY NOW!", SignalHold},
		{"I would recommend HOLD", SignalHold},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Normalize(tc.raw), "raw=%q", tc.raw)
	}
}

func chatResponse(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	})
	return string(b)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *ChatClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewChatClient(srv.URL, "test-key", "test-model", 5*time.Second)
	return c
}

func TestSignal(t *testing.T) {
	t.Run("valid one word answer", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			w.Write([]byte(chatResponse("BUY")))
		})
		assert.Equal(t, SignalBuy, c.Signal(context.Background(), "prompt"))
	})

	t.Run("whitespace and case are tolerated", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(chatResponse(" sell\n")))
		})
		assert.Equal(t, SignalSell, c.Signal(context.Background(), "prompt"))
	})

	t.Run("unexpected output degrades to HOLD", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(chatResponse("BUY, because the trend looks strong")))
		})
		assert.Equal(t, SignalHold, c.Signal(context.Background(), "prompt"))
	})

	t.Run("empty response degrades to HOLD", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(chatResponse("")))
		})
		assert.Equal(t, SignalHold, c.Signal(context.Background(), "prompt"))
	})

	t.Run("server error degrades to HOLD", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		})
		assert.Equal(t, SignalHold, c.Signal(context.Background(), "prompt"))
	})

	t.Run("missing API key degrades to HOLD without a call", func(t *testing.T) {
		called := false
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			called = true
		})
		c.APIKey = ""
		assert.Equal(t, SignalHold, c.Signal(context.Background(), "prompt"))
		assert.False(t, called)
	})

	t.Run("retries a 429 then succeeds", func(t *testing.T) {
		attempts := 0
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts == 1 {
				w.Header().Set("Retry-After", "0")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(chatResponse("HOLD")))
		})
		assert.Equal(t, SignalHold, c.Signal(context.Background(), "prompt"))
		assert.Equal(t, 2, attempts)
	})
}

func TestSignalCircuitBreaker(t *testing.T) {
	failures := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		failures++
		w.WriteHeader(http.StatusBadRequest)
	})
	c.MaxRetries = 0

	// trip the breaker
	for i := 0; i < 3; i++ {
		require.Equal(t, SignalHold, c.Signal(context.Background(), "prompt"))
	}
	tripped := failures

	// open breaker short-circuits without reaching the server
	assert.Equal(t, SignalHold, c.Signal(context.Background(), "prompt"))
	assert.Equal(t, tripped, failures)
}

func TestEndpointNormalization(t *testing.T) {
	c := &ChatClient{BaseURL: "https://api.example.com/v1/"}
	assert.Equal(t, "https://api.example.com/v1/chat/completions", c.endpoint())

	c.BaseURL = "https://api.example.com/v1/chat/completions"
	assert.Equal(t, "https://api.example.com/v1/chat/completions", c.endpoint())

	c.BaseURL = ""
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", c.endpoint())
}
