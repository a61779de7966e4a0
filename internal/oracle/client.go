package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tradepulse/internal/logger"
	"tradepulse/internal/pkg/circuit"
)

// Client produces a trading signal for a rendered prompt. Implementations
// never fail: every degraded path collapses to HOLD before returning.
type Client interface {
	Signal(ctx context.Context, prompt string) Signal
}

const decidePrompt = "Decide now: BUY, SELL or HOLD only."

// ChatClient calls an OpenAI-compatible chat completions endpoint. It is
// constructed once and injected wherever a signal is needed; there is no
// package-level client state.
type ChatClient struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int

	httpc   *http.Client
	breaker *circuit.Breaker
}

var _ Client = (*ChatClient)(nil)

func NewChatClient(baseURL, apiKey, model string, timeout time.Duration) *ChatClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ChatClient{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Model:      model,
		Timeout:    timeout,
		MaxRetries: 2,
		httpc:      &http.Client{Timeout: timeout},
		breaker:    circuit.NewBreaker("oracle", 3, 2*time.Minute),
	}
}

// Signal asks the model for one word and normalizes whatever comes back.
// Transport errors, rate limits that survive retrying, an open breaker and
// unexpected output all degrade to HOLD.
func (c *ChatClient) Signal(ctx context.Context, prompt string) Signal {
	if c.APIKey == "" {
		logger.Warnf("oracle: no API key configured, defaulting to HOLD")
		return SignalHold
	}
	if !c.breaker.Allow() {
		logger.Warnf("oracle: circuit open, defaulting to HOLD")
		return SignalHold
	}
	raw, err := c.complete(ctx, prompt)
	if err != nil {
		c.breaker.ReportFailure()
		logger.Warnf("oracle: request failed, defaulting to HOLD: %v", err)
		return SignalHold
	}
	c.breaker.ReportSuccess()
	if strings.TrimSpace(raw) == "" {
		logger.Warnf("oracle: empty response, defaulting to HOLD")
		return SignalHold
	}
	sig := Normalize(raw)
	if string(sig) != strings.ToUpper(strings.TrimSpace(raw)) {
		logger.Warnf("oracle: unexpected output %q, defaulting to HOLD", raw)
	}
	return sig
}

func (c *ChatClient) endpoint() string {
	url := strings.TrimRight(c.BaseURL, "/")
	if url == "" {
		url = "https://api.openai.com/v1"
	}
	// tolerate a configured URL that already carries the full path
	url = strings.TrimSuffix(url, "/chat/completions")
	return url + "/chat/completions"
}

func (c *ChatClient) complete(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"model": c.Model,
		"messages": []map[string]string{
			{"role": "system", "content": prompt},
			{"role": "user", "content": decidePrompt},
		},
		"max_tokens":  20,
		"temperature": 0.0,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	maxRetries := c.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.APIKey)

		resp, err := c.httpc.Do(req)
		if err != nil {
			return "", err
		}
		if resp.StatusCode/100 == 2 {
			var r struct {
				Choices []struct {
					Message struct {
						Content string `json:"content"`
					} `json:"message"`
				} `json:"choices"`
			}
			derr := json.NewDecoder(resp.Body).Decode(&r)
			resp.Body.Close()
			if derr != nil {
				return "", derr
			}
			if len(r.Choices) == 0 {
				return "", fmt.Errorf("empty choices")
			}
			return r.Choices[0].Message.Content, nil
		}

		var eresp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&eresp)
		resp.Body.Close()
		msg := strings.TrimSpace(eresp.Error.Message)
		if msg == "" {
			msg = resp.Status
		}
		lastErr = fmt.Errorf("status=%d: %s", resp.StatusCode, msg)

		if !retryable(resp.StatusCode) || attempt == maxRetries {
			return "", lastErr
		}
		wait := retryWait(resp.Header.Get("Retry-After"), attempt)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
	}
	return "", lastErr
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func retryWait(retryAfter string, attempt int) time.Duration {
	if retryAfter != "" {
		if secs, err := strconv.Atoi(retryAfter); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	// exponential backoff: 0.8s, 1.6s, 3.2s ... capped at 8s
	wait := 800 * time.Millisecond << attempt
	if wait > 8*time.Second {
		wait = 8 * time.Second
	}
	return wait
}
