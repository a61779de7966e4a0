package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	App    AppConfig    `toml:"app"`
	Cycle  CycleConfig  `toml:"cycle"`
	Store  StoreConfig  `toml:"store"`
	Market MarketConfig `toml:"market"`
	Oracle OracleConfig `toml:"oracle"`
	Prompt PromptConfig `toml:"prompt"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	LogPath  string `toml:"log_path"`
	HTTPAddr string `toml:"http_addr"`
}

type CycleConfig struct {
	IntervalMinutes int  `toml:"interval_minutes"`
	RunImmediately  bool `toml:"run_immediately"`
}

// Interval returns the cycle period as a duration.
func (c CycleConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

type StoreConfig struct {
	DocsPath     string `toml:"docs_path"`
	TradeLogPath string `toml:"trade_log_path"`
}

type MarketConfig struct {
	Source string `toml:"source"`
	APIKey string `toml:"api_key"`
}

type OracleConfig struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	APIKeyEnv      string `toml:"api_key_env"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxRetries     int    `toml:"max_retries"`
}

// ResolveAPIKey returns the configured key, falling back to the named
// environment variable. Keys stay out of config files in deployments.
func (o OracleConfig) ResolveAPIKey() string {
	if key := strings.TrimSpace(o.APIKey); key != "" {
		return key
	}
	if o.APIKeyEnv != "" {
		return strings.TrimSpace(os.Getenv(o.APIKeyEnv))
	}
	return ""
}

func (o OracleConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

type PromptConfig struct {
	TemplatePath string `toml:"template_path"`
}
