package config

const (
	defaultAppEnv             = "dev"
	defaultAppLogLevel        = "info"
	defaultAppHTTPAddr        = ":8080"
	defaultCycleIntervalMin   = 5
	defaultCycleRunNow        = true
	defaultStoreDocsPath      = "data/tradepulse.db"
	defaultStoreTradeLogPath  = "data/trade_log.db"
	defaultMarketSource       = "coingecko"
	defaultOracleBaseURL      = "https://api.groq.com/openai/v1"
	defaultOracleKeyEnv       = "GROQ_API_KEY"
	defaultOracleModel        = "llama-3.3-70b-versatile"
	defaultOracleTimeoutSecs  = 30
	defaultOracleMaxRetries   = 2
	defaultPromptTemplatePath = "configs/prompt_template.txt"
)

func (c *Config) applyDefaults(set keySet) {
	c.App.applyDefaults(set)
	c.Cycle.applyDefaults(set)
	c.Store.applyDefaults(set)
	c.Market.applyDefaults(set)
	c.Oracle.applyDefaults(set)
	c.Prompt.applyDefaults(set)
}

func (a *AppConfig) applyDefaults(set keySet) {
	if a.Env == "" {
		a.Env = defaultAppEnv
	}
	if a.LogLevel == "" {
		a.LogLevel = defaultAppLogLevel
	}
	if a.HTTPAddr == "" {
		a.HTTPAddr = defaultAppHTTPAddr
	}
}

func (c *CycleConfig) applyDefaults(set keySet) {
	if c.IntervalMinutes == 0 {
		c.IntervalMinutes = defaultCycleIntervalMin
	}
	if !set.has("cycle.run_immediately") {
		c.RunImmediately = defaultCycleRunNow
	}
}

func (s *StoreConfig) applyDefaults(set keySet) {
	if s.DocsPath == "" {
		s.DocsPath = defaultStoreDocsPath
	}
	if s.TradeLogPath == "" {
		s.TradeLogPath = defaultStoreTradeLogPath
	}
}

func (m *MarketConfig) applyDefaults(set keySet) {
	if m.Source == "" {
		m.Source = defaultMarketSource
	}
}

func (o *OracleConfig) applyDefaults(set keySet) {
	if o.BaseURL == "" {
		o.BaseURL = defaultOracleBaseURL
	}
	if o.APIKeyEnv == "" {
		o.APIKeyEnv = defaultOracleKeyEnv
	}
	if o.Model == "" {
		o.Model = defaultOracleModel
	}
	if o.TimeoutSeconds == 0 {
		o.TimeoutSeconds = defaultOracleTimeoutSecs
	}
	if !set.has("oracle.max_retries") {
		o.MaxRetries = defaultOracleMaxRetries
	}
}

func (p *PromptConfig) applyDefaults(set keySet) {
	if p.TemplatePath == "" && !set.has("prompt.template_path") {
		p.TemplatePath = defaultPromptTemplatePath
	}
}
