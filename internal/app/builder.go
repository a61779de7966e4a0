package app

import (
	"fmt"

	"tradepulse/internal/agent"
	"tradepulse/internal/config"
	"tradepulse/internal/oracle"
	"tradepulse/internal/prompt"
	"tradepulse/internal/scheduler"
	"tradepulse/internal/settings"
	"tradepulse/internal/store"
	"tradepulse/internal/store/gormstore"
	"tradepulse/internal/store/tradelog"
	statushttp "tradepulse/internal/transport/http/status"
)

func buildApp(cfg *config.Config) (*App, error) {
	st, err := buildStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	success := false
	defer func() {
		if !success {
			_ = st.Close()
		}
	}()

	source, err := buildMarketSource(cfg.Market)
	if err != nil {
		return nil, err
	}

	orc := oracle.NewChatClient(cfg.Oracle.BaseURL, cfg.Oracle.ResolveAPIKey(), cfg.Oracle.Model, cfg.Oracle.Timeout())
	orc.MaxRetries = cfg.Oracle.MaxRetries

	prompts := prompt.NewManager(cfg.Prompt.TemplatePath)
	provider := settings.NewProvider(st)
	cycle := agent.NewService(st, provider, source, orc, prompts)

	httpSrv, err := statushttp.NewServer(statushttp.ServerConfig{
		Addr:  cfg.App.HTTPAddr,
		Store: st,
	})
	if err != nil {
		return nil, fmt.Errorf("building status http server failed: %w", err)
	}

	success = true
	return &App{
		cfg:     cfg,
		store:   st,
		cycle:   cycle,
		prompts: prompts,
		httpSrv: httpSrv,
		sched:   scheduler.NewIntervalScheduler(cfg.Cycle.Interval(), cfg.Cycle.RunImmediately),
	}, nil
}

func buildStore(cfg config.StoreConfig) (store.Store, error) {
	docs, err := gormstore.NewGormStore(cfg.DocsPath)
	if err != nil {
		return nil, fmt.Errorf("opening document store failed: %w", err)
	}
	logs, err := tradelog.New(cfg.TradeLogPath)
	if err != nil {
		_ = docs.Close()
		return nil, fmt.Errorf("opening trade log failed: %w", err)
	}
	return store.NewCombined(docs, logs), nil
}
