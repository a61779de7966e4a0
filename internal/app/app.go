package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"tradepulse/internal/agent"
	"tradepulse/internal/config"
	"tradepulse/internal/logger"
	"tradepulse/internal/prompt"
	"tradepulse/internal/scheduler"
	"tradepulse/internal/store"
	statushttp "tradepulse/internal/transport/http/status"
)

// App wires the whole process: stores, market source, oracle, cycle service,
// scheduler, and the status HTTP server.
type App struct {
	cfg     *config.Config
	store   store.Store
	cycle   *agent.Service
	prompts *prompt.Manager
	httpSrv *statushttp.Server
	sched   *scheduler.IntervalScheduler
}

// NewApp builds the application from config without starting anything.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildApp(cfg)
}

// Cycle exposes the cycle service, used by tests and one-shot runs.
func (a *App) Cycle() *agent.Service {
	if a == nil {
		return nil
	}
	return a.cycle
}

// Run starts the HTTP server, the prompt template watcher, and the cycle
// scheduler, and blocks until ctx is cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	defer a.Close()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := a.httpSrv.Start(ctx); err != nil {
			return fmt.Errorf("status http server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		return a.prompts.Watch(ctx)
	})

	group.Go(func() error {
		a.sched.Start(ctx, func(cycleCtx context.Context) {
			if _, err := a.cycle.RunCycle(cycleCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("trading cycle failed: %v", err)
			}
		})
		return nil
	})

	return group.Wait()
}

// Close releases the store handles.
func (a *App) Close() {
	if a == nil || a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		logger.Warnf("closing store failed: %v", err)
	}
}
