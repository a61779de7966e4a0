package scheduler

import (
	"context"
	"time"

	"tradepulse/internal/logger"
)

// IntervalScheduler runs a task on a fixed period until the context is
// cancelled. Ticks are not queued: a task still running when the next tick
// fires simply absorbs it downstream (the cycle service single-flights).
type IntervalScheduler struct {
	Interval       time.Duration
	RunImmediately bool
}

func NewIntervalScheduler(interval time.Duration, runImmediately bool) *IntervalScheduler {
	return &IntervalScheduler{Interval: interval, RunImmediately: runImmediately}
}

// Start blocks until ctx is cancelled.
func (s *IntervalScheduler) Start(ctx context.Context, task func(context.Context)) {
	if s == nil || task == nil {
		logger.Warnf("scheduler: nil scheduler or task, exit")
		return
	}
	if s.Interval <= 0 {
		logger.Warnf("scheduler: invalid interval=%s, exit", s.Interval)
		return
	}

	logger.Infof("scheduler: started interval=%s run_immediately=%v", s.Interval, s.RunImmediately)

	if s.RunImmediately {
		task(ctx)
	}

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Infof("scheduler: stopped")
			return
		case <-ticker.C:
			task(ctx)
		}
	}
}
