package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartRunImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32

	s := NewIntervalScheduler(time.Hour, true)
	done := make(chan struct{})
	go func() {
		s.Start(ctx, func(context.Context) {
			runs.Add(1)
			cancel()
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
	assert.Equal(t, int32(1), runs.Load())
}

func TestStartTicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var runs atomic.Int32

	s := NewIntervalScheduler(10*time.Millisecond, false)
	done := make(chan struct{})
	go func() {
		s.Start(ctx, func(context.Context) {
			if runs.Add(1) >= 3 {
				cancel()
			}
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not reach three ticks")
	}
	assert.GreaterOrEqual(t, runs.Load(), int32(3))
}

func TestStartInvalidInterval(t *testing.T) {
	ran := false
	s := NewIntervalScheduler(0, true)
	s.Start(context.Background(), func(context.Context) { ran = true })
	assert.False(t, ran)
}
