package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreakerTripsAtThreshold(t *testing.T) {
	b := NewBreaker("test", 3, time.Minute)
	assert.Equal(t, StateClosed, b.CurrentState())

	b.ReportFailure()
	b.ReportFailure()
	assert.True(t, b.Allow())

	b.ReportFailure()
	assert.Equal(t, StateOpen, b.CurrentState())
	assert.False(t, b.Allow())
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	b := NewBreaker("test", 1, 10*time.Millisecond)
	b.ReportFailure()
	assert.False(t, b.Allow())

	time.Sleep(20 * time.Millisecond)
	assert.True(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.CurrentState())

	// a half-open failure reopens immediately
	b.ReportFailure()
	assert.Equal(t, StateOpen, b.CurrentState())
}

func TestBreakerSuccessCloses(t *testing.T) {
	b := NewBreaker("test", 1, 10*time.Millisecond)
	b.ReportFailure()
	time.Sleep(20 * time.Millisecond)
	assert.True(t, b.Allow())

	b.ReportSuccess()
	assert.Equal(t, StateClosed, b.CurrentState())
	assert.True(t, b.Allow())
}

func TestBreakerDefaults(t *testing.T) {
	b := NewBreaker("test", 0, 0)
	for i := 0; i < 2; i++ {
		b.ReportFailure()
	}
	assert.True(t, b.Allow())
	b.ReportFailure()
	assert.False(t, b.Allow())
}
