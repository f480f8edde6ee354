package server

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlobalConnectionLimiter_AcquireRelease(t *testing.T) {
	limiter := NewGlobalConnectionLimiter(3)

	// Acquire 3 slots (at limit)
	assert.True(t, limiter.Acquire())
	assert.True(t, limiter.Acquire())
	assert.True(t, limiter.Acquire())
	assert.Equal(t, int64(3), limiter.Current())

	// 4th acquire should fail
	assert.False(t, limiter.Acquire())
	assert.Equal(t, int64(3), limiter.Current())

	// Release one slot
	limiter.Release()
	assert.Equal(t, int64(2), limiter.Current())

	// Now acquire should succeed
	assert.True(t, limiter.Acquire())
	assert.Equal(t, int64(3), limiter.Current())
}

func TestGlobalConnectionLimiter_Concurrent(t *testing.T) {
	limiter := NewGlobalConnectionLimiter(100)
	var successCount, failCount int64

	// Barrier to ensure all goroutines try to acquire at roughly the same time
	start := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if limiter.Acquire() {
				atomic.AddInt64(&successCount, 1)
			} else {
				atomic.AddInt64(&failCount, 1)
			}
		}()
	}

	close(start)
	wg.Wait()

	assert.Equal(t, int64(100), successCount)
	assert.Equal(t, int64(100), failCount)
	assert.Equal(t, int64(100), limiter.Current())
}

func TestIPConnectionLimiter(t *testing.T) {
	limiter := NewIPConnectionLimiter(2)

	assert.True(t, limiter.Acquire("10.0.0.1"))
	assert.True(t, limiter.Acquire("10.0.0.1"))
	assert.False(t, limiter.Acquire("10.0.0.1"), "third connection from same IP should fail")

	// Different IP has its own budget
	assert.True(t, limiter.Acquire("10.0.0.2"))

	limiter.Release("10.0.0.1")
	assert.True(t, limiter.Acquire("10.0.0.1"))
	assert.Equal(t, 2, limiter.Count("10.0.0.1"))
}

func TestIPConnectionLimiter_ReleaseUnknownIP(t *testing.T) {
	limiter := NewIPConnectionLimiter(2)
	limiter.Release("10.0.0.9") // must not underflow
	assert.Equal(t, 0, limiter.Count("10.0.0.9"))
}

func TestConnectionRateLimiter(t *testing.T) {
	limiter := NewConnectionRateLimiter(1.0, 2)

	// Burst of 2 allowed immediately
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"), "burst exhausted")

	// Separate bucket per IP
	assert.True(t, limiter.Allow("10.0.0.2"))
}

func TestConnectionLimits_RollbackOnPerIPFailure(t *testing.T) {
	limits := NewConnectionLimits(10, 1, 100.0, 100)

	ok, reason := limits.Acquire("10.0.0.1")
	assert.True(t, ok)
	assert.Empty(t, reason)

	// Same IP hits the per-IP cap; the global slot must be rolled back.
	ok, reason = limits.Acquire("10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, LimitReasonPerIP, reason)
	assert.Equal(t, int64(1), limits.Global().Current())
}

func TestConnectionLimits_GlobalCap(t *testing.T) {
	limits := NewConnectionLimits(1, 5, 100.0, 100)

	ok, _ := limits.Acquire("10.0.0.1")
	assert.True(t, ok)

	ok, reason := limits.Acquire("10.0.0.2")
	assert.False(t, ok)
	assert.Equal(t, LimitReasonGlobal, reason)
}
