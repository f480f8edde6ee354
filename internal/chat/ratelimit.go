package chat

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// rateWindowLength is the fixed counting window for per-connection limits.
const rateWindowLength = time.Second

// RateWindow is one connection's counting state. The zero value is an
// expired window, so the first Allow call starts a fresh one.
type RateWindow struct {
	Count       int
	WindowStart time.Time
}

// FixedWindowLimiter is a coarse fixed-window counter: the window resets at
// fixed boundaries rather than sliding, so a burst spanning a boundary may
// briefly pass up to twice the limit. That is an accepted approximation of
// this limiter, not a defect.
type FixedWindowLimiter struct {
	clock clockwork.Clock
	limit int
}

// NewFixedWindowLimiter creates a limiter allowing limit messages per second
// per connection.
func NewFixedWindowLimiter(clock clockwork.Clock, limit int) *FixedWindowLimiter {
	return &FixedWindowLimiter{clock: clock, limit: limit}
}

// Allow advances the window and consumes one slot if available. At the cap it
// rejects without incrementing.
func (l *FixedWindowLimiter) Allow(w *RateWindow) bool {
	now := l.clock.Now()
	if now.Sub(w.WindowStart) > rateWindowLength {
		w.Count = 0
		w.WindowStart = now
	}
	if w.Count >= l.limit {
		return false
	}
	w.Count++
	return true
}

// Limit returns the configured per-window message cap.
func (l *FixedWindowLimiter) Limit() int {
	return l.limit
}
