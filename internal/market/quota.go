package market

import (
	"sync"
	"time"
)

// Quota counts fallback-source calls within a rolling window, approximated
// as "since last reset". Once the count reaches the ceiling, fallback calls
// are refused until the window elapses and the counter resets.
type Quota struct {
	mu          sync.Mutex
	limit       int
	window      time.Duration
	count       int
	windowStart time.Time
	now         func() time.Time
}

// NewQuota creates a quota counter with the given ceiling and window.
func NewQuota(limit int, window time.Duration) *Quota {
	return NewQuotaWithClock(limit, window, time.Now)
}

// NewQuotaWithClock creates a quota counter with a caller-supplied clock.
func NewQuotaWithClock(limit int, window time.Duration, now func() time.Time) *Quota {
	return &Quota{
		limit:  limit,
		window: window,
		now:    now,
	}
}

// Allow reports whether another fallback call may be made. It resets the
// counter when the window has elapsed.
func (q *Quota) Allow() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	if q.windowStart.IsZero() || now.Sub(q.windowStart) >= q.window {
		q.count = 0
		q.windowStart = now
	}

	return q.count < q.limit
}

// Record counts one fallback call. One call covers a whole symbol batch.
func (q *Quota) Record() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.count++
}

// Remaining returns how many fallback calls are left in the current window.
func (q *Quota) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	left := q.limit - q.count
	if left < 0 {
		return 0
	}
	return left
}
