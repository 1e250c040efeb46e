package tracker

import (
	"sync"
	"time"
)

// UpdateTracker records when the dashboard data was last refreshed and the
// elapsed-seconds counter shown next to it. The counter only moves on Tick.
type UpdateTracker struct {
	mu          sync.RWMutex
	now         func() time.Time
	lastUpdated time.Time
	secondsAgo  int64
}

func NewUpdateTracker(now func() time.Time) *UpdateTracker {
	if now == nil {
		now = time.Now
	}
	return &UpdateTracker{now: now}
}

// MarkUpdated stamps the current time as the last successful refresh.
func (t *UpdateTracker) MarkUpdated() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastUpdated = t.now()
	t.secondsAgo = 0
	return t.lastUpdated
}

// Tick recomputes whole seconds since the last refresh. It is a no-op until
// the first refresh.
func (t *UpdateTracker) Tick() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lastUpdated.IsZero() {
		return 0
	}
	t.secondsAgo = int64(t.now().Sub(t.lastUpdated) / time.Second)
	return t.secondsAgo
}

func (t *UpdateTracker) SecondsAgo() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.secondsAgo
}
