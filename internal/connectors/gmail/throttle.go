package gmail

import (
	"context"
	"sync"
	"time"
)

// throttle spaces Gmail API calls evenly to stay under the per-user quota.
type throttle struct {
	mu       sync.Mutex
	next     time.Time
	interval time.Duration
}

func newThrottle(perSecond int) *throttle {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &throttle{interval: time.Second / time.Duration(perSecond)}
}

// wait blocks until the caller's slot comes up or ctx is done.
func (t *throttle) wait(ctx context.Context) error {
	t.mu.Lock()
	now := time.Now()
	slot := now
	if t.next.After(now) {
		slot = t.next
	}
	t.next = slot.Add(t.interval)
	t.mu.Unlock()

	d := time.Until(slot)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
