package rules

import (
	"sync"
	"time"
)

// Clock supplies the current time. Tests inject a fake to advance time
// without sleeping.
type Clock func() time.Time

// CooldownTracker suppresses duplicate notifications for the same alert key.
// Entries live for the process lifetime; the key space is bounded by the
// (rule, entity) pairs actually observed, so there is no eviction.
type CooldownTracker struct {
	mu    sync.Mutex
	last  map[string]time.Time
	clock Clock
}

func NewCooldownTracker(clock Clock) *CooldownTracker {
	if clock == nil {
		clock = time.Now
	}
	return &CooldownTracker{
		last:  make(map[string]time.Time),
		clock: clock,
	}
}

// ShouldFire reports whether a notification for key may be delivered now and,
// when it may, records the delivery time. Check and record happen as one step
// under the lock so two concurrent evaluations can never both pass for the
// same key.
func (t *CooldownTracker) ShouldFire(key string, cooldown time.Duration) bool {
	now := t.clock()

	t.mu.Lock()
	defer t.mu.Unlock()

	if last, ok := t.last[key]; ok && now.Sub(last) < cooldown {
		return false
	}
	t.last[key] = now
	return true
}

// LastFired returns when key last produced a notification.
func (t *CooldownTracker) LastFired(key string) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	last, ok := t.last[key]
	return last, ok
}
