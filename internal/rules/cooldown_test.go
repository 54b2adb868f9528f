package rules

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCooldownFirstFireAllowed(t *testing.T) {
	clock := newFakeClock()
	tracker := NewCooldownTracker(clock.Now)

	if !tracker.ShouldFire("queue_backup:/orders", 30*time.Minute) {
		t.Fatal("first firing should be allowed")
	}
}

func TestCooldownSuppressesWithinWindow(t *testing.T) {
	clock := newFakeClock()
	tracker := NewCooldownTracker(clock.Now)
	cooldown := 30 * time.Minute

	if !tracker.ShouldFire("k", cooldown) {
		t.Fatal("first firing should be allowed")
	}

	clock.Advance(29 * time.Minute)
	if tracker.ShouldFire("k", cooldown) {
		t.Error("firing inside the cooldown window should be suppressed")
	}

	// Exactly at the window boundary the alert fires again.
	clock.Advance(1 * time.Minute)
	if !tracker.ShouldFire("k", cooldown) {
		t.Error("firing at the window boundary should be allowed")
	}
}

func TestCooldownSuppressedEvaluationDoesNotExtendWindow(t *testing.T) {
	clock := newFakeClock()
	tracker := NewCooldownTracker(clock.Now)
	cooldown := 10 * time.Minute

	tracker.ShouldFire("k", cooldown)
	first, _ := tracker.LastFired("k")

	clock.Advance(5 * time.Minute)
	if tracker.ShouldFire("k", cooldown) {
		t.Fatal("should be suppressed")
	}

	last, _ := tracker.LastFired("k")
	if !last.Equal(first) {
		t.Errorf("suppressed evaluation moved the record from %v to %v", first, last)
	}
}

func TestCooldownKeysAreIndependent(t *testing.T) {
	clock := newFakeClock()
	tracker := NewCooldownTracker(clock.Now)
	cooldown := time.Hour

	if !tracker.ShouldFire("queue_backup:/orders", cooldown) {
		t.Fatal("first key should fire")
	}
	if !tracker.ShouldFire("unacked_backlog:/orders", cooldown) {
		t.Error("a different rule on the same entity has its own window")
	}
	if !tracker.ShouldFire("queue_backup:/payments", cooldown) {
		t.Error("the same rule on a different entity has its own window")
	}
}

func TestCooldownNeverRecordsFutureTimestamp(t *testing.T) {
	clock := newFakeClock()
	tracker := NewCooldownTracker(clock.Now)

	tracker.ShouldFire("k", time.Minute)
	last, ok := tracker.LastFired("k")
	if !ok {
		t.Fatal("expected a record for k")
	}
	if last.After(clock.Now()) {
		t.Errorf("recorded timestamp %v is after now %v", last, clock.Now())
	}
}

func TestCooldownCheckAndRecordIsAtomic(t *testing.T) {
	clock := newFakeClock()
	tracker := NewCooldownTracker(clock.Now)

	const workers = 32
	var wg sync.WaitGroup
	results := make(chan bool, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- tracker.ShouldFire("contested", time.Hour)
		}()
	}
	wg.Wait()
	close(results)

	granted := 0
	for fired := range results {
		if fired {
			granted++
		}
	}
	if granted != 1 {
		t.Errorf("expected exactly one concurrent firing to pass, got %d", granted)
	}
}
