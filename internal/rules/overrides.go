package rules

import "time"

// Overrides substitutes the queue-backup threshold and the alert cooldown for
// a named set of long-running queues. An overridden queue always gets both
// the override threshold and the override cooldown, never just one of them;
// every other queue falls back to the defaults passed at the call site.
type Overrides struct {
	queues    map[string]struct{}
	threshold float64
	cooldown  time.Duration
}

func NewOverrides(queues []string, threshold int, cooldown time.Duration) *Overrides {
	set := make(map[string]struct{}, len(queues))
	for _, q := range queues {
		if q != "" {
			set[q] = struct{}{}
		}
	}
	return &Overrides{
		queues:    set,
		threshold: float64(threshold),
		cooldown:  cooldown,
	}
}

// Applies reports whether queue is in the override list.
func (o *Overrides) Applies(queue string) bool {
	if o == nil {
		return false
	}
	_, ok := o.queues[queue]
	return ok
}

// Threshold returns the effective queue-backup threshold for queue.
func (o *Overrides) Threshold(queue string, def float64) float64 {
	if o.Applies(queue) {
		return o.threshold
	}
	return def
}

// Cooldown returns the effective alert cooldown for queue.
func (o *Overrides) Cooldown(queue string, def time.Duration) time.Duration {
	if o.Applies(queue) {
		return o.cooldown
	}
	return def
}
