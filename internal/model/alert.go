package model

import "time"

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is a single rule firing for one entity. Cooldown is the effective
// suppression window for this rule+entity pair, already resolved through any
// per-queue override.
type Alert struct {
	Rule      string        `json:"rule"`
	Severity  Severity      `json:"severity"`
	Entity    string        `json:"entity"`
	VHost     string        `json:"vhost,omitempty"`
	Message   string        `json:"message"`
	Value     float64       `json:"value"`
	Threshold float64       `json:"threshold"`
	Cooldown  time.Duration `json:"-"`
	Timestamp time.Time     `json:"timestamp"`
}

// Key is the deduplication identity for this alert. It is total and stable:
// the same rule and entity always map to the same key, and rule names never
// contain ':' so keys from different rules cannot collide.
func (a Alert) Key() string {
	if a.VHost != "" {
		return a.Rule + ":" + a.VHost + "/" + a.Entity
	}
	return a.Rule + ":" + a.Entity
}
