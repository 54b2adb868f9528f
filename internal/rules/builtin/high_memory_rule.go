package builtin

import (
	"fmt"
	"time"

	"rabbitmq-guard/internal/model"

	"github.com/sirupsen/logrus"
)

// HighMemoryRule fires when a node's memory usage exceeds the configured
// percentage of its limit. Above 90% the alert escalates to critical. A zero
// or missing memory limit means there is no usable ratio and the rule stays
// quiet.
type HighMemoryRule struct {
	maxPercent float64
	cooldown   time.Duration
	logger     *logrus.Logger
}

func NewHighMemoryRule(maxPercent float64, cooldown time.Duration, logger *logrus.Logger) *HighMemoryRule {
	return &HighMemoryRule{
		maxPercent: maxPercent,
		cooldown:   cooldown,
		logger:     logger,
	}
}

func (r *HighMemoryRule) Name() string {
	return "high_memory"
}

func (r *HighMemoryRule) Evaluate(n model.NodeSnapshot) *model.Alert {
	memUsed := n.Metrics.GetOr(model.MetricMemUsed, 0)
	memLimit := n.Metrics.GetOr(model.MetricMemLimit, 0)
	if memLimit <= 0 {
		return nil
	}

	percent := memUsed / memLimit * 100
	if percent <= r.maxPercent {
		return nil
	}

	severity := model.SeverityWarning
	if percent > 90 {
		severity = model.SeverityCritical
	}

	return &model.Alert{
		Rule:      r.Name(),
		Severity:  severity,
		Entity:    n.Name,
		Value:     percent,
		Threshold: r.maxPercent,
		Cooldown:  r.cooldown,
		Message: fmt.Sprintf("High memory usage on node %q: %.1f%% of limit (threshold %.0f%%, %.0f bytes used). Consider scaling or checking for leaks.",
			n.Name, percent, r.maxPercent, memUsed),
	}
}
