package builtin

import (
	"fmt"
	"time"

	"rabbitmq-guard/internal/model"

	"github.com/sirupsen/logrus"
)

// HighDiskRule fires when a node's disk usage, derived from free space
// against the free-space limit, exceeds the configured percentage. Both
// figures must be positive for the ratio to mean anything.
type HighDiskRule struct {
	maxPercent float64
	cooldown   time.Duration
	logger     *logrus.Logger
}

func NewHighDiskRule(maxPercent float64, cooldown time.Duration, logger *logrus.Logger) *HighDiskRule {
	return &HighDiskRule{
		maxPercent: maxPercent,
		cooldown:   cooldown,
		logger:     logger,
	}
}

func (r *HighDiskRule) Name() string {
	return "high_disk"
}

func (r *HighDiskRule) Evaluate(n model.NodeSnapshot) *model.Alert {
	diskFree := n.Metrics.GetOr(model.MetricDiskFree, 0)
	diskLimit := n.Metrics.GetOr(model.MetricDiskLimit, 0)
	if diskLimit <= 0 || diskFree <= 0 {
		return nil
	}

	usedPercent := (1 - diskFree/diskLimit) * 100
	if usedPercent <= r.maxPercent {
		return nil
	}

	return &model.Alert{
		Rule:      r.Name(),
		Severity:  model.SeverityCritical,
		Entity:    n.Name,
		Value:     usedPercent,
		Threshold: r.maxPercent,
		Cooldown:  r.cooldown,
		Message: fmt.Sprintf("High disk usage on node %q: %.1f%% (threshold %.0f%%, %.0f bytes free). Clean up or increase disk space.",
			n.Name, usedPercent, r.maxPercent, diskFree),
	}
}
