package builtin

import (
	"fmt"
	"time"

	"rabbitmq-guard/internal/model"
	"rabbitmq-guard/internal/rules"

	"github.com/sirupsen/logrus"
)

// UnackedBacklogRule fires when a queue accumulates more unacknowledged
// messages than the configured limit, a sign of slow or failing consumers.
type UnackedBacklogRule struct {
	threshold float64
	cooldown  time.Duration
	overrides *rules.Overrides
	logger    *logrus.Logger
}

func NewUnackedBacklogRule(threshold int, cooldown time.Duration, overrides *rules.Overrides, logger *logrus.Logger) *UnackedBacklogRule {
	return &UnackedBacklogRule{
		threshold: float64(threshold),
		cooldown:  cooldown,
		overrides: overrides,
		logger:    logger,
	}
}

func (r *UnackedBacklogRule) Name() string {
	return "unacked_backlog"
}

func (r *UnackedBacklogRule) Evaluate(q model.QueueSnapshot) *model.Alert {
	unacked := q.Metrics.GetOr(model.MetricUnacked, 0)
	if unacked <= r.threshold {
		return nil
	}

	return &model.Alert{
		Rule:      r.Name(),
		Severity:  model.SeverityWarning,
		Entity:    q.Name,
		VHost:     q.VHost,
		Value:     unacked,
		Threshold: r.threshold,
		Cooldown:  r.overrides.Cooldown(q.Name, r.cooldown),
		Message: fmt.Sprintf("High unacknowledged message count: queue %q has %.0f unacked messages, threshold %.0f. Consumers may be slow or failing to ack.",
			q.Name, unacked, r.threshold),
	}
}
