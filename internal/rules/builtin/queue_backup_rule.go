package builtin

import (
	"fmt"
	"time"

	"rabbitmq-guard/internal/model"
	"rabbitmq-guard/internal/rules"

	"github.com/sirupsen/logrus"
)

// QueueBackupRule fires when a queue's depth exceeds its threshold. Queues in
// the long-job override list use the override threshold and cooldown instead
// of the defaults.
type QueueBackupRule struct {
	threshold float64
	cooldown  time.Duration
	overrides *rules.Overrides
	logger    *logrus.Logger
}

func NewQueueBackupRule(threshold int, cooldown time.Duration, overrides *rules.Overrides, logger *logrus.Logger) *QueueBackupRule {
	return &QueueBackupRule{
		threshold: float64(threshold),
		cooldown:  cooldown,
		overrides: overrides,
		logger:    logger,
	}
}

func (r *QueueBackupRule) Name() string {
	return "queue_backup"
}

func (r *QueueBackupRule) Evaluate(q model.QueueSnapshot) *model.Alert {
	messages := q.Metrics.GetOr(model.MetricMessages, 0)
	threshold := r.overrides.Threshold(q.Name, r.threshold)
	if messages <= threshold {
		return nil
	}

	return &model.Alert{
		Rule:      r.Name(),
		Severity:  model.SeverityCritical,
		Entity:    q.Name,
		VHost:     q.VHost,
		Value:     messages,
		Threshold: threshold,
		Cooldown:  r.overrides.Cooldown(q.Name, r.cooldown),
		Message: fmt.Sprintf("Queue backup detected: queue %q (vhost %s) has %.0f messages, threshold %.0f. Check consumers or increase capacity.",
			q.Name, q.VHost, messages, threshold),
	}
}
