package builtin

import (
	"fmt"
	"time"

	"rabbitmq-guard/internal/model"
	"rabbitmq-guard/internal/rules"

	"github.com/sirupsen/logrus"
)

// ProcessingHaltRule fires when messages pile up past the halt threshold
// while publishers are still active and nothing is being consumed. Snapshots
// without message_stats carry no rates, which reads as a zero publish rate
// and therefore never fires.
type ProcessingHaltRule struct {
	threshold float64
	cooldown  time.Duration
	overrides *rules.Overrides
	logger    *logrus.Logger
}

func NewProcessingHaltRule(threshold int, cooldown time.Duration, overrides *rules.Overrides, logger *logrus.Logger) *ProcessingHaltRule {
	return &ProcessingHaltRule{
		threshold: float64(threshold),
		cooldown:  cooldown,
		overrides: overrides,
		logger:    logger,
	}
}

func (r *ProcessingHaltRule) Name() string {
	return "processing_halt"
}

func (r *ProcessingHaltRule) Evaluate(q model.QueueSnapshot) *model.Alert {
	messages := q.Metrics.GetOr(model.MetricMessages, 0)
	publishRate := q.Metrics.GetOr(model.MetricPublishRate, 0)
	consumeRate := q.Metrics.GetOr(model.MetricConsumeRate, 0)

	if messages <= r.threshold || consumeRate != 0 || publishRate <= 0 {
		return nil
	}

	return &model.Alert{
		Rule:      r.Name(),
		Severity:  model.SeverityCritical,
		Entity:    q.Name,
		VHost:     q.VHost,
		Value:     messages,
		Threshold: r.threshold,
		Cooldown:  r.overrides.Cooldown(q.Name, r.cooldown),
		Message: fmt.Sprintf("Processing halted: queue %q has %.0f messages, publish rate %.2f/s, consume rate 0/s. Check consumer health immediately.",
			q.Name, messages, publishRate),
	}
}
