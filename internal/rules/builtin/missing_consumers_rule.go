package builtin

import (
	"fmt"
	"time"

	"rabbitmq-guard/internal/model"
	"rabbitmq-guard/internal/rules"

	"github.com/sirupsen/logrus"
)

// MissingConsumersRule fires when a queue holds messages but has fewer
// consumers than the configured minimum. An empty queue never fires no matter
// how many consumers it has.
type MissingConsumersRule struct {
	minConsumers float64
	cooldown     time.Duration
	overrides    *rules.Overrides
	logger       *logrus.Logger
}

func NewMissingConsumersRule(minConsumers int, cooldown time.Duration, overrides *rules.Overrides, logger *logrus.Logger) *MissingConsumersRule {
	return &MissingConsumersRule{
		minConsumers: float64(minConsumers),
		cooldown:     cooldown,
		overrides:    overrides,
		logger:       logger,
	}
}

func (r *MissingConsumersRule) Name() string {
	return "missing_consumers"
}

func (r *MissingConsumersRule) Evaluate(q model.QueueSnapshot) *model.Alert {
	messages := q.Metrics.GetOr(model.MetricMessages, 0)
	consumers := q.Metrics.GetOr(model.MetricConsumers, 0)
	if messages <= 0 || consumers >= r.minConsumers {
		return nil
	}

	return &model.Alert{
		Rule:      r.Name(),
		Severity:  model.SeverityWarning,
		Entity:    q.Name,
		VHost:     q.VHost,
		Value:     consumers,
		Threshold: r.minConsumers,
		Cooldown:  r.overrides.Cooldown(q.Name, r.cooldown),
		Message: fmt.Sprintf("Missing consumers: queue %q has %.0f messages but only %.0f consumers (minimum %.0f). Start consumer processes.",
			q.Name, messages, consumers, r.minConsumers),
	}
}
