package builtin

import (
	"fmt"
	"time"

	"rabbitmq-guard/internal/model"

	"github.com/sirupsen/logrus"
)

// ConnectivityRule fires when the management API has failed for at least the
// configured number of consecutive fetches. The counter resets on the first
// successful fetch, so recovery followed by a fresh run of failures alerts
// again.
type ConnectivityRule struct {
	threshold int
	endpoint  string
	cooldown  time.Duration
	logger    *logrus.Logger
}

func NewConnectivityRule(threshold int, endpoint string, cooldown time.Duration, logger *logrus.Logger) *ConnectivityRule {
	return &ConnectivityRule{
		threshold: threshold,
		endpoint:  endpoint,
		cooldown:  cooldown,
		logger:    logger,
	}
}

func (r *ConnectivityRule) Name() string {
	return "connection_failures"
}

func (r *ConnectivityRule) Evaluate(consecutiveFailures int) *model.Alert {
	if consecutiveFailures < r.threshold {
		return nil
	}

	return &model.Alert{
		Rule:      r.Name(),
		Severity:  model.SeverityCritical,
		Entity:    r.endpoint,
		Value:     float64(consecutiveFailures),
		Threshold: float64(r.threshold),
		Cooldown:  r.cooldown,
		Message: fmt.Sprintf("Management API unreachable: %d consecutive failed fetches from %s. Check RabbitMQ service health.",
			consecutiveFailures, r.endpoint),
	}
}
