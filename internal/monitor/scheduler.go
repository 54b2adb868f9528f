package monitor

import (
	"context"
	"fmt"
	"time"

	"rabbitmq-guard/internal/model"
	"rabbitmq-guard/internal/rules"

	"github.com/sirupsen/logrus"
)

// Scheduler runs evaluation cycles on a fixed interval until its context is
// cancelled. Cycles never overlap: the next interval starts counting when the
// previous cycle has completed. There is no wall-clock alignment.
type Scheduler struct {
	evaluator *Evaluator
	engine    *rules.Engine
	interval  time.Duration
	endpoint  string
	logger    *logrus.Logger
}

func NewScheduler(evaluator *Evaluator, engine *rules.Engine, interval time.Duration, endpoint string, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		evaluator: evaluator,
		engine:    engine,
		interval:  interval,
		endpoint:  endpoint,
		logger:    logger,
	}
}

// Run sends the one-time startup notification, then loops forever. A failed
// cycle never stops the loop; only context cancellation does.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Infof("Starting RabbitMQ monitoring (interval: %v)", s.interval)

	s.engine.Notify(model.Alert{
		Rule:     "monitoring_started",
		Severity: model.SeverityInfo,
		Entity:   s.endpoint,
		Message: fmt.Sprintf("RabbitMQ monitoring started for %s. Watching queue health, processing rates and resource usage every %v.",
			s.endpoint, s.interval),
	})

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		s.evaluator.RunCycle(ctx)

		timer.Reset(s.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Monitoring stopped")
			return nil
		case <-timer.C:
		}
	}
}
