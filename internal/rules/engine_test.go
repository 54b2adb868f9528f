package rules

import (
	"errors"
	"sync"
	"testing"
	"time"

	"rabbitmq-guard/internal/model"

	"github.com/sirupsen/logrus"
)

type captureNotifier struct {
	mu     sync.Mutex
	alerts []model.Alert
	err    error
}

func (n *captureNotifier) Name() string { return "capture" }

func (n *captureNotifier) SendAlert(alert model.Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
	return n.err
}

func (n *captureNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.alerts)
}

type stubQueueRule struct {
	name     string
	cooldown time.Duration
	fire     bool
}

func (r *stubQueueRule) Name() string { return r.name }

func (r *stubQueueRule) Evaluate(q model.QueueSnapshot) *model.Alert {
	if !r.fire {
		return nil
	}
	return &model.Alert{
		Rule:     r.name,
		Severity: model.SeverityWarning,
		Entity:   q.Name,
		VHost:    q.VHost,
		Cooldown: r.cooldown,
		Message:  "stub firing",
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestEngineDeduplicatesAcrossCycles(t *testing.T) {
	clock := newFakeClock()
	engine := NewEngine(NewCooldownTracker(clock.Now), quietLogger())
	engine.SetClock(clock.Now)
	engine.RegisterQueueRule(&stubQueueRule{name: "stub", cooldown: 30 * time.Minute, fire: true})

	notifier := &captureNotifier{}
	engine.RegisterNotifier(notifier)

	queues := []model.QueueSnapshot{{Name: "orders", VHost: "/", Metrics: model.Metrics{}}}

	// First cycle: exactly one notification.
	engine.Dispatch(engine.EvaluateQueues(queues))
	if notifier.Count() != 1 {
		t.Fatalf("first cycle sent %d notifications, want 1", notifier.Count())
	}

	// Repeated cycles inside the window: nothing new.
	clock.Advance(10 * time.Minute)
	engine.Dispatch(engine.EvaluateQueues(queues))
	clock.Advance(10 * time.Minute)
	engine.Dispatch(engine.EvaluateQueues(queues))
	if notifier.Count() != 1 {
		t.Fatalf("cycles inside the window sent %d notifications, want 1", notifier.Count())
	}

	// At the window boundary: exactly one more.
	clock.Advance(10 * time.Minute)
	engine.Dispatch(engine.EvaluateQueues(queues))
	if notifier.Count() != 2 {
		t.Fatalf("cycle at the window boundary sent %d notifications total, want 2", notifier.Count())
	}
}

func TestEngineSeparateEntitiesFireIndependently(t *testing.T) {
	clock := newFakeClock()
	engine := NewEngine(NewCooldownTracker(clock.Now), quietLogger())
	engine.SetClock(clock.Now)
	engine.RegisterQueueRule(&stubQueueRule{name: "stub", cooldown: time.Hour, fire: true})

	notifier := &captureNotifier{}
	engine.RegisterNotifier(notifier)

	queues := []model.QueueSnapshot{
		{Name: "orders", VHost: "/", Metrics: model.Metrics{}},
		{Name: "payments", VHost: "/", Metrics: model.Metrics{}},
	}
	engine.Dispatch(engine.EvaluateQueues(queues))

	if notifier.Count() != 2 {
		t.Errorf("two entities produced %d notifications, want 2", notifier.Count())
	}
}

func TestEngineDeliveryFailureDoesNotAffectSuppression(t *testing.T) {
	clock := newFakeClock()
	tracker := NewCooldownTracker(clock.Now)
	engine := NewEngine(tracker, quietLogger())
	engine.SetClock(clock.Now)
	engine.RegisterQueueRule(&stubQueueRule{name: "stub", cooldown: time.Hour, fire: true})

	failing := &captureNotifier{err: errors.New("webhook down")}
	engine.RegisterNotifier(failing)

	queues := []model.QueueSnapshot{{Name: "orders", VHost: "/", Metrics: model.Metrics{}}}
	engine.Dispatch(engine.EvaluateQueues(queues))

	// The suppression record was written even though delivery failed, so the
	// next cycle stays quiet instead of spamming retries.
	clock.Advance(time.Minute)
	fired := engine.EvaluateQueues(queues)
	if len(fired) != 0 {
		t.Errorf("failed delivery re-fired %d alerts inside the window, want 0", len(fired))
	}
}

func TestEngineNotifyBypassesCooldown(t *testing.T) {
	clock := newFakeClock()
	engine := NewEngine(NewCooldownTracker(clock.Now), quietLogger())
	engine.SetClock(clock.Now)

	notifier := &captureNotifier{}
	engine.RegisterNotifier(notifier)

	startup := model.Alert{Rule: "monitoring_started", Severity: model.SeverityInfo, Entity: "localhost:15672", Message: "started"}
	engine.Notify(startup)
	engine.Notify(startup)

	if notifier.Count() != 2 {
		t.Errorf("Notify sent %d notifications, want 2 (no cooldown gating)", notifier.Count())
	}
}
