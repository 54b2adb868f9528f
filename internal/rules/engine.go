package rules

import (
	"sync"
	"time"

	"rabbitmq-guard/internal/client"
	"rabbitmq-guard/internal/model"

	"github.com/sirupsen/logrus"
)

// QueueRule evaluates one queue snapshot and returns an alert when its
// condition is met, or nil. Evaluation is pure: no I/O, no shared state.
type QueueRule interface {
	Name() string
	Evaluate(q model.QueueSnapshot) *model.Alert
}

// NodeRule evaluates one node snapshot.
type NodeRule interface {
	Name() string
	Evaluate(n model.NodeSnapshot) *model.Alert
}

// GlobalRule evaluates cluster-wide state, currently just the consecutive
// fetch-failure count for the connectivity check.
type GlobalRule interface {
	Name() string
	Evaluate(consecutiveFailures int) *model.Alert
}

// NotifierInterface delivers one formatted alert.
type NotifierInterface interface {
	Name() string
	SendAlert(alert model.Alert) error
}

// Engine holds the rule set and the notifiers, gates firings through the
// cooldown tracker, and fans accepted alerts out to every notifier.
type Engine struct {
	mu          sync.RWMutex
	queueRules  []QueueRule
	nodeRules   []NodeRule
	globalRules []GlobalRule
	notifiers   []NotifierInterface
	cooldowns   *CooldownTracker
	metrics     *client.Metrics
	clock       Clock
	logger      *logrus.Logger
}

func NewEngine(cooldowns *CooldownTracker, logger *logrus.Logger) *Engine {
	return &Engine{
		cooldowns: cooldowns,
		clock:     time.Now,
		logger:    logger,
	}
}

// SetMetrics attaches the self-metrics sink. Nil is allowed.
func (e *Engine) SetMetrics(m *client.Metrics) {
	e.metrics = m
}

// SetClock overrides the timestamp source for emitted alerts.
func (e *Engine) SetClock(clock Clock) {
	if clock != nil {
		e.clock = clock
	}
}

func (e *Engine) RegisterQueueRule(rule QueueRule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queueRules = append(e.queueRules, rule)
	e.logger.Infof("Registered queue rule: %s", rule.Name())
}

func (e *Engine) RegisterNodeRule(rule NodeRule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nodeRules = append(e.nodeRules, rule)
	e.logger.Infof("Registered node rule: %s", rule.Name())
}

func (e *Engine) RegisterGlobalRule(rule GlobalRule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.globalRules = append(e.globalRules, rule)
	e.logger.Infof("Registered global rule: %s", rule.Name())
}

func (e *Engine) RegisterNotifier(notifier NotifierInterface) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notifiers = append(e.notifiers, notifier)
	e.logger.Infof("Registered notifier: %s", notifier.Name())
}

// EvaluateQueues runs every queue rule against every queue snapshot and
// returns the firings that passed their cooldown window.
func (e *Engine) EvaluateQueues(queues []model.QueueSnapshot) []model.Alert {
	e.mu.RLock()
	rules := make([]QueueRule, len(e.queueRules))
	copy(rules, e.queueRules)
	e.mu.RUnlock()

	var fired []model.Alert
	for _, q := range queues {
		for _, rule := range rules {
			if alert := rule.Evaluate(q); alert != nil {
				if a, ok := e.gate(*alert); ok {
					fired = append(fired, a)
				}
			}
		}
	}
	return fired
}

// EvaluateNodes runs every node rule against every node snapshot.
func (e *Engine) EvaluateNodes(nodes []model.NodeSnapshot) []model.Alert {
	e.mu.RLock()
	rules := make([]NodeRule, len(e.nodeRules))
	copy(rules, e.nodeRules)
	e.mu.RUnlock()

	var fired []model.Alert
	for _, n := range nodes {
		for _, rule := range rules {
			if alert := rule.Evaluate(n); alert != nil {
				if a, ok := e.gate(*alert); ok {
					fired = append(fired, a)
				}
			}
		}
	}
	return fired
}

// EvaluateGlobal runs the cluster-wide rules.
func (e *Engine) EvaluateGlobal(consecutiveFailures int) []model.Alert {
	e.mu.RLock()
	rules := make([]GlobalRule, len(e.globalRules))
	copy(rules, e.globalRules)
	e.mu.RUnlock()

	var fired []model.Alert
	for _, rule := range rules {
		if alert := rule.Evaluate(consecutiveFailures); alert != nil {
			if a, ok := e.gate(*alert); ok {
				fired = append(fired, a)
			}
		}
	}
	return fired
}

// gate stamps the alert and consults the cooldown tracker. The suppression
// record is written here, before delivery is attempted, so a failed delivery
// cannot turn into repeat notifications on later cycles.
func (e *Engine) gate(alert model.Alert) (model.Alert, bool) {
	alert.Timestamp = e.clock()
	if !e.cooldowns.ShouldFire(alert.Key(), alert.Cooldown) {
		e.logger.Debugf("Alert %s suppressed by cooldown", alert.Key())
		if e.metrics != nil {
			e.metrics.AlertsSuppressed.WithLabelValues(alert.Rule).Inc()
		}
		return alert, false
	}
	if e.metrics != nil {
		e.metrics.AlertsFired.WithLabelValues(alert.Rule, string(alert.Severity)).Inc()
	}
	return alert, true
}

// Dispatch delivers alerts to every notifier. Deliveries run concurrently,
// each alert targets a distinct key, and Dispatch returns only after all of
// them finished. Failures are logged, never retried.
func (e *Engine) Dispatch(alerts []model.Alert) {
	if len(alerts) == 0 {
		return
	}

	e.mu.RLock()
	notifiers := make([]NotifierInterface, len(e.notifiers))
	copy(notifiers, e.notifiers)
	e.mu.RUnlock()

	var wg sync.WaitGroup
	for _, alert := range alerts {
		for _, notifier := range notifiers {
			wg.Add(1)
			go func(n NotifierInterface, a model.Alert) {
				defer wg.Done()
				if err := n.SendAlert(a); err != nil {
					e.logger.Errorf("Failed to send alert %s via %s: %v", a.Key(), n.Name(), err)
					if e.metrics != nil {
						e.metrics.NotifyFailures.WithLabelValues(n.Name()).Inc()
					}
				}
			}(notifier, alert)
		}
	}
	wg.Wait()
}

// Notify delivers a single alert without consulting the cooldown tracker.
// Used for the startup notification and for monitoring-error reports.
func (e *Engine) Notify(alert model.Alert) {
	alert.Timestamp = e.clock()
	e.Dispatch([]model.Alert{alert})
}
