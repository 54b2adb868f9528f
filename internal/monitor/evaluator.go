package monitor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"rabbitmq-guard/internal/client"
	"rabbitmq-guard/internal/model"
	"rabbitmq-guard/internal/rules"

	"github.com/sirupsen/logrus"
)

// Source supplies entity snapshots for one evaluation cycle.
type Source interface {
	FetchQueues(ctx context.Context) ([]model.QueueSnapshot, error)
	FetchNodes(ctx context.Context) ([]model.NodeSnapshot, error)
}

// Evaluator runs one complete evaluation cycle: fetch snapshots, run every
// rule against every matching entity, dispatch the firings that survived the
// cooldown gate. It owns the consecutive-fetch-failure counter read by the
// connectivity rule.
type Evaluator struct {
	source       Source
	engine       *rules.Engine
	metrics      *client.Metrics
	fetchTimeout time.Duration
	failures     atomic.Int64
	logger       *logrus.Logger
}

func NewEvaluator(source Source, engine *rules.Engine, metrics *client.Metrics, fetchTimeout time.Duration, logger *logrus.Logger) *Evaluator {
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}
	return &Evaluator{
		source:       source,
		engine:       engine,
		metrics:      metrics,
		fetchTimeout: fetchTimeout,
		logger:       logger,
	}
}

// ConsecutiveFailures returns the current failed-fetch streak.
func (ev *Evaluator) ConsecutiveFailures() int {
	return int(ev.failures.Load())
}

// RunCycle executes one cycle. A panic anywhere inside is caught here,
// logged, and reported as a single critical monitoring-error notification;
// it never reaches the scheduler.
func (ev *Evaluator) RunCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			ev.logger.Errorf("Error during health checks: %v", r)
			ev.engine.Notify(model.Alert{
				Rule:     "monitoring_error",
				Severity: model.SeverityCritical,
				Entity:   "rabbitmq-guard",
				Message:  fmt.Sprintf("Health check failed: %v. Check the monitoring service.", r),
			})
		}
	}()

	ev.logger.Debug("Running health checks...")
	start := time.Now()

	// Queue and node fetches are independent and issued concurrently; each
	// carries its own bounded timeout and may fail without affecting the
	// other.
	var (
		wg             sync.WaitGroup
		panicked       atomic.Value
		queues         []model.QueueSnapshot
		nodes          []model.NodeSnapshot
		qErr, nodesErr error
	)

	// A panic inside a fetch goroutine is re-raised here after the join so
	// the cycle-boundary recover above still sees it.
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				panicked.Store(r)
			}
		}()
		fetchCtx, cancel := context.WithTimeout(ctx, ev.fetchTimeout)
		defer cancel()
		queues, qErr = ev.source.FetchQueues(fetchCtx)
	}()
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				panicked.Store(r)
			}
		}()
		fetchCtx, cancel := context.WithTimeout(ctx, ev.fetchTimeout)
		defer cancel()
		nodes, nodesErr = ev.source.FetchNodes(fetchCtx)
	}()
	wg.Wait()

	if r := panicked.Load(); r != nil {
		panic(r)
	}

	ev.recordFetch("queues", qErr)
	ev.recordFetch("nodes", nodesErr)

	var alerts []model.Alert
	if qErr == nil {
		ev.recordQueueMetrics(queues)
		alerts = append(alerts, ev.engine.EvaluateQueues(queues)...)
	}
	if nodesErr == nil {
		ev.recordNodeMetrics(nodes)
		alerts = append(alerts, ev.engine.EvaluateNodes(nodes)...)
	}
	alerts = append(alerts, ev.engine.EvaluateGlobal(ev.ConsecutiveFailures())...)

	ev.engine.Dispatch(alerts)

	if ev.metrics != nil {
		ev.metrics.CyclesTotal.Inc()
		ev.metrics.CycleDuration.Observe(time.Since(start).Seconds())
	}
	ev.logger.Debugf("Health check completed in %v, %d alerts fired", time.Since(start), len(alerts))
}

// recordFetch updates the failure streak: any failed fetch extends it, any
// successful fetch resets it to zero.
func (ev *Evaluator) recordFetch(resource string, err error) {
	if err != nil {
		ev.failures.Add(1)
		ev.logger.Errorf("Error fetching %s: %v", resource, err)
		if ev.metrics != nil {
			ev.metrics.FetchFailures.WithLabelValues(resource).Inc()
		}
	} else {
		ev.failures.Store(0)
	}
	if ev.metrics != nil {
		ev.metrics.ConnectionFailures.Set(float64(ev.failures.Load()))
	}
}

func (ev *Evaluator) recordQueueMetrics(queues []model.QueueSnapshot) {
	if ev.metrics == nil {
		return
	}
	for _, q := range queues {
		ev.metrics.QueueMessages.WithLabelValues(q.VHost, q.Name).Set(q.Metrics.GetOr(model.MetricMessages, 0))
		ev.metrics.QueueConsumers.WithLabelValues(q.VHost, q.Name).Set(q.Metrics.GetOr(model.MetricConsumers, 0))
	}
}

func (ev *Evaluator) recordNodeMetrics(nodes []model.NodeSnapshot) {
	if ev.metrics == nil {
		return
	}
	for _, n := range nodes {
		ev.metrics.NodeMemoryUsed.WithLabelValues(n.Name).Set(n.Metrics.GetOr(model.MetricMemUsed, 0))
		ev.metrics.NodeDiskFree.WithLabelValues(n.Name).Set(n.Metrics.GetOr(model.MetricDiskFree, 0))
		up := 0.0
		if n.Running {
			up = 1.0
		}
		ev.metrics.NodeUp.WithLabelValues(n.Name).Set(up)
	}
}
