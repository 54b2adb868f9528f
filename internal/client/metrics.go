package client

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the monitor's own Prometheus metrics. They are created
// unregistered; the exporter wires them into its registry through a
// collector.
type Metrics struct {
	CyclesTotal   prometheus.Counter
	CycleDuration prometheus.Histogram

	FetchFailures    *prometheus.CounterVec
	AlertsFired      *prometheus.CounterVec
	AlertsSuppressed *prometheus.CounterVec
	NotifyFailures   *prometheus.CounterVec

	ConnectionFailures prometheus.Gauge

	QueueMessages  *prometheus.GaugeVec
	QueueConsumers *prometheus.GaugeVec
	NodeMemoryUsed *prometheus.GaugeVec
	NodeDiskFree   *prometheus.GaugeVec
	NodeUp         *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rabbitmq_guard_cycles_total",
			Help: "Total evaluation cycles run",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rabbitmq_guard_cycle_duration_seconds",
			Help:    "Duration of one evaluation cycle",
			Buckets: prometheus.DefBuckets,
		}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rabbitmq_guard_fetch_failures_total",
			Help: "Failed management API fetches by resource",
		}, []string{"resource"}),
		AlertsFired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rabbitmq_guard_alerts_fired_total",
			Help: "Alerts that passed their cooldown window",
		}, []string{"rule", "severity"}),
		AlertsSuppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rabbitmq_guard_alerts_suppressed_total",
			Help: "Alerts suppressed by cooldown",
		}, []string{"rule"}),
		NotifyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rabbitmq_guard_notify_failures_total",
			Help: "Failed notification deliveries by notifier",
		}, []string{"notifier"}),
		ConnectionFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rabbitmq_guard_connection_failures",
			Help: "Consecutive failed management API fetches",
		}),
		QueueMessages: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rabbitmq_guard_queue_messages",
			Help: "Messages in queue at last poll",
		}, []string{"vhost", "queue"}),
		QueueConsumers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rabbitmq_guard_queue_consumers",
			Help: "Consumers on queue at last poll",
		}, []string{"vhost", "queue"}),
		NodeMemoryUsed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rabbitmq_guard_node_memory_used_bytes",
			Help: "Node memory usage at last poll",
		}, []string{"node"}),
		NodeDiskFree: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rabbitmq_guard_node_disk_free_bytes",
			Help: "Node free disk space at last poll",
		}, []string{"node"}),
		NodeUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rabbitmq_guard_node_up",
			Help: "Whether the node reported itself running (1) or not (0)",
		}, []string{"node"}),
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.CyclesTotal.Describe(ch)
	m.CycleDuration.Describe(ch)
	m.FetchFailures.Describe(ch)
	m.AlertsFired.Describe(ch)
	m.AlertsSuppressed.Describe(ch)
	m.NotifyFailures.Describe(ch)
	m.ConnectionFailures.Describe(ch)
	m.QueueMessages.Describe(ch)
	m.QueueConsumers.Describe(ch)
	m.NodeMemoryUsed.Describe(ch)
	m.NodeDiskFree.Describe(ch)
	m.NodeUp.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.CyclesTotal.Collect(ch)
	m.CycleDuration.Collect(ch)
	m.FetchFailures.Collect(ch)
	m.AlertsFired.Collect(ch)
	m.AlertsSuppressed.Collect(ch)
	m.NotifyFailures.Collect(ch)
	m.ConnectionFailures.Collect(ch)
	m.QueueMessages.Collect(ch)
	m.QueueConsumers.Collect(ch)
	m.NodeMemoryUsed.Collect(ch)
	m.NodeDiskFree.Collect(ch)
	m.NodeUp.Collect(ch)
}
