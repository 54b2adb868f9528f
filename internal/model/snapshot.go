package model

// Metric names exposed by the management API snapshots. Rules read these
// through the Metrics accessor so an absent field is a visible default,
// not a hidden zero value.
const (
	MetricMessages    = "messages"
	MetricUnacked     = "messages_unacknowledged"
	MetricConsumers   = "consumers"
	MetricPublishRate = "publish_rate"
	MetricConsumeRate = "consume_rate"
	MetricMemUsed     = "mem_used"
	MetricMemLimit    = "mem_limit"
	MetricDiskFree    = "disk_free"
	MetricDiskLimit   = "disk_free_limit"
)

// Metrics is one snapshot's named numeric fields. Fields the API did not
// return are simply absent from the map.
type Metrics map[string]float64

// Get returns the named metric and whether it was present in the snapshot.
func (m Metrics) Get(name string) (float64, bool) {
	v, ok := m[name]
	return v, ok
}

// GetOr returns the named metric, or def when the snapshot did not carry it.
func (m Metrics) GetOr(name string, def float64) float64 {
	if v, ok := m[name]; ok {
		return v
	}
	return def
}

// QueueSnapshot is one poll-cycle's read of a single queue. Snapshots are
// built fresh each cycle and never mutated.
type QueueSnapshot struct {
	Name    string
	VHost   string
	Metrics Metrics
}

// NodeSnapshot is one poll-cycle's read of a single broker node.
type NodeSnapshot struct {
	Name    string
	Running bool
	Metrics Metrics
}
