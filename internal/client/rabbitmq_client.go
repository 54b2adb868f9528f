package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"rabbitmq-guard/internal/model"

	"github.com/sirupsen/logrus"
)

// ManagementClient fetches queue and node snapshots from the RabbitMQ
// management HTTP API. Any transport error, timeout, or non-2xx status is a
// fetch failure.
type ManagementClient struct {
	baseURL  string
	endpoint string
	username string
	password string
	client   *http.Client
	logger   *logrus.Logger
}

func NewManagementClient(host string, port int, username, password string, timeout time.Duration, logger *logrus.Logger) *ManagementClient {
	endpoint := fmt.Sprintf("%s:%d", host, port)
	return &ManagementClient{
		baseURL:  fmt.Sprintf("http://%s/api", endpoint),
		endpoint: endpoint,
		username: username,
		password: password,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Endpoint returns the host:port this client talks to.
func (c *ManagementClient) Endpoint() string {
	return c.endpoint
}

type rateDetails struct {
	Rate float64 `json:"rate"`
}

type apiMessageStats struct {
	PublishDetails    *rateDetails `json:"publish_details"`
	DeliverGetDetails *rateDetails `json:"deliver_get_details"`
}

type apiQueue struct {
	Name         string           `json:"name"`
	VHost        string           `json:"vhost"`
	Messages     *float64         `json:"messages"`
	Unacked      *float64         `json:"messages_unacknowledged"`
	Consumers    *float64         `json:"consumers"`
	MessageStats *apiMessageStats `json:"message_stats"`
}

type apiNode struct {
	Name      string   `json:"name"`
	Running   bool     `json:"running"`
	MemUsed   *float64 `json:"mem_used"`
	MemLimit  *float64 `json:"mem_limit"`
	DiskFree  *float64 `json:"disk_free"`
	DiskLimit *float64 `json:"disk_free_limit"`
}

// FetchQueues returns one snapshot per queue known to the broker.
func (c *ManagementClient) FetchQueues(ctx context.Context) ([]model.QueueSnapshot, error) {
	var raw []apiQueue
	if err := c.get(ctx, "queues", &raw); err != nil {
		return nil, err
	}

	snapshots := make([]model.QueueSnapshot, 0, len(raw))
	for _, q := range raw {
		snapshots = append(snapshots, q.snapshot())
	}
	return snapshots, nil
}

// FetchNodes returns one snapshot per broker node.
func (c *ManagementClient) FetchNodes(ctx context.Context) ([]model.NodeSnapshot, error) {
	var raw []apiNode
	if err := c.get(ctx, "nodes", &raw); err != nil {
		return nil, err
	}

	snapshots := make([]model.NodeSnapshot, 0, len(raw))
	for _, n := range raw {
		snapshots = append(snapshots, n.snapshot())
	}
	return snapshots, nil
}

func (c *ManagementClient) get(ctx context.Context, resource string, v interface{}) error {
	url := fmt.Sprintf("%s/%s", c.baseURL, resource)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %v", resource, err)
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %v", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("management API request failed: %s returned status %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s response: %v", resource, err)
	}
	return nil
}

// snapshot builds an immutable snapshot, adding only the metrics the API
// actually returned so rules see absent fields as absent.
func (q apiQueue) snapshot() model.QueueSnapshot {
	name := q.Name
	if name == "" {
		name = "unknown"
	}
	vhost := q.VHost
	if vhost == "" {
		vhost = "/"
	}

	metrics := make(model.Metrics)
	if q.Messages != nil {
		metrics[model.MetricMessages] = *q.Messages
	}
	if q.Unacked != nil {
		metrics[model.MetricUnacked] = *q.Unacked
	}
	if q.Consumers != nil {
		metrics[model.MetricConsumers] = *q.Consumers
	}
	if q.MessageStats != nil {
		if q.MessageStats.PublishDetails != nil {
			metrics[model.MetricPublishRate] = q.MessageStats.PublishDetails.Rate
		}
		if q.MessageStats.DeliverGetDetails != nil {
			metrics[model.MetricConsumeRate] = q.MessageStats.DeliverGetDetails.Rate
		}
	}

	return model.QueueSnapshot{Name: name, VHost: vhost, Metrics: metrics}
}

func (n apiNode) snapshot() model.NodeSnapshot {
	name := n.Name
	if name == "" {
		name = "unknown"
	}

	metrics := make(model.Metrics)
	if n.MemUsed != nil {
		metrics[model.MetricMemUsed] = *n.MemUsed
	}
	if n.MemLimit != nil {
		metrics[model.MetricMemLimit] = *n.MemLimit
	}
	if n.DiskFree != nil {
		metrics[model.MetricDiskFree] = *n.DiskFree
	}
	if n.DiskLimit != nil {
		metrics[model.MetricDiskLimit] = *n.DiskLimit
	}

	return model.NodeSnapshot{Name: name, Running: n.Running, Metrics: metrics}
}
