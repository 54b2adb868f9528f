package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"rabbitmq-guard/internal/model"

	"github.com/sirupsen/logrus"
)

// SlackNotifier posts alerts to a Slack incoming webhook as a colored
// attachment. Without a webhook URL it is disabled and alerts are skipped
// with a warning. Deliveries are not retried: the cooldown record is already
// written when SendAlert runs, so a retry loop here would only turn one
// failed delivery into several successful ones.
type SlackNotifier struct {
	webhookURL string
	host       string
	enabled    bool
	client     *http.Client
	logger     *logrus.Logger
}

type slackAttachment struct {
	Color     string `json:"color"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	Footer    string `json:"footer"`
	Timestamp int64  `json:"ts"`
}

type slackPayload struct {
	Attachments []slackAttachment `json:"attachments"`
}

func NewSlackNotifier(webhookURL, host string, logger *logrus.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		host:       host,
		enabled:    webhookURL != "",
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func (sn *SlackNotifier) Name() string {
	return "slack"
}

func (sn *SlackNotifier) IsEnabled() bool {
	return sn.enabled
}

func (sn *SlackNotifier) SendAlert(alert model.Alert) error {
	if !sn.enabled {
		sn.logger.Warn("No Slack webhook URL configured, skipping alert")
		return nil
	}

	title := fmt.Sprintf("RabbitMQ Alert - %s", strings.ToUpper(string(alert.Severity)))
	return sn.post(title, alert.Message, severityColor(alert.Severity), alert.Timestamp)
}

// SendTestMessage posts a plain info message to verify webhook configuration.
func (sn *SlackNotifier) SendTestMessage() error {
	if !sn.enabled {
		return fmt.Errorf("slack notifier is disabled")
	}
	return sn.post("RabbitMQ Guard Test", "rabbitmq-guard is able to reach this webhook.", severityColor(model.SeverityInfo), time.Now())
}

func (sn *SlackNotifier) post(title, text, color string, ts time.Time) error {
	if ts.IsZero() {
		ts = time.Now()
	}

	payload := slackPayload{
		Attachments: []slackAttachment{
			{
				Color:     color,
				Title:     title,
				Text:      text,
				Footer:    fmt.Sprintf("rabbitmq-guard - %s", sn.host),
				Timestamp: ts.Unix(),
			},
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal Slack payload: %v", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, sn.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create Slack request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := sn.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Slack request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}

	sn.logger.Infof("Slack alert sent: %s", title)
	return nil
}

func severityColor(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "#FF0000"
	case model.SeverityWarning:
		return "#FFA500"
	case model.SeverityInfo:
		return "#36A64F"
	}
	return "#FFA500"
}
