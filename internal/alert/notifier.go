package alert

import "rabbitmq-guard/internal/model"

// Notifier delivers alert notifications. Delivery failure is logged by the
// caller and never retried.
type Notifier interface {
	Name() string
	SendAlert(alert model.Alert) error
}
