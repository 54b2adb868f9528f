package alert

import (
	"rabbitmq-guard/internal/model"

	"github.com/sirupsen/logrus"
)

// LogNotifier writes alerts to the local log.
type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{
		logger: logger,
	}
}

func (ln *LogNotifier) Name() string {
	return "log"
}

// SendAlert implements Notifier - writes the alert to the log.
func (ln *LogNotifier) SendAlert(alert model.Alert) error {
	ln.logger.Warnf("ALERT [%s] %s: %s", alert.Severity, alert.Rule, alert.Message)
	return nil
}
