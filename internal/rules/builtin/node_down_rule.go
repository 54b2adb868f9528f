package builtin

import (
	"fmt"
	"time"

	"rabbitmq-guard/internal/model"

	"github.com/sirupsen/logrus"
)

// NodeDownRule fires when a node reports itself as not running.
type NodeDownRule struct {
	cooldown time.Duration
	logger   *logrus.Logger
}

func NewNodeDownRule(cooldown time.Duration, logger *logrus.Logger) *NodeDownRule {
	return &NodeDownRule{
		cooldown: cooldown,
		logger:   logger,
	}
}

func (r *NodeDownRule) Name() string {
	return "node_down"
}

func (r *NodeDownRule) Evaluate(n model.NodeSnapshot) *model.Alert {
	if n.Running {
		return nil
	}

	return &model.Alert{
		Rule:     r.Name(),
		Severity: model.SeverityCritical,
		Entity:   n.Name,
		Cooldown: r.cooldown,
		Message:  fmt.Sprintf("Node down: %q is not running. Immediate restart required.", n.Name),
	}
}
