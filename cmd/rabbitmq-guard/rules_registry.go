package main

import (
	"rabbitmq-guard/internal/rules"
	"rabbitmq-guard/internal/rules/builtin"
	"rabbitmq-guard/internal/storage"
	"rabbitmq-guard/internal/utils"

	"github.com/sirupsen/logrus"
)

// registerBuiltinRules wires every health rule into the engine with the
// thresholds and cooldowns resolved from config.
func registerBuiltinRules(engine *rules.Engine, config *utils.Config, logger *logrus.Logger) {
	overrides := rules.NewOverrides(config.Overrides.Queues, config.Overrides.Threshold, config.OverrideCooldown())
	cooldown := config.DefaultCooldown()
	t := config.Thresholds

	engine.RegisterQueueRule(builtin.NewQueueBackupRule(t.MaxQueueLength, cooldown, overrides, logger))
	engine.RegisterQueueRule(builtin.NewUnackedBacklogRule(t.MaxUnackedMessages, cooldown, overrides, logger))
	engine.RegisterQueueRule(builtin.NewMissingConsumersRule(t.MinConsumersPerQueue, cooldown, overrides, logger))
	engine.RegisterQueueRule(builtin.NewProcessingHaltRule(t.ProcessingHalt, cooldown, overrides, logger))

	engine.RegisterNodeRule(builtin.NewHighMemoryRule(t.MaxMemoryPercent, cooldown, logger))
	engine.RegisterNodeRule(builtin.NewHighDiskRule(t.MaxDiskPercent, cooldown, logger))
	engine.RegisterNodeRule(builtin.NewNodeDownRule(cooldown, logger))

	engine.RegisterGlobalRule(builtin.NewConnectivityRule(t.ConnectionFailures, config.Endpoint(), cooldown, logger))
}

// ruleCatalog describes the registered rules for the status API.
func ruleCatalog() []storage.RuleInfo {
	return []storage.RuleInfo{
		{Name: "queue_backup", Class: "queue", Severity: "critical", Description: "Queue depth exceeds its threshold"},
		{Name: "unacked_backlog", Class: "queue", Severity: "warning", Description: "Unacknowledged messages exceed the limit"},
		{Name: "missing_consumers", Class: "queue", Severity: "warning", Description: "Queue has messages but too few consumers"},
		{Name: "processing_halt", Class: "queue", Severity: "critical", Description: "Messages pile up with publishers active and no consumption"},
		{Name: "high_memory", Class: "node", Severity: "warning", Description: "Node memory usage above the configured percentage"},
		{Name: "high_disk", Class: "node", Severity: "critical", Description: "Node disk usage above the configured percentage"},
		{Name: "node_down", Class: "node", Severity: "critical", Description: "Node reports itself as not running"},
		{Name: "connection_failures", Class: "global", Severity: "critical", Description: "Consecutive management API fetch failures"},
	}
}
