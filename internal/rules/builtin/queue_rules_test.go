package builtin

import (
	"testing"
	"time"

	"rabbitmq-guard/internal/model"
	"rabbitmq-guard/internal/rules"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func queueSnap(name string, metrics model.Metrics) model.QueueSnapshot {
	return model.QueueSnapshot{Name: name, VHost: "/", Metrics: metrics}
}

func TestQueueBackupRule(t *testing.T) {
	overrides := rules.NewOverrides([]string{"long-jobs"}, 1000000, 3*time.Hour)
	rule := NewQueueBackupRule(1000, 30*time.Minute, overrides, testLogger())

	tests := []struct {
		name     string
		snap     model.QueueSnapshot
		wantFire bool
	}{
		{"below threshold", queueSnap("orders", model.Metrics{model.MetricMessages: 1000}), false},
		{"above threshold", queueSnap("orders", model.Metrics{model.MetricMessages: 1001}), true},
		{"missing messages field", queueSnap("orders", model.Metrics{}), false},
		{"override queue below override threshold", queueSnap("long-jobs", model.Metrics{model.MetricMessages: 1001}), false},
		{"override queue above override threshold", queueSnap("long-jobs", model.Metrics{model.MetricMessages: 1000001}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := rule.Evaluate(tt.snap)
			if (alert != nil) != tt.wantFire {
				t.Errorf("Evaluate() fired=%v, want %v", alert != nil, tt.wantFire)
			}
		})
	}
}

func TestQueueBackupRuleOverrideNeverPartial(t *testing.T) {
	overrides := rules.NewOverrides([]string{"long-jobs"}, 1000000, 3*time.Hour)
	rule := NewQueueBackupRule(1000, 30*time.Minute, overrides, testLogger())

	alert := rule.Evaluate(queueSnap("long-jobs", model.Metrics{model.MetricMessages: 2000000}))
	if alert == nil {
		t.Fatal("expected firing above the override threshold")
	}
	if alert.Threshold != 1000000 {
		t.Errorf("override queue used threshold %v, want 1000000", alert.Threshold)
	}
	if alert.Cooldown != 3*time.Hour {
		t.Errorf("override queue used cooldown %v, want 3h", alert.Cooldown)
	}

	alert = rule.Evaluate(queueSnap("orders", model.Metrics{model.MetricMessages: 2000}))
	if alert == nil {
		t.Fatal("expected firing above the default threshold")
	}
	if alert.Threshold != 1000 || alert.Cooldown != 30*time.Minute {
		t.Errorf("default queue got threshold %v cooldown %v, want 1000 and 30m", alert.Threshold, alert.Cooldown)
	}
}

func TestUnackedBacklogRule(t *testing.T) {
	overrides := rules.NewOverrides(nil, 0, 0)
	rule := NewUnackedBacklogRule(500, 30*time.Minute, overrides, testLogger())

	if alert := rule.Evaluate(queueSnap("q", model.Metrics{model.MetricUnacked: 500})); alert != nil {
		t.Error("at the threshold the rule must not fire")
	}
	alert := rule.Evaluate(queueSnap("q", model.Metrics{model.MetricUnacked: 501}))
	if alert == nil {
		t.Fatal("above the threshold the rule must fire")
	}
	if alert.Severity != model.SeverityWarning {
		t.Errorf("severity = %s, want warning", alert.Severity)
	}
	if alert := rule.Evaluate(queueSnap("q", model.Metrics{})); alert != nil {
		t.Error("missing unacked field must read as condition not met")
	}
}

func TestMissingConsumersRule(t *testing.T) {
	overrides := rules.NewOverrides(nil, 0, 0)
	rule := NewMissingConsumersRule(1, 30*time.Minute, overrides, testLogger())

	tests := []struct {
		name     string
		metrics  model.Metrics
		wantFire bool
	}{
		{"messages without consumers", model.Metrics{model.MetricMessages: 10, model.MetricConsumers: 0}, true},
		{"messages with enough consumers", model.Metrics{model.MetricMessages: 10, model.MetricConsumers: 1}, false},
		{"empty queue without consumers", model.Metrics{model.MetricMessages: 0, model.MetricConsumers: 0}, false},
		{"consumers field absent", model.Metrics{model.MetricMessages: 10}, true},
		{"messages field absent", model.Metrics{model.MetricConsumers: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := rule.Evaluate(queueSnap("q", tt.metrics))
			if (alert != nil) != tt.wantFire {
				t.Errorf("Evaluate() fired=%v, want %v", alert != nil, tt.wantFire)
			}
		})
	}
}

func TestProcessingHaltRule(t *testing.T) {
	overrides := rules.NewOverrides(nil, 0, 0)
	rule := NewProcessingHaltRule(100, 30*time.Minute, overrides, testLogger())

	halted := model.Metrics{
		model.MetricMessages:    101,
		model.MetricPublishRate: 2.5,
		model.MetricConsumeRate: 0,
	}
	if alert := rule.Evaluate(queueSnap("q", halted)); alert == nil {
		t.Fatal("halted queue must fire")
	}

	// Flipping any one condition to its boundary-false value suppresses it.
	tests := []struct {
		name    string
		metrics model.Metrics
	}{
		{"messages at threshold", model.Metrics{model.MetricMessages: 100, model.MetricPublishRate: 2.5, model.MetricConsumeRate: 0}},
		{"consumption active", model.Metrics{model.MetricMessages: 101, model.MetricPublishRate: 2.5, model.MetricConsumeRate: 0.1}},
		{"no publishers", model.Metrics{model.MetricMessages: 101, model.MetricPublishRate: 0, model.MetricConsumeRate: 0}},
		{"missing message_stats", model.Metrics{model.MetricMessages: 101}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if alert := rule.Evaluate(queueSnap("q", tt.metrics)); alert != nil {
				t.Errorf("expected no firing, got %q", alert.Message)
			}
		})
	}
}

func TestQueueRulesUseOverrideCooldown(t *testing.T) {
	overrides := rules.NewOverrides([]string{"long-jobs"}, 1000000, 3*time.Hour)
	def := 30 * time.Minute

	// Every queue-class rule resolves its cooldown through the override list.
	unacked := NewUnackedBacklogRule(500, def, overrides, testLogger())
	alert := unacked.Evaluate(queueSnap("long-jobs", model.Metrics{model.MetricUnacked: 600}))
	if alert == nil {
		t.Fatal("expected firing")
	}
	if alert.Cooldown != 3*time.Hour {
		t.Errorf("override queue cooldown = %v, want 3h", alert.Cooldown)
	}

	alert = unacked.Evaluate(queueSnap("orders", model.Metrics{model.MetricUnacked: 600}))
	if alert == nil {
		t.Fatal("expected firing")
	}
	if alert.Cooldown != def {
		t.Errorf("default queue cooldown = %v, want %v", alert.Cooldown, def)
	}
}
