package builtin

import (
	"testing"
	"time"

	"rabbitmq-guard/internal/model"
)

func nodeSnap(metrics model.Metrics, running bool) model.NodeSnapshot {
	return model.NodeSnapshot{Name: "rabbit@host-1", Running: running, Metrics: metrics}
}

func TestHighMemoryRule(t *testing.T) {
	rule := NewHighMemoryRule(80, 30*time.Minute, testLogger())

	tests := []struct {
		name         string
		metrics      model.Metrics
		wantFire     bool
		wantSeverity model.Severity
	}{
		{"below threshold", model.Metrics{model.MetricMemUsed: 700, model.MetricMemLimit: 1000}, false, ""},
		{"warning range", model.Metrics{model.MetricMemUsed: 850, model.MetricMemLimit: 1000}, true, model.SeverityWarning},
		{"critical above 90", model.Metrics{model.MetricMemUsed: 950, model.MetricMemLimit: 1000}, true, model.SeverityCritical},
		{"zero limit means no usable ratio", model.Metrics{model.MetricMemUsed: 950, model.MetricMemLimit: 0}, false, ""},
		{"missing fields", model.Metrics{}, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := rule.Evaluate(nodeSnap(tt.metrics, true))
			if (alert != nil) != tt.wantFire {
				t.Fatalf("Evaluate() fired=%v, want %v", alert != nil, tt.wantFire)
			}
			if alert != nil && alert.Severity != tt.wantSeverity {
				t.Errorf("severity = %s, want %s", alert.Severity, tt.wantSeverity)
			}
		})
	}
}

func TestHighDiskRule(t *testing.T) {
	rule := NewHighDiskRule(85, 30*time.Minute, testLogger())

	tests := []struct {
		name     string
		metrics  model.Metrics
		wantFire bool
	}{
		// 10 free of 100 limit = 90% used
		{"above threshold", model.Metrics{model.MetricDiskFree: 10, model.MetricDiskLimit: 100}, true},
		{"below threshold", model.Metrics{model.MetricDiskFree: 50, model.MetricDiskLimit: 100}, false},
		{"zero limit guarded", model.Metrics{model.MetricDiskFree: 10, model.MetricDiskLimit: 0}, false},
		{"zero free guarded", model.Metrics{model.MetricDiskFree: 0, model.MetricDiskLimit: 100}, false},
		{"missing fields", model.Metrics{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := rule.Evaluate(nodeSnap(tt.metrics, true))
			if (alert != nil) != tt.wantFire {
				t.Errorf("Evaluate() fired=%v, want %v", alert != nil, tt.wantFire)
			}
		})
	}
}

func TestNodeDownRule(t *testing.T) {
	rule := NewNodeDownRule(30*time.Minute, testLogger())

	if alert := rule.Evaluate(nodeSnap(model.Metrics{}, true)); alert != nil {
		t.Error("running node must not fire")
	}

	alert := rule.Evaluate(nodeSnap(model.Metrics{}, false))
	if alert == nil {
		t.Fatal("stopped node must fire")
	}
	if alert.Severity != model.SeverityCritical {
		t.Errorf("severity = %s, want critical", alert.Severity)
	}
}
