package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	if m == nil {
		t.Fatal("expected metrics, got nil")
	}

	// Verify all metrics are initialized
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"CommandExecutions", m.CommandExecutions},
		{"CommandDuration", m.CommandDuration},
		{"Decompositions", m.Decompositions},
		{"DecompositionDuration", m.DecompositionDuration},
		{"StageDuration", m.StageDuration},
		{"RequirementCount", m.RequirementCount},
		{"TaskCount", m.TaskCount},
		{"BatchCount", m.BatchCount},
		{"CriticalPathMinutes", m.CriticalPathMinutes},
		{"LowConfidenceTasks", m.LowConfidenceTasks},
		{"Warnings", m.Warnings},
		{"Transitions", m.Transitions},
		{"Propagations", m.Propagations},
		{"Errors", m.Errors},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestObserveDecomposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveDecomposition(10*time.Millisecond, &Decomposition{
		Requirements:        3,
		TasksByKind:         map[string]int{"test": 3, "implementation": 3, "integration": 1},
		LowConfidenceByKind: map[string]int{"test": 1, "implementation": 1},
		Batches:             3,
		CriticalPathMinutes: 150,
		Warnings:            []string{"serial_bottleneck"},
	})
	m.ObserveDecomposition(time.Millisecond, nil)

	if got := testutil.ToFloat64(m.Decompositions.WithLabelValues("true")); got != 1 {
		t.Errorf("successful decompositions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Decompositions.WithLabelValues("false")); got != 1 {
		t.Errorf("failed decompositions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LowConfidenceTasks.WithLabelValues("implementation")); got != 1 {
		t.Errorf("low confidence implementation tasks = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Warnings.WithLabelValues("serial_bottleneck")); got != 1 {
		t.Errorf("warnings = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.TaskCount); got != 3 {
		t.Errorf("task count series = %d, want 3", got)
	}
}

func TestObserveTransition(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveTransition("IMPLEMENTING", "FAILED", false)
	m.ObserveTransition("PENDING", "BLOCKED", true)
	m.ObserveTransition("PENDING", "BLOCKED", true)

	if got := testutil.ToFloat64(m.Transitions.WithLabelValues("PENDING", "BLOCKED")); got != 2 {
		t.Errorf("PENDING->BLOCKED = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Propagations.WithLabelValues("BLOCKED")); got != 2 {
		t.Errorf("propagations = %v, want 2", got)
	}
}

func TestObserveError(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveError("PLAN-002", "graph")
	m.ObserveError("", "graph")

	if got := testutil.ToFloat64(m.Errors.WithLabelValues("PLAN-002", "graph")); got != 1 {
		t.Errorf("errors = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.Errors); got != 1 {
		t.Errorf("error series = %d, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	// None of these may panic.
	m.ObserveCommand("plan", true, time.Second)
	m.ObserveStage("graph", time.Millisecond)
	m.ObserveDecomposition(time.Millisecond, &Decomposition{})
	m.ObserveTransition("PENDING", "WRITING_TEST", false)
	m.ObserveError("PLAN-001", "synthesize")
}

func TestCommandMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveCommand("plan", true, 200*time.Millisecond)
	m.ObserveCommand("plan", false, 100*time.Millisecond)

	expected := `
		# HELP specplan_command_executions_total Total number of command executions
		# TYPE specplan_command_executions_total counter
		specplan_command_executions_total{command="plan",success="false"} 1
		specplan_command_executions_total{command="plan",success="true"} 1
	`
	if err := testutil.CollectAndCompare(m.CommandExecutions, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
}

func TestWriteTextfile(t *testing.T) {
	reg, m := NewRegistry()
	m.ObserveStage("graph", time.Millisecond)

	path := filepath.Join(t.TempDir(), "specplan.prom")
	if err := WriteTextfile(path, reg); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `specplan_stage_duration_seconds_count{stage="graph"} 1`) {
		t.Errorf("textfile missing stage histogram:\n%s", data)
	}
}
