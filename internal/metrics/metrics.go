package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for specplan
type Metrics struct {
	// Command execution metrics
	CommandExecutions *prometheus.CounterVec
	CommandDuration   *prometheus.HistogramVec

	// Decomposition metrics
	Decompositions        *prometheus.CounterVec
	DecompositionDuration *prometheus.HistogramVec
	StageDuration         *prometheus.HistogramVec
	RequirementCount      *prometheus.HistogramVec
	TaskCount             *prometheus.HistogramVec
	BatchCount            *prometheus.HistogramVec
	CriticalPathMinutes   *prometheus.HistogramVec
	LowConfidenceTasks    *prometheus.CounterVec
	Warnings              *prometheus.CounterVec

	// Lifecycle metrics
	Transitions  *prometheus.CounterVec
	Propagations *prometheus.CounterVec

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		// Command metrics
		CommandExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "specplan_command_executions_total",
				Help: "Total number of command executions",
			},
			[]string{"command", "success"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "specplan_command_duration_seconds",
				Help:    "Command execution duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),

		// Decomposition metrics
		Decompositions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "specplan_decompositions_total",
				Help: "Total number of decomposition runs",
			},
			[]string{"success"},
		),
		DecompositionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "specplan_decomposition_duration_seconds",
				Help:    "End-to-end decomposition duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "specplan_stage_duration_seconds",
				Help:    "Pipeline stage duration in seconds",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
			[]string{"stage"},
		),
		RequirementCount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "specplan_requirement_count",
				Help:    "Number of requirements per decomposition",
				Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
			},
			[]string{},
		),
		TaskCount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "specplan_task_count",
				Help:    "Number of synthesized tasks per decomposition, by kind",
				Buckets: []float64{1, 5, 10, 20, 50, 100, 200},
			},
			[]string{"kind"},
		),
		BatchCount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "specplan_batch_count",
				Help:    "Number of batches per execution plan",
				Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
			},
			[]string{},
		),
		CriticalPathMinutes: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "specplan_critical_path_minutes",
				Help:    "Total critical path duration in minutes",
				Buckets: []float64{30, 60, 120, 240, 480, 960, 1920},
			},
			[]string{},
		),
		LowConfidenceTasks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "specplan_low_confidence_tasks_total",
				Help: "Total number of tasks planned with low confidence",
			},
			[]string{"kind"},
		),
		Warnings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "specplan_warnings_total",
				Help: "Total number of analysis warnings by code",
			},
			[]string{"warning"},
		),

		// Lifecycle metrics
		Transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "specplan_task_transitions_total",
				Help: "Total number of task state transitions",
			},
			[]string{"from", "to"},
		),
		Propagations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "specplan_task_propagations_total",
				Help: "Total number of tasks blocked or released by propagation",
			},
			[]string{"to"},
		),

		// Error metrics (by structured error code)
		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "specplan_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code", "component"},
		),
	}
}

// The recording helpers below accept a nil receiver so callers can pass
// metrics around optionally.

// ObserveCommand records a CLI command execution.
func (m *Metrics) ObserveCommand(command string, success bool, d time.Duration) {
	if m == nil {
		return
	}
	m.CommandExecutions.WithLabelValues(command, boolLabel(success)).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(d.Seconds())
}

// ObserveStage records the duration of one pipeline stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// Decomposition summarizes a successful run for ObserveDecomposition.
type Decomposition struct {
	Requirements        int
	TasksByKind         map[string]int
	LowConfidenceByKind map[string]int
	Batches             int
	CriticalPathMinutes int
	Warnings            []string
}

// ObserveDecomposition records a finished run. A nil summary marks a failure.
func (m *Metrics) ObserveDecomposition(d time.Duration, summary *Decomposition) {
	if m == nil {
		return
	}
	m.Decompositions.WithLabelValues(boolLabel(summary != nil)).Inc()
	m.DecompositionDuration.WithLabelValues().Observe(d.Seconds())
	if summary == nil {
		return
	}

	m.RequirementCount.WithLabelValues().Observe(float64(summary.Requirements))
	for kind, n := range summary.TasksByKind {
		m.TaskCount.WithLabelValues(kind).Observe(float64(n))
	}
	for kind, n := range summary.LowConfidenceByKind {
		m.LowConfidenceTasks.WithLabelValues(kind).Add(float64(n))
	}
	m.BatchCount.WithLabelValues().Observe(float64(summary.Batches))
	m.CriticalPathMinutes.WithLabelValues().Observe(float64(summary.CriticalPathMinutes))
	for _, w := range summary.Warnings {
		m.Warnings.WithLabelValues(w).Inc()
	}
}

// ObserveTransition records one lifecycle state change. Propagated changes
// are also counted under Propagations.
func (m *Metrics) ObserveTransition(from, to string, propagated bool) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(from, to).Inc()
	if propagated {
		m.Propagations.WithLabelValues(to).Inc()
	}
}

// ObserveError records an error by code.
func (m *Metrics) ObserveError(code, component string) {
	if m == nil || code == "" {
		return
	}
	m.Errors.WithLabelValues(code, component).Inc()
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
