package plan

import (
	"github.com/felixgeelhaar/specplan/internal/domain"
	"github.com/felixgeelhaar/specplan/internal/spec"
)

// Task represents a single atomic unit of work derived from a requirement
type Task struct {
	ID               domain.TaskID        `json:"id"`
	Title            string               `json:"title"`
	Kind             domain.TaskKind      `json:"kind"`
	RequirementID    domain.RequirementID `json:"requirementId"`
	Priority         domain.Priority      `json:"priority"`
	SizeCategory     domain.SizeCategory  `json:"sizeCategory"`
	EstimatedMinutes int                  `json:"estimatedMinutes"`
	Confidence       domain.Confidence    `json:"confidence"`
	ContextSize      int                  `json:"contextSize"`

	// Dependencies are blocks-edges, sorted by ascending task id.
	Dependencies []domain.TaskID `json:"dependencies"`

	// InformedBy are informs-edges; they never affect scheduling.
	InformedBy []domain.TaskID `json:"informedBy,omitempty"`

	ParallelEligible bool             `json:"parallelEligible"`
	Owns             []string         `json:"owns,omitempty"`
	Exempt           spec.Exemption   `json:"exempt,omitempty"`
	EpicID           string           `json:"epicId"`
	StoryID          string           `json:"storyId,omitempty"`
	State            domain.TaskState `json:"state"`
}

// DependsOn reports whether id is a direct blocks-dependency of t.
func (t Task) DependsOn(id domain.TaskID) bool {
	for _, d := range t.Dependencies {
		if d == id {
			return true
		}
	}
	return false
}

// EdgeKind distinguishes scheduling edges from informational ones.
type EdgeKind string

const (
	EdgeBlocks  EdgeKind = "blocks"
	EdgeInforms EdgeKind = "informs"
)

// Edge points from a prerequisite to the task that waits on (or is
// informed by) it.
type Edge struct {
	From domain.TaskID `json:"from"`
	To   domain.TaskID `json:"to"`
	Kind EdgeKind      `json:"kind"`
}

// Batch is a set of task ids eligible to start together, in ascending id order.
type Batch []domain.TaskID

// ExecutionPlan is the ordered batch partition plus the critical path.
type ExecutionPlan struct {
	Batches                      []Batch         `json:"batches"`
	CriticalPath                 []domain.TaskID `json:"criticalPath"`
	TotalCriticalDurationMinutes int             `json:"totalCriticalDurationMinutes"`
}

// BandCounts counts tasks per confidence band.
type BandCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// WarningCode identifies a class of non-fatal structure or coverage finding.
type WarningCode string

const (
	WarnExemptRequirement    WarningCode = "exempt_requirement"
	WarnLowConfidenceLarge   WarningCode = "low_confidence_large_task"
	WarnUnresolvedInformedBy WarningCode = "unresolved_informed_by"
	WarnIsolatedCrossCutting WarningCode = "isolated_cross_cutting"
	WarnSerialBottleneck     WarningCode = "serial_bottleneck"
)

// Warning is a non-fatal finding reported in the AnalysisReport.
type Warning struct {
	Code    WarningCode `json:"code"`
	Subject string      `json:"subject"`
	Message string      `json:"message"`
}

// AnalysisReport summarizes confidence distribution and structural warnings.
type AnalysisReport struct {
	ByConfidenceBand     BandCounts      `json:"byConfidenceBand"`
	LowConfidenceTaskIDs []domain.TaskID `json:"lowConfidenceTaskIds"`
	Warnings             []Warning       `json:"warnings"`
}
