package errors

import (
	"fmt"
	"strings"
)

// MalformedSpecError reports a requirement that cannot be normalized,
// typically because its id or confidence is missing.
type MalformedSpecError struct {
	// Location is a human readable path such as "epic E1 / story S2 / requirement #3".
	Location      string
	RequirementID string
	Field         string
	Reason        string
}

func (e *MalformedSpecError) Error() string {
	subject := e.Location
	if e.RequirementID != "" {
		subject = fmt.Sprintf("%s (%s)", e.Location, e.RequirementID)
	}
	return fmt.Sprintf("[%s] malformed spec at %s: %s %s", e.Code(), subject, e.Field, e.Reason)
}

func (e *MalformedSpecError) Code() ErrorCode { return ErrCodeSpecMalformed }

func (e *MalformedSpecError) Suggestions() []string {
	return []string{fmt.Sprintf("Provide a valid %s for every requirement", e.Field)}
}

// ConfidenceOutOfRange reports a confidence score outside [0,100].
type ConfidenceOutOfRange struct {
	RequirementID string
	Value         float64
}

func (e *ConfidenceOutOfRange) Error() string {
	return fmt.Sprintf("[%s] requirement %s: confidence %v outside [0,100]", e.Code(), e.RequirementID, e.Value)
}

func (e *ConfidenceOutOfRange) Code() ErrorCode { return ErrCodeConfidenceRange }

func (e *ConfidenceOutOfRange) Suggestions() []string {
	return []string{"Confidence scores are percentages between 0 and 100"}
}

// TaskSizeViolation reports a requirement whose estimate maps to XL.
type TaskSizeViolation struct {
	RequirementID    string
	EstimatedMinutes int
}

func (e *TaskSizeViolation) Error() string {
	return fmt.Sprintf("[%s] requirement %s is too large (%d minutes maps to XL)", e.Code(), e.RequirementID, e.EstimatedMinutes)
}

func (e *TaskSizeViolation) Code() ErrorCode { return ErrCodeTaskSizeViolation }

func (e *TaskSizeViolation) Suggestions() []string {
	return []string{fmt.Sprintf("Split %s into smaller requirements upstream", e.RequirementID)}
}

// CycleDetectedError carries the full cycle, first node repeated at the end.
type CycleDetectedError struct {
	Path []string
}

func (e *CycleDetectedError) Error() string {
	return fmt.Sprintf("[%s] dependency cycle detected: %s", e.Code(), strings.Join(e.Path, " -> "))
}

func (e *CycleDetectedError) Code() ErrorCode { return ErrCodeCycleDetected }

func (e *CycleDetectedError) Suggestions() []string {
	return []string{"Remove one of the dependsOn hints along the cycle"}
}

// InvalidDependencyReference reports a dependency id absent from the task set.
type InvalidDependencyReference struct {
	TaskID    string
	MissingID string
}

func (e *InvalidDependencyReference) Error() string {
	return fmt.Sprintf("[%s] task %s depends on unknown id %s", e.Code(), e.TaskID, e.MissingID)
}

func (e *InvalidDependencyReference) Code() ErrorCode { return ErrCodeInvalidDependency }

func (e *InvalidDependencyReference) Suggestions() []string {
	return []string{fmt.Sprintf("Remove %s from dependsOn or add the missing requirement", e.MissingID)}
}

// TestFirstViolation reports an implementation task with no test dependency
// from its own requirement.
type TestFirstViolation struct {
	TaskID        string
	RequirementID string
}

func (e *TestFirstViolation) Error() string {
	return fmt.Sprintf("[%s] implementation task %s of %s does not depend on a test task", e.Code(), e.TaskID, e.RequirementID)
}

func (e *TestFirstViolation) Code() ErrorCode { return ErrCodeTestFirstViolation }

func (e *TestFirstViolation) Suggestions() []string {
	return []string{"Mark the requirement exempt (spike, hotfix or poc) or keep its test task"}
}

// ResourceConflictError reports two co-batched tasks owning the same resource.
type ResourceConflictError struct {
	TaskA    string
	TaskB    string
	Resource string
}

func (e *ResourceConflictError) Error() string {
	return fmt.Sprintf("[%s] tasks %s and %s both own %s in the same batch", e.Code(), e.TaskA, e.TaskB, e.Resource)
}

func (e *ResourceConflictError) Code() ErrorCode { return ErrCodeResourceConflict }

func (e *ResourceConflictError) Suggestions() []string {
	return []string{
		"Add a dependsOn hint between the two requirements",
		"Mark one requirement exclusive so it runs alone",
	}
}

// InvalidStateTransition is returned when a lifecycle move is not allowed.
// It is recoverable: the task keeps its previous state.
type InvalidStateTransition struct {
	TaskID string
	From   string
	To     string
}

func (e *InvalidStateTransition) Error() string {
	return fmt.Sprintf("[%s] task %s cannot move from %s to %s", e.Code(), e.TaskID, e.From, e.To)
}

func (e *InvalidStateTransition) Code() ErrorCode { return ErrCodeInvalidTransition }

func (e *InvalidStateTransition) Suggestions() []string { return nil }

// UnknownTaskError is returned by the lifecycle manager for ids it does not track.
type UnknownTaskError struct {
	TaskID string
}

func (e *UnknownTaskError) Error() string {
	return fmt.Sprintf("[%s] unknown task %s", e.Code(), e.TaskID)
}

func (e *UnknownTaskError) Code() ErrorCode { return ErrCodeUnknownTask }

func (e *UnknownTaskError) Suggestions() []string { return nil }

var (
	_ Coded = (*Error)(nil)
	_ Coded = (*MalformedSpecError)(nil)
	_ Coded = (*ConfidenceOutOfRange)(nil)
	_ Coded = (*TaskSizeViolation)(nil)
	_ Coded = (*CycleDetectedError)(nil)
	_ Coded = (*InvalidDependencyReference)(nil)
	_ Coded = (*TestFirstViolation)(nil)
	_ Coded = (*ResourceConflictError)(nil)
	_ Coded = (*InvalidStateTransition)(nil)
	_ Coded = (*UnknownTaskError)(nil)
)

// IsBuildError reports whether err is one of the fatal decomposition errors.
func IsBuildError(err error) bool {
	var coded Coded
	if !As(err, &coded) {
		return false
	}
	switch coded.Code() {
	case ErrCodeSpecMalformed, ErrCodeConfidenceRange, ErrCodeTaskSizeViolation,
		ErrCodeCycleDetected, ErrCodeInvalidDependency, ErrCodeResourceConflict,
		ErrCodeTestFirstViolation:
		return true
	}
	return false
}
