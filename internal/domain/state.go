package domain

import "fmt"

// TaskState is a position in the task lifecycle.
type TaskState string

const (
	StatePending      TaskState = "PENDING"
	StateBlocked      TaskState = "BLOCKED"
	StateWritingTest  TaskState = "WRITING_TEST"
	StateTestFailing  TaskState = "TEST_FAILING"
	StateImplementing TaskState = "IMPLEMENTING"
	StateTestPassing  TaskState = "TEST_PASSING"
	StateReviewing    TaskState = "REVIEWING"
	StateNeedsRework  TaskState = "NEEDS_REWORK"
	StateRefactoring  TaskState = "REFACTORING"
	StatePaused       TaskState = "PAUSED"
	StateCancelled    TaskState = "CANCELLED"
	StateFailed       TaskState = "FAILED"
	StateDone         TaskState = "DONE"
)

// AllTaskStates returns every lifecycle state.
func AllTaskStates() []TaskState {
	return []TaskState{
		StatePending, StateBlocked, StateWritingTest, StateTestFailing,
		StateImplementing, StateTestPassing, StateReviewing, StateNeedsRework,
		StateRefactoring, StatePaused, StateCancelled, StateFailed, StateDone,
	}
}

// Validate checks the state is one of the known values.
func (s TaskState) Validate() error {
	for _, known := range AllTaskStates() {
		if s == known {
			return nil
		}
	}
	return fmt.Errorf("unknown task state %q", string(s))
}

// IsTerminal reports whether no further transitions are possible.
func (s TaskState) IsTerminal() bool {
	return s == StateDone || s == StateCancelled || s == StateFailed
}

// IsFailure reports whether the state poisons dependents.
func (s TaskState) IsFailure() bool {
	return s == StateCancelled || s == StateFailed
}

// String returns the string representation
func (s TaskState) String() string {
	return string(s)
}
