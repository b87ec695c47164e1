package lifecycle

import (
	"slices"

	"github.com/felixgeelhaar/specplan/internal/domain"
)

// ValidTransitions lists the forward edges of the task state machine.
// Pausing, cancelling and failing are allowed from every non-terminal state
// and are handled by CanTransition rather than listed here.
var ValidTransitions = map[domain.TaskState][]domain.TaskState{
	domain.StatePending:      {domain.StateBlocked, domain.StateWritingTest},
	domain.StateBlocked:      {domain.StatePending},
	domain.StateWritingTest:  {domain.StateTestFailing},
	domain.StateTestFailing:  {domain.StateImplementing},
	domain.StateImplementing: {domain.StateTestPassing, domain.StateFailed},
	domain.StateTestPassing:  {domain.StateReviewing, domain.StateRefactoring},
	domain.StateReviewing:    {domain.StateNeedsRework, domain.StateDone},
	domain.StateNeedsRework:  {domain.StateImplementing},
	domain.StateRefactoring:  {domain.StateTestPassing, domain.StateReviewing},
	domain.StatePaused:       {},
	domain.StateCancelled:    {},
	domain.StateFailed:       {},
	domain.StateDone:         {},
}

// CanTransition reports whether from may move directly to to. Leaving
// PAUSED is only possible through Resume, which restores the prior state.
func CanTransition(from, to domain.TaskState) bool {
	if from.IsTerminal() {
		return false
	}
	switch to {
	case domain.StateCancelled, domain.StateFailed:
		return true
	case domain.StatePaused:
		return from != domain.StatePaused
	}
	return slices.Contains(ValidTransitions[from], to)
}
