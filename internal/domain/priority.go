package domain

import (
	"fmt"
	"strings"
)

// Priority represents a requirement or task priority level (MoSCoW).
// This is a value object that enforces valid priority values.
type Priority string

// Valid priority levels
const (
	PriorityMust   Priority = "must"   // Critical - must have
	PriorityShould Priority = "should" // Important - should have
	PriorityCould  Priority = "could"  // Nice to have - could have
)

// NewPriority parses a priority. The legacy P0/P1/P2 levels map onto
// must/should/could and an empty value defaults to should.
func NewPriority(value string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return PriorityShould, nil
	case "must", "p0":
		return PriorityMust, nil
	case "should", "p1":
		return PriorityShould, nil
	case "could", "p2":
		return PriorityCould, nil
	}
	return "", fmt.Errorf("invalid priority %q: must be must, should or could (or P0, P1, P2)", value)
}

// Validate checks if the priority is valid
func (p Priority) Validate() error {
	switch p {
	case PriorityMust, PriorityShould, PriorityCould:
		return nil
	default:
		return fmt.Errorf("invalid priority %q: must be must, should or could", string(p))
	}
}

// String returns the string representation
func (p Priority) String() string {
	return string(p)
}

// IsHigherThan checks if this priority is higher than another
func (p Priority) IsHigherThan(other Priority) bool {
	return p.Rank() > other.Rank()
}

// IsLowerThan checks if this priority is lower than another
func (p Priority) IsLowerThan(other Priority) bool {
	return p.Rank() < other.Rank()
}

// Rank returns the numeric rank of a priority (higher = more important)
func (p Priority) Rank() int {
	switch p {
	case PriorityMust:
		return 3
	case PriorityShould:
		return 2
	case PriorityCould:
		return 1
	default:
		return 0
	}
}
