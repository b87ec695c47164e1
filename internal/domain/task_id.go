package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

// TaskID identifies a synthesized task. IDs are monotonic: T001, T002, ...
// Sequences above 999 simply grow in width (T1000).
type TaskID string

var taskIDPattern = regexp.MustCompile(`^T[0-9]{3,}$`)

// NewTaskID formats a task ID from its sequence number (1-based).
func NewTaskID(seq int) TaskID {
	return TaskID(fmt.Sprintf("T%03d", seq))
}

// ParseTaskID validates a task ID string.
func ParseTaskID(value string) (TaskID, error) {
	id := TaskID(value)
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

// Validate checks if the task ID is valid
func (t TaskID) Validate() error {
	if t == "" {
		return fmt.Errorf("task ID cannot be empty")
	}
	if !taskIDPattern.MatchString(string(t)) {
		return fmt.Errorf("task ID %q must match T followed by at least three digits", string(t))
	}
	return nil
}

// Seq returns the numeric part of the ID, or -1 when the ID is malformed.
func (t TaskID) Seq() int {
	if !taskIDPattern.MatchString(string(t)) {
		return -1
	}
	n, err := strconv.Atoi(string(t[1:]))
	if err != nil {
		return -1
	}
	return n
}

// Less orders task IDs by sequence number. Malformed IDs sort after valid
// ones and are compared lexically among themselves.
func (t TaskID) Less(other TaskID) bool {
	a, b := t.Seq(), other.Seq()
	switch {
	case a >= 0 && b >= 0:
		return a < b
	case a >= 0:
		return true
	case b >= 0:
		return false
	default:
		return t < other
	}
}

// String returns the string representation
func (t TaskID) String() string {
	return string(t)
}

// CompareTaskIDs is a three-way comparison suitable for slices.SortFunc.
func CompareTaskIDs(a, b TaskID) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}
