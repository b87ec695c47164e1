package domain

import "fmt"

// TaskKind is the closed set of task variants a requirement expands into.
// Switches over TaskKind must handle every value in AllTaskKinds and treat
// anything else as an error.
type TaskKind string

const (
	KindTest           TaskKind = "test"
	KindImplementation TaskKind = "implementation"
	KindIntegration    TaskKind = "integration"
	KindDoc            TaskKind = "doc"
)

// AllTaskKinds lists the kinds in task ID assignment order.
var AllTaskKinds = []TaskKind{KindTest, KindImplementation, KindIntegration, KindDoc}

// Validate rejects kinds outside the closed set.
func (k TaskKind) Validate() error {
	switch k {
	case KindTest, KindImplementation, KindIntegration, KindDoc:
		return nil
	default:
		return fmt.Errorf("unknown task kind %q", string(k))
	}
}

// String returns the string representation
func (k TaskKind) String() string {
	return string(k)
}
