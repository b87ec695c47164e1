package plan

import (
	"fmt"

	"github.com/felixgeelhaar/specplan/internal/domain"
	"github.com/felixgeelhaar/specplan/internal/spec"
)

// task builds a standalone test-kind task T<id> depending on deps. Test
// tasks are not subject to the test-first rule, which keeps synthetic
// graphs simple.
func task(id int, deps ...int) Task {
	t := Task{
		ID:               domain.NewTaskID(id),
		Title:            fmt.Sprintf("task %d", id),
		Kind:             domain.KindTest,
		RequirementID:    domain.RequirementID(fmt.Sprintf("R%d", id)),
		Priority:         domain.PriorityShould,
		SizeCategory:     domain.SizeM,
		EstimatedMinutes: domain.SizeM.NominalMinutes(),
		Confidence:       80,
		Dependencies:     []domain.TaskID{},
		ParallelEligible: true,
		State:            domain.StatePending,
	}
	for _, d := range deps {
		t.Dependencies = append(t.Dependencies, domain.NewTaskID(d))
	}
	return t
}

func ids(ns ...int) []domain.TaskID {
	out := make([]domain.TaskID, len(ns))
	for i, n := range ns {
		out[i] = domain.NewTaskID(n)
	}
	return out
}

func req(id string, confidence float64) spec.Requirement {
	return spec.Requirement{
		ID:         domain.RequirementID(id),
		Title:      "Requirement " + id,
		Priority:   domain.PriorityMust,
		Confidence: domain.Confidence(confidence),
		EpicID:     "E1",
		StoryID:    "S1",
	}
}

// exampleRequirements is the three-requirement story used throughout the
// pipeline tests: FR-003 is cross-cutting, FR-002 has low confidence.
func exampleRequirements() []spec.Requirement {
	r3 := req("FR-003", 95)
	r3.CrossCutting = true
	return []spec.Requirement{req("FR-001", 90), req("FR-002", 60), r3}
}

func exampleDocument() *spec.Document {
	c1, c2, c3 := 90.0, 60.0, 95.0
	return &spec.Document{
		Product: "todo",
		Epics: []spec.Epic{{
			ID: "E1",
			Stories: []spec.Story{{
				ID: "S1",
				Requirements: []spec.RequirementSpec{
					{ID: "FR-001", Title: "Create item", Priority: "must", Confidence: &c1},
					{ID: "FR-002", Title: "List items", Priority: "must", Confidence: &c2},
					{ID: "FR-003", Title: "Audit trail", Priority: "must", Confidence: &c3, CrossCutting: true},
				},
			}},
		}},
	}
}
