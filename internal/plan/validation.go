package plan

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/specplan/internal/domain"
	"github.com/felixgeelhaar/specplan/internal/errors"
)

// Validate checks if the Task is valid according to domain rules
func (t *Task) Validate() error {
	if err := t.ID.Validate(); err != nil {
		return fmt.Errorf("invalid task ID: %w", err)
	}

	if err := t.RequirementID.Validate(); err != nil {
		return fmt.Errorf("invalid requirement ID: %w", err)
	}

	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("title cannot be empty")
	}

	if err := t.Kind.Validate(); err != nil {
		return err
	}

	if err := t.Priority.Validate(); err != nil {
		return fmt.Errorf("invalid priority: %w", err)
	}

	if err := t.SizeCategory.Validate(); err != nil {
		return err
	}

	if t.EstimatedMinutes != t.SizeCategory.NominalMinutes() {
		return fmt.Errorf("estimate %d does not match size %s", t.EstimatedMinutes, t.SizeCategory)
	}

	if err := t.Confidence.Validate(); err != nil {
		return err
	}

	if err := t.State.Validate(); err != nil {
		return err
	}

	return nil
}

// Validate checks the loaded file is a consistent plan: tasks are valid,
// the graph rebuilds, every task is batched exactly once, and batches
// respect dependency order.
func (f *File) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New(errors.ErrCodePlanInvalid, fmt.Sprintf(format, args...)).
			WithSuggestion("Regenerate the plan with 'specplan plan'")
	}

	if f.Version != FileVersion {
		return invalid("unsupported plan version %q", f.Version)
	}

	for i := range f.Tasks {
		if err := f.Tasks[i].Validate(); err != nil {
			return invalid("task at index %d (%s) is invalid: %v", i, f.Tasks[i].ID, err)
		}
	}

	g, err := BuildGraph(f.Tasks)
	if err != nil {
		return err
	}

	batchOf := make(map[domain.TaskID]int, len(f.Tasks))
	for i, b := range f.Plan.Batches {
		for _, id := range b {
			if _, ok := g.Task(id); !ok {
				return invalid("batch %d references unknown task %s", i+1, id)
			}
			if _, dup := batchOf[id]; dup {
				return invalid("task %s appears in more than one batch", id)
			}
			batchOf[id] = i
		}
	}
	if len(batchOf) != g.Len() {
		return invalid("batches cover %d of %d tasks", len(batchOf), g.Len())
	}

	for _, t := range g.Tasks() {
		for _, dep := range t.Dependencies {
			if batchOf[dep] >= batchOf[t.ID] {
				return invalid("task %s is scheduled no later than its dependency %s", t.ID, dep)
			}
		}
	}

	return nil
}

// Graph rebuilds the dependency graph from the stored tasks
func (f *File) Graph() (*Graph, error) {
	return BuildGraph(f.Tasks)
}
