package plan

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/felixgeelhaar/specplan/internal/domain"
	"github.com/felixgeelhaar/specplan/internal/errors"
)

// Graph is a validated DAG over tasks. It is immutable once built; every
// accessor returns copies.
type Graph struct {
	tasks []Task
	index map[domain.TaskID]int
	// dependents maps a task to the tasks that list it as a dependency.
	dependents map[domain.TaskID][]domain.TaskID
	edges      []Edge
}

// BuildGraph validates the task set and builds the dependency graph.
// Checks run in order: duplicate ids, cycles, dangling references and the
// test-first rule. Any failure discards the whole candidate graph.
func BuildGraph(tasks []Task) (*Graph, error) {
	g := &Graph{
		tasks:      make([]Task, len(tasks)),
		index:      make(map[domain.TaskID]int, len(tasks)),
		dependents: make(map[domain.TaskID][]domain.TaskID),
	}
	copy(g.tasks, tasks)
	slices.SortStableFunc(g.tasks, func(a, b Task) int { return domain.CompareTaskIDs(a.ID, b.ID) })

	for i, t := range g.tasks {
		if err := t.Kind.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrCodePlanInvalid, fmt.Sprintf("task %s", t.ID), err)
		}
		if err := t.SizeCategory.Validate(); err != nil {
			return nil, &errors.TaskSizeViolation{RequirementID: t.RequirementID.String(), EstimatedMinutes: t.EstimatedMinutes}
		}
		if _, dup := g.index[t.ID]; dup {
			return nil, errors.New(errors.ErrCodePlanInvalid, fmt.Sprintf("duplicate task id %s", t.ID))
		}
		g.index[t.ID] = i
		g.tasks[i].Dependencies = sortedIDs(slices.Clone(t.Dependencies))
	}

	if err := g.detectCycle(); err != nil {
		return nil, err
	}

	for _, t := range g.tasks {
		for _, dep := range t.Dependencies {
			if _, ok := g.index[dep]; !ok {
				return nil, &errors.InvalidDependencyReference{TaskID: t.ID.String(), MissingID: dep.String()}
			}
		}
		for _, inf := range t.InformedBy {
			if _, ok := g.index[inf]; !ok {
				return nil, &errors.InvalidDependencyReference{TaskID: t.ID.String(), MissingID: inf.String()}
			}
		}
	}

	if err := g.checkTestFirst(); err != nil {
		return nil, err
	}

	for _, t := range g.tasks {
		for _, dep := range t.Dependencies {
			g.dependents[dep] = append(g.dependents[dep], t.ID)
			g.edges = append(g.edges, Edge{From: dep, To: t.ID, Kind: EdgeBlocks})
		}
		for _, inf := range t.InformedBy {
			g.edges = append(g.edges, Edge{From: inf, To: t.ID, Kind: EdgeInforms})
		}
	}
	// Tasks are visited in ascending id order, so every dependents list is
	// already sorted.
	slices.SortStableFunc(g.edges, func(a, b Edge) int {
		if c := domain.CompareTaskIDs(a.From, b.From); c != 0 {
			return c
		}
		if c := domain.CompareTaskIDs(a.To, b.To); c != 0 {
			return c
		}
		return cmp.Compare(a.Kind, b.Kind)
	})

	return g, nil
}

const (
	white = iota
	gray
	black
)

// detectCycle runs an iterative three-color DFS along dependency edges.
// On a back edge it returns the gray-stack slice from the revisited task to
// the current one, closed by the revisited task.
func (g *Graph) detectCycle() error {
	color := make(map[domain.TaskID]int, len(g.tasks))

	type frame struct {
		id   domain.TaskID
		next int
	}

	for _, root := range g.tasks {
		if color[root.ID] != white {
			continue
		}

		stack := []frame{{id: root.ID}}
		color[root.ID] = gray

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := g.tasks[g.index[top.id]].Dependencies

			if top.next >= len(deps) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}

			dep := deps[top.next]
			top.next++

			if _, known := g.index[dep]; !known {
				continue
			}

			switch color[dep] {
			case white:
				color[dep] = gray
				stack = append(stack, frame{id: dep})
			case gray:
				start := 0
				for i, f := range stack {
					if f.id == dep {
						start = i
						break
					}
				}
				path := make([]string, 0, len(stack)-start+1)
				for _, f := range stack[start:] {
					path = append(path, f.id.String())
				}
				path = append(path, dep.String())
				return &errors.CycleDetectedError{Path: path}
			}
		}
	}

	return nil
}

// checkTestFirst requires every implementation task of a non-exempt
// requirement to depend on a test task of the same requirement.
func (g *Graph) checkTestFirst() error {
	for _, t := range g.tasks {
		if t.Kind != domain.KindImplementation || t.Exempt != "" {
			continue
		}
		ok := false
		for _, dep := range t.Dependencies {
			d := g.tasks[g.index[dep]]
			if d.Kind == domain.KindTest && d.RequirementID == t.RequirementID {
				ok = true
				break
			}
		}
		if !ok {
			return &errors.TestFirstViolation{TaskID: t.ID.String(), RequirementID: t.RequirementID.String()}
		}
	}
	return nil
}

// Len returns the number of tasks
func (g *Graph) Len() int {
	return len(g.tasks)
}

// Tasks returns a copy of the tasks in ascending id order
func (g *Graph) Tasks() []Task {
	out := make([]Task, len(g.tasks))
	copy(out, g.tasks)
	return out
}

// Task looks up a task by id
func (g *Graph) Task(id domain.TaskID) (Task, bool) {
	i, ok := g.index[id]
	if !ok {
		return Task{}, false
	}
	return g.tasks[i], true
}

// IDs returns all task ids in ascending order
func (g *Graph) IDs() []domain.TaskID {
	out := make([]domain.TaskID, len(g.tasks))
	for i, t := range g.tasks {
		out[i] = t.ID
	}
	return out
}

// Dependencies returns the direct blocks-dependencies of id
func (g *Graph) Dependencies(id domain.TaskID) []domain.TaskID {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	return slices.Clone(g.tasks[i].Dependencies)
}

// Dependents returns the tasks that directly depend on id
func (g *Graph) Dependents(id domain.TaskID) []domain.TaskID {
	return slices.Clone(g.dependents[id])
}

// TransitiveDependents returns every task that directly or transitively
// depends on id, in ascending id order.
func (g *Graph) TransitiveDependents(id domain.TaskID) []domain.TaskID {
	seen := make(map[domain.TaskID]bool)
	queue := []domain.TaskID{id}
	var out []domain.TaskID

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range g.dependents[cur] {
			if seen[d] {
				continue
			}
			seen[d] = true
			out = append(out, d)
			queue = append(queue, d)
		}
	}

	slices.SortFunc(out, domain.CompareTaskIDs)
	return out
}

// Edges returns all edges sorted by (from, to, kind)
func (g *Graph) Edges() []Edge {
	return slices.Clone(g.edges)
}

// withTasks returns a graph sharing structure with g but carrying the given
// task annotations. ids and dependencies must be unchanged.
func (g *Graph) withTasks(tasks []Task) *Graph {
	clone := *g
	clone.tasks = make([]Task, len(tasks))
	copy(clone.tasks, tasks)
	return &clone
}
