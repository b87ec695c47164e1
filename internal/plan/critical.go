package plan

import (
	"slices"

	"github.com/felixgeelhaar/specplan/internal/domain"
)

// CriticalPath is the longest duration-weighted chain through the graph.
type CriticalPath struct {
	Path            []domain.TaskID `json:"path"`
	DurationMinutes int             `json:"durationMinutes"`
}

// TopologicalOrder returns the tasks in Kahn order. Among ready tasks the
// smallest id always goes first, so the order is fully determined by the
// graph.
func TopologicalOrder(g *Graph) []domain.TaskID {
	indegree := make(map[domain.TaskID]int, g.Len())
	var ready []domain.TaskID

	for _, t := range g.tasks {
		indegree[t.ID] = len(t.Dependencies)
		if len(t.Dependencies) == 0 {
			ready = append(ready, t.ID)
		}
	}

	order := make([]domain.TaskID, 0, g.Len())
	for len(ready) > 0 {
		cur := ready[0]
		ready = ready[1:]
		order = append(order, cur)

		for _, d := range g.dependents[cur] {
			indegree[d]--
			if indegree[d] == 0 {
				pos, _ := slices.BinarySearchFunc(ready, d, domain.CompareTaskIDs)
				ready = slices.Insert(ready, pos, d)
			}
		}
	}

	return order
}

// AnalyzeCriticalPath computes the longest path with task durations as node
// weights. Ties between predecessors, and between candidate end points, go
// to the smallest task id.
func AnalyzeCriticalPath(g *Graph) CriticalPath {
	if g.Len() == 0 {
		return CriticalPath{Path: []domain.TaskID{}}
	}

	longest := make(map[domain.TaskID]int, g.Len())
	pred := make(map[domain.TaskID]domain.TaskID, g.Len())

	for _, id := range TopologicalOrder(g) {
		t := g.tasks[g.index[id]]
		best, hasPred := 0, false
		// Dependencies are sorted ascending; strict > keeps the smallest id on ties.
		for _, d := range t.Dependencies {
			if !hasPred || longest[d] > best {
				best, hasPred = longest[d], true
				pred[id] = d
			}
		}
		longest[id] = t.EstimatedMinutes + best
	}

	var end domain.TaskID
	total := -1
	for _, t := range g.tasks {
		if longest[t.ID] > total {
			total = longest[t.ID]
			end = t.ID
		}
	}

	path := []domain.TaskID{end}
	cur := end
	for {
		p, ok := pred[cur]
		if !ok {
			break
		}
		path = append(path, p)
		cur = p
	}
	slices.Reverse(path)

	return CriticalPath{Path: path, DurationMinutes: total}
}
