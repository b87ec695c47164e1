package plan

import (
	"slices"

	"github.com/felixgeelhaar/specplan/internal/domain"
	"github.com/felixgeelhaar/specplan/internal/errors"
)

// DefaultMaxBatchSize bounds how many tasks may start together.
const DefaultMaxBatchSize = 7

// PlanBatches level-schedules the graph into ordered batches. Ready tasks
// are taken by descending priority, then ascending id; tasks beyond
// maxBatchSize wait for the next batch. A task that is not parallel
// eligible always runs alone. Two tasks in one batch may not own the same
// resource.
func PlanBatches(g *Graph, maxBatchSize int) ([]Batch, error) {
	if maxBatchSize < 1 {
		maxBatchSize = DefaultMaxBatchSize
	}

	remaining := make(map[domain.TaskID]int, g.Len())
	var ready []Task
	for _, t := range g.tasks {
		remaining[t.ID] = len(t.Dependencies)
		if len(t.Dependencies) == 0 {
			ready = append(ready, t)
		}
	}

	batches := []Batch{}
	for len(ready) > 0 {
		slices.SortFunc(ready, byPriorityThenID)

		chosen, deferred := selectBatch(ready, maxBatchSize)
		if err := checkOwnership(chosen); err != nil {
			return nil, err
		}

		batch := make(Batch, len(chosen))
		for i, t := range chosen {
			batch[i] = t.ID
		}
		slices.SortFunc(batch, domain.CompareTaskIDs)
		batches = append(batches, batch)

		// Dependents unlocked by this batch join the ready set only now, so
		// they land in a strictly later batch.
		ready = deferred
		for _, id := range batch {
			for _, d := range g.dependents[id] {
				remaining[d]--
				if remaining[d] == 0 {
					ready = append(ready, g.tasks[g.index[d]])
				}
			}
		}
	}

	return batches, nil
}

// selectBatch takes the head of the sorted ready list. An exclusive task at
// the head runs alone; otherwise exclusive tasks are skipped and wait.
func selectBatch(ready []Task, maxBatchSize int) (chosen, deferred []Task) {
	if !ready[0].ParallelEligible {
		return ready[:1:1], slices.Clone(ready[1:])
	}
	for _, t := range ready {
		if t.ParallelEligible && len(chosen) < maxBatchSize {
			chosen = append(chosen, t)
			continue
		}
		deferred = append(deferred, t)
	}
	return chosen, deferred
}

func byPriorityThenID(a, b Task) int {
	if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
		return rb - ra
	}
	return domain.CompareTaskIDs(a.ID, b.ID)
}

// checkOwnership rejects a batch in which two tasks own the same resource.
// Pairs are reported in ascending id order.
func checkOwnership(batch []Task) error {
	sorted := slices.Clone(batch)
	slices.SortFunc(sorted, func(a, b Task) int { return domain.CompareTaskIDs(a.ID, b.ID) })

	owner := make(map[string]domain.TaskID)
	for _, t := range sorted {
		for _, res := range t.Owns {
			if prev, taken := owner[res]; taken && prev != t.ID {
				return &errors.ResourceConflictError{TaskA: prev.String(), TaskB: t.ID.String(), Resource: res}
			}
			owner[res] = t.ID
		}
	}
	return nil
}
