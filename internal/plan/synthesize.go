package plan

import (
	"fmt"

	"github.com/felixgeelhaar/specplan/internal/domain"
	"github.com/felixgeelhaar/specplan/internal/errors"
	"github.com/felixgeelhaar/specplan/internal/spec"
)

// SynthesisOptions controls task synthesis
type SynthesisOptions struct {
	// DefaultSize applies to requirements without an estimate
	DefaultSize domain.SizeCategory
	// DocTasks emits a doc task per requirement unless overridden per requirement
	DocTasks bool
}

// Sizes of the auxiliary task kinds.
const (
	integrationSize = domain.SizeS
	docSize         = domain.SizeXS
)

// Synthesize expands requirements into tasks. Task ids are assigned per
// kind phase: every test task first (in requirement order), then
// implementation, integration and doc tasks. A dependency hint that names
// no requirement of the input fails with InvalidDependencyReference against
// the requirement's first task.
func Synthesize(reqs []spec.Requirement, opts SynthesisOptions) ([]Task, error) {
	if opts.DefaultSize == "" {
		opts.DefaultSize = domain.SizeM
	}
	if err := opts.DefaultSize.Validate(); err != nil {
		return nil, errors.NewConfigInvalidError(fmt.Sprintf("default size: %v", err))
	}

	// Sizing runs first so that an oversized requirement aborts before any
	// task exists.
	sizes := make([]domain.SizeCategory, len(reqs))
	for i, req := range reqs {
		size := opts.DefaultSize
		if req.EstimatedMinutes > 0 {
			size = domain.SizeForMinutes(req.EstimatedMinutes)
		}
		if size == domain.SizeXL {
			return nil, &errors.TaskSizeViolation{
				RequirementID:    req.ID.String(),
				EstimatedMinutes: req.EstimatedMinutes,
			}
		}
		sizes[i] = size
	}

	seq := 0
	next := func() domain.TaskID {
		seq++
		return domain.NewTaskID(seq)
	}

	testIDs := make(map[domain.RequirementID]domain.TaskID, len(reqs))
	implIDs := make(map[domain.RequirementID]domain.TaskID, len(reqs))
	for _, req := range reqs {
		if !req.IsExempt() {
			testIDs[req.ID] = next()
		}
	}
	for _, req := range reqs {
		implIDs[req.ID] = next()
	}

	// Hints live in the requirement id space. They are resolved here so that
	// an unknown reference never reaches the graph as a task id.
	for _, req := range reqs {
		for _, ref := range req.DependsOn {
			if _, ok := implIDs[domain.RequirementID(ref)]; ok {
				continue
			}
			first, ok := testIDs[req.ID]
			if !ok {
				first = implIDs[req.ID]
			}
			return nil, &errors.InvalidDependencyReference{TaskID: first.String(), MissingID: ref}
		}
	}

	hints := func(req spec.Requirement) []domain.TaskID {
		deps := make([]domain.TaskID, 0, len(req.DependsOn))
		for _, ref := range req.DependsOn {
			deps = append(deps, implIDs[domain.RequirementID(ref)])
		}
		return deps
	}

	var tasks []Task

	for i, req := range reqs {
		id, ok := testIDs[req.ID]
		if !ok {
			continue
		}
		t := baseTask(req, id, domain.KindTest, sizes[i])
		t.Title = fmt.Sprintf("Write failing tests for %s: %s", req.ID, req.Title)
		t.Dependencies = sortedIDs(hints(req))
		t.Owns = cloneStrings(req.TestOwns)
		tasks = append(tasks, t)
	}

	for i, req := range reqs {
		t := baseTask(req, implIDs[req.ID], domain.KindImplementation, sizes[i])
		t.Title = fmt.Sprintf("Implement %s: %s", req.ID, req.Title)
		deps := hints(req)
		if testID, ok := testIDs[req.ID]; ok {
			deps = append(deps, testID)
		}
		t.Dependencies = sortedIDs(deps)
		t.Owns = cloneStrings(req.Owns)
		t.InformedBy = informers(req, implIDs)
		tasks = append(tasks, t)
	}

	for _, req := range reqs {
		if !req.CrossCutting {
			continue
		}
		t := baseTask(req, next(), domain.KindIntegration, integrationSize)
		t.Title = fmt.Sprintf("Integrate %s across story %s", req.ID, groupLabel(req))

		var deps []domain.TaskID
		for _, peer := range reqs {
			if sameGroup(peer, req) {
				deps = append(deps, implIDs[peer.ID])
				if peer.Confidence < t.Confidence {
					t.Confidence = peer.Confidence
				}
			}
		}
		t.Dependencies = sortedIDs(deps)
		tasks = append(tasks, t)
	}

	for _, req := range reqs {
		if !docEnabled(req, opts.DocTasks) {
			continue
		}
		t := baseTask(req, next(), domain.KindDoc, docSize)
		t.Title = fmt.Sprintf("Document %s: %s", req.ID, req.Title)
		t.Dependencies = []domain.TaskID{implIDs[req.ID]}
		tasks = append(tasks, t)
	}

	return tasks, nil
}

func baseTask(req spec.Requirement, id domain.TaskID, kind domain.TaskKind, size domain.SizeCategory) Task {
	return Task{
		ID:               id,
		Kind:             kind,
		RequirementID:    req.ID,
		Priority:         req.Priority,
		SizeCategory:     size,
		EstimatedMinutes: size.NominalMinutes(),
		Confidence:       req.Confidence,
		Dependencies:     []domain.TaskID{},
		ParallelEligible: !req.Exclusive,
		Exempt:           req.Exempt,
		EpicID:           req.EpicID,
		StoryID:          req.StoryID,
		State:            domain.StatePending,
	}
}

// informers resolves informedBy hints to implementation tasks. Unknown
// references are dropped here and reported by the analysis.
func informers(req spec.Requirement, implIDs map[domain.RequirementID]domain.TaskID) []domain.TaskID {
	var out []domain.TaskID
	for _, ref := range req.InformedBy {
		if id, ok := implIDs[domain.RequirementID(ref)]; ok && ref != req.ID.String() {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return sortedIDs(out)
}

// sameGroup reports whether two requirements share a story. Requirements
// attached directly to an epic form one group per epic.
func sameGroup(a, b spec.Requirement) bool {
	return a.EpicID == b.EpicID && a.StoryID == b.StoryID
}

func groupLabel(req spec.Requirement) string {
	if req.StoryID == "" {
		return req.EpicID
	}
	return req.StoryID
}

func docEnabled(req spec.Requirement, def bool) bool {
	if req.Doc != nil {
		return *req.Doc
	}
	return def
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	return append([]string(nil), in...)
}
