// Package lifecycle tracks task progress through the execution state machine
// once a plan has been built.
package lifecycle

import (
	"strings"
	"sync"

	"github.com/felixgeelhaar/specplan/internal/domain"
	"github.com/felixgeelhaar/specplan/internal/errors"
	"github.com/felixgeelhaar/specplan/internal/log"
	"github.com/felixgeelhaar/specplan/internal/metrics"
	"github.com/felixgeelhaar/specplan/internal/plan"
)

// Change is one state change applied by the manager. Propagated marks
// changes caused by another task's transition.
type Change struct {
	TaskID     domain.TaskID    `json:"taskId"`
	From       domain.TaskState `json:"from"`
	To         domain.TaskState `json:"to"`
	Propagated bool             `json:"propagated,omitempty"`
}

// Actions accepted by Apply besides target state names
const (
	ActionStart   = "start"
	ActionPause   = "pause"
	ActionResume  = "resume"
	ActionResolve = "resolve"
)

type blockReason int

const (
	blockNone blockReason = iota
	// blockWaiting is released automatically once every dependency is DONE.
	blockWaiting
	// blockUpstream comes from a failed or cancelled ancestor and needs Resolve.
	blockUpstream
	// blockManual was requested by the caller and needs Resolve.
	blockManual
)

// Manager owns the runtime state of every task in a plan. It is safe for
// concurrent use.
type Manager struct {
	mu sync.Mutex

	graph   *plan.Graph
	batches []plan.Batch

	states  map[domain.TaskID]domain.TaskState
	paused  map[domain.TaskID]domain.TaskState
	blocked map[domain.TaskID]blockReason

	metrics *metrics.Metrics
	log     *log.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithMetrics records every change in m
func WithMetrics(m *metrics.Metrics) Option {
	return func(mgr *Manager) { mgr.metrics = m }
}

// WithLogger sets the logger used for change records
func WithLogger(l *log.Logger) Option {
	return func(mgr *Manager) { mgr.log = l }
}

// NewManager starts tracking the tasks of g scheduled by ep. Tasks start in
// the state they carry; an empty state means PENDING. BLOCKED tasks loaded
// this way need an explicit Resolve.
func NewManager(g *plan.Graph, ep plan.ExecutionPlan, opts ...Option) *Manager {
	m := &Manager{
		graph:   g,
		batches: ep.Batches,
		states:  make(map[domain.TaskID]domain.TaskState, g.Len()),
		paused:  make(map[domain.TaskID]domain.TaskState),
		blocked: make(map[domain.TaskID]blockReason),
		log:     log.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With("component", "lifecycle")

	for _, t := range g.Tasks() {
		state := t.State
		if state == "" {
			state = domain.StatePending
		}
		m.states[t.ID] = state
		if state == domain.StateBlocked {
			m.blocked[t.ID] = blockManual
		}
	}
	return m
}

// State returns the current state of id
func (m *Manager) State(id domain.TaskID) (domain.TaskState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.states[id]
	if !ok {
		return "", &errors.UnknownTaskError{TaskID: id.String()}
	}
	return s, nil
}

// Snapshot returns the plan's tasks in ascending id order carrying their
// current states.
func (m *Manager) Snapshot() []plan.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := m.graph.Tasks()
	for i := range tasks {
		tasks[i].State = m.states[tasks[i].ID]
	}
	return tasks
}

// Transition moves id to the target state. Moving to PAUSED records the
// prior state; moving out of PAUSED is only allowed back to that prior
// state or to CANCELLED/FAILED. On failure the state is unchanged.
func (m *Manager) Transition(id domain.TaskID, to domain.TaskState) ([]Change, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transition(id, to)
}

// Start moves a PENDING task to WRITING_TEST when all of its dependencies
// are DONE, otherwise to BLOCKED until they are.
func (m *Manager) Start(id domain.TaskID) ([]Change, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.states[id]
	if !ok {
		return nil, &errors.UnknownTaskError{TaskID: id.String()}
	}
	if cur != domain.StatePending {
		return nil, invalid(id, cur, domain.StateWritingTest)
	}

	if m.dependenciesDone(id) {
		return m.transition(id, domain.StateWritingTest)
	}
	changes, err := m.transition(id, domain.StateBlocked)
	if err == nil {
		m.blocked[id] = blockWaiting
	}
	return changes, err
}

// Pause suspends id, remembering its current state
func (m *Manager) Pause(id domain.TaskID) ([]Change, error) {
	return m.Transition(id, domain.StatePaused)
}

// Resume returns a paused task to the state it was paused from
func (m *Manager) Resume(id domain.TaskID) ([]Change, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.states[id]
	if !ok {
		return nil, &errors.UnknownTaskError{TaskID: id.String()}
	}
	prior, ok := m.paused[id]
	if cur != domain.StatePaused || !ok {
		return nil, &errors.InvalidStateTransition{TaskID: id.String(), From: cur.String(), To: "resume"}
	}
	changes, err := m.transition(id, prior)
	if err != nil {
		return nil, err
	}
	// Dependencies may have finished while the task was paused.
	if prior == domain.StateBlocked && m.blocked[id] == blockWaiting && m.dependenciesDone(id) {
		delete(m.blocked, id)
		changes = append(changes, m.apply(id, domain.StateBlocked, domain.StatePending, true))
	}
	return changes, nil
}

// Resolve releases a BLOCKED task back to PENDING
func (m *Manager) Resolve(id domain.TaskID) ([]Change, error) {
	return m.Transition(id, domain.StatePending)
}

// Cancel cancels id and blocks everything downstream of it
func (m *Manager) Cancel(id domain.TaskID) ([]Change, error) {
	return m.Transition(id, domain.StateCancelled)
}

// Fail fails id and blocks everything downstream of it
func (m *Manager) Fail(id domain.TaskID) ([]Change, error) {
	return m.Transition(id, domain.StateFailed)
}

// Apply performs a named action on id. Action is a target state name or
// one of start, pause, resume, resolve; matching is case-insensitive.
func (m *Manager) Apply(id domain.TaskID, action string) ([]Change, error) {
	switch action = strings.TrimSpace(action); strings.ToLower(action) {
	case ActionStart:
		return m.Start(id)
	case ActionPause:
		return m.Pause(id)
	case ActionResume:
		return m.Resume(id)
	case ActionResolve:
		return m.Resolve(id)
	}

	state := domain.TaskState(strings.ToUpper(action))
	if err := state.Validate(); err != nil {
		cur, stateErr := m.State(id)
		if stateErr != nil {
			return nil, stateErr
		}
		return nil, &errors.InvalidStateTransition{TaskID: id.String(), From: cur.String(), To: action}
	}
	return m.Transition(id, state)
}

// PendingBatches returns the batches still to run with terminal and blocked
// tasks removed. Emptied batches are dropped.
func (m *Manager) PendingBatches() []plan.Batch {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pendingBatches()
}

// CanStart reports whether id may be started now: it is PENDING, its
// dependencies are DONE, and it belongs to the earliest unfinished batch.
func (m *Manager) CanStart(id domain.TaskID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.states[id] != domain.StatePending || !m.dependenciesDone(id) {
		return false
	}
	pending := m.pendingBatches()
	if len(pending) == 0 {
		return false
	}
	for _, t := range pending[0] {
		if t == id {
			return true
		}
	}
	return false
}

func (m *Manager) transition(id domain.TaskID, to domain.TaskState) ([]Change, error) {
	cur, ok := m.states[id]
	if !ok {
		return nil, &errors.UnknownTaskError{TaskID: id.String()}
	}

	if cur == domain.StatePaused && !to.IsFailure() {
		if prior, ok := m.paused[id]; !ok || prior != to {
			return nil, invalid(id, cur, to)
		}
	} else if !CanTransition(cur, to) {
		return nil, invalid(id, cur, to)
	}

	switch {
	case to == domain.StatePaused:
		m.paused[id] = cur
	case cur == domain.StatePaused:
		delete(m.paused, id)
	}
	if to == domain.StateBlocked && cur != domain.StatePaused {
		m.blocked[id] = blockManual
	}
	if (cur == domain.StateBlocked && to != domain.StatePaused) || to.IsTerminal() {
		delete(m.blocked, id)
	}

	changes := []Change{m.apply(id, cur, to, false)}

	switch {
	case to.IsFailure():
		changes = append(changes, m.propagateFailure(id)...)
	case to == domain.StateDone:
		changes = append(changes, m.releaseDependents(id)...)
	}
	return changes, nil
}

// propagateFailure blocks every non-terminal transitive dependent of id.
func (m *Manager) propagateFailure(id domain.TaskID) []Change {
	var changes []Change
	for _, d := range m.graph.TransitiveDependents(id) {
		cur := m.states[d]
		if cur.IsTerminal() {
			continue
		}
		m.blocked[d] = blockUpstream
		delete(m.paused, d)
		if cur == domain.StateBlocked {
			continue
		}
		changes = append(changes, m.apply(d, cur, domain.StateBlocked, true))
	}
	return changes
}

// releaseDependents moves direct dependents of id that were only waiting on
// their dependencies back to PENDING once all of them are DONE. A paused
// waiting dependent has its resume target moved to PENDING instead.
func (m *Manager) releaseDependents(id domain.TaskID) []Change {
	var changes []Change
	for _, d := range m.graph.Dependents(id) {
		if m.blocked[d] != blockWaiting || !m.dependenciesDone(d) {
			continue
		}
		switch m.states[d] {
		case domain.StateBlocked:
			delete(m.blocked, d)
			changes = append(changes, m.apply(d, domain.StateBlocked, domain.StatePending, true))
		case domain.StatePaused:
			// Resume lands on PENDING instead of the stale BLOCKED.
			if m.paused[d] == domain.StateBlocked {
				delete(m.blocked, d)
				m.paused[d] = domain.StatePending
			}
		}
	}
	return changes
}

func (m *Manager) apply(id domain.TaskID, from, to domain.TaskState, propagated bool) Change {
	m.states[id] = to
	m.metrics.ObserveTransition(from.String(), to.String(), propagated)
	m.log.Debug("task state changed",
		"task_id", id.String(),
		"from", from.String(),
		"to", to.String(),
		"propagated", propagated,
	)
	return Change{TaskID: id, From: from, To: to, Propagated: propagated}
}

func (m *Manager) dependenciesDone(id domain.TaskID) bool {
	for _, dep := range m.graph.Dependencies(id) {
		if m.states[dep] != domain.StateDone {
			return false
		}
	}
	return true
}

func (m *Manager) pendingBatches() []plan.Batch {
	out := []plan.Batch{}
	for _, b := range m.batches {
		var keep plan.Batch
		for _, id := range b {
			s := m.states[id]
			if s.IsTerminal() || s == domain.StateBlocked {
				continue
			}
			keep = append(keep, id)
		}
		if len(keep) > 0 {
			out = append(out, keep)
		}
	}
	return out
}

func invalid(id domain.TaskID, from, to domain.TaskState) error {
	return &errors.InvalidStateTransition{TaskID: id.String(), From: from.String(), To: to.String()}
}
