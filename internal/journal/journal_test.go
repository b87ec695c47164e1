package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/specplan/internal/domain"
	"github.com/felixgeelhaar/specplan/internal/errors"
	"github.com/felixgeelhaar/specplan/internal/lifecycle"
	"github.com/felixgeelhaar/specplan/internal/log"
	"github.com/felixgeelhaar/specplan/internal/plan"
)

func task(id int, deps ...int) plan.Task {
	t := plan.Task{
		ID:               domain.NewTaskID(id),
		Title:            fmt.Sprintf("task %d", id),
		Kind:             domain.KindTest,
		RequirementID:    domain.RequirementID(fmt.Sprintf("R%d", id)),
		Priority:         domain.PriorityShould,
		SizeCategory:     domain.SizeS,
		EstimatedMinutes: domain.SizeS.NominalMinutes(),
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

// newManager tracks T001 <- T002 <- T003 and a free T004.
func newManager(t *testing.T) *lifecycle.Manager {
	t.Helper()
	g, err := plan.BuildGraph([]plan.Task{task(1), task(2, 1), task(3, 2), task(4)})
	require.NoError(t, err)
	batches, err := plan.PlanBatches(g, plan.DefaultMaxBatchSize)
	require.NoError(t, err)
	return lifecycle.NewManager(g, plan.ExecutionPlan{Batches: batches}, lifecycle.WithLogger(log.Discard()))
}

func apply(t *testing.T, j *Journal, m *lifecycle.Manager, id int, action string) {
	t.Helper()
	changes, err := m.Apply(domain.NewTaskID(id), action)
	require.NoError(t, err)
	require.NoError(t, j.LogChanges(action, changes))
}

func TestOpenDisabled(t *testing.T) {
	j, err := Open(Config{Enabled: false})
	require.NoError(t, err)
	defer j.Close()

	assert.NotEmpty(t, j.SessionID())
	assert.Empty(t, j.Path())

	require.NoError(t, j.LogSessionStart("plan.json", 3))
	events := j.Events()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeSessionStart, events[0].Type)
	assert.Equal(t, "plan.json", events[0].Data["plan"])
}

func TestJournalWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.jsonl")
	j, err := Open(Config{SessionID: "session-1", Path: path, Enabled: true})
	require.NoError(t, err)

	m := newManager(t)
	require.NoError(t, j.LogSessionStart("plan.json", 4))
	apply(t, j, m, 1, "start")
	apply(t, j, m, 1, "FAILED")
	_, err = m.Apply(domain.NewTaskID(1), "start")
	require.Error(t, err)
	require.NoError(t, j.LogRejected(domain.NewTaskID(1), "start", err))
	require.NoError(t, j.LogSessionComplete(2, 1, 15*time.Millisecond))
	require.NoError(t, j.Close())

	events, err := Read(path)
	require.NoError(t, err)

	var types []EventType
	for _, e := range events {
		assert.Equal(t, "session-1", e.SessionID)
		assert.NotEmpty(t, e.ID)
		types = append(types, e.Type)
	}
	assert.Equal(t, []EventType{
		EventTypeSessionStart,
		EventTypeTransition, // T001 PENDING -> WRITING_TEST
		EventTypeTransition, // T001 -> FAILED
		EventTypeTransition, // T002 blocked
		EventTypeTransition, // T003 blocked
		EventTypeRejected,
		EventTypeSessionComplete,
	}, types)

	failed := events[2]
	assert.Equal(t, "T001", failed.TaskID)
	assert.Equal(t, "WRITING_TEST", failed.From)
	assert.Equal(t, "FAILED", failed.To)
	assert.Equal(t, "FAILED", failed.Action)
	assert.False(t, failed.Propagated)

	assert.True(t, events[3].Propagated)
	assert.Equal(t, "BLOCKED", events[3].To)

	rejected := events[5]
	assert.Equal(t, "warning", rejected.Level)
	assert.Contains(t, rejected.Error, "FAILED")

	assert.EqualValues(t, 15, events[6].Data["duration_ms"])
}

func TestJournalAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")

	for i := 0; i < 2; i++ {
		j, err := Open(Config{Path: path, Enabled: true})
		require.NoError(t, err)
		require.NoError(t, j.LogSessionStart("plan.json", 1))
		require.NoError(t, j.Close())
	}

	events, err := Read(path)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.NotEqual(t, events[0].SessionID, events[1].SessionID)
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Read(filepath.Join(dir, "missing.jsonl"))
	assert.Equal(t, errors.ErrCodeFileNotFound, errors.CodeOf(err))

	bad := filepath.Join(dir, "bad.jsonl")
	require.NoError(t, os.WriteFile(bad, []byte("{\"type\":\"transition\"}\n\nnot json\n"), 0o600))
	_, err = Read(bad)
	assert.Equal(t, errors.ErrCodeFileUnmarshal, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "bad.jsonl:3")
}

func TestReplayRebuildsState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	j, err := Open(Config{Path: path, Enabled: true})
	require.NoError(t, err)

	original := newManager(t)
	apply(t, j, original, 2, "start") // waits on T001
	apply(t, j, original, 1, "start")
	for _, s := range []string{"TEST_FAILING", "IMPLEMENTING", "TEST_PASSING", "REVIEWING", "DONE"} {
		apply(t, j, original, 1, s)
	}
	apply(t, j, original, 4, "start")
	apply(t, j, original, 4, "pause")
	apply(t, j, original, 4, "resume")
	apply(t, j, original, 4, "CANCELLED")
	require.NoError(t, j.Close())

	// T002 was released by T001 finishing
	state, err := original.State(domain.NewTaskID(2))
	require.NoError(t, err)
	require.Equal(t, domain.StatePending, state)

	events, err := Read(path)
	require.NoError(t, err)

	replayed := newManager(t)
	n, err := Replay(replayed, events)
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	assert.Equal(t, original.Snapshot(), replayed.Snapshot())
	assert.Equal(t, original.PendingBatches(), replayed.PendingBatches())
}

func TestReplayStopsOnRejectedAction(t *testing.T) {
	events := []*Event{
		{ID: "a", Type: EventTypeTransition, TaskID: "T004", Action: "start"},
		{ID: "b", Type: EventTypeRejected, TaskID: "T004", Action: "start"},
		{ID: "c", Type: EventTypeTransition, TaskID: "T004", Action: "DONE"},
	}

	n, err := Replay(newManager(t), events)
	assert.Equal(t, 1, n)
	var ist *errors.InvalidStateTransition
	require.ErrorAs(t, err, &ist)
	assert.Contains(t, err.Error(), "event c")
}

func TestConcurrentLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	j, err := Open(Config{Path: path, Enabled: true})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = j.Log(NewEvent(EventTypeTransition, j.SessionID(), "").WithData("i", i))
		}(i)
	}
	wg.Wait()
	require.NoError(t, j.Close())

	events, err := Read(path)
	require.NoError(t, err)
	assert.Len(t, events, 20)
	assert.Len(t, j.Events(), 20)
}
