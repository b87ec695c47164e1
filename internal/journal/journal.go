// Package journal keeps an append-only JSON Lines record of task lifecycle
// changes so that a plan's execution history can be audited or replayed.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/specplan/internal/domain"
	"github.com/felixgeelhaar/specplan/internal/errors"
	"github.com/felixgeelhaar/specplan/internal/lifecycle"
)

// Config contains journal configuration
type Config struct {
	// SessionID groups the events of one run; generated when empty
	SessionID string

	// Path is the journal file; events are appended
	Path string

	// Enabled controls whether events reach disk. A disabled journal still
	// keeps events in memory.
	Enabled bool
}

// Journal writes events to disk
type Journal struct {
	sessionID string
	path      string
	file      *os.File
	enabled   bool

	// mu protects file and events
	mu     sync.Mutex
	events []*Event
}

// Open creates or appends to the journal at cfg.Path
func Open(cfg Config) (*Journal, error) {
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}

	j := &Journal{
		sessionID: cfg.SessionID,
		enabled:   cfg.Enabled,
	}
	if !cfg.Enabled {
		return j, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o750); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDirectoryFailed, "create journal directory", err)
	}

	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, errors.NewFileWriteError(cfg.Path, err)
	}
	j.file = f
	j.path = cfg.Path
	return j, nil
}

// SessionID returns the id stamped on every event of this journal
func (j *Journal) SessionID() string {
	return j.sessionID
}

// Path returns the journal file, or "" when disabled
func (j *Journal) Path() string {
	return j.path
}

// Log appends one event
func (j *Journal) Log(event *Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.events = append(j.events, event)
	if !j.enabled {
		return nil
	}

	line, err := event.MarshalLine()
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}
	if _, err := j.file.Write(line); err != nil {
		return errors.NewFileWriteError(j.path, err)
	}
	return nil
}

// LogSessionStart records the plan a session operates on
func (j *Journal) LogSessionStart(planPath string, tasks int) error {
	return j.Log(NewEvent(EventTypeSessionStart, j.sessionID, "Session started").
		WithData("plan", planPath).
		WithData("tasks", tasks))
}

// LogChanges records every change produced by one action
func (j *Journal) LogChanges(action string, changes []lifecycle.Change) error {
	for _, c := range changes {
		if err := j.Log(NewEvent(EventTypeTransition, j.sessionID, "").
			WithAction(action).
			WithChange(c)); err != nil {
			return err
		}
	}
	return nil
}

// LogRejected records an action the state machine refused
func (j *Journal) LogRejected(taskID domain.TaskID, action string, err error) error {
	event := NewEvent(EventTypeRejected, j.sessionID, "Transition rejected").
		WithAction(action).
		WithError(err)
	event.TaskID = taskID.String()
	event.Level = "warning"
	return j.Log(event)
}

// LogSessionComplete records the end of a session
func (j *Journal) LogSessionComplete(applied, rejected int, duration time.Duration) error {
	return j.Log(NewEvent(EventTypeSessionComplete, j.sessionID, "Session completed").
		WithData("applied", applied).
		WithData("rejected", rejected).
		WithData("duration_ms", duration.Milliseconds()))
}

// Events returns a copy of the events logged through this journal
func (j *Journal) Events() []*Event {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]*Event, len(j.events))
	copy(out, j.events)
	return out
}

// Close flushes and closes the journal file
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return nil
	}
	if err := j.file.Sync(); err != nil {
		return errors.NewFileWriteError(j.path, err)
	}
	err := j.file.Close()
	j.file = nil
	return err
}

// Read loads every event from a journal file in order
func Read(path string) ([]*Event, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, fmt.Sprintf("journal not found: %s", path))
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "open journal", err)
	}
	defer f.Close()

	var events []*Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return nil, errors.NewFileUnmarshalError(fmt.Sprintf("%s:%d", path, line), "JSON", err)
		}
		events = append(events, &e)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "read journal", err)
	}
	return events, nil
}

// Replay reapplies the actions recorded in events to mgr. Only the direct
// change of each action is replayed; the manager derives propagated changes
// itself. It returns the number of actions applied.
func Replay(mgr *lifecycle.Manager, events []*Event) (int, error) {
	applied := 0
	for _, e := range events {
		if e.Type != EventTypeTransition || e.Propagated {
			continue
		}
		id, err := domain.ParseTaskID(e.TaskID)
		if err != nil {
			return applied, fmt.Errorf("event %s: %w", e.ID, err)
		}
		action := e.Action
		if action == "" {
			action = e.To
		}
		if _, err := mgr.Apply(id, action); err != nil {
			return applied, fmt.Errorf("event %s: %w", e.ID, err)
		}
		applied++
	}
	return applied, nil
}
