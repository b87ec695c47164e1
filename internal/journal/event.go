package journal

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/specplan/internal/lifecycle"
)

// EventType represents the type of journal event
type EventType string

const (
	// EventTypeSessionStart marks the start of a replay session
	EventTypeSessionStart EventType = "session_start"

	// EventTypeSessionComplete marks the end of a replay session
	EventTypeSessionComplete EventType = "session_complete"

	// EventTypeTransition records one applied state change
	EventTypeTransition EventType = "transition"

	// EventTypeRejected records a requested change the state machine refused
	EventTypeRejected EventType = "rejected"
)

// Event is one line of the journal
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Level     string    `json:"level"`
	Message   string    `json:"message,omitempty"`

	// Action is the request that caused the event, e.g. "start" or "FAILED"
	Action string `json:"action,omitempty"`

	TaskID     string `json:"task_id,omitempty"`
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
	Propagated bool   `json:"propagated,omitempty"`

	Data  map[string]any `json:"data,omitempty"`
	Error string         `json:"error,omitempty"`
}

// NewEvent creates a journal event with common fields populated
func NewEvent(eventType EventType, sessionID, message string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		SessionID: sessionID,
		Level:     inferLevel(eventType),
		Message:   message,
	}
}

// WithChange copies a lifecycle change into the event
func (e *Event) WithChange(c lifecycle.Change) *Event {
	e.TaskID = c.TaskID.String()
	e.From = c.From.String()
	e.To = c.To.String()
	e.Propagated = c.Propagated
	return e
}

// WithAction sets the triggering action
func (e *Event) WithAction(action string) *Event {
	e.Action = action
	return e
}

// WithData adds data to the event
func (e *Event) WithData(key string, value any) *Event {
	if e.Data == nil {
		e.Data = make(map[string]any)
	}
	e.Data[key] = value
	return e
}

// WithError sets the error field
func (e *Event) WithError(err error) *Event {
	if err != nil {
		e.Error = err.Error()
		e.Level = "error"
	}
	return e
}

// MarshalLine renders the event as a single JSON line
func (e *Event) MarshalLine() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func inferLevel(eventType EventType) string {
	switch eventType {
	case EventTypeRejected:
		return "warning"
	default:
		return "info"
	}
}
