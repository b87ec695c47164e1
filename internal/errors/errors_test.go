package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeSpecNotFound, "test error message")

	if err.Code() != ErrCodeSpecNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeSpecNotFound, err.Code())
	}

	if err.Message != "test error message" {
		t.Errorf("expected message 'test error message', got '%s'", err.Message)
	}

	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := Wrap(ErrCodeFileReadFailed, "failed to read file", cause)

	if err.Code() != ErrCodeFileReadFailed {
		t.Errorf("expected code %s, got %s", ErrCodeFileReadFailed, err.Code())
	}

	if !errors.Is(err, cause) {
		t.Errorf("Wrap should support errors.Is")
	}

	if !strings.Contains(err.Error(), "underlying error") {
		t.Errorf("Error() should include the cause: %s", err.Error())
	}
}

func TestDescribe(t *testing.T) {
	err := New(ErrCodeConfigInvalid, "bad value").
		WithSuggestions("first", "second").
		WithDocs("https://example.com/docs")

	out := Describe(err)
	for _, want := range []string{"[CONFIG-001] bad value", "Suggestions:", "• first", "• second", "Documentation: https://example.com/docs"} {
		if !strings.Contains(out, want) {
			t.Errorf("Describe() missing %q in:\n%s", want, out)
		}
	}
}

func TestTypedErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      Coded
		wantCode ErrorCode
		wantMsg  string
	}{
		{"malformed", &MalformedSpecError{Location: "epic E1", RequirementID: "FR-1", Field: "confidence", Reason: "is required"}, ErrCodeSpecMalformed, "epic E1 (FR-1): confidence is required"},
		{"confidence", &ConfidenceOutOfRange{RequirementID: "FR-1", Value: 120}, ErrCodeConfidenceRange, "confidence 120 outside"},
		{"size", &TaskSizeViolation{RequirementID: "FR-9", EstimatedMinutes: 600}, ErrCodeTaskSizeViolation, "FR-9 is too large"},
		{"cycle", &CycleDetectedError{Path: []string{"T001", "T002", "T001"}}, ErrCodeCycleDetected, "T001 -> T002 -> T001"},
		{"dependency", &InvalidDependencyReference{TaskID: "T004", MissingID: "FR-404"}, ErrCodeInvalidDependency, "T004 depends on unknown id FR-404"},
		{"test first", &TestFirstViolation{TaskID: "T004", RequirementID: "FR-1"}, ErrCodeTestFirstViolation, "does not depend on a test task"},
		{"resource", &ResourceConflictError{TaskA: "T001", TaskB: "T002", Resource: "api.go"}, ErrCodeResourceConflict, "both own api.go"},
		{"transition", &InvalidStateTransition{TaskID: "T001", From: "DONE", To: "PENDING"}, ErrCodeInvalidTransition, "from DONE to PENDING"},
		{"unknown", &UnknownTaskError{TaskID: "T999"}, ErrCodeUnknownTask, "unknown task T999"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code() != tt.wantCode {
				t.Errorf("Code() = %s, want %s", tt.err.Code(), tt.wantCode)
			}
			if !strings.Contains(tt.err.Error(), tt.wantMsg) {
				t.Errorf("Error() = %q, want containing %q", tt.err.Error(), tt.wantMsg)
			}
			if !strings.HasPrefix(tt.err.Error(), "["+string(tt.wantCode)+"]") {
				t.Errorf("Error() should start with the code: %q", tt.err.Error())
			}
		})
	}
}

func TestIsBuildError(t *testing.T) {
	wrapped := fmt.Errorf("build graph: %w", &CycleDetectedError{Path: []string{"T001", "T001"}})
	if !IsBuildError(wrapped) {
		t.Error("wrapped cycle error should be a build error")
	}
	if IsBuildError(&InvalidStateTransition{TaskID: "T001"}) {
		t.Error("transition errors are runtime errors")
	}
	if IsBuildError(fmt.Errorf("plain")) {
		t.Error("plain errors are not build errors")
	}
	if CodeOf(wrapped) != ErrCodeCycleDetected {
		t.Errorf("CodeOf() = %s", CodeOf(wrapped))
	}
	if CodeOf(fmt.Errorf("plain")) != "" {
		t.Error("CodeOf() of plain error should be empty")
	}
}
