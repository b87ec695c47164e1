package domain

import (
	"strings"
	"testing"
)

func TestNewRequirementID(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr string
	}{
		{name: "functional", value: "FR-001"},
		{name: "dotted", value: "NFR.perf.1"},
		{name: "trimmed", value: "  FR-002 "},
		{name: "empty", value: "", wantErr: "cannot be empty"},
		{name: "digit first", value: "1FR", wantErr: "must start with a letter"},
		{name: "spaces", value: "FR 001", wantErr: "must start with a letter"},
		{name: "too long", value: "F" + strings.Repeat("x", 100), wantErr: "exceeds maximum length"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRequirementID(tt.value)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
