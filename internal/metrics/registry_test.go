package metrics

import (
	"testing"
)

func TestNewRegistry(t *testing.T) {
	reg, m := NewRegistry()
	if reg == nil || m == nil {
		t.Fatal("expected registry and metrics")
	}

	// Each call creates an isolated registry, so registering twice is fine
	reg2, m2 := NewRegistry()
	if reg2 == reg || m2 == m {
		t.Error("expected independent registries")
	}
}
