package domain

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// genValidPriority generates valid Priority values for property testing
func genValidPriority() *rapid.Generator[Priority] {
	return rapid.SampledFrom([]Priority{PriorityMust, PriorityShould, PriorityCould})
}

// genInvalidPriority generates strings that are neither a priority nor an alias
func genInvalidPriority() *rapid.Generator[string] {
	return rapid.OneOf(
		rapid.SampledFrom([]string{"P3", "P4", "P-1", "Priority0", "HIGH", "LOW", "won't"}),
		rapid.StringMatching(`[A-Za-z]{1,10}`).Filter(func(s string) bool {
			switch strings.ToLower(s) {
			case "must", "should", "could", "p0", "p1", "p2":
				return false
			}
			return true
		}),
	)
}

// TestPriority_ValidPrioritiesAlwaysValidate tests that all valid priorities pass validation
func TestPriority_ValidPrioritiesAlwaysValidate(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := genValidPriority().Draw(t, "valid_priority")
		if err := p.Validate(); err != nil {
			t.Fatalf("valid priority %q should pass validation: %v", p, err)
		}
	})
}

// TestPriority_InvalidPrioritiesFail tests that invalid priorities fail parsing
func TestPriority_InvalidPrioritiesFail(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := genInvalidPriority().Draw(t, "invalid_priority")
		if _, err := NewPriority(s); err == nil {
			t.Fatalf("invalid priority %q should fail parsing", s)
		}
		if err := Priority(s).Validate(); err == nil {
			t.Fatalf("invalid priority %q should fail validation", s)
		}
	})
}

// TestPriority_RoundTripThroughString tests that priorities survive round-trip through String()
func TestPriority_RoundTripThroughString(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p1 := genValidPriority().Draw(t, "priority")
		p2, err := NewPriority(p1.String())
		if err != nil {
			t.Fatalf("round-trip should not produce error: %v", err)
		}
		if p1 != p2 {
			t.Fatalf("round-trip should preserve value: %q != %q", p1, p2)
		}
	})
}

// TestPriority_RankIsTotal tests that exactly one ordering holds between distinct priorities
func TestPriority_RankIsTotal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genValidPriority().Draw(t, "a")
		b := genValidPriority().Draw(t, "b")
		if a == b {
			if a.IsHigherThan(b) || a.IsLowerThan(b) {
				t.Fatalf("%q compared unequal to itself", a)
			}
			return
		}
		if a.IsHigherThan(b) == a.IsLowerThan(b) {
			t.Fatalf("%q and %q must be strictly ordered", a, b)
		}
	})
}
