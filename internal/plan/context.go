package plan

import (
	"fmt"
	"math"

	"github.com/felixgeelhaar/specplan/internal/domain"
)

// Default context window, in lines.
const (
	DefaultMinContextLines = 50
	DefaultMaxContextLines = 400
)

// ContextAllocator sizes the specification excerpt handed to each task.
// Lower confidence and higher complexity get more context.
type ContextAllocator struct {
	MinLines int
	MaxLines int
}

// NewContextAllocator validates the window bounds
func NewContextAllocator(minLines, maxLines int) (ContextAllocator, error) {
	if minLines < 1 {
		return ContextAllocator{}, fmt.Errorf("min context lines must be positive, got %d", minLines)
	}
	if maxLines < minLines {
		return ContextAllocator{}, fmt.Errorf("max context lines %d below min %d", maxLines, minLines)
	}
	return ContextAllocator{MinLines: minLines, MaxLines: maxLines}, nil
}

// Size computes
//
//	round(min + (1 - confidence/100) * (max - min) * multiplier)
//
// clamped to [min, max].
func (a ContextAllocator) Size(confidence domain.Confidence, size domain.SizeCategory) int {
	span := float64(a.MaxLines - a.MinLines)
	gap := 1 - confidence.Float()/100
	raw := math.Round(float64(a.MinLines) + gap*span*size.Complexity().Multiplier())

	switch {
	case raw < float64(a.MinLines):
		return a.MinLines
	case raw > float64(a.MaxLines):
		return a.MaxLines
	default:
		return int(raw)
	}
}

// Apply returns a copy of tasks with ContextSize filled in
func (a ContextAllocator) Apply(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		t.ContextSize = a.Size(t.Confidence, t.SizeCategory)
		out[i] = t
	}
	return out
}
