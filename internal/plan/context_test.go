package plan

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/felixgeelhaar/specplan/internal/domain"
)

func TestContextAllocator_Size(t *testing.T) {
	alloc := ContextAllocator{MinLines: 50, MaxLines: 400}

	tests := []struct {
		name       string
		confidence domain.Confidence
		size       domain.SizeCategory
		want       int
	}{
		{"full confidence is the floor", 100, domain.SizeM, 50},
		{"medium complexity", 60, domain.SizeM, 190},
		{"high confidence medium", 90, domain.SizeM, 85},
		{"simple scales down", 60, domain.SizeS, 148},
		{"complex scales up", 60, domain.SizeL, 232},
		{"zero confidence simple", 0, domain.SizeXS, 295},
		{"zero confidence complex clamps", 0, domain.SizeL, 400},
		{"rounds half away from zero", 25, domain.SizeM, 313},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := alloc.Size(tt.confidence, tt.size); got != tt.want {
				t.Errorf("Size(%v, %s) = %d, want %d", tt.confidence, tt.size, got, tt.want)
			}
		})
	}
}

func TestNewContextAllocator(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		wantErr  bool
	}{
		{"defaults", DefaultMinContextLines, DefaultMaxContextLines, false},
		{"equal bounds", 100, 100, false},
		{"zero min", 0, 100, true},
		{"inverted", 200, 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewContextAllocator(tt.min, tt.max)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewContextAllocator(%d, %d) error = %v, wantErr %v", tt.min, tt.max, err, tt.wantErr)
			}
		})
	}
}

func TestContextAllocator_Apply(t *testing.T) {
	alloc := ContextAllocator{MinLines: 50, MaxLines: 400}
	in := []Task{task(1), task(2)}
	in[1].Confidence = 60

	out := alloc.Apply(in)
	if out[0].ContextSize != 120 || out[1].ContextSize != 190 {
		t.Errorf("context sizes = %d, %d; want 120, 190", out[0].ContextSize, out[1].ContextSize)
	}
	if in[0].ContextSize != 0 {
		t.Error("Apply must not modify its input")
	}
}

func TestContextAllocator_MonotonicAndBounded(t *testing.T) {
	sizes := []domain.SizeCategory{domain.SizeXS, domain.SizeS, domain.SizeM, domain.SizeL}

	rapid.Check(t, func(t *rapid.T) {
		minLines := rapid.IntRange(1, 500).Draw(t, "min")
		maxLines := rapid.IntRange(minLines, 2000).Draw(t, "max")
		alloc := ContextAllocator{MinLines: minLines, MaxLines: maxLines}

		size := rapid.SampledFrom(sizes).Draw(t, "size")
		lo := domain.Confidence(rapid.Float64Range(0, 100).Draw(t, "lo"))
		hi := domain.Confidence(rapid.Float64Range(float64(lo), 100).Draw(t, "hi"))

		a, b := alloc.Size(lo, size), alloc.Size(hi, size)
		if a < b {
			t.Fatalf("lower confidence %v got %d lines, higher %v got %d", lo, a, hi, b)
		}
		for _, v := range []int{a, b} {
			if v < minLines || v > maxLines {
				t.Fatalf("size %d outside [%d, %d]", v, minLines, maxLines)
			}
		}
	})
}
