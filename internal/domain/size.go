package domain

import (
	"fmt"
	"strings"
)

// SizeCategory buckets a task by estimated duration. XL exists only so it can
// be detected and rejected; no task may carry it.
type SizeCategory string

const (
	SizeXS SizeCategory = "XS"
	SizeS  SizeCategory = "S"
	SizeM  SizeCategory = "M"
	SizeL  SizeCategory = "L"
	SizeXL SizeCategory = "XL"
)

// Upper bounds (inclusive, minutes) for each legal category.
const (
	maxMinutesXS = 15
	maxMinutesS  = 30
	maxMinutesM  = 60
	maxMinutesL  = 120
)

// ParseSizeCategory parses a category name (case-insensitive).
func ParseSizeCategory(value string) (SizeCategory, error) {
	s := SizeCategory(strings.ToUpper(strings.TrimSpace(value)))
	switch s {
	case SizeXS, SizeS, SizeM, SizeL, SizeXL:
		return s, nil
	}
	return "", fmt.Errorf("invalid size category %q: must be XS, S, M or L", value)
}

// SizeForMinutes maps a duration estimate onto a category.
func SizeForMinutes(minutes int) SizeCategory {
	switch {
	case minutes <= maxMinutesXS:
		return SizeXS
	case minutes <= maxMinutesS:
		return SizeS
	case minutes <= maxMinutesM:
		return SizeM
	case minutes <= maxMinutesL:
		return SizeL
	default:
		return SizeXL
	}
}

// Validate rejects XL and unknown categories.
func (s SizeCategory) Validate() error {
	switch s {
	case SizeXS, SizeS, SizeM, SizeL:
		return nil
	case SizeXL:
		return fmt.Errorf("size category XL is not allowed: split the work")
	default:
		return fmt.Errorf("invalid size category %q", string(s))
	}
}

// NominalMinutes is the duration estimate attached to tasks of this size.
func (s SizeCategory) NominalMinutes() int {
	switch s {
	case SizeXS:
		return maxMinutesXS
	case SizeS:
		return maxMinutesS
	case SizeM:
		return maxMinutesM
	case SizeL:
		return maxMinutesL
	default:
		return 0
	}
}

// Complexity classifies the category for context allocation.
func (s SizeCategory) Complexity() Complexity {
	switch s {
	case SizeXS, SizeS:
		return ComplexitySimple
	case SizeL:
		return ComplexityComplex
	default:
		return ComplexityMedium
	}
}

// String returns the string representation
func (s SizeCategory) String() string {
	return string(s)
}

// Complexity is the coarse effort class derived from a size category.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// Multiplier scales the context window for this complexity.
func (c Complexity) Multiplier() float64 {
	switch c {
	case ComplexitySimple:
		return 0.7
	case ComplexityComplex:
		return 1.3
	default:
		return 1.0
	}
}
