package domain

import "fmt"

// Confidence is an externally supplied score in [0,100] describing how well
// a requirement is understood.
type Confidence float64

// Band thresholds.
const (
	HighConfidenceThreshold   Confidence = 85
	MediumConfidenceThreshold Confidence = 70
)

// ConfidenceBand groups confidence scores for reporting.
type ConfidenceBand string

const (
	BandHigh   ConfidenceBand = "high"
	BandMedium ConfidenceBand = "medium"
	BandLow    ConfidenceBand = "low"
)

// Validate checks the score is within [0,100].
func (c Confidence) Validate() error {
	if c < 0 || c > 100 || c != c {
		return fmt.Errorf("confidence %v outside [0,100]", float64(c))
	}
	return nil
}

// Band returns high (>=85), medium (70-84) or low (<70).
func (c Confidence) Band() ConfidenceBand {
	switch {
	case c >= HighConfidenceThreshold:
		return BandHigh
	case c >= MediumConfidenceThreshold:
		return BandMedium
	default:
		return BandLow
	}
}

// IsLow reports whether the score falls in the low band.
func (c Confidence) IsLow() bool {
	return c.Band() == BandLow
}

// Float returns the raw score.
func (c Confidence) Float() float64 {
	return float64(c)
}
