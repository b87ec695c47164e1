package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// RequirementID represents the stable identifier of a requirement (e.g. FR-001).
// This is a value object that enforces valid ID formats.
type RequirementID string

var (
	// requirementIDPattern allows letters, digits, dots, underscores and hyphens.
	// Must start with a letter.
	requirementIDPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9._-]*$`)

	// maxRequirementIDLength is the maximum allowed length for a requirement ID
	maxRequirementIDLength = 100
)

// NewRequirementID creates a new RequirementID value object with validation
func NewRequirementID(value string) (RequirementID, error) {
	id := RequirementID(strings.TrimSpace(value))
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

// Validate checks if the requirement ID is valid
func (r RequirementID) Validate() error {
	s := string(r)

	if s == "" {
		return fmt.Errorf("requirement ID cannot be empty")
	}

	if len(s) > maxRequirementIDLength {
		return fmt.Errorf("requirement ID %q exceeds maximum length of %d characters", s, maxRequirementIDLength)
	}

	if !requirementIDPattern.MatchString(s) {
		return fmt.Errorf("requirement ID %q must start with a letter and contain only letters, numbers, '.', '_' and '-'", s)
	}

	return nil
}

// String returns the string representation
func (r RequirementID) String() string {
	return string(r)
}
