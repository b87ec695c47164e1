package spec

import "github.com/felixgeelhaar/specplan/internal/domain"

// Document is the hierarchical input handed over by the spec-authoring
// collaborator: epics contain stories, stories contain requirements.
// Epics may also carry requirements that belong to no story.
type Document struct {
	Product string `json:"product" yaml:"product"`
	Epics   []Epic `json:"epics" yaml:"epics"`
}

// Epic groups related stories.
type Epic struct {
	ID           string            `json:"id" yaml:"id"`
	Title        string            `json:"title" yaml:"title"`
	Stories      []Story           `json:"stories,omitempty" yaml:"stories,omitempty"`
	Requirements []RequirementSpec `json:"requirements,omitempty" yaml:"requirements,omitempty"`
}

// Story groups requirements delivered together.
type Story struct {
	ID           string            `json:"id" yaml:"id"`
	Title        string            `json:"title" yaml:"title"`
	Requirements []RequirementSpec `json:"requirements" yaml:"requirements"`
}

// RequirementSpec is a requirement leaf as authored. Pointer fields
// distinguish "absent" from zero.
type RequirementSpec struct {
	ID               string   `json:"id" yaml:"id"`
	Title            string   `json:"title" yaml:"title"`
	Description      string   `json:"description,omitempty" yaml:"description,omitempty"`
	Priority         string   `json:"priority,omitempty" yaml:"priority,omitempty"`
	Confidence       *float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	EstimatedMinutes *int     `json:"estimatedMinutes,omitempty" yaml:"estimatedMinutes,omitempty"`
	DependsOn        []string `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty"`
	InformedBy       []string `json:"informedBy,omitempty" yaml:"informedBy,omitempty"`
	CrossCutting     bool     `json:"crossCutting,omitempty" yaml:"crossCutting,omitempty"`
	Exempt           string   `json:"exempt,omitempty" yaml:"exempt,omitempty"`
	Owns             []string `json:"owns,omitempty" yaml:"owns,omitempty"`
	TestOwns         []string `json:"testOwns,omitempty" yaml:"testOwns,omitempty"`
	Exclusive        bool     `json:"exclusive,omitempty" yaml:"exclusive,omitempty"`
	Doc              *bool    `json:"doc,omitempty" yaml:"doc,omitempty"`
}

// Exemption marks a requirement that skips test-first synthesis.
type Exemption string

const (
	ExemptNone   Exemption = ""
	ExemptSpike  Exemption = "spike"
	ExemptHotfix Exemption = "hotfix"
	ExemptPoC    Exemption = "poc"
)

// Requirement is a normalized, validated requirement record. Requirements
// are immutable inputs for one decomposition run.
type Requirement struct {
	ID          domain.RequirementID `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	Priority    domain.Priority      `json:"priority"`
	Confidence  domain.Confidence    `json:"confidence"`
	EpicID      string               `json:"epicId"`
	StoryID     string               `json:"storyId,omitempty"`

	// EstimatedMinutes is zero when the author gave no estimate.
	EstimatedMinutes int `json:"estimatedMinutes,omitempty"`

	DependsOn    []string  `json:"dependsOn,omitempty"`
	InformedBy   []string  `json:"informedBy,omitempty"`
	CrossCutting bool      `json:"crossCutting,omitempty"`
	Exempt       Exemption `json:"exempt,omitempty"`
	Owns         []string  `json:"owns,omitempty"`
	TestOwns     []string  `json:"testOwns,omitempty"`
	Exclusive    bool      `json:"exclusive,omitempty"`

	// Doc overrides the run-wide doc task setting when non-nil.
	Doc *bool `json:"doc,omitempty"`
}

// IsExempt reports whether the requirement skips its test task.
func (r Requirement) IsExempt() bool {
	return r.Exempt != ExemptNone
}
