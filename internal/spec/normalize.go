package spec

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/specplan/internal/domain"
	"github.com/felixgeelhaar/specplan/internal/errors"
)

// Normalize flattens the epic/story tree into requirements. Within an epic,
// story requirements come first (stories in order), followed by requirements
// attached directly to the epic. Confidence values are passed through as-is.
func Normalize(doc *Document) ([]Requirement, error) {
	if doc == nil {
		return nil, &errors.MalformedSpecError{Location: "document", Field: "epics", Reason: "is missing"}
	}

	var out []Requirement
	seen := make(map[domain.RequirementID]string)

	add := func(raw RequirementSpec, epicID, storyID, location string) error {
		req, err := normalizeRequirement(raw, epicID, storyID, location)
		if err != nil {
			return err
		}
		if prev, dup := seen[req.ID]; dup {
			return &errors.MalformedSpecError{
				Location:      location,
				RequirementID: req.ID.String(),
				Field:         "id",
				Reason:        fmt.Sprintf("duplicates the requirement at %s", prev),
			}
		}
		seen[req.ID] = location
		out = append(out, req)
		return nil
	}

	for ei, epic := range doc.Epics {
		epicID := strings.TrimSpace(epic.ID)
		if epicID == "" {
			epicID = fmt.Sprintf("epic-%d", ei+1)
		}
		for si, story := range epic.Stories {
			storyID := strings.TrimSpace(story.ID)
			if storyID == "" {
				storyID = fmt.Sprintf("%s.story-%d", epicID, si+1)
			}
			for ri, raw := range story.Requirements {
				loc := fmt.Sprintf("epic %s / story %s / requirement #%d", epicID, storyID, ri+1)
				if err := add(raw, epicID, storyID, loc); err != nil {
					return nil, err
				}
			}
		}
		for ri, raw := range epic.Requirements {
			loc := fmt.Sprintf("epic %s / requirement #%d", epicID, ri+1)
			if err := add(raw, epicID, "", loc); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

func normalizeRequirement(raw RequirementSpec, epicID, storyID, location string) (Requirement, error) {
	malformed := func(id, field, reason string) error {
		return &errors.MalformedSpecError{Location: location, RequirementID: id, Field: field, Reason: reason}
	}

	if strings.TrimSpace(raw.ID) == "" {
		return Requirement{}, malformed("", "id", "is missing")
	}
	id, err := domain.NewRequirementID(raw.ID)
	if err != nil {
		return Requirement{}, malformed(raw.ID, "id", err.Error())
	}

	if raw.Confidence == nil {
		return Requirement{}, malformed(id.String(), "confidence", "is missing")
	}
	conf := domain.Confidence(*raw.Confidence)
	if err := conf.Validate(); err != nil {
		return Requirement{}, &errors.ConfidenceOutOfRange{RequirementID: id.String(), Value: *raw.Confidence}
	}

	priority, err := domain.NewPriority(raw.Priority)
	if err != nil {
		return Requirement{}, malformed(id.String(), "priority", err.Error())
	}

	exempt := Exemption(strings.ToLower(strings.TrimSpace(raw.Exempt)))
	switch exempt {
	case ExemptNone, ExemptSpike, ExemptHotfix, ExemptPoC:
	default:
		return Requirement{}, malformed(id.String(), "exempt", fmt.Sprintf("has unknown value %q (want spike, hotfix or poc)", raw.Exempt))
	}

	minutes := 0
	if raw.EstimatedMinutes != nil {
		if *raw.EstimatedMinutes <= 0 {
			return Requirement{}, malformed(id.String(), "estimatedMinutes", "must be positive")
		}
		minutes = *raw.EstimatedMinutes
	}

	req := Requirement{
		ID:               id,
		Title:            strings.TrimSpace(raw.Title),
		Description:      raw.Description,
		Priority:         priority,
		Confidence:       conf,
		EpicID:           epicID,
		StoryID:          storyID,
		EstimatedMinutes: minutes,
		DependsOn:        cleanList(raw.DependsOn),
		InformedBy:       cleanList(raw.InformedBy),
		CrossCutting:     raw.CrossCutting,
		Exempt:           exempt,
		Owns:             cleanList(raw.Owns),
		TestOwns:         cleanList(raw.TestOwns),
		Exclusive:        raw.Exclusive,
	}
	if raw.Doc != nil {
		doc := *raw.Doc
		req.Doc = &doc
	}
	if req.Title == "" {
		req.Title = id.String()
	}
	return req, nil
}

// cleanList trims entries, drops empties and duplicates, and keeps order.
// The result never aliases the input.
func cleanList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
