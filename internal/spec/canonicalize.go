package spec

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/zeebo/blake3"
)

// Canonicalize returns a canonical JSON representation of a requirement
// with stable ordering for consistent hashing. Fields that do not change the
// synthesized plan (title, description) are included so that any edit to the
// requirement is detected.
func Canonicalize(req Requirement) ([]byte, error) {
	data := map[string]any{
		"id":          req.ID.String(),
		"title":       req.Title,
		"description": req.Description,
		"priority":    req.Priority.String(),
		"confidence":  req.Confidence.Float(),
		"epic":        req.EpicID,
		"story":       req.StoryID,
		"minutes":     req.EstimatedMinutes,
		"crossCut":    req.CrossCutting,
		"exempt":      string(req.Exempt),
		"exclusive":   req.Exclusive,
	}

	// Order matters for dependsOn (it drives edge insertion); ownership is a set.
	if len(req.DependsOn) > 0 {
		data["dependsOn"] = req.DependsOn
	}
	if len(req.InformedBy) > 0 {
		data["informedBy"] = req.InformedBy
	}
	if len(req.Owns) > 0 {
		data["owns"] = sortedCopy(req.Owns)
	}
	if len(req.TestOwns) > 0 {
		data["testOwns"] = sortedCopy(req.TestOwns)
	}
	if req.Doc != nil {
		data["doc"] = *req.Doc
	}

	// encoding/json sorts map keys
	return json.Marshal(data)
}

// Hash computes the blake3 hash of a canonicalized requirement
func Hash(req Requirement) (string, error) {
	canonical, err := Canonicalize(req)
	if err != nil {
		return "", fmt.Errorf("canonicalize requirement: %w", err)
	}

	hasher := blake3.New()
	if _, err := hasher.Write(canonical); err != nil {
		return "", fmt.Errorf("hash requirement: %w", err)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

// Digest hashes the ordered list of requirement hashes. Reordering
// requirements changes the digest because it changes task ids.
func Digest(reqs []Requirement) (string, error) {
	hasher := blake3.New()
	for _, req := range reqs {
		h, err := Hash(req)
		if err != nil {
			return "", fmt.Errorf("hash requirement %s: %w", req.ID, err)
		}
		if _, err := fmt.Fprintf(hasher, "%s=%s\n", req.ID, h); err != nil {
			return "", fmt.Errorf("digest: %w", err)
		}
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
