package spec

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/felixgeelhaar/specplan/internal/domain"
	"github.com/felixgeelhaar/specplan/internal/errors"
)

// Lock pins the exact requirement set a plan was built from.
type Lock struct {
	Version      string                                     `json:"version"`
	Digest       string                                     `json:"digest"`
	Requirements map[domain.RequirementID]LockedRequirement `json:"requirements"`
}

// LockedRequirement records the fingerprint of one requirement.
type LockedRequirement struct {
	Hash       string  `json:"hash"`
	Confidence float64 `json:"confidence"`
	Position   int     `json:"position"`
}

// NewLock creates a Lock from normalized requirements
func NewLock(reqs []Requirement, version string) (*Lock, error) {
	lock := &Lock{
		Version:      version,
		Requirements: make(map[domain.RequirementID]LockedRequirement, len(reqs)),
	}

	for i, req := range reqs {
		hash, err := Hash(req)
		if err != nil {
			return nil, fmt.Errorf("hash requirement %s: %w", req.ID, err)
		}
		lock.Requirements[req.ID] = LockedRequirement{
			Hash:       hash,
			Confidence: req.Confidence.Float(),
			Position:   i,
		}
	}

	digest, err := Digest(reqs)
	if err != nil {
		return nil, err
	}
	lock.Digest = digest

	return lock, nil
}

// Drift describes how a requirement set differs from a lock.
type Drift struct {
	Added   []domain.RequirementID `json:"added,omitempty"`
	Removed []domain.RequirementID `json:"removed,omitempty"`
	Changed []domain.RequirementID `json:"changed,omitempty"`
}

// IsEmpty reports whether no requirement was added, removed or changed.
func (d Drift) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Compare reports per-requirement drift between the lock and reqs.
// Reordering alone is reported as no drift here; Digest catches it.
func (l *Lock) Compare(reqs []Requirement) (Drift, error) {
	var drift Drift
	current := make(map[domain.RequirementID]struct{}, len(reqs))

	for _, req := range reqs {
		current[req.ID] = struct{}{}
		locked, ok := l.Requirements[req.ID]
		if !ok {
			drift.Added = append(drift.Added, req.ID)
			continue
		}
		hash, err := Hash(req)
		if err != nil {
			return Drift{}, fmt.Errorf("hash requirement %s: %w", req.ID, err)
		}
		if hash != locked.Hash {
			drift.Changed = append(drift.Changed, req.ID)
		}
	}

	for id := range l.Requirements {
		if _, ok := current[id]; !ok {
			drift.Removed = append(drift.Removed, id)
		}
	}
	sort.Slice(drift.Removed, func(i, j int) bool { return drift.Removed[i] < drift.Removed[j] })

	return drift, nil
}

// SaveLock writes a Lock to disk
func SaveLock(lock *Lock, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, "create directory", err)
	}

	data, err := json.MarshalIndent(lock, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileMarshal, "marshal spec lock", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.NewFileWriteError(path, err)
	}

	return nil
}

// LoadLock reads a Lock from disk
func LoadLock(path string) (*Lock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "read spec lock", err)
	}

	var lock Lock
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, errors.NewFileUnmarshalError(path, "JSON", err)
	}

	return &lock, nil
}
