package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/specplan/internal/errors"
	"github.com/felixgeelhaar/specplan/internal/spec"
)

// FileVersion is the schema version written to plan files.
const FileVersion = "1"

// File is the on-disk form of a decomposition result
type File struct {
	Version    string         `json:"version"`
	SpecDigest string         `json:"specDigest"`
	Tasks      []Task         `json:"tasks"`
	Edges      []Edge         `json:"edges"`
	Plan       ExecutionPlan  `json:"plan"`
	Report     AnalysisReport `json:"report"`
}

// NewFile captures res for persistence. The run id is deliberately left out
// so that identical inputs produce identical files.
func NewFile(res *Result) *File {
	return &File{
		Version:    FileVersion,
		SpecDigest: res.SpecDigest,
		Tasks:      res.Tasks,
		Edges:      res.Graph.Edges(),
		Plan:       res.Plan,
		Report:     res.Report,
	}
}

// Marshal renders the file as indented JSON
func (f *File) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileMarshal, "marshal plan", err)
	}
	return append(data, '\n'), nil
}

// CheckFreshness fails when reqs differ from the requirements the plan was
// built from.
func (f *File) CheckFreshness(reqs []spec.Requirement) error {
	digest, err := spec.Digest(reqs)
	if err != nil {
		return fmt.Errorf("digest requirements: %w", err)
	}
	if digest != f.SpecDigest {
		return errors.NewPlanStaleError(f.SpecDigest, digest)
	}
	return nil
}

// LoadFile reads and validates a plan file
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, fmt.Sprintf("plan file not found: %s", path)).
				WithSuggestion("Generate one with 'specplan plan'")
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "read plan file", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.NewFileUnmarshalError(path, "JSON", err)
	}

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("validate plan: %w", err)
	}

	return &f, nil
}

// SaveFile writes a plan file
func SaveFile(f *File, path string) error {
	data, err := f.Marshal()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, "create directory", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.NewFileWriteError(path, err)
	}

	return nil
}
