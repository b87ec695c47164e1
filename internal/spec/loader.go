package spec

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/specplan/internal/errors"
)

// Repository defines the interface for loading and saving spec documents.
// This interface enables dependency injection and makes testing easier.
type Repository interface {
	// Load reads a Document from a file
	Load(path string) (*Document, error)

	// Save writes a Document to a file
	Save(doc *Document, path string) error
}

// FileRepository implements Repository for YAML or JSON files, chosen by
// extension (.json is JSON, anything else is YAML).
type FileRepository struct{}

// NewFileRepository creates a new file-based spec repository
func NewFileRepository() *FileRepository {
	return &FileRepository{}
}

// Load reads a Document from disk
func (r *FileRepository) Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewSpecNotFoundError(path)
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("read spec file %s", path), err)
	}

	doc, err := Parse(data, formatFor(path))
	if err != nil {
		return nil, errors.NewFileUnmarshalError(path, formatFor(path), err)
	}
	return doc, nil
}

// Save writes a Document to disk
func (r *FileRepository) Save(doc *Document, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, "create directory", err)
	}

	var (
		data []byte
		err  error
	)
	if formatFor(path) == "JSON" {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = yaml.Marshal(doc)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileMarshal, "marshal spec", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.NewFileWriteError(path, err)
	}
	return nil
}

// Parse decodes a document in the given format ("JSON" or "YAML").
func Parse(data []byte, format string) (*Document, error) {
	var doc Document
	var err error
	if strings.EqualFold(format, "json") {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("unmarshal spec: %w", err)
	}
	return &doc, nil
}

func formatFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "JSON"
	}
	return "YAML"
}

// Default instance for package-level functions
var defaultRepository = NewFileRepository()

// LoadDocument reads a Document using the default repository.
func LoadDocument(path string) (*Document, error) {
	return defaultRepository.Load(path)
}

// SaveDocument writes a Document using the default repository.
func SaveDocument(doc *Document, path string) error {
	return defaultRepository.Save(doc, path)
}

// Compile-time verification that FileRepository implements Repository
var _ Repository = (*FileRepository)(nil)
