package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"treedrag/internal/model"
)

// Store is the persistence boundary for flat record documents.
type Store interface {
	Load() (*model.Document, error)
	Save(doc *model.Document) error
}

// JSONStore persists a document as a single JSON file.
type JSONStore struct {
	FilePath string
}

// NewJSONStore creates a JSON store for the given file path.
func NewJSONStore(filePath string) *JSONStore {
	return &JSONStore{FilePath: filePath}
}

// Load reads the document from disk. A missing file yields an empty
// document rather than an error.
func (s *JSONStore) Load() (*model.Document, error) {
	data, err := os.ReadFile(s.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NewDocument("Untitled"), nil
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if doc.Records == nil {
		doc.Records = make([]*model.Record, 0)
	}
	return &doc, nil
}

// Save writes the document to disk, creating the directory if needed.
func (s *JSONStore) Save(doc *model.Document) error {
	dir := filepath.Dir(s.FilePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.WriteFile(s.FilePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// FileExists checks if the document file exists.
func (s *JSONStore) FileExists() bool {
	_, err := os.Stat(s.FilePath)
	return err == nil
}
