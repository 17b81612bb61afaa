package storage

import (
	"path/filepath"
	"testing"

	"treedrag/internal/model"
)

func testDocument() *model.Document {
	doc := model.NewDocument("Test document")
	parent := model.NewRecord("Parent")
	parent.ID = "rec_parent"
	o := 0.5
	parent.Order = &o
	child := model.NewRecord("Child")
	child.ID = "rec_child"
	child.ParentID = &parent.ID
	child.Collapsed = true
	doc.Records = append(doc.Records, parent, child)
	return doc
}

func TestJSONStoreRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	store := NewJSONStore(path)

	doc := testDocument()
	if err := store.Save(doc); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	if !store.FileExists() {
		t.Fatal("Expected file to exist after save")
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}

	if loaded.Title != "Test document" {
		t.Errorf("Expected title 'Test document', got %q", loaded.Title)
	}
	if len(loaded.Records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(loaded.Records))
	}

	parent, child := loaded.Records[0], loaded.Records[1]
	if parent.Order == nil || *parent.Order != 0.5 {
		t.Errorf("Parent order not preserved: %v", parent.Order)
	}
	if child.ParentID == nil || *child.ParentID != parent.ID {
		t.Errorf("Child parent id not preserved: %v", child.ParentID)
	}
	if !child.Collapsed {
		t.Error("Child collapsed flag not preserved")
	}
	if child.Order != nil {
		t.Errorf("Expected child to keep a nil order, got %v", *child.Order)
	}
}

func TestJSONStoreMissingFile(t *testing.T) {
	store := NewJSONStore(filepath.Join(t.TempDir(), "does_not_exist.json"))

	doc, err := store.Load()
	if err != nil {
		t.Fatalf("Expected empty document for missing file, got error: %v", err)
	}
	if len(doc.Records) != 0 {
		t.Errorf("Expected no records, got %d", len(doc.Records))
	}
	if store.FileExists() {
		t.Error("FileExists should be false before first save")
	}
}

func TestJSONStoreCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "records.json")
	store := NewJSONStore(path)

	if err := store.Save(testDocument()); err != nil {
		t.Fatalf("Failed to save into missing directory: %v", err)
	}
	if !store.FileExists() {
		t.Fatal("Expected file to exist after save")
	}
}
