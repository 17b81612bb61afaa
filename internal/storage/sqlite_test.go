package storage

import (
	"path/filepath"
	"testing"

	"treedrag/internal/model"
)

func openTestDB(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreRoundtrip(t *testing.T) {
	store := openTestDB(t)

	doc := testDocument()
	if err := store.Save(doc); err != nil {
		t.Fatalf("Failed to save: %v", err)
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

	byID := make(map[string]*model.Record)
	for _, r := range loaded.Records {
		byID[r.ID] = r
	}
	parent := byID[doc.Records[0].ID]
	child := byID[doc.Records[1].ID]
	if parent == nil || child == nil {
		t.Fatal("Saved records not found after load")
	}
	if parent.Order == nil || *parent.Order != 0.5 {
		t.Errorf("Parent order not preserved: %v", parent.Order)
	}
	if parent.ParentID != nil {
		t.Errorf("Expected parent to stay a root, got parent id %q", *parent.ParentID)
	}
	if child.ParentID == nil || *child.ParentID != parent.ID {
		t.Errorf("Child parent id not preserved: %v", child.ParentID)
	}
	if child.Order != nil {
		t.Errorf("Expected child to keep a nil order, got %v", *child.Order)
	}
	if !child.Collapsed {
		t.Error("Child collapsed flag not preserved")
	}
	if !parent.Created.Equal(doc.Records[0].Created) {
		t.Errorf("Created time not preserved: got %v, want %v", parent.Created, doc.Records[0].Created)
	}
	if !parent.Modified.Equal(doc.Records[0].Modified) {
		t.Errorf("Modified time not preserved: got %v, want %v", parent.Modified, doc.Records[0].Modified)
	}
}

func TestSQLiteStoreSaveReplaces(t *testing.T) {
	store := openTestDB(t)

	if err := store.Save(testDocument()); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	small := model.NewDocument("Smaller")
	small.Records = append(small.Records, model.NewRecord("Only one"))
	if err := store.Save(small); err != nil {
		t.Fatalf("Failed to save replacement: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if len(loaded.Records) != 1 {
		t.Errorf("Expected save to replace records, got %d", len(loaded.Records))
	}
	if loaded.Title != "Smaller" {
		t.Errorf("Expected replaced title, got %q", loaded.Title)
	}
}

func TestSQLiteStoreUpdateMove(t *testing.T) {
	store := openTestDB(t)

	doc := testDocument()
	if err := store.Save(doc); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	childID := doc.Records[1].ID
	if err := store.UpdateMove(childID, 0.75, nil); err != nil {
		t.Fatalf("Failed to update move: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	for _, r := range loaded.Records {
		if r.ID != childID {
			continue
		}
		if r.Order == nil || *r.Order != 0.75 {
			t.Errorf("Order not updated: %v", r.Order)
		}
		if r.ParentID != nil {
			t.Errorf("Expected record to become a root, got parent %q", *r.ParentID)
		}
	}

	if err := store.UpdateMove("missing", 0.5, nil); err == nil {
		t.Error("Expected error for unknown record id")
	}
}

func TestSQLiteStoreUpdateOrders(t *testing.T) {
	store := openTestDB(t)

	doc := testDocument()
	if err := store.Save(doc); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	orders := map[string]float64{doc.Records[1].ID: 0.25}
	if err := store.UpdateOrders(orders); err != nil {
		t.Fatalf("Failed to update orders: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	for _, r := range loaded.Records {
		if r.ID == doc.Records[1].ID {
			if r.Order == nil || *r.Order != 0.25 {
				t.Errorf("Assigned order not persisted: %v", r.Order)
			}
		}
	}
}
