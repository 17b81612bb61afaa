package export

import (
	"os"
	"path/filepath"
	"testing"

	"treedrag/internal/model"
)

func TestToMarkdown(t *testing.T) {
	doc := model.NewDocument("Export test")

	root := model.NewRecord("Root")
	root.ID = "rec_root"
	ro := 0.5
	root.Order = &ro

	child := model.NewRecord("Child")
	child.ID = "rec_child"
	child.ParentID = &root.ID
	co := 0.5
	child.Order = &co
	// Collapse state must not hide anything in the export.
	root.Collapsed = true

	other := model.NewRecord("Other root")
	other.ID = "rec_other"
	oo := 0.8
	other.Order = &oo

	doc.Records = append(doc.Records, root, child, other)

	path := filepath.Join(t.TempDir(), "out.md")
	if err := ToMarkdown(doc, path); err != nil {
		t.Fatalf("Failed to export: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}

	expected := "- Root\n  - Child\n- Other root\n"
	if string(data) != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, string(data))
	}
}

func TestToMarkdownIncludesOrphans(t *testing.T) {
	doc := model.NewDocument("Orphan test")

	root := model.NewRecord("Root")
	root.ID = "rec_root"
	ro := 0.5
	root.Order = &ro

	ghost := "rec_ghost"
	lost := model.NewRecord("Lost")
	lost.ID = "rec_lost"
	lost.ParentID = &ghost
	lo := 0.5
	lost.Order = &lo

	doc.Records = append(doc.Records, root, lost)

	path := filepath.Join(t.TempDir(), "out.md")
	if err := ToMarkdown(doc, path); err != nil {
		t.Fatalf("Failed to export: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}

	expected := "- Root\n- Lost\n"
	if string(data) != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, string(data))
	}
}
