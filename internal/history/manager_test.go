package history

import (
	"testing"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	return &Manager{historyDir: t.TempDir()}
}

func TestLoadMissingFile(t *testing.T) {
	m := testManager(t)

	entries, err := m.Load("filter.toml")
	if err != nil {
		t.Fatalf("Missing history file should not error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}
}

func TestSaveAndLoad(t *testing.T) {
	m := testManager(t)

	if err := m.Save("filter.toml", []string{"one", "two"}); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	entries, err := m.Load("filter.toml")
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if len(entries) != 2 || entries[0] != "one" || entries[1] != "two" {
		t.Errorf("Entries not preserved: %v", entries)
	}
}

func TestAppendDeduplicatesAndLimits(t *testing.T) {
	m := testManager(t)

	for _, e := range []string{"a", "b", "c", "b"} {
		if err := m.Append("filter.toml", e, 3); err != nil {
			t.Fatalf("Failed to append %q: %v", e, err)
		}
	}

	entries, err := m.Load("filter.toml")
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	// The duplicate moves to the end; the limit keeps the newest three.
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d: %v", len(entries), entries)
	}
	if entries[0] != "a" || entries[1] != "c" || entries[2] != "b" {
		t.Errorf("Unexpected entry order: %v", entries)
	}
}

func TestAppendLimitDropsOldest(t *testing.T) {
	m := testManager(t)

	for _, e := range []string{"a", "b", "c", "d"} {
		if err := m.Append("filter.toml", e, 3); err != nil {
			t.Fatalf("Failed to append %q: %v", e, err)
		}
	}

	entries, err := m.Load("filter.toml")
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if len(entries) != 3 || entries[0] != "b" {
		t.Errorf("Expected oldest entry dropped, got %v", entries)
	}
}
