package ui

import (
	"fmt"
	"testing"

	"treedrag/internal/model"
	"treedrag/internal/tree"
)

func buildRows(t *testing.T, n int) *tree.Build[*model.Record] {
	t.Helper()
	records := make([]*model.Record, 0, n)
	for i := 0; i < n; i++ {
		r := model.NewRecord(fmt.Sprintf("Row %02d", i))
		r.ID = fmt.Sprintf("row_%02d", i)
		o := float64(i+1) / float64(n+1)
		r.Order = &o
		records = append(records, r)
	}
	b, err := tree.BuildTree(records, model.Funcs(nil))
	if err != nil {
		t.Fatalf("Failed to build tree: %v", err)
	}
	return b
}

func TestPointerRowUnscrolled(t *testing.T) {
	tv := NewTreeView(buildRows(t, 5))

	if got := tv.PointerRow(3); got != 3 {
		t.Errorf("Expected screen row 3 to map to row 3, got %d", got)
	}
}

func TestPointerRowScrolledViewport(t *testing.T) {
	tv := NewTreeView(buildRows(t, 20))
	tv.viewportOffset = 7

	// Screen row 2 shows mapping row 9 once the view scrolled past the
	// first seven rows.
	if got := tv.PointerRow(2); got != 9 {
		t.Errorf("Expected screen row 2 to map to row 9, got %d", got)
	}
	node := tv.NodeAtRow(tv.PointerRow(2))
	if node == nil || node.ID != "row_09" {
		t.Errorf("Expected pointer to land on row_09, got %v", node)
	}
}
