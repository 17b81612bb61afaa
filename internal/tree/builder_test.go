package tree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	id        string
	parent    *string
	order     *float64
	collapsed bool
}

func r(id string, parent string, order float64) *row {
	out := &row{id: id, order: &order}
	if parent != "" {
		out.parent = &parent
	}
	return out
}

func unordered(id string, parent string) *row {
	out := &row{id: id}
	if parent != "" {
		out.parent = &parent
	}
	return out
}

func rowFuncs(filteredOut func(*row) bool) Funcs[*row] {
	return Funcs[*row]{
		ID:       func(r *row) string { return r.id },
		ParentID: func(r *row) *string { return r.parent },
		Order: func(r *row) (float64, bool) {
			if r.order == nil {
				return 0, false
			}
			return *r.order, true
		},
		Compare:     func(a, b *row) int { return strings.Compare(a.id, b.id) },
		Collapsed:   func(r *row) bool { return r.collapsed },
		FilteredOut: filteredOut,
	}
}

// a sample forest:
//
//	a (0.2)
//	  a1 (0.3)
//	  a2 (0.6)
//	    a2x (0.5)
//	b (0.8)
func sampleRows() []*row {
	return []*row{
		r("b", "", 0.8),
		r("a2x", "a2", 0.5),
		r("a", "", 0.2),
		r("a2", "a", 0.6),
		r("a1", "a", 0.3),
	}
}

func TestBuildTreePreOrder(t *testing.T) {
	b, err := BuildTree(sampleRows(), rowFuncs(nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, b.RootIDs)
	assert.Equal(t, []string{"a", "a1", "a2", "a2x", "b"}, b.Index.ByIndex)
	assert.Equal(t, 5, b.TreeSize)
	assert.Empty(t, b.Orphans)
	assert.Empty(t, b.MissingOrders)

	// Index is dense and bidirectional.
	for i, id := range b.Index.ByIndex {
		assert.Equal(t, i, b.Index.IndexByID[id])
		assert.Equal(t, i, b.Node(id).Index)
	}
}

func TestBuildTreeDepthAndAncestors(t *testing.T) {
	b, err := BuildTree(sampleRows(), rowFuncs(nil))
	require.NoError(t, err)

	assert.Equal(t, 0, b.Node("a").Depth())
	assert.Equal(t, 1, b.Node("a1").Depth())
	assert.Equal(t, 2, b.Node("a2x").Depth())

	// Ancestor chains are nearest-first.
	assert.Equal(t, []string{"a2", "a"}, b.Node("a2x").ParentIDs)
	assert.True(t, b.Node("a2x").HasAncestor("a"))
	assert.False(t, b.Node("a2x").HasAncestor("b"))

	assert.False(t, b.Node("a1").IsLastChild)
	assert.True(t, b.Node("a2").IsLastChild)
	assert.True(t, b.Node("b").IsLastChild)
}

func TestBuildTreeInputOrderIrrelevant(t *testing.T) {
	rows := sampleRows()
	reversed := make([]*row, len(rows))
	for i, rw := range rows {
		reversed[len(rows)-1-i] = rw
	}

	b1, err := BuildTree(rows, rowFuncs(nil))
	require.NoError(t, err)
	b2, err := BuildTree(reversed, rowFuncs(nil))
	require.NoError(t, err)

	assert.Equal(t, b1.Index.ByIndex, b2.Index.ByIndex)
}

func TestBuildTreeAssignsMissingOrders(t *testing.T) {
	rows := []*row{
		r("a", "", 0.4),
		unordered("n2", ""),
		unordered("n1", ""),
	}

	b, err := BuildTree(rows, rowFuncs(nil))
	require.NoError(t, err)

	// Unordered roots sort by the tiebreak and precede the ordered one.
	assert.Equal(t, []string{"n1", "n2", "a"}, b.RootIDs)
	require.Len(t, b.MissingOrders, 2)
	assert.Less(t, b.MissingOrders["n1"], b.MissingOrders["n2"])
	assert.Less(t, b.MissingOrders["n2"], 0.4)

	o, ok := b.ResolvedOrder("n1")
	assert.True(t, ok)
	assert.Equal(t, b.MissingOrders["n1"], o)
}

func TestBuildTreeCollapsedSubtreeSkipped(t *testing.T) {
	rows := sampleRows()
	for _, rw := range rows {
		if rw.id == "a2" {
			rw.collapsed = true
		}
	}

	b, err := BuildTree(rows, rowFuncs(nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "a1", "a2", "b"}, b.Index.ByIndex)
	assert.Nil(t, b.Node("a2x"))
	assert.Empty(t, b.Node("a2").ChildIDs)
	assert.True(t, b.IsCollapsed("a2"))
}

func TestBuildTreeOrphans(t *testing.T) {
	rows := append(sampleRows(), r("lost", "ghost", 0.5))

	b, err := BuildTree(rows, rowFuncs(nil))
	require.NoError(t, err)

	require.Len(t, b.Orphans, 1)
	assert.Equal(t, "lost", b.Orphans[0].id)
	// Orphans are reported, not promoted: they never appear in the index.
	assert.Nil(t, b.Node("lost"))
	assert.NotContains(t, b.Index.IndexByID, "lost")
}

func TestBuildTreeAllOrphansIsNotAnError(t *testing.T) {
	rows := []*row{r("x", "ghost", 0.5), r("y", "ghost", 0.7)}

	b, err := BuildTree(rows, rowFuncs(nil))
	require.NoError(t, err)
	assert.Empty(t, b.RootIDs)
	assert.Len(t, b.Orphans, 2)
}

func TestBuildTreeRejectsCycles(t *testing.T) {
	// x and y reference each other; no record can anchor a tree.
	rows := []*row{r("x", "y", 0.5), r("y", "x", 0.5)}
	_, err := BuildTree(rows, rowFuncs(nil))
	assert.ErrorIs(t, err, ErrNoRoots)

	// A cycle beside a legitimate root is still an error.
	rows = append(rows, r("a", "", 0.2))
	_, err = BuildTree(rows, rowFuncs(nil))
	assert.ErrorIs(t, err, ErrNoRoots)
}

func TestBuildTreeEmptyInput(t *testing.T) {
	b, err := BuildTree(nil, rowFuncs(nil))
	require.NoError(t, err)
	assert.Equal(t, 0, b.TreeSize)
	assert.Empty(t, b.RootIDs)
}

func TestBuildTreeFilterKeepsAncestorsOfMatches(t *testing.T) {
	// Only a2x matches; its ancestors a2 and a survive, a1 and b drop.
	filtered := func(r *row) bool { return r.id != "a2x" }

	b, err := BuildTree(sampleRows(), rowFuncs(filtered))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "a2", "a2x"}, b.Index.ByIndex)
	assert.Nil(t, b.Node("a1"))
	assert.Nil(t, b.Node("b"))
	assert.Equal(t, 3, b.TreeSize)
}

func TestBuildTreeFilterDropsWholeSubtrees(t *testing.T) {
	// Nothing under b matches and b itself does not match.
	filtered := func(r *row) bool { return strings.HasPrefix(r.id, "b") }

	b, err := BuildTree(sampleRows(), rowFuncs(filtered))
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, b.RootIDs)
	assert.NotContains(t, b.Index.IndexByID, "b")
}

func TestBuildTreeFilterIgnoresCollapse(t *testing.T) {
	// A match hidden under a collapsed ancestor still keeps the ancestor.
	rows := sampleRows()
	for _, rw := range rows {
		if rw.id == "a2" {
			rw.collapsed = true
		}
	}
	filtered := func(r *row) bool { return r.id != "a2x" }

	b, err := BuildTree(rows, rowFuncs(filtered))
	require.NoError(t, err)

	// a2 survives through its hidden match, but stays collapsed.
	require.NotNil(t, b.Node("a2"))
	assert.Empty(t, b.Node("a2").ChildIDs)
}

func TestChildren(t *testing.T) {
	b, err := BuildTree(sampleRows(), rowFuncs(nil))
	require.NoError(t, err)

	roots := b.Children(nil)
	require.Len(t, roots, 2)
	assert.Equal(t, "a", roots[0].id)

	a := "a"
	kids := b.Children(&a)
	require.Len(t, kids, 2)
	assert.Equal(t, "a1", kids[0].id)
	assert.Equal(t, "a2", kids[1].id)
}

func TestParentID(t *testing.T) {
	b, err := BuildTree(sampleRows(), rowFuncs(nil))
	require.NoError(t, err)

	assert.Nil(t, b.ParentID("a"))
	p := b.ParentID("a2x")
	require.NotNil(t, p)
	assert.Equal(t, "a2", *p)
}

func TestCollapsedIndex(t *testing.T) {
	b, err := BuildTree(sampleRows(), rowFuncs(nil))
	require.NoError(t, err)

	m := CollapsedIndex(b, "a")
	assert.Equal(t, []string{"a", "b"}, m.ByIndex)
	assert.Equal(t, 0, m.IndexByID["a"])
	assert.Equal(t, 1, m.IndexByID["b"])
	assert.NotContains(t, m.IndexByID, "a1")

	// Collapsing a leaf changes nothing.
	m = CollapsedIndex(b, "b")
	assert.Equal(t, b.Index.ByIndex, m.ByIndex)

	// The build's own index is untouched.
	assert.Len(t, b.Index.ByIndex, 5)
}

func TestSubtreeEndRow(t *testing.T) {
	// Pre-order: a, a1, a2, a2x, b.
	b, err := BuildTree(sampleRows(), rowFuncs(nil))
	require.NoError(t, err)

	// A slot after "a" comes below its whole subtree, not between "a"
	// and "a1".
	assert.Equal(t, 4, SubtreeEndRow(b, b.Index, 0))
	assert.Equal(t, 4, SubtreeEndRow(b, b.Index, 2))

	// Leaves have no subtree to skip.
	assert.Equal(t, 2, SubtreeEndRow(b, b.Index, 1))

	// The last root's subtree runs to the bottom.
	assert.Equal(t, 5, SubtreeEndRow(b, b.Index, 4))

	// With a2 lifted out the mapping shrinks and so does the skip.
	m := CollapsedIndex(b, "a2")
	assert.Equal(t, []string{"a", "a1", "a2", "b"}, m.ByIndex)
	assert.Equal(t, 3, SubtreeEndRow(b, m, 2))

	// Out-of-range rows fall back to the next slot.
	assert.Equal(t, 6, SubtreeEndRow(b, b.Index, 5))
}

func TestNodeAt(t *testing.T) {
	b, err := BuildTree(sampleRows(), rowFuncs(nil))
	require.NoError(t, err)

	assert.Equal(t, "a", b.NodeAt(0).ID)
	assert.Equal(t, "b", b.NodeAt(4).ID)
	assert.Nil(t, b.NodeAt(-1))
	assert.Nil(t, b.NodeAt(5))
}
