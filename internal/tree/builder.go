// Package tree builds an indexed, depth-annotated forest from a flat list
// of parent-referencing records. Records stay owned by the caller and are
// only read through the accessor bundle in Funcs.
//
// Nodes live in a single arena keyed by id; ancestor and child links are
// stored as id lists, never as pointers, so a build has no reference cycles
// and node identity is always a lookup.
package tree

import (
	"errors"
	"fmt"

	"treedrag/internal/order"
)

// Funcs is the accessor bundle supplied by the caller for its record type.
type Funcs[T any] struct {
	ID        func(T) string
	ParentID  func(T) *string
	Order     func(T) (float64, bool)
	Compare   func(a, b T) int
	Collapsed func(T) bool
	// FilteredOut marks records hidden by the current filter. May be nil.
	// A filtered-out record is still built when a descendant survives.
	FilteredOut func(T) bool
}

// Node is one entry in the build arena.
type Node[T any] struct {
	ID   string
	Data T
	// ChildIDs holds visible children in sibling order. Empty for
	// collapsed nodes: their subtrees are not built at all.
	ChildIDs []string
	// ParentIDs holds the ancestor chain, nearest ancestor first.
	ParentIDs   []string
	IsLastChild bool
	// Index is the node's position in the depth-first pre-order walk.
	Index int
}

// Depth is the node's nesting level; roots are at depth 0.
func (n *Node[T]) Depth() int { return len(n.ParentIDs) }

// HasAncestor reports whether id appears in the node's ancestor chain.
func (n *Node[T]) HasAncestor(id string) bool {
	for _, p := range n.ParentIDs {
		if p == id {
			return true
		}
	}
	return false
}

// IndexMap is a bidirectional mapping between dense pre-order indexes and
// node ids.
type IndexMap struct {
	ByIndex   []string
	IndexByID map[string]int
}

// Build is the product of one BuildTree call. It is never mutated after
// construction; every data change produces a fresh Build.
type Build[T any] struct {
	RootIDs  []string
	RootData []T
	TreeSize int
	// MissingOrders holds the order keys assigned to records that had
	// none, keyed by record id, so the caller can persist them.
	MissingOrders map[string]float64
	NodesByID     map[string]*Node[T]
	Index         IndexMap
	// Orphans are records whose declared parent is absent from the input.
	// They are reported here instead of being promoted to roots.
	Orphans []T

	fns Funcs[T]
}

// ErrNoRoots indicates structurally broken input: a non-empty record set in
// which no record can anchor a tree (cyclic or fully parent-referencing).
var ErrNoRoots = errors.New("no root records found")

// BuildTree constructs an indexed forest from flat records. Sibling groups
// are ordered by their fractional order keys; records without a key get one
// assigned (reported in MissingOrders). Collapsed subtrees are skipped,
// filtered subtrees with no surviving descendant are dropped entirely.
func BuildTree[T any](data []T, fns Funcs[T]) (*Build[T], error) {
	ids := make(map[string]bool, len(data))
	for _, d := range data {
		ids[fns.ID(d)] = true
	}

	var roots, orphans []T
	childrenOf := make(map[string][]T)
	for _, d := range data {
		pid := fns.ParentID(d)
		switch {
		case pid == nil:
			roots = append(roots, d)
		case !ids[*pid]:
			orphans = append(orphans, d)
		default:
			childrenOf[*pid] = append(childrenOf[*pid], d)
		}
	}

	if len(data) > 0 && len(roots) == 0 && len(orphans) == 0 {
		return nil, fmt.Errorf("%d records all reference existing parents: %w", len(data), ErrNoRoots)
	}

	b := &Build[T]{
		MissingOrders: make(map[string]float64),
		NodesByID:     make(map[string]*Node[T]),
		Index:         IndexMap{IndexByID: make(map[string]int)},
		Orphans:       orphans,
		fns:           fns,
	}

	survives := newFilterMemo(fns, childrenOf)

	var buildLevel func(group []T, ancestors []string) []string
	buildLevel = func(group []T, ancestors []string) []string {
		kept := group[:0:0]
		for _, d := range group {
			if survives(d) {
				kept = append(kept, d)
			}
		}
		sorted, assigned := order.SortSiblings(kept, fns.ID, fns.Order, fns.Compare)
		for id, o := range assigned {
			b.MissingOrders[id] = o
		}

		childIDs := make([]string, 0, len(sorted))
		for i, d := range sorted {
			id := fns.ID(d)
			node := &Node[T]{
				ID:          id,
				Data:        d,
				ParentIDs:   ancestors,
				IsLastChild: i == len(sorted)-1,
				Index:       len(b.Index.ByIndex),
			}
			b.NodesByID[id] = node
			b.Index.ByIndex = append(b.Index.ByIndex, id)
			b.Index.IndexByID[id] = node.Index
			childIDs = append(childIDs, id)

			if !fns.Collapsed(d) && len(childrenOf[id]) > 0 {
				node.ChildIDs = buildLevel(childrenOf[id], prepend(id, ancestors))
			}
		}
		return childIDs
	}

	b.RootIDs = buildLevel(roots, nil)
	for _, id := range b.RootIDs {
		b.RootData = append(b.RootData, b.NodesByID[id].Data)
	}
	b.TreeSize = len(b.Index.ByIndex)

	if err := checkReachability(data, fns, ids); err != nil {
		return nil, err
	}
	return b, nil
}

// prepend returns a fresh ancestor chain with id in front. Chains are never
// shared between siblings, so a copy per node keeps them independent.
func prepend(id string, ancestors []string) []string {
	chain := make([]string, 0, len(ancestors)+1)
	chain = append(chain, id)
	chain = append(chain, ancestors...)
	return chain
}

// newFilterMemo returns a predicate that keeps a record when it is not
// filtered out itself or when any descendant survives. The walk ignores
// collapse state: a match hidden under a collapsed ancestor still keeps
// that ancestor visible.
func newFilterMemo[T any](fns Funcs[T], childrenOf map[string][]T) func(T) bool {
	if fns.FilteredOut == nil {
		return func(T) bool { return true }
	}
	memo := make(map[string]bool)
	var survives func(T) bool
	survives = func(d T) bool {
		id := fns.ID(d)
		if v, ok := memo[id]; ok {
			return v
		}
		memo[id] = false // cycle guard; cycles fail reachability later
		v := !fns.FilteredOut(d)
		if !v {
			for _, c := range childrenOf[id] {
				if survives(c) {
					v = true
					break
				}
			}
		}
		memo[id] = v
		return v
	}
	return survives
}

// checkReachability verifies that every record hangs off a root or an
// orphan. A record that does neither sits on a parent cycle, which the
// root scan alone cannot see when legitimate roots exist elsewhere.
func checkReachability[T any](data []T, fns Funcs[T], ids map[string]bool) error {
	anchored := make(map[string]bool, len(data))
	for _, d := range data {
		pid := fns.ParentID(d)
		if pid == nil || !ids[*pid] {
			anchored[fns.ID(d)] = true
		}
	}
	childrenOf := make(map[string][]string)
	for _, d := range data {
		if pid := fns.ParentID(d); pid != nil && ids[*pid] {
			childrenOf[*pid] = append(childrenOf[*pid], fns.ID(d))
		}
	}
	queue := make([]string, 0, len(anchored))
	for id := range anchored {
		queue = append(queue, id)
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, c := range childrenOf[id] {
			if !anchored[c] {
				anchored[c] = true
				queue = append(queue, c)
			}
		}
	}
	for _, d := range data {
		if !anchored[fns.ID(d)] {
			return fmt.Errorf("record %q is part of a parent cycle: %w", fns.ID(d), ErrNoRoots)
		}
	}
	return nil
}

// Node returns the arena entry for id, or nil when absent.
func (b *Build[T]) Node(id string) *Node[T] { return b.NodesByID[id] }

// NodeAt returns the node at a pre-order index, or nil when out of range.
func (b *Build[T]) NodeAt(i int) *Node[T] {
	if i < 0 || i >= len(b.Index.ByIndex) {
		return nil
	}
	return b.NodesByID[b.Index.ByIndex[i]]
}

// ResolvedOrder returns a node's order key: the explicit one when present,
// otherwise the key assigned during this build.
func (b *Build[T]) ResolvedOrder(id string) (float64, bool) {
	n := b.NodesByID[id]
	if n == nil {
		return 0, false
	}
	if o, ok := b.fns.Order(n.Data); ok {
		return o, true
	}
	o, ok := b.MissingOrders[id]
	return o, ok
}

// Children returns the visible child records of parentID in sibling order;
// a nil parentID addresses the root level.
func (b *Build[T]) Children(parentID *string) []T {
	if parentID == nil {
		return b.RootData
	}
	n := b.NodesByID[*parentID]
	if n == nil {
		return nil
	}
	out := make([]T, 0, len(n.ChildIDs))
	for _, id := range n.ChildIDs {
		out = append(out, b.NodesByID[id].Data)
	}
	return out
}

// IsCollapsed reports the collapse flag of a built node's record.
func (b *Build[T]) IsCollapsed(id string) bool {
	n := b.NodesByID[id]
	return n != nil && b.fns.Collapsed(n.Data)
}

// ParentID returns the id of a node's direct parent, or nil for roots.
func (b *Build[T]) ParentID(id string) *string {
	n := b.NodesByID[id]
	if n == nil || len(n.ParentIDs) == 0 {
		return nil
	}
	p := n.ParentIDs[0]
	return &p
}

// CollapsedIndex derives the index mapping the tree would have if the
// subtree below id were collapsed, without rebuilding. The node itself
// keeps its row; only its descendants drop out. The drag session uses this
// so a lifted node's children stop participating in hover-index math.
func CollapsedIndex[T any](b *Build[T], id string) IndexMap {
	m := IndexMap{
		ByIndex:   make([]string, 0, len(b.Index.ByIndex)),
		IndexByID: make(map[string]int, len(b.Index.IndexByID)),
	}
	for _, nid := range b.Index.ByIndex {
		if nid != id && b.NodesByID[nid].HasAncestor(id) {
			continue
		}
		m.IndexByID[nid] = len(m.ByIndex)
		m.ByIndex = append(m.ByIndex, nid)
	}
	return m
}

// SubtreeEndRow returns the first row below row that is outside the
// subtree of the node on row, in the given row mapping: the row an
// insertion after that node lands on. A result of len(rows.ByIndex) means
// the subtree runs to the bottom.
func SubtreeEndRow[T any](b *Build[T], rows IndexMap, row int) int {
	if row < 0 || row >= len(rows.ByIndex) {
		return row + 1
	}
	depth := b.NodesByID[rows.ByIndex[row]].Depth()
	i := row + 1
	for i < len(rows.ByIndex) && b.NodesByID[rows.ByIndex[i]].Depth() > depth {
		i++
	}
	return i
}
