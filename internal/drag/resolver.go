// Package drag turns pointer input into structural tree edits. The
// resolver is a pure function from a hover position to an insertion point;
// the session (session.go) drives it across a full pointer-down/up
// lifecycle.
package drag

import (
	"math"

	"treedrag/internal/order"
	"treedrag/internal/tree"
)

// DragDirection is the vertical sense of the current pointer move.
type DragDirection string

const (
	DirUp      DragDirection = "up"
	DirDown    DragDirection = "down"
	DirNowhere DragDirection = "nowhere"
)

// DefaultDepthStep is the horizontal pointer distance that shifts the
// target depth by one level. A tunable constant, not derived from row
// geometry.
const DefaultDepthStep = 40.0

// ResolveInput carries everything a single resolution needs. Index must be
// the anchor-collapsed mapping when the dragged node has children.
type ResolveInput[T any] struct {
	Build      *tree.Build[T]
	Index      tree.IndexMap
	DownIndex  int
	HoverIndex int
	DX, DY     float64
	DepthStep  float64
}

// Target is the structural edit implied by one hover position.
type Target struct {
	Move       order.Direction
	RelativeTo string
	Direction  DragDirection
	// TargetDepth is the raw depth implied by horizontal drift;
	// RoundedDepth is the clamped integer depth actually used.
	TargetDepth  float64
	RoundedDepth int
	HoverID      string
	DownID       string
}

// Resolve decides where the dragged node would land for the given hover
// position: before/after a reference node or as a first child. It reads
// the build but never modifies it.
func Resolve[T any](in ResolveInput[T]) Target {
	if in.DX == 0 && in.DY == 0 {
		return Target{Move: order.Nowhere, Direction: DirNowhere}
	}

	size := len(in.Index.ByIndex)
	if size == 0 || in.DownIndex < 0 || in.DownIndex >= size {
		return Target{Move: order.Nowhere, Direction: DirNowhere}
	}

	step := in.DepthStep
	if step <= 0 {
		step = DefaultDepthStep
	}

	direction := DirNowhere
	switch {
	case in.HoverIndex > in.DownIndex:
		direction = DirDown
	case in.HoverIndex < in.DownIndex:
		direction = DirUp
	}

	hoverIdx := in.HoverIndex
	if hoverIdx >= size {
		hoverIdx = size - 1
	}
	downID := in.Index.ByIndex[in.DownIndex]
	down := in.Build.Node(downID)

	// Above the first row there is nothing to measure against: the only
	// sensible edit is placing the node before the current first row.
	if hoverIdx < 0 {
		first := in.Index.ByIndex[0]
		return Target{
			Move:       order.Before,
			RelativeTo: first,
			Direction:  direction,
			HoverID:    first,
			DownID:     downID,
		}
	}

	hoverID := in.Index.ByIndex[hoverIdx]

	// nodeAbove is the row immediately above the prospective insertion
	// point: the hovered row itself when moving down (the node slots in
	// underneath it), otherwise the row preceding the hover row.
	var above *tree.Node[T]
	if direction == DirDown {
		above = in.Build.Node(hoverID)
	} else {
		if hoverIdx == 0 {
			if direction == DirNowhere {
				// Dragging sideways on the very first row.
				return Target{Move: order.Nowhere, Direction: direction, HoverID: hoverID, DownID: downID}
			}
			return Target{
				Move:       order.Before,
				RelativeTo: hoverID,
				Direction:  direction,
				HoverID:    hoverID,
				DownID:     downID,
			}
		}
		above = in.Build.Node(in.Index.ByIndex[hoverIdx-1])
	}

	targetDepth := float64(down.Depth()) + in.DX/step
	rounded := int(math.Round(targetDepth))
	if rounded < 0 {
		rounded = 0
	}
	if limit := above.Depth() + 1; rounded > limit {
		rounded = limit
	}

	t := Target{
		Direction:    direction,
		TargetDepth:  targetDepth,
		RoundedDepth: rounded,
		HoverID:      hoverID,
		DownID:       downID,
	}

	switch {
	case rounded > above.Depth() && !in.Build.IsCollapsed(above.ID):
		// Deeper than the row above: become its first child.
		t.Move = order.FirstChild
		t.RelativeTo = above.ID
	case len(above.ChildIDs) > 0 && !(len(above.ChildIDs) == 1 && above.ChildIDs[0] == downID):
		// The row above already has visible children, so the slot
		// directly underneath it is the first-child position.
		t.Move = order.FirstChild
		t.RelativeTo = above.ID
	default:
		t.Move = order.After
		t.RelativeTo = lastChildAncestor(in.Build, above, rounded)
	}
	return t
}

// lastChildAncestor picks the node the drop lands after: the shallowest
// ancestor of n at or below targetDepth that is itself a last child, so
// that nothing follows the insertion point at that depth. Falls back to n
// itself. The walk is over the ancestor chain ordered from targetDepth
// down to n, so it terminates by construction.
func lastChildAncestor[T any](b *tree.Build[T], n *tree.Node[T], targetDepth int) string {
	for _, id := range ancestorChain(b, n, targetDepth) {
		if b.Node(id).IsLastChild {
			return id
		}
	}
	return n.ID
}

// ancestorChain returns the ids on the path from depth targetDepth down to
// n inclusive. For targetDepth at or below n's own depth the chain is just
// n itself.
func ancestorChain[T any](b *tree.Build[T], n *tree.Node[T], targetDepth int) []string {
	if targetDepth < 0 {
		targetDepth = 0
	}
	depth := n.Depth()
	if targetDepth >= depth {
		return []string{n.ID}
	}
	// ParentIDs is nearest-first: ParentIDs[k] sits at depth depth-1-k.
	chain := make([]string, 0, depth-targetDepth+1)
	for d := targetDepth; d < depth; d++ {
		chain = append(chain, n.ParentIDs[depth-1-d])
	}
	return append(chain, n.ID)
}
