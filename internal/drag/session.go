package drag

import (
	"errors"
	"fmt"

	"treedrag/internal/order"
	"treedrag/internal/tree"
)

// Point is a pointer position in the host's coordinate space.
type Point struct {
	X, Y float64
}

// Box is the measured geometry of the rendered tree: its top edge, left
// edge and total height. It is assumed to cover one equal-height row per
// addressable node.
type Box struct {
	Top, Left, Height float64
}

// clickDistance is the squared pointer travel below which a down/up pair
// counts as a click instead of a drag.
const clickDistance = 2.0

// ErrNoAnchor is returned for a pointer-up with no preceding pointer-down.
// This is an integration bug in the host, not a user-input condition.
var ErrNoAnchor = errors.New("pointer-up without an anchored drag")

// Callbacks is the surface through which the session talks back to the
// embedding host.
type Callbacks[T any] struct {
	// OnNodeMove commits a drop: the node id, its new order key and its
	// new parent (nil for the root level). The host is expected to
	// update its records and supply a rebuilt tree via SetTree.
	OnNodeMove func(id string, newOrder float64, newParentID *string)
	// OnBulkNodeOrder fires once per build that had to assign order keys,
	// so the host can persist them.
	OnBulkNodeOrder func(orders map[string]float64)
	// OnClick fires for a down/up pair that never became a drag.
	OnClick func(datum T)
	// OnDroppingChange signals entering/leaving the drop-settling state.
	OnDroppingChange func(dropping bool)
}

// DragEnd is the structural edit the drag currently points at. It is
// recomputed on every meaningful pointer move and diffed against the
// previous value to keep change notifications minimal.
type DragEnd struct {
	Order    float64
	ParentID *string
	// OffTree marks a position with no valid insertion point; releasing
	// there does nothing.
	OffTree      bool
	NewDepth     int
	DidMove      bool
	DragDistance float64 // squared pointer travel since anchor
}

func (e *DragEnd) equal(o *DragEnd) bool {
	if e == nil || o == nil {
		return e == o
	}
	if e.OffTree != o.OffTree || e.Order != o.Order || e.NewDepth != o.NewDepth {
		return false
	}
	switch {
	case e.ParentID == nil && o.ParentID == nil:
		return true
	case e.ParentID == nil || o.ParentID == nil:
		return false
	default:
		return *e.ParentID == *o.ParentID
	}
}

// Stats counts session activity. A test harness injects one to assert the
// session is not resolving or notifying more than it should; production
// hosts pass nil.
type Stats struct {
	MovesProcessed int
	MovesSkipped   int
	Resolves       int
	Notifications  int
}

// rootKey is the listener slot for the root level (a nil parent id).
const rootKey = ""

// Session drives one drag lifecycle at a time:
//
//	Idle -> Anchored (pointer down)
//	Anchored/Tracking -> Tracking (pointer move)
//	Tracking -> Dropping (pointer up over a valid target)
//	Dropping -> Idle (host supplies the rebuilt tree)
//
// Everything is synchronous and single-threaded; the host must deliver
// pointer events in order and never concurrently.
type Session[T any] struct {
	fns       tree.Funcs[T]
	cb        Callbacks[T]
	depthStep float64
	stats     *Stats

	// listeners holds at most one callback per node id; a second
	// registration for the same id replaces the first.
	listeners map[string]func()

	build *tree.Build[T]
	box   *Box
	idx   tree.IndexMap

	anchored  bool
	anchorID  string
	target    *Target
	downPoint Point
	lastPoint Point
	downIndex int
	end       *DragEnd

	dropping    bool
	settledKeys []string
}

// NewSession creates a drag session. depthStep is the horizontal pointer
// distance per depth level (DefaultDepthStep when <= 0); stats may be nil.
func NewSession[T any](fns tree.Funcs[T], cb Callbacks[T], depthStep float64, stats *Stats) *Session[T] {
	if depthStep <= 0 {
		depthStep = DefaultDepthStep
	}
	return &Session[T]{
		fns:       fns,
		cb:        cb,
		depthStep: depthStep,
		stats:     stats,
		listeners: make(map[string]func()),
	}
}

// AddListener registers the change callback for a node id. Only one
// listener per id is kept: the last registration wins.
func (s *Session[T]) AddListener(id string, fn func()) {
	s.listeners[id] = fn
}

// AddRootListener registers the change callback for the root level.
func (s *Session[T]) AddRootListener(fn func()) {
	s.listeners[rootKey] = fn
}

// RemoveListener drops the listener for a node id, if any.
func (s *Session[T]) RemoveListener(id string) {
	delete(s.listeners, id)
}

// SetTree installs a freshly built tree and its measured geometry. If a
// build had to assign missing order keys they are reported through
// OnBulkNodeOrder. A pending drop settles here: the host calling SetTree
// after OnNodeMove is what completes the Dropping -> Idle transition.
func (s *Session[T]) SetTree(b *tree.Build[T], box Box) {
	s.build = b
	s.box = &box
	s.idx = b.Index

	if s.dropping {
		s.finishDrop()
	}
	if len(b.MissingOrders) > 0 && s.cb.OnBulkNodeOrder != nil {
		s.cb.OnBulkNodeOrder(b.MissingOrders)
	}
}

// IsDropping reports whether a committed drop is waiting for the rebuilt
// tree.
func (s *Session[T]) IsDropping() bool { return s.dropping }

// IsDragging reports whether a pointer is currently anchored to a node.
func (s *Session[T]) IsDragging() bool { return s.anchored }

// Anchor returns the id of the node under the pointer, if anchored.
func (s *Session[T]) Anchor() (string, bool) { return s.anchorID, s.anchored }

// End returns the current drag target snapshot, nil before the first
// meaningful move.
func (s *Session[T]) End() *DragEnd { return s.end }

// Target returns the last resolved target, nil before the first meaningful
// move. Hosts use it to draw an insertion indicator.
func (s *Session[T]) Target() *Target { return s.target }

// Rows returns the index mapping currently used for hover math. During a
// drag with a lifted parent this is the anchor-collapsed mapping.
func (s *Session[T]) Rows() tree.IndexMap { return s.idx }

// HandleMouseDown anchors a drag on the row under the pointer. It is a
// soft no-op while a drop is settling, while another drag is active, or
// when no geometry is known; a real pointer can only drive one drag.
func (s *Session[T]) HandleMouseDown(p Point) {
	if s.dropping || s.anchored || s.box == nil || s.build == nil || s.build.TreeSize == 0 {
		return
	}
	idx := s.rowAt(p.Y)
	node := s.build.NodeAt(idx)
	if node == nil {
		return
	}

	s.anchored = true
	s.anchorID = node.ID
	s.downPoint = p
	s.lastPoint = p
	s.end = nil
	s.target = nil

	// Treat the anchor as virtually collapsed so its own subtree does
	// not participate in hover-index math while it is lifted.
	if len(node.ChildIDs) > 0 {
		s.idx = tree.CollapsedIndex(s.build, node.ID)
	} else {
		s.idx = s.build.Index
	}
	s.downIndex = s.idx.IndexByID[node.ID]
}

// HandleMouseMove recomputes the drag target for the new pointer position
// and notifies only the nodes whose visible children set changed.
func (s *Session[T]) HandleMouseMove(p Point) error {
	if !s.anchored || s.dropping {
		return nil
	}
	// Sub-pixel jitter cannot change the target; skip the recompute.
	if abs(p.X-s.lastPoint.X) < 1 && abs(p.Y-s.lastPoint.Y) < 1 {
		if s.stats != nil {
			s.stats.MovesSkipped++
		}
		return nil
	}
	s.lastPoint = p
	if s.stats != nil {
		s.stats.MovesProcessed++
	}

	dx := p.X - s.downPoint.X
	dy := p.Y - s.downPoint.Y

	target := Resolve(ResolveInput[T]{
		Build:      s.build,
		Index:      s.idx,
		DownIndex:  s.downIndex,
		HoverIndex: s.rowAt(p.Y),
		DX:         dx,
		DY:         dy,
		DepthStep:  s.depthStep,
	})
	if s.stats != nil {
		s.stats.Resolves++
	}

	end, err := s.targetToEnd(target, dx*dx+dy*dy)
	if err != nil {
		return fmt.Errorf("resolving drop position for %q: %w", s.anchorID, err)
	}
	s.target = &target
	if end.equal(s.end) {
		// Same target, but the pointer still travelled: keep the
		// distance current so a return to the anchor stays a click.
		s.end.DragDistance = end.DragDistance
		return nil
	}

	firstMove := s.end == nil
	keys := make(map[string]bool)
	if firstMove {
		keys[s.anchorID] = true
		keys[keyFor(s.build.ParentID(s.anchorID))] = true
	} else if !s.end.OffTree {
		keys[keyFor(s.end.ParentID)] = true
	}
	if !end.OffTree {
		keys[keyFor(end.ParentID)] = true
	}
	s.end = end
	s.notify(keys)
	return nil
}

// HandleMouseUp completes the lifecycle: a click, an abandoned drag, or a
// committed move. Committing enters the Dropping state and blocks new
// drags until the host supplies a rebuilt tree.
func (s *Session[T]) HandleMouseUp(p Point) error {
	if !s.anchored {
		return ErrNoAnchor
	}
	anchor := s.anchorID
	end := s.end
	s.anchored = false
	s.end = nil
	s.target = nil
	s.idx = s.build.Index

	// Never moved (or barely): a click, not a drag.
	if end == nil || end.DragDistance < clickDistance {
		if s.cb.OnClick != nil {
			if n := s.build.Node(anchor); n != nil {
				s.cb.OnClick(n.Data)
			}
		}
		return nil
	}
	// Released with no valid target: abandoned.
	if end.OffTree {
		return nil
	}

	if err := order.CheckPrecision(end.Order); err != nil {
		return fmt.Errorf("dropping %q: %w", anchor, err)
	}

	s.dropping = true
	s.settledKeys = []string{anchor, keyFor(s.build.ParentID(anchor)), keyFor(end.ParentID)}
	if s.cb.OnDroppingChange != nil {
		s.cb.OnDroppingChange(true)
	}
	if s.cb.OnNodeMove != nil {
		s.cb.OnNodeMove(anchor, end.Order, end.ParentID)
	}
	return nil
}

// finishDrop fires the settled notifications once the rebuilt tree is in.
func (s *Session[T]) finishDrop() {
	keys := make(map[string]bool, len(s.settledKeys))
	for _, k := range s.settledKeys {
		keys[k] = true
	}
	s.settledKeys = nil
	s.dropping = false
	s.notify(keys)
	if s.cb.OnDroppingChange != nil {
		s.cb.OnDroppingChange(false)
	}
}

// targetToEnd converts a resolved target into the concrete edit: a new
// order key, parent and depth.
func (s *Session[T]) targetToEnd(t Target, distance float64) (*DragEnd, error) {
	end := &DragEnd{DidMove: true, DragDistance: distance}
	if t.Move == order.Nowhere {
		end.OffTree = true
		return end, nil
	}

	var parentID *string
	var depth int
	switch t.Move {
	case order.FirstChild:
		pid := t.RelativeTo
		parentID = &pid
		depth = s.build.Node(t.RelativeTo).Depth() + 1
	default: // before / after
		parentID = s.build.ParentID(t.RelativeTo)
		depth = s.build.Node(t.RelativeTo).Depth()
	}

	siblings := s.build.Children(parentID)
	o, err := order.PlaceWithinSiblings(t.Move, t.RelativeTo, siblings, s.build.MissingOrders, s.fns.ID, s.fns.Order)
	if err != nil {
		return nil, err
	}
	end.Order = o
	end.ParentID = parentID
	end.NewDepth = depth
	return end, nil
}

// rowAt maps a pointer Y to a row index under the uniform-row-height
// assumption: the measured box covers TreeSize equal rows. The resulting
// index addresses the current row mapping, which excludes the lifted
// subtree during a drag (rows keep their height, there are just fewer).
func (s *Session[T]) rowAt(y float64) int {
	if s.box == nil || s.box.Height <= 0 || s.build == nil || s.build.TreeSize == 0 {
		return -1
	}
	rowHeight := s.box.Height / float64(s.build.TreeSize)
	idx := (y - s.box.Top) / rowHeight
	if idx < 0 {
		return -1
	}
	return int(idx)
}

// notify invokes the single listener slot for each key, if registered.
func (s *Session[T]) notify(keys map[string]bool) {
	for k := range keys {
		if fn, ok := s.listeners[k]; ok {
			fn()
			if s.stats != nil {
				s.stats.Notifications++
			}
		}
	}
}

func keyFor(parentID *string) string {
	if parentID == nil {
		return rootKey
	}
	return *parentID
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
