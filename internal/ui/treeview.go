package ui

import (
	"treedrag/internal/model"
	"treedrag/internal/tree"
)

// TreeView renders a built tree as indented rows, one row per visible
// node. It owns no structure of its own: the engine's index mapping is the
// row order.
type TreeView struct {
	build *tree.Build[*model.Record]
	rows  tree.IndexMap

	selectedIdx    int
	viewportOffset int
}

// DragVisual describes the in-flight drag for rendering: the lifted row
// and the insertion indicator position.
type DragVisual struct {
	AnchorID string
	// IndicatorRow is the row the indicator is drawn on, in the current
	// row mapping; IndicatorDepth is its indent level. Valid is false
	// when the pointer is off any droppable position.
	IndicatorRow   int
	IndicatorDepth int
	Valid          bool
}

// NewTreeView creates a tree view for a build.
func NewTreeView(build *tree.Build[*model.Record]) *TreeView {
	tv := &TreeView{}
	tv.SetBuild(build, tree.IndexMap{})
	return tv
}

// SetBuild installs a new build. rows may override the row mapping (the
// anchor-collapsed mapping during a drag); pass a zero IndexMap to use the
// build's own.
func (tv *TreeView) SetBuild(build *tree.Build[*model.Record], rows tree.IndexMap) {
	tv.build = build
	if rows.ByIndex == nil {
		tv.rows = build.Index
	} else {
		tv.rows = rows
	}
	if tv.selectedIdx >= len(tv.rows.ByIndex) && len(tv.rows.ByIndex) > 0 {
		tv.selectedIdx = len(tv.rows.ByIndex) - 1
	}
	if tv.selectedIdx < 0 {
		tv.selectedIdx = 0
	}
}

// RowCount returns the number of visible rows.
func (tv *TreeView) RowCount() int {
	return len(tv.rows.ByIndex)
}

// NodeAtRow returns the node on a row, or nil when out of range. The row
// is in screen terms, already adjusted for the viewport by the caller.
func (tv *TreeView) NodeAtRow(row int) *tree.Node[*model.Record] {
	if row < 0 || row >= len(tv.rows.ByIndex) {
		return nil
	}
	return tv.build.Node(tv.rows.ByIndex[row])
}

// ViewportOffset returns the index of the first visible row.
func (tv *TreeView) ViewportOffset() int {
	return tv.viewportOffset
}

// PointerRow converts a screen row into the row mapping's coordinate
// space: once the viewport has scrolled, screen row k shows mapping row
// k+offset. Mouse input must go through this before reaching the engine.
func (tv *TreeView) PointerRow(screenRow int) int {
	return screenRow + tv.viewportOffset
}

// SelectNext moves selection down
func (tv *TreeView) SelectNext() {
	if tv.selectedIdx < len(tv.rows.ByIndex)-1 {
		tv.selectedIdx++
	}
}

// SelectPrev moves selection up
func (tv *TreeView) SelectPrev() {
	if tv.selectedIdx > 0 {
		tv.selectedIdx--
	}
}

// SelectRow selects a row by index
func (tv *TreeView) SelectRow(row int) {
	if row >= 0 && row < len(tv.rows.ByIndex) {
		tv.selectedIdx = row
	}
}

// Selected returns the currently selected record, or nil.
func (tv *TreeView) Selected() *model.Record {
	if n := tv.NodeAtRow(tv.selectedIdx); n != nil {
		return n.Data
	}
	return nil
}

// Render draws the visible rows starting at startY, reserving the last
// screen line for the status bar. indentWidth is the number of columns per
// depth level; drag, when non-nil, lifts the anchor row and draws the
// insertion indicator.
func (tv *TreeView) Render(screen *Screen, startY int, indentWidth int, drag *DragVisual) {
	normalStyle := screen.TreeNormalStyle()
	selectedStyle := screen.TreeSelectedStyle()
	draggedStyle := screen.TreeDraggedStyle()
	leafArrowStyle := screen.TreeLeafArrowStyle()
	expandedArrowStyle := screen.TreeExpandedArrowStyle()
	collapsedArrowStyle := screen.TreeCollapsedArrowStyle()
	indicatorStyle := screen.DropIndicatorStyle()
	bgStyle := screen.BackgroundStyle()

	screenWidth := screen.GetWidth()
	screenHeight := screen.GetHeight()
	viewportHeight := max(screenHeight-startY-1, 1)

	// Keep the selected row inside the viewport
	if tv.selectedIdx < tv.viewportOffset {
		tv.viewportOffset = tv.selectedIdx
	} else if tv.selectedIdx >= tv.viewportOffset+viewportHeight {
		tv.viewportOffset = tv.selectedIdx - viewportHeight + 1
	}
	maxOffset := max(len(tv.rows.ByIndex)-viewportHeight, 0)
	if tv.viewportOffset > maxOffset {
		tv.viewportOffset = maxOffset
	}
	if tv.viewportOffset < 0 {
		tv.viewportOffset = 0
	}

	screenY := startY
	for i := tv.viewportOffset; i < len(tv.rows.ByIndex) && screenY < screenHeight-1; i++ {
		node := tv.build.Node(tv.rows.ByIndex[i])
		y := screenY

		style := normalStyle
		if drag != nil && node.ID == drag.AnchorID {
			style = draggedStyle
		} else if drag == nil && i == tv.selectedIdx {
			style = selectedStyle
		}

		indent := node.Depth() * indentWidth

		arrow := '▶'
		arrowStyle := leafArrowStyle
		if len(node.ChildIDs) > 0 {
			arrow = '▼'
			arrowStyle = expandedArrowStyle
		} else if tv.build.IsCollapsed(node.ID) {
			arrowStyle = collapsedArrowStyle
		}
		if drag == nil && i == tv.selectedIdx {
			arrowStyle = selectedStyle
		}

		for x := 0; x < indent && x < screenWidth; x++ {
			screen.SetCell(x, y, ' ', bgStyle)
		}
		screen.SetCell(indent, y, arrow, arrowStyle)
		screen.SetCell(indent+1, y, ' ', style)

		textX := indent + 2
		text := TruncateToWidth(node.Data.Text, max(screenWidth-textX, 0))
		screen.DrawString(textX, y, text, style)

		for x := textX + StringWidth(text); x < screenWidth; x++ {
			screen.SetCell(x, y, ' ', bgStyle)
		}

		// Drop indicator: a marker in the indent gutter of the row the
		// dragged node would land on.
		if drag != nil && drag.Valid && i == drag.IndicatorRow {
			ix := drag.IndicatorDepth * indentWidth
			for x := 0; x < ix && x < screenWidth; x++ {
				screen.SetCell(x, y, '─', indicatorStyle)
			}
			screen.SetCell(ix, y, '▸', indicatorStyle)
		}

		screenY++
	}

	// Clear remaining lines with background color
	for y := screenY; y < screenHeight-1; y++ {
		for x := 0; x < screenWidth; x++ {
			screen.SetCell(x, y, ' ', bgStyle)
		}
	}
}
