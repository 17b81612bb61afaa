// Package ui renders the built tree to a tcell screen and translates
// terminal mouse events into engine pointer events.
package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"treedrag/internal/theme"
)

// Screen manages the tcell screen and rendering
type Screen struct {
	tcellScreen tcell.Screen
	width       int
	height      int
	Theme       *theme.Theme
}

// NewScreen creates a new Screen instance with a specific theme and mouse
// reporting enabled.
func NewScreen(t *theme.Theme) (*Screen, error) {
	tcellScreen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}

	if err := tcellScreen.Init(); err != nil {
		return nil, fmt.Errorf("failed to init screen: %w", err)
	}
	tcellScreen.EnableMouse()

	width, height := tcellScreen.Size()
	return &Screen{
		tcellScreen: tcellScreen,
		width:       width,
		height:      height,
		Theme:       t,
	}, nil
}

// Close closes the screen
func (s *Screen) Close() error {
	s.tcellScreen.Fini()
	return nil
}

// Clear clears the entire screen
func (s *Screen) Clear() {
	s.tcellScreen.Clear()
}

// Show flushes pending drawing to the terminal
func (s *Screen) Show() {
	s.tcellScreen.Show()
}

// PollEvent polls for the next event (key press, mouse, resize)
func (s *Screen) PollEvent() tcell.Event {
	return s.tcellScreen.PollEvent()
}

// HasMouse returns true if mouse is supported
func (s *Screen) HasMouse() bool {
	return s.tcellScreen.HasMouse()
}

// Size returns the width and height of the screen
func (s *Screen) Size() (int, int) {
	w, h := s.tcellScreen.Size()
	s.width = w
	s.height = h
	return w, h
}

// GetWidth returns the width of the screen
func (s *Screen) GetWidth() int {
	s.width, _ = s.tcellScreen.Size()
	return s.width
}

// GetHeight returns the height of the screen
func (s *Screen) GetHeight() int {
	_, s.height = s.tcellScreen.Size()
	return s.height
}

// SetCell sets a cell at the given position
func (s *Screen) SetCell(x, y int, r rune, style tcell.Style) {
	if x >= 0 && x < s.width && y >= 0 && y < s.height {
		s.tcellScreen.SetContent(x, y, r, nil, style)
	}
}

// DrawString draws a string at the given position with the given style
func (s *Screen) DrawString(x, y int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		s.SetCell(col, y, r, style)
		col += RuneWidth(r)
	}
}

// DefaultStyle returns the terminal default style.
func DefaultStyle() tcell.Style {
	return tcell.StyleDefault
}

// StyleBold returns the terminal default style with bold set.
func StyleBold() tcell.Style {
	return tcell.StyleDefault.Bold(true)
}

// Theme-aware style methods

// TreeNormalStyle returns the style for normal tree rows
func (s *Screen) TreeNormalStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.TreeNormalText, s.Theme.Colors.Background)
}

// TreeSelectedStyle returns the style for the selected row
func (s *Screen) TreeSelectedStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.TreeSelectedItem, s.Theme.Colors.Background).Bold(true)
}

// TreeDraggedStyle returns the style for the row being dragged
func (s *Screen) TreeDraggedStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.TreeDraggedItem, s.Theme.Colors.Background).Bold(true)
}

// TreeLeafArrowStyle returns the style for leaf node arrows (dimmer)
func (s *Screen) TreeLeafArrowStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.TreeLeafArrow, s.Theme.Colors.Background)
}

// TreeExpandedArrowStyle returns the style for expanded node arrows
func (s *Screen) TreeExpandedArrowStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.TreeExpandedArrow, s.Theme.Colors.Background)
}

// TreeCollapsedArrowStyle returns the style for collapsed node arrows
func (s *Screen) TreeCollapsedArrowStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.TreeCollapsedArrow, s.Theme.Colors.Background)
}

// DropIndicatorStyle returns the style for the drag target indicator
func (s *Screen) DropIndicatorStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.DropIndicator, s.Theme.Colors.Background).Bold(true)
}

// FilterLabelStyle returns the style for the filter bar label
func (s *Screen) FilterLabelStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.FilterLabel, s.Theme.Colors.Background).Bold(true)
}

// FilterTextStyle returns the style for the filter bar text
func (s *Screen) FilterTextStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.FilterText, s.Theme.Colors.Background)
}

// StatusMessageStyle returns the style for status messages
func (s *Screen) StatusMessageStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.StatusMessage, s.Theme.Colors.Background)
}

// StatusModifiedStyle returns the style for the unsaved-changes indicator
func (s *Screen) StatusModifiedStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.StatusModified, s.Theme.Colors.Background)
}

// StatusDroppingStyle returns the style for the drop-settling indicator
func (s *Screen) StatusDroppingStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.StatusDropping, s.Theme.Colors.Background).Bold(true)
}

// BackgroundStyle returns the default background style for the application
func (s *Screen) BackgroundStyle() tcell.Style {
	return tcell.StyleDefault.Background(s.Theme.Colors.Background)
}
