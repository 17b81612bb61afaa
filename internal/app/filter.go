package app

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"treedrag/internal/model"
	"treedrag/internal/ui"
)

// Filter is the fuzzy filter bar. While editing it consumes key events;
// its predicate feeds the tree build, which keeps rows whose text matches
// plus the ancestors needed to reach them.
type Filter struct {
	text    string
	editing bool

	// history holds past filter terms, newest last; histIdx walks it
	// backwards from len(history).
	history []string
	histIdx int
}

// NewFilter creates an empty, closed filter.
func NewFilter() *Filter {
	return &Filter{}
}

// Open starts editing the filter text.
func (f *Filter) Open() {
	f.editing = true
	f.histIdx = len(f.history)
}

// SetHistory installs past filter terms for arrow-key recall.
func (f *Filter) SetHistory(entries []string) {
	f.history = entries
	f.histIdx = len(entries)
}

// Clear resets the filter and closes editing.
func (f *Filter) Clear() {
	f.text = ""
	f.editing = false
}

// Editing reports whether the bar currently consumes key events.
func (f *Filter) Editing() bool { return f.editing }

// Active reports whether a non-empty filter is applied.
func (f *Filter) Active() bool { return f.text != "" }

// Text returns the current filter text.
func (f *Filter) Text() string { return f.text }

// Predicate returns the hide-test for the tree build: true means the
// record's own text does not match. Returns nil when no filter is set, so
// the build skips filtering entirely.
func (f *Filter) Predicate() func(*model.Record) bool {
	if f.text == "" {
		return nil
	}
	term := f.text
	return func(r *model.Record) bool {
		return !fuzzy.MatchFold(term, r.Text)
	}
}

// HandleKey processes a key event while editing. It reports whether the
// filter text changed, so the caller knows to rebuild the tree.
func (f *Filter) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEnter:
		f.editing = false
		return false
	case tcell.KeyEscape:
		changed := f.text != ""
		f.Clear()
		return changed
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if f.text == "" {
			return false
		}
		runes := []rune(f.text)
		f.text = string(runes[:len(runes)-1])
		return true
	case tcell.KeyUp:
		if f.histIdx > 0 {
			f.histIdx--
			f.text = f.history[f.histIdx]
			return true
		}
		return false
	case tcell.KeyDown:
		if f.histIdx < len(f.history) {
			f.histIdx++
			if f.histIdx == len(f.history) {
				f.text = ""
			} else {
				f.text = f.history[f.histIdx]
			}
			return true
		}
		return false
	case tcell.KeyRune:
		f.text += string(ev.Rune())
		return true
	}
	return false
}

// Render draws the filter bar on the given row.
func (f *Filter) Render(screen *ui.Screen, y int) {
	label := "Filter: "
	screen.DrawString(0, y, label, screen.FilterLabelStyle())
	text := f.text
	if f.editing {
		text += "_"
	}
	screen.DrawString(ui.StringWidth(label), y, text, screen.FilterTextStyle())
}
