// Package app is the interactive host: it owns the records, rebuilds the
// tree after every structural change, and feeds terminal mouse events into
// the drag session.
package app

import (
	"fmt"
	"log"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/gdamore/tcell/v2"

	"treedrag/internal/config"
	"treedrag/internal/drag"
	"treedrag/internal/export"
	"treedrag/internal/history"
	"treedrag/internal/model"
	"treedrag/internal/order"
	"treedrag/internal/storage"
	"treedrag/internal/theme"
	"treedrag/internal/tree"
	"treedrag/internal/ui"
)

const treeStartY = 1

const filterHistoryFile = "filter.toml"

// App is the main application controller
type App struct {
	screen  *ui.Screen
	store   storage.Store
	backups *storage.BackupManager
	doc     *model.Document
	cfg     *config.Config

	build      *tree.Build[*model.Record]
	session    *drag.Session[*model.Record]
	tv         *ui.TreeView
	filter     *Filter
	filterHist *history.Manager

	statusMsg    string
	statusTime   time.Time
	dirty        bool
	autoSaveTime time.Time
	quit         bool
	debugMode    bool
	dropping     bool
	needsRender  bool
}

// NewApp creates an App backed by the given store.
func NewApp(store storage.Store, cfg *config.Config) (*App, error) {
	doc, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if len(doc.Records) == 0 {
		doc.Records = append(doc.Records, model.NewRecord("Welcome to treedrag"))
	}

	screen, err := ui.NewScreen(theme.LoadThemeOrDefault(cfg.Theme))
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}

	backups, err := storage.NewBackupManager()
	if err != nil {
		screen.Close()
		return nil, fmt.Errorf("failed to create backup manager: %w", err)
	}

	a := &App{
		screen:       screen,
		store:        store,
		backups:      backups,
		doc:          doc,
		cfg:          cfg,
		filter:       NewFilter(),
		statusMsg:    "Ready",
		statusTime:   time.Now(),
		autoSaveTime: time.Now(),
	}

	if hist, err := history.NewManager(); err == nil {
		a.filterHist = hist
		if entries, err := hist.Load(filterHistoryFile); err == nil {
			a.filter.SetHistory(entries)
		}
	} else {
		log.Printf("filter history unavailable: %v", err)
	}

	a.session = drag.NewSession(model.Funcs(nil), drag.Callbacks[*model.Record]{
		OnNodeMove:       a.onNodeMove,
		OnBulkNodeOrder:  a.onBulkNodeOrder,
		OnClick:          a.onClick,
		OnDroppingChange: a.onDroppingChange,
	}, float64(cfg.DepthStep), nil)

	if err := a.rebuild(); err != nil {
		screen.Close()
		return nil, err
	}
	a.tv = ui.NewTreeView(a.build)
	return a, nil
}

// SetDebugMode toggles dumping each build to the log.
func (a *App) SetDebugMode(on bool) { a.debugMode = on }

// rebuild constructs a fresh tree from the current records and hands it to
// the drag session together with the measured geometry.
func (a *App) rebuild() error {
	fns := model.Funcs(a.filter.Predicate())
	build, err := tree.BuildTree(a.doc.Records, fns)
	if err != nil {
		return fmt.Errorf("failed to build tree: %w", err)
	}
	a.build = build
	if a.tv != nil {
		a.tv.SetBuild(build, tree.IndexMap{})
	}

	// One terminal cell per row: the tree box starts under the header
	// and is exactly TreeSize rows tall.
	a.session.SetTree(build, drag.Box{
		Top:    float64(treeStartY),
		Left:   0,
		Height: float64(build.TreeSize),
	})

	// Re-register change listeners against the fresh build: the root for
	// whole-tree invalidation, plus one per expandable node so a drop
	// under it marks the view stale immediately.
	a.session.AddRootListener(func() { a.needsRender = true })
	for id, n := range build.NodesByID {
		if len(n.ChildIDs) == 0 {
			continue
		}
		a.session.AddListener(id, func() { a.needsRender = true })
	}

	if a.debugMode {
		log.Printf("rebuilt tree:\n%s", spew.Sdump(build.RootIDs, build.Index.ByIndex, build.MissingOrders))
	}
	return nil
}

// Run starts the main event loop
func (a *App) Run() error {
	defer a.Close()

	eventChan := make(chan tcell.Event)
	go func() {
		for {
			event := a.screen.PollEvent()
			eventChan <- event
			if event == nil {
				break
			}
		}
	}()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	autosave := time.Duration(a.cfg.AutosaveSeconds) * time.Second

	for !a.quit {
		select {
		case ev := <-eventChan:
			if ev != nil {
				a.handleEvent(ev)
			}
			// Drag listeners mark the view stale; redraw without
			// waiting for the next tick.
			if a.needsRender {
				a.needsRender = false
				a.render()
			}
		case <-ticker.C:
			a.render()

			if a.dirty && time.Since(a.autoSaveTime) > autosave {
				if err := a.Save(); err != nil {
					a.SetStatus("Failed to save: " + err.Error())
				} else {
					a.SetStatus("Saved")
				}
			}
		}
	}

	return nil
}

// Close closes the application
func (a *App) Close() error {
	if a.screen != nil {
		return a.screen.Close()
	}
	return nil
}

// Save persists the document.
func (a *App) Save() error {
	if err := a.store.Save(a.doc); err != nil {
		return err
	}
	a.dirty = false
	a.autoSaveTime = time.Now()
	return nil
}

// SetStatus sets the status message with a timestamp
func (a *App) SetStatus(msg string) {
	a.statusMsg = msg
	a.statusTime = time.Now()
}

// handleEvent processes raw input events
func (a *App) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Size()
	case *tcell.EventMouse:
		a.handleMouse(ev)
	case *tcell.EventKey:
		a.handleKey(ev)
	}
}

// handleMouse translates terminal mouse events into engine pointer events.
// tcell reports motion with the current button mask, so press, drag and
// release fall out of the mask transitions.
func (a *App) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	// The session addresses mapping rows; once the view has scrolled,
	// screen rows lag the mapping by the viewport offset.
	p := drag.Point{X: float64(x), Y: float64(a.tv.PointerRow(y))}

	switch {
	case ev.Buttons()&tcell.Button1 != 0:
		if _, dragging := a.session.Anchor(); !dragging {
			a.session.HandleMouseDown(p)
			return
		}
		if err := a.session.HandleMouseMove(p); err != nil {
			log.Printf("drag move: %v", err)
			a.SetStatus("Drag failed: " + err.Error())
		}
	case ev.Buttons() == tcell.ButtonNone:
		if _, dragging := a.session.Anchor(); !dragging {
			return
		}
		if err := a.session.HandleMouseUp(p); err != nil {
			log.Printf("drop: %v", err)
			a.SetStatus("Drop failed: " + err.Error())
		}
	}
}

// handleKey processes keyboard input. The filter bar consumes keys while
// it is open.
func (a *App) handleKey(ev *tcell.EventKey) {
	if a.filter.Editing() {
		if a.filter.HandleKey(ev) {
			if err := a.rebuild(); err != nil {
				a.SetStatus(err.Error())
			}
		}
		if !a.filter.Editing() && a.filter.Active() {
			a.rememberFilter(a.filter.Text())
		}
		return
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		if a.filter.Active() {
			a.filter.Clear()
			if err := a.rebuild(); err != nil {
				a.SetStatus(err.Error())
			}
		}
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			if a.dirty {
				if err := a.Save(); err != nil {
					a.SetStatus("Failed to save: " + err.Error())
					return
				}
			}
			a.quit = true
		case '/':
			a.filter.Open()
		case 's':
			if err := a.Save(); err != nil {
				a.SetStatus("Failed to save: " + err.Error())
			} else {
				a.SetStatus("Saved")
			}
		case 'e':
			path := a.storePath() + ".md"
			if err := export.ToMarkdown(a.doc, path); err != nil {
				a.SetStatus("Export failed: " + err.Error())
			} else {
				a.SetStatus("Exported to " + path)
			}
		case 'j':
			a.tv.SelectNext()
		case 'k':
			a.tv.SelectPrev()
		case ' ':
			if r := a.tv.Selected(); r != nil {
				a.toggleCollapse(r)
			}
		}
	case tcell.KeyDown:
		a.tv.SelectNext()
	case tcell.KeyUp:
		a.tv.SelectPrev()
	}
}

// onClick selects the clicked record and toggles its collapse state: a
// down/up pair that never became a drag.
func (a *App) onClick(r *model.Record) {
	if idx, ok := a.build.Index.IndexByID[r.ID]; ok {
		a.tv.SelectRow(idx)
	}
	a.toggleCollapse(r)
}

func (a *App) toggleCollapse(r *model.Record) {
	r.Collapsed = !r.Collapsed
	r.Modified = time.Now()
	a.dirty = true
	if err := a.rebuild(); err != nil {
		a.SetStatus(err.Error())
	}
}

// onNodeMove applies a committed drop to the records and hands the engine
// a rebuilt tree, which settles the drop.
func (a *App) onNodeMove(id string, newOrder float64, newParentID *string) {
	r := a.doc.Find(id)
	if r == nil {
		log.Printf("drop for unknown record %q", id)
		return
	}

	if err := a.backups.CreateBackup(a.doc, a.storePath()); err != nil {
		log.Printf("backup failed: %v", err)
	}

	o := newOrder
	r.Order = &o
	r.ParentID = newParentID
	r.Modified = time.Now()
	a.dirty = true

	if sq, ok := a.store.(*storage.SQLiteStore); ok {
		if err := sq.UpdateMove(id, newOrder, newParentID); err != nil {
			log.Printf("persisting move: %v", err)
		}
	}

	if err := a.rebuild(); err != nil {
		a.SetStatus(err.Error())
		return
	}
	parent := "top level"
	if newParentID != nil {
		if pr := a.doc.Find(*newParentID); pr != nil {
			parent = "under " + pr.Text
		}
	}
	a.SetStatus(fmt.Sprintf("Moved %q %s", r.Text, parent))
}

// onBulkNodeOrder persists order keys the build had to assign, so an
// unordered file becomes stable across runs.
func (a *App) onBulkNodeOrder(orders map[string]float64) {
	for id, o := range orders {
		if r := a.doc.Find(id); r != nil && r.Order == nil {
			v := o
			r.Order = &v
		}
	}
	a.dirty = true

	if sq, ok := a.store.(*storage.SQLiteStore); ok {
		if err := sq.UpdateOrders(orders); err != nil {
			log.Printf("persisting assigned orders: %v", err)
		}
	}
}

// rememberFilter records a committed filter term for arrow-key recall in
// later sessions.
func (a *App) rememberFilter(term string) {
	if a.filterHist == nil {
		return
	}
	if err := a.filterHist.Append(filterHistoryFile, term, 50); err != nil {
		log.Printf("saving filter history: %v", err)
		return
	}
	if entries, err := a.filterHist.Load(filterHistoryFile); err == nil {
		a.filter.SetHistory(entries)
	}
}

func (a *App) onDroppingChange(dropping bool) {
	a.dropping = dropping
}

// storePath returns the file behind the store for backup tagging.
func (a *App) storePath() string {
	if js, ok := a.store.(*storage.JSONStore); ok {
		return js.FilePath
	}
	return a.doc.Title
}

// dragVisual derives the render state for an in-flight drag.
func (a *App) dragVisual() *ui.DragVisual {
	anchor, dragging := a.session.Anchor()
	if !dragging {
		return nil
	}
	v := &ui.DragVisual{AnchorID: anchor}

	target := a.session.Target()
	end := a.session.End()
	if target == nil || end == nil || end.OffTree {
		return v
	}

	rows := a.session.Rows()
	refRow, ok := rows.IndexByID[target.RelativeTo]
	if !ok {
		return v
	}
	v.Valid = true
	v.IndicatorDepth = end.NewDepth
	switch target.Move {
	case order.Before:
		v.IndicatorRow = refRow
	case order.FirstChild:
		v.IndicatorRow = refRow + 1
	default:
		// after: the slot below the reference's visible subtree
		v.IndicatorRow = tree.SubtreeEndRow(a.build, rows, refRow)
	}
	return v
}

// render renders the current state to the screen
func (a *App) render() {
	a.screen.Clear()

	height := a.screen.GetHeight()

	// Header
	header := fmt.Sprintf(" %s ", a.doc.Title)
	a.screen.DrawString(0, 0, header, ui.StyleBold())

	// Tree: during a drag the lifted subtree is hidden so rows line up
	// with the engine's hover math.
	visual := a.dragVisual()
	if visual != nil {
		a.tv.SetBuild(a.build, a.session.Rows())
	} else {
		a.tv.SetBuild(a.build, tree.IndexMap{})
	}
	a.tv.Render(a.screen, treeStartY, a.cfg.DepthStep, visual)

	// Filter bar
	if a.filter.Active() || a.filter.Editing() {
		a.filter.Render(a.screen, height-2)
	}

	// Status line
	statusLine := ""
	if a.dropping {
		statusLine = "-- DROPPING --"
	} else if visual != nil {
		statusLine = "-- DRAGGING --"
	}
	if a.statusMsg != "Ready" && time.Since(a.statusTime) <= 3*time.Second {
		statusLine += " " + a.statusMsg
	}
	if a.dirty {
		statusLine += " (modified)"
	}
	if len(a.build.Orphans) > 0 {
		statusLine += fmt.Sprintf(" [%d orphaned]", len(a.build.Orphans))
	}
	a.screen.DrawString(0, height-1, statusLine, a.screen.StatusMessageStyle())

	a.screen.Show()
}
