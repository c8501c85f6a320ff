package grid

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Modifiers are the modifier keys held during a pointer event. Ctrl covers meta as well.
type Modifiers struct {
	Shift bool
	Ctrl  bool
}

// Observer is told when a bulk-edit session ends
type Observer interface {
	Committed(cells int)
	Cancelled(cells int)
}

type nopObserver struct{}

func (nopObserver) Committed(int) {}
func (nopObserver) Cancelled(int) {}

type dragState struct {
	start  *Coord
	active bool
	add    bool
	base   Set
}

// Engine is the grid selection and bulk-edit state machine for one editor.
// It is not safe for concurrent use; callers serialize events.
type Engine struct {
	index    *Index
	store    ValueStore
	log      logrus.FieldLogger
	observer Observer

	selected Set
	anchor   *Coord
	drag     dragState
	edit     *editSession

	mounted bool
	mountID int
}

type Option func(*Engine)

// WithLogger sets the logger for bulk-edit events
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = l }
}

// WithObserver reports commits and cancels to o; nil keeps the default
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// New returns an unmounted engine over store with the given row and week order
func New(store ValueStore, rows, weeks []string, opts ...Option) *Engine {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	e := &Engine{
		index:    NewIndex(rows, weeks),
		store:    store,
		log:      discard,
		observer: nopObserver{},
		selected: make(Set),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Mount installs the global listeners (mouse-up, mousedown outside the grid,
// keydown). The returned release func removes them; calling it more than once
// is a no-op, and it is ignored if the engine was mounted again since.
func (e *Engine) Mount() (release func()) {
	e.mountID++
	id := e.mountID
	e.mounted = true
	return func() {
		if !e.mounted || e.mountID != id {
			return
		}
		e.Commit()
		e.drag = dragState{}
		e.mounted = false
	}
}

func (e *Engine) Mounted() bool { return e.mounted }

// Reload rebuilds the coordinate index and drops selected cells that no longer exist.
// Anchor and drag start are carried over by cell key; a drag whose start vanished ends.
func (e *Engine) Reload(rows, weeks []string) {
	anchorKey, hasAnchor := e.AnchorKey()
	var startKey CellKey
	hasStart := false
	if e.drag.start != nil {
		startKey, hasStart = e.index.Key(*e.drag.start)
	}

	e.index = NewIndex(rows, weeks)
	e.selected = e.prune(e.selected)
	e.drag.base = e.prune(e.drag.base)
	if e.edit != nil {
		for k := range e.edit.snapshot {
			if !e.selected.Has(k) {
				delete(e.edit.snapshot, k)
			}
		}
	}

	e.anchor = e.resolve(anchorKey, hasAnchor)
	if e.drag.start != nil {
		e.drag.start = e.resolve(startKey, hasStart)
		if e.drag.start == nil {
			e.drag = dragState{}
		}
	}

	if e.selected.Len() == 0 {
		e.anchor = nil
		e.edit = nil
	}
}

func (e *Engine) prune(s Set) Set {
	for k := range s {
		if !e.index.Contains(k) {
			delete(s, k)
		}
	}
	return s
}

func (e *Engine) resolve(k CellKey, ok bool) *Coord {
	if !ok {
		return nil
	}
	row, week, ok := k.Split()
	if !ok {
		return nil
	}
	c, ok := e.index.Coord(row, week)
	if !ok {
		return nil
	}
	return &c
}

// MouseDown handles a press on a cell
func (e *Engine) MouseDown(row, week string, mods Modifiers) {
	e.finalize()

	c, ok := e.index.Coord(row, week)
	if !ok {
		return
	}
	key := MakeKey(row, week)

	if mods.Shift && e.anchor != nil {
		r := BuildRange(*e.anchor, c, e.index.rows, e.index.weeks)
		if mods.Ctrl {
			e.selected = e.selected.Union(r)
		} else {
			e.selected = r
		}
		e.anchor = &c
		return
	}

	e.anchor = &c
	start := c
	e.drag = dragState{start: &start, active: true, add: mods.Ctrl}
	if mods.Ctrl {
		e.drag.base = e.selected.Clone()
		if e.selected.Has(key) {
			delete(e.selected, key)
		} else {
			e.selected[key] = struct{}{}
		}
		return
	}

	// Leave a multi-selection alone so a drag can start inside it; Click collapses it.
	if e.selected.Has(key) && e.selected.Len() > 1 {
		return
	}
	e.selected = NewSet(key)
}

// MouseEnter extends the marquee while a drag is in progress
func (e *Engine) MouseEnter(row, week string) {
	if !e.drag.active || e.drag.start == nil {
		return
	}
	c, ok := e.index.Coord(row, week)
	if !ok {
		return
	}
	e.finalize()

	r := BuildRange(*e.drag.start, c, e.index.rows, e.index.weeks)
	if e.drag.add {
		e.selected = e.drag.base.Union(r)
	} else {
		e.selected = r
	}
}

// MouseUp is the global listener that ends any drag
func (e *Engine) MouseUp() {
	if !e.mounted {
		return
	}
	e.drag = dragState{}
}

// Click collapses the selection to a single tapped cell
func (e *Engine) Click(row, week string, mods Modifiers) {
	if mods.Shift || mods.Ctrl {
		return
	}
	c, ok := e.index.Coord(row, week)
	if !ok {
		return
	}
	key := MakeKey(row, week)
	if e.selected.Has(key) && e.selected.Len() == 1 {
		return
	}
	e.finalize()
	e.selected = NewSet(key)
	e.anchor = &c
}

// MouseDownOutside is the global listener for presses outside the grid
func (e *Engine) MouseDownOutside() {
	if !e.mounted {
		return
	}
	e.ClearSelection()
}

// ClearSelection empties the selection and rolls back any bulk edit in progress
func (e *Engine) ClearSelection() {
	e.Cancel()
	e.selected = make(Set)
	e.anchor = nil
}

// SetCell writes a value typed directly into one cell's input
func (e *Engine) SetCell(row, week string, v float64) {
	if _, ok := e.index.Coord(row, week); !ok {
		return
	}
	e.store.SetValue(row, week, Clamp(v))
}

// Value reads a cell from the store
func (e *Engine) Value(row, week string) float64 {
	return e.store.Value(row, week)
}

// IsSelected reports whether the cell is in the selection
func (e *Engine) IsSelected(row, week string) bool {
	return e.selected.Has(MakeKey(row, week))
}

// Selected returns the selection in grid order
func (e *Engine) Selected() []CellKey {
	return e.index.Sorted(e.selected)
}

// Anchor returns the anchor position, false when there is none
func (e *Engine) Anchor() (Coord, bool) {
	if e.anchor == nil {
		return Coord{}, false
	}
	return *e.anchor, true
}

// AnchorKey returns the anchor as a cell key
func (e *Engine) AnchorKey() (CellKey, bool) {
	if e.anchor == nil {
		return "", false
	}
	return e.index.Key(*e.anchor)
}

// Dragging reports whether a marquee drag is in progress
func (e *Engine) Dragging() bool { return e.drag.active }

func (e *Engine) Index() *Index { return e.index }
