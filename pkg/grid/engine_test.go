package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/autohours-api-go/pkg/models"
)

// mapStore is a ValueStore keyed by cell key, used to check which cells get written
type mapStore map[CellKey]float64

func (m mapStore) Value(row, week string) float64 { return m[MakeKey(row, week)] }
func (m mapStore) SetValue(row, week string, v float64) {
	m[MakeKey(row, week)] = Clamp(v)
}

func newTestEngine(t *testing.T, store ValueStore) *Engine {
	t.Helper()
	e := New(store, testRows, testWeeks)
	release := e.Mount()
	t.Cleanup(release)
	return e
}

func selection(e *Engine) Set {
	return NewSet(e.Selected()...)
}

func TestMouseDown_SelectsSingleCell(t *testing.T) {
	e := newTestEngine(t, mapStore{})
	e.MouseDown("r2", "1", Modifiers{})

	assert.True(t, selection(e).Equal(NewSet("r2:1")))
	anchor, ok := e.Anchor()
	require.True(t, ok)
	assert.Equal(t, Coord{Row: 1, Week: 1}, anchor)
	assert.True(t, e.Dragging())
}

func TestDrag_BasicRangeSelect(t *testing.T) {
	e := newTestEngine(t, mapStore{})
	e.MouseDown("r1", "0", Modifiers{})
	e.MouseEnter("r2", "1")

	assert.True(t, selection(e).Equal(NewSet("r1:0", "r1:1", "r2:0", "r2:1")))

	e.MouseUp()
	assert.False(t, e.Dragging())

	e.MouseEnter("r3", "2")
	assert.Equal(t, 4, len(e.Selected()), "mouse-enter after mouse-up must not change the selection")
}

func TestDrag_ShrinksBackToStart(t *testing.T) {
	e := newTestEngine(t, mapStore{})
	e.MouseDown("r1", "0", Modifiers{})
	e.MouseEnter("r3", "2")
	assert.Len(t, e.Selected(), 9)
	e.MouseEnter("r1", "1")
	assert.True(t, selection(e).Equal(NewSet("r1:0", "r1:1")))
}

func TestMouseEnter_IgnoredWithoutDrag(t *testing.T) {
	e := newTestEngine(t, mapStore{})
	e.MouseEnter("r1", "0")
	assert.Empty(t, e.Selected())
}

func TestShiftClick_ExtendsFromAnchor(t *testing.T) {
	e := newTestEngine(t, mapStore{})
	e.MouseDown("r1", "0", Modifiers{})
	e.MouseUp()
	e.MouseDown("r2", "2", Modifiers{Shift: true})

	assert.True(t, selection(e).Equal(NewSet("r1:0", "r1:1", "r1:2", "r2:0", "r2:1", "r2:2")))
	assert.False(t, e.Dragging(), "shift-click must not start a drag")

	// anchor moved to the clicked cell, so the next shift-click chains from there
	e.MouseDown("r3", "2", Modifiers{Shift: true})
	assert.True(t, selection(e).Equal(NewSet("r2:2", "r3:2")))
}

func TestShiftCtrlClick_UnionsWithSelection(t *testing.T) {
	e := newTestEngine(t, mapStore{})
	e.MouseDown("r1", "0", Modifiers{})
	e.MouseUp()
	e.MouseDown("r3", "2", Modifiers{Ctrl: true})
	e.MouseUp()
	e.MouseDown("r3", "1", Modifiers{Shift: true, Ctrl: true})

	assert.True(t, selection(e).Equal(NewSet("r1:0", "r3:1", "r3:2")))
}

func TestShiftClick_WithoutAnchorSelectsCell(t *testing.T) {
	e := newTestEngine(t, mapStore{})
	e.MouseDown("r2", "2", Modifiers{Shift: true})
	assert.True(t, selection(e).Equal(NewSet("r2:2")))
}

func TestCtrlClick_ToggleIsIdempotent(t *testing.T) {
	e := newTestEngine(t, mapStore{})
	e.MouseDown("r1", "0", Modifiers{})
	e.MouseUp()
	before := selection(e)

	e.MouseDown("r2", "1", Modifiers{Ctrl: true})
	e.MouseUp()
	assert.True(t, e.IsSelected("r2", "1"))
	assert.True(t, e.IsSelected("r1", "0"))

	e.MouseDown("r2", "1", Modifiers{Ctrl: true})
	e.MouseUp()
	assert.False(t, e.IsSelected("r2", "1"))
	assert.True(t, selection(e).Equal(before))
}

func TestCtrlDrag_UnionsWithBase(t *testing.T) {
	e := newTestEngine(t, mapStore{})
	e.MouseDown("r1", "0", Modifiers{})
	e.MouseEnter("r1", "1")
	e.MouseUp()
	base := selection(e)

	e.MouseDown("r2", "1", Modifiers{Ctrl: true})
	e.MouseEnter("r3", "2")
	e.MouseUp()

	want := base.Union(BuildRange(Coord{1, 1}, Coord{2, 2}, testRows, testWeeks))
	got := selection(e)
	assert.True(t, got.Equal(want), "got %v want %v", e.Selected(), want)
	for k := range base {
		assert.True(t, got.Has(k))
	}
}

func TestMouseDown_InsideMultiSelectionKeepsIt(t *testing.T) {
	e := newTestEngine(t, mapStore{})
	e.MouseDown("r1", "0", Modifiers{})
	e.MouseEnter("r2", "1")
	e.MouseUp()

	e.MouseDown("r2", "0", Modifiers{})
	assert.Len(t, e.Selected(), 4)

	// a plain tap finalizes into a single-cell selection
	e.MouseUp()
	e.Click("r2", "0", Modifiers{})
	assert.True(t, selection(e).Equal(NewSet("r2:0")))
	anchor, ok := e.Anchor()
	require.True(t, ok)
	assert.Equal(t, Coord{Row: 1, Week: 0}, anchor)
}

func TestClick_IgnoresModifiers(t *testing.T) {
	e := newTestEngine(t, mapStore{})
	e.MouseDown("r1", "0", Modifiers{})
	e.MouseEnter("r2", "1")
	e.MouseUp()

	e.Click("r1", "0", Modifiers{Ctrl: true})
	e.Click("r1", "0", Modifiers{Shift: true})
	assert.Len(t, e.Selected(), 4)
}

func TestMouseDown_StaleCellIgnored(t *testing.T) {
	e := newTestEngine(t, mapStore{})
	e.MouseDown("r1", "0", Modifiers{})
	e.MouseDown("r9", "0", Modifiers{})
	assert.True(t, selection(e).Equal(NewSet("r1:0")))
}

func TestMouseDownOutside_ClearsSelection(t *testing.T) {
	e := newTestEngine(t, mapStore{})
	e.MouseDown("r1", "0", Modifiers{})
	e.MouseEnter("r3", "2")
	e.MouseUp()

	e.MouseDownOutside()
	assert.Empty(t, e.Selected())
	_, ok := e.Anchor()
	assert.False(t, ok)
}

func TestGlobalListeners_InactiveWhenUnmounted(t *testing.T) {
	e := New(mapStore{}, testRows, testWeeks)
	e.MouseDown("r1", "0", Modifiers{})

	e.MouseUp()
	assert.True(t, e.Dragging(), "mouse-up listener is not installed before Mount")
	e.MouseDownOutside()
	assert.Len(t, e.Selected(), 1)
	assert.False(t, e.KeyDown(Key{Name: "5"}))

	release := e.Mount()
	e.MouseUp()
	assert.False(t, e.Dragging())
	release()
	assert.False(t, e.Mounted())
}

func TestRelease_EndsDragAndCommits(t *testing.T) {
	store := mapStore{"r1:0": 10}
	e := New(store, testRows, testWeeks)
	release := e.Mount()

	e.MouseDown("r1", "0", Modifiers{})
	require.True(t, e.KeyDown(Key{Name: "4"}))
	e.MouseDown("r1", "0", Modifiers{Ctrl: true})
	require.True(t, e.Dragging())

	release()
	release()
	assert.False(t, e.Dragging())
	assert.False(t, e.Mounted())
	_, active := e.Typing()
	assert.False(t, active)
	assert.Equal(t, 4.0, store["r1:0"])
}

func TestRelease_StaleAfterRemount(t *testing.T) {
	e := New(mapStore{}, testRows, testWeeks)
	first := e.Mount()
	first()
	e.Mount()
	first()
	assert.True(t, e.Mounted())
}

func TestReload_PrunesStaleSelection(t *testing.T) {
	e := newTestEngine(t, mapStore{})
	e.MouseDown("r1", "0", Modifiers{})
	e.MouseEnter("r3", "1")
	e.MouseUp()

	e.Reload([]string{"r1", "r3"}, []string{"0"})
	assert.True(t, selection(e).Equal(NewSet("r1:0", "r3:0")))

	e.Reload([]string{"r7"}, []string{"0"})
	assert.Empty(t, e.Selected())
	_, ok := e.Anchor()
	assert.False(t, ok)
}

func TestReload_MidCtrlDragForgetsRemovedRows(t *testing.T) {
	e := newTestEngine(t, mapStore{})
	e.MouseDown("r1", "0", Modifiers{})
	e.MouseUp()
	e.MouseDown("r3", "2", Modifiers{Ctrl: true})

	e.Reload([]string{"r2", "r3"}, testWeeks)
	require.True(t, e.Dragging())
	e.MouseEnter("r3", "1")

	assert.Equal(t, []CellKey{"r3:1", "r3:2"}, e.Selected())
	anchor, ok := e.AnchorKey()
	require.True(t, ok)
	assert.Equal(t, CellKey("r3:2"), anchor)
}

func TestReload_EndsDragWhenStartRemoved(t *testing.T) {
	e := newTestEngine(t, mapStore{})
	e.MouseDown("r1", "0", Modifiers{})
	e.MouseUp()
	e.MouseDown("r3", "0", Modifiers{Ctrl: true})

	e.Reload([]string{"r1", "r2"}, testWeeks)
	assert.False(t, e.Dragging())
	e.MouseEnter("r2", "2")
	assert.Equal(t, []CellKey{"r1:0"}, e.Selected())
}

func TestReload_EmptySelectionDropsEdit(t *testing.T) {
	store := mapStore{"r1:0": 10}
	e := newTestEngine(t, store)
	e.MouseDown("r1", "0", Modifiers{})
	e.KeyDown(Key{Name: "3"})

	e.Reload([]string{"r2"}, testWeeks)
	_, active := e.Typing()
	assert.False(t, active)
	assert.Equal(t, 3.0, store["r1:0"])
}

func TestSetCell_Clamps(t *testing.T) {
	rows := []models.AutoHoursRow{{RoleID: 1}, {RoleID: 2}}
	store := NewRowStore(rows)
	e := New(store, store.Keys(), WeekKeys(2))

	e.SetCell("1", "0", 250)
	e.SetCell("2", "1", -4)
	e.SetCell("9", "0", 50)

	assert.Equal(t, 100.0, rows[0].PercentByWeek["0"])
	assert.Equal(t, 0.0, rows[1].PercentByWeek["1"])
	assert.Equal(t, 100.0, e.Value("1", "0"))
}
