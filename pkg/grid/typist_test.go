package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	commits, cancels int
	lastCells        int
}

func (o *countingObserver) Committed(cells int) { o.commits++; o.lastCells = cells }
func (o *countingObserver) Cancelled(cells int) { o.cancels++; o.lastCells = cells }

func typeKeys(t *testing.T, e *Engine, keys ...string) {
	t.Helper()
	for _, k := range keys {
		require.True(t, e.KeyDown(Key{Name: k}), "key %q not consumed", k)
	}
}

func selectColumn(e *Engine) {
	e.MouseDown("r1", "0", Modifiers{})
	e.MouseEnter("r3", "0")
	e.MouseUp()
}

func TestParsePercent(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"75", 75, true},
		{"7.", 7, true},
		{".5", 0.5, true},
		{"", 0, false},
		{".", 0, false},
		{"1.2.3", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParsePercent(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, "input %q", tc.in)
		}
	}
}

func TestClamp(t *testing.T) {
	for _, v := range []float64{-1e9, -0.5, 0, 42, 100, 100.01, 1e12} {
		got := Clamp(v)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 100.0)
	}
	assert.Equal(t, 42.0, Clamp(42))
}

func TestBulkType_LivePreviewThenCommit(t *testing.T) {
	store := mapStore{"r1:0": 10, "r2:0": 20, "r3:0": 30, "r1:1": 99}
	obs := &countingObserver{}
	e := New(store, testRows, testWeeks, WithObserver(obs))
	defer e.Mount()()
	selectColumn(e)

	typeKeys(t, e, "7")
	assert.Equal(t, 7.0, store["r2:0"])
	buf, active := e.Typing()
	assert.True(t, active)
	assert.Equal(t, "7", buf)

	typeKeys(t, e, "5", KeyEnter)
	for _, k := range []CellKey{"r1:0", "r2:0", "r3:0"} {
		assert.Equal(t, 75.0, store[k], "cell %s", k)
	}
	assert.Equal(t, 99.0, store["r1:1"])
	assert.Len(t, store, 4, "no other cells may be written")

	_, active = e.Typing()
	assert.False(t, active)
	assert.Equal(t, 1, obs.commits)
	assert.Equal(t, 3, obs.lastCells)
}

func TestBulkType_EscapeRestores(t *testing.T) {
	store := mapStore{"r1:0": 10, "r2:0": 10}
	obs := &countingObserver{}
	e := New(store, testRows, testWeeks, WithObserver(obs))
	defer e.Mount()()

	e.MouseDown("r1", "0", Modifiers{})
	e.MouseEnter("r2", "0")
	e.MouseUp()

	typeKeys(t, e, "5")
	assert.Equal(t, 5.0, store["r1:0"])
	assert.Equal(t, 5.0, store["r2:0"])

	typeKeys(t, e, "0", "0", KeyBackspace, "1", KeyEscape)
	assert.Equal(t, 10.0, store["r1:0"])
	assert.Equal(t, 10.0, store["r2:0"])
	assert.Equal(t, 1, obs.cancels)
}

func TestBulkType_RollbackRestoresDistinctValues(t *testing.T) {
	store := mapStore{"r1:0": 1, "r2:0": 2.5, "r3:0": 100}
	e := newTestEngine(t, store)
	selectColumn(e)

	typeKeys(t, e, "9", "9", "9", ".", "3", KeyDelete, "4", KeyEscape)
	assert.Equal(t, mapStore{"r1:0": 1, "r2:0": 2.5, "r3:0": 100}, store)
}

func TestBulkType_ClampsOversizedInput(t *testing.T) {
	store := mapStore{}
	e := newTestEngine(t, store)
	selectColumn(e)

	typeKeys(t, e, "4", "5", "0", KeyEnter)
	assert.Equal(t, 100.0, store["r1:0"])
}

func TestBulkType_EmptyBufferCommitsZero(t *testing.T) {
	store := mapStore{"r1:0": 40}
	e := newTestEngine(t, store)
	e.MouseDown("r1", "0", Modifiers{})

	typeKeys(t, e, KeyDelete)
	assert.Equal(t, 40.0, store["r1:0"], "an empty buffer is not previewed")
	typeKeys(t, e, KeyEnter)
	assert.Equal(t, 0.0, store["r1:0"])
}

func TestBulkType_InvalidBufferKeepsLastValue(t *testing.T) {
	store := mapStore{"r1:0": 40}
	e := newTestEngine(t, store)
	e.MouseDown("r1", "0", Modifiers{})

	typeKeys(t, e, "1", ".", ".")
	assert.Equal(t, 1.0, store["r1:0"])
	typeKeys(t, e, KeyEnter)
	assert.Equal(t, 1.0, store["r1:0"])
}

func TestKeyDown_IgnoredKeys(t *testing.T) {
	store := mapStore{"r1:0": 40}
	e := newTestEngine(t, store)

	assert.False(t, e.KeyDown(Key{Name: "5"}), "no selection")

	e.MouseDown("r1", "0", Modifiers{})
	assert.False(t, e.KeyDown(Key{Name: "5", InEditable: true}))
	assert.False(t, e.KeyDown(Key{Name: "Tab"}))
	assert.False(t, e.KeyDown(Key{Name: "ArrowLeft"}))
	assert.False(t, e.KeyDown(Key{Name: "a"}))
	assert.False(t, e.KeyDown(Key{Name: KeyEnter}), "enter without a session")
	assert.False(t, e.KeyDown(Key{Name: KeyEscape}), "escape without a session")
	assert.Equal(t, 40.0, store["r1:0"])
}

func TestMouseDown_CommitsPendingEdit(t *testing.T) {
	store := mapStore{"r1:0": 10}
	e := newTestEngine(t, store)
	e.MouseDown("r1", "0", Modifiers{})
	typeKeys(t, e, "6")

	e.MouseDown("r3", "2", Modifiers{})
	_, active := e.Typing()
	assert.False(t, active)
	assert.Equal(t, 6.0, store["r1:0"])
	assert.Zero(t, store["r3:2"])

	// a later escape has nothing to roll back
	assert.False(t, e.KeyDown(Key{Name: KeyEscape}))
	assert.Equal(t, 6.0, store["r1:0"])
}

func TestBlur_Commits(t *testing.T) {
	store := mapStore{"r1:0": 10}
	e := newTestEngine(t, store)
	e.MouseDown("r1", "0", Modifiers{})
	typeKeys(t, e, "2", "5")
	e.Blur()
	_, active := e.Typing()
	assert.False(t, active)
	assert.Equal(t, 25.0, store["r1:0"])
}

func TestOutsideClick_DiscardsTypedBuffer(t *testing.T) {
	store := mapStore{"r1:0": 10, "r1:1": 10}
	e := newTestEngine(t, store)
	e.MouseDown("r1", "0", Modifiers{})
	e.MouseEnter("r1", "1")
	e.MouseUp()
	typeKeys(t, e, "8")

	e.MouseDownOutside()
	assert.Empty(t, e.Selected())
	_, active := e.Typing()
	assert.False(t, active)
	assert.Equal(t, 10.0, store["r1:0"])
	assert.Equal(t, 10.0, store["r1:1"])
}
