package sessions

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/arnavshah/autohours-api-go/pkg/grid"
	"github.com/arnavshah/autohours-api-go/pkg/metrics"
	"github.com/arnavshah/autohours-api-go/pkg/models"
)

// Event types accepted by Session.Apply
const (
	EventMouseDown        = "mousedown"
	EventMouseEnter       = "mouseenter"
	EventMouseUp          = "mouseup"
	EventClick            = "click"
	EventMouseDownOutside = "mousedown_outside"
	EventKeyDown          = "keydown"
	EventBlur             = "blur"
	EventInput            = "input"
	EventClear            = "clear"
)

var ErrBadEvent = errors.New("invalid grid event")

// Session is one open grid editor. Its mutex stands in for the UI event loop:
// events are applied one at a time, in arrival order.
type Session struct {
	ID    string
	Owner string
	Scope models.Scope
	Weeks []string

	mu       sync.Mutex
	store    *grid.RowStore
	engine   *grid.Engine
	release  func()
	lastSeen time.Time
}

func validate(ev models.GridEvent) error {
	switch ev.Type {
	case EventMouseDown, EventMouseEnter, EventClick:
		if ev.Row == "" || ev.Week == "" {
			return errors.Wrapf(ErrBadEvent, "%s needs row and week", ev.Type)
		}
	case EventInput:
		if ev.Row == "" || ev.Week == "" || ev.Value == nil {
			return errors.Wrap(ErrBadEvent, "input needs row, week and value")
		}
	case EventKeyDown:
		if ev.Key == "" {
			return errors.Wrap(ErrBadEvent, "keydown needs key")
		}
	case EventMouseUp, EventMouseDownOutside, EventBlur, EventClear:
	default:
		return errors.Wrapf(ErrBadEvent, "unknown type %q", ev.Type)
	}
	return nil
}

// Apply validates the whole batch, then feeds it to the engine in order
func (s *Session) Apply(events []models.GridEvent) (models.GridSnapshot, error) {
	for i, ev := range events {
		if err := validate(ev); err != nil {
			return models.GridSnapshot{}, errors.Wrapf(err, "event %d", i)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.engine
	for _, ev := range events {
		mods := grid.Modifiers{Shift: ev.Shift, Ctrl: ev.Ctrl}
		switch ev.Type {
		case EventMouseDown:
			e.MouseDown(ev.Row, ev.Week, mods)
		case EventMouseEnter:
			e.MouseEnter(ev.Row, ev.Week)
		case EventMouseUp:
			e.MouseUp()
		case EventClick:
			e.Click(ev.Row, ev.Week, mods)
		case EventMouseDownOutside:
			e.MouseDownOutside()
		case EventKeyDown:
			e.KeyDown(grid.Key{Name: ev.Key, InEditable: ev.InEditable})
		case EventBlur:
			e.Blur()
		case EventInput:
			e.SetCell(ev.Row, ev.Week, *ev.Value)
		case EventClear:
			e.ClearSelection()
		}
		metrics.GridEvent(ev.Type)
	}
	return s.snapshotLocked(), nil
}

// Snapshot returns the session's grid state
func (s *Session) Snapshot() models.GridSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Flush commits any pending bulk edit and returns a copy of the rows for saving
func (s *Session) Flush() []models.AutoHoursRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Commit()
	return copyRows(s.store.Rows())
}

// Reload swaps in freshly loaded rows; selections on vanished roles are dropped.
// Stored values win over unsaved typing, so a pending bulk edit is cancelled first.
func (s *Session) Reload(rows []models.AutoHoursRow) models.GridSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Cancel()
	s.store.Replace(rows)
	s.engine.Reload(s.store.Keys(), s.Weeks)
	return s.snapshotLocked()
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.release()
}

func (s *Session) snapshotLocked() models.GridSnapshot {
	selected := s.engine.Selected()
	keys := make([]string, 0, len(selected))
	for _, k := range selected {
		keys = append(keys, string(k))
	}

	snap := models.GridSnapshot{
		SessionID: s.ID,
		Scope:     s.Scope,
		Weeks:     s.Weeks,
		Rows:      copyRows(s.store.Rows()),
		Selected:  keys,
		Dragging:  s.engine.Dragging(),
	}
	if k, ok := s.engine.AnchorKey(); ok {
		row, week, _ := k.Split()
		snap.Anchor = &models.CellRef{Row: row, Week: week}
	}
	snap.Typing.Buffer, snap.Typing.Active = s.engine.Typing()
	return snap
}

func copyRows(rows []models.AutoHoursRow) []models.AutoHoursRow {
	out := make([]models.AutoHoursRow, len(rows))
	for i, r := range rows {
		out[i] = r
		out[i].PercentByWeek = make(map[string]float64, len(r.PercentByWeek))
		for k, v := range r.PercentByWeek {
			out[i].PercentByWeek[k] = v
		}
	}
	return out
}
