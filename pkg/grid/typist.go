package grid

// Key names as reported by the browser's KeyboardEvent.key
const (
	KeyBackspace = "Backspace"
	KeyDelete    = "Delete"
	KeyEnter     = "Enter"
	KeyEscape    = "Escape"
)

// Key is a keydown delivered to the global listener
type Key struct {
	Name string
	// InEditable is set when focus is inside an input, textarea or contenteditable.
	InEditable bool
}

// editSession is one bulk-edit: the typed buffer and the values it replaced
type editSession struct {
	buffer   string
	snapshot map[CellKey]float64
}

func isBufferChar(name string) bool {
	if len(name) != 1 {
		return false
	}
	c := name[0]
	return c == '.' || (c >= '0' && c <= '9')
}

// KeyDown feeds a key to the bulk-edit typist. It reports whether the key was consumed.
func (e *Engine) KeyDown(k Key) bool {
	if !e.mounted || k.InEditable || e.selected.Len() == 0 {
		return false
	}

	switch {
	case k.Name == KeyEnter:
		if e.edit == nil {
			return false
		}
		e.Commit()
		return true
	case k.Name == KeyEscape:
		if e.edit == nil {
			return false
		}
		e.Cancel()
		return true
	case k.Name == KeyBackspace, k.Name == KeyDelete, isBufferChar(k.Name):
	default:
		return false
	}

	if e.edit == nil {
		e.open()
	}

	switch k.Name {
	case KeyDelete:
		e.edit.buffer = ""
	case KeyBackspace:
		if n := len(e.edit.buffer); n > 0 {
			e.edit.buffer = e.edit.buffer[:n-1]
		}
	default:
		e.edit.buffer += k.Name
	}

	if v, ok := ParsePercent(e.edit.buffer); ok {
		e.apply(v)
	}
	return true
}

// Typing returns the bulk-edit buffer and whether a session is open
func (e *Engine) Typing() (buffer string, active bool) {
	if e.edit == nil {
		return "", false
	}
	return e.edit.buffer, true
}

// Commit ends the bulk-edit session keeping its values. An empty buffer commits 0.
func (e *Engine) Commit() {
	if e.edit == nil {
		return
	}
	if e.edit.buffer == "" {
		e.apply(0)
	} else if v, ok := ParsePercent(e.edit.buffer); ok {
		e.apply(v)
	}
	cells := len(e.edit.snapshot)
	e.edit = nil
	e.observer.Committed(cells)
	e.log.WithField("cells", cells).Debug("bulk edit committed")
}

// Cancel ends the bulk-edit session and restores every cell it touched
func (e *Engine) Cancel() {
	if e.edit == nil {
		return
	}
	for k, v := range e.edit.snapshot {
		row, week, ok := k.Split()
		if !ok {
			continue
		}
		e.store.SetValue(row, week, v)
	}
	cells := len(e.edit.snapshot)
	e.edit = nil
	e.observer.Cancelled(cells)
	e.log.WithField("cells", cells).Debug("bulk edit cancelled")
}

// Blur is the typing target losing focus
func (e *Engine) Blur() {
	e.Commit()
}

func (e *Engine) finalize() {
	e.Commit()
}

func (e *Engine) open() {
	snap := make(map[CellKey]float64, len(e.selected))
	for k := range e.selected {
		row, week, ok := k.Split()
		if !ok {
			continue
		}
		snap[k] = e.store.Value(row, week)
	}
	e.edit = &editSession{snapshot: snap}
	e.log.WithField("cells", len(snap)).Debug("bulk edit opened")
}

func (e *Engine) apply(v float64) {
	v = Clamp(v)
	for k := range e.selected {
		row, week, ok := k.Split()
		if !ok {
			continue
		}
		e.store.SetValue(row, week, v)
	}
}
