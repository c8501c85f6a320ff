package grid

import (
	"sort"
	"strconv"
	"strings"
)

const keySep = ":"

// CellKey addresses one grid cell as "rowKey:weekKey"
type CellKey string

// MakeKey joins a row key and a week key into a cell key
func MakeKey(row, week string) CellKey {
	return CellKey(row + keySep + week)
}

// Split returns the row and week keys of k
func (k CellKey) Split() (row, week string, ok bool) {
	return strings.Cut(string(k), keySep)
}

// Coord is a cell position in the current row and week order
type Coord struct {
	Row  int
	Week int
}

// Set is an unordered set of cell keys
type Set map[CellKey]struct{}

// NewSet builds a set holding keys
func NewSet(keys ...CellKey) Set {
	s := make(Set, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether k is in the set
func (s Set) Has(k CellKey) bool {
	_, ok := s[k]
	return ok
}

// Len is the number of selected cells
func (s Set) Len() int { return len(s) }

// Clone returns an independent copy of s
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Union returns a new set holding the keys of s and o
func (s Set) Union(o Set) Set {
	out := s.Clone()
	for k := range o {
		out[k] = struct{}{}
	}
	return out
}

// Equal reports whether s and o hold the same keys
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for k := range s {
		if !o.Has(k) {
			return false
		}
	}
	return true
}

// Index is the grid coordinate index: ordered row and week keys plus
// the reverse lookups used for range math.
type Index struct {
	rows    []string
	weeks   []string
	rowPos  map[string]int
	weekPos map[string]int
}

// NewIndex builds an index. Duplicate keys are dropped, the first occurrence wins.
func NewIndex(rows, weeks []string) *Index {
	ix := &Index{
		rowPos:  make(map[string]int, len(rows)),
		weekPos: make(map[string]int, len(weeks)),
	}
	for _, r := range rows {
		if _, dup := ix.rowPos[r]; dup {
			continue
		}
		ix.rowPos[r] = len(ix.rows)
		ix.rows = append(ix.rows, r)
	}
	for _, w := range weeks {
		if _, dup := ix.weekPos[w]; dup {
			continue
		}
		ix.weekPos[w] = len(ix.weeks)
		ix.weeks = append(ix.weeks, w)
	}
	return ix
}

func (ix *Index) Rows() []string  { return ix.rows }
func (ix *Index) Weeks() []string { return ix.weeks }

// Coord resolves a cell to its position, false when either key is unknown
func (ix *Index) Coord(row, week string) (Coord, bool) {
	r, ok := ix.rowPos[row]
	if !ok {
		return Coord{}, false
	}
	w, ok := ix.weekPos[week]
	if !ok {
		return Coord{}, false
	}
	return Coord{Row: r, Week: w}, true
}

// Contains reports whether k decomposes into a row and week of this grid
func (ix *Index) Contains(k CellKey) bool {
	row, week, ok := k.Split()
	if !ok {
		return false
	}
	_, ok = ix.Coord(row, week)
	return ok
}

// Key returns the cell key at c, false when c is outside the grid
func (ix *Index) Key(c Coord) (CellKey, bool) {
	if c.Row < 0 || c.Row >= len(ix.rows) || c.Week < 0 || c.Week >= len(ix.weeks) {
		return "", false
	}
	return MakeKey(ix.rows[c.Row], ix.weeks[c.Week]), true
}

// Sorted orders the keys of s by row position, then week position.
// Keys not in the index sort last, by string.
func (ix *Index) Sorted(s Set) []CellKey {
	out := make([]CellKey, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	pos := func(k CellKey) (Coord, bool) {
		row, week, ok := k.Split()
		if !ok {
			return Coord{}, false
		}
		return ix.Coord(row, week)
	}
	sort.Slice(out, func(i, j int) bool {
		a, aok := pos(out[i])
		b, bok := pos(out[j])
		switch {
		case aok && bok:
			if a.Row != b.Row {
				return a.Row < b.Row
			}
			return a.Week < b.Week
		case aok != bok:
			return aok
		default:
			return out[i] < out[j]
		}
	})
	return out
}

// BuildRange returns every cell in the rectangle spanned by start and end.
// Indices that fall outside rowOrder or weekOrder are skipped.
func BuildRange(start, end Coord, rowOrder, weekOrder []string) Set {
	rowLo, rowHi := min(start.Row, end.Row), max(start.Row, end.Row)
	weekLo, weekHi := min(start.Week, end.Week), max(start.Week, end.Week)

	out := make(Set)
	for r := rowLo; r <= rowHi; r++ {
		if r < 0 || r >= len(rowOrder) {
			continue
		}
		for w := weekLo; w <= weekHi; w++ {
			if w < 0 || w >= len(weekOrder) {
				continue
			}
			out[MakeKey(rowOrder[r], weekOrder[w])] = struct{}{}
		}
	}
	return out
}

// WeekKeys returns the week offset keys "0" through n-1
func WeekKeys(n int) []string {
	out := make([]string, 0, max(n, 0))
	for i := 0; i < n; i++ {
		out = append(out, strconv.Itoa(i))
	}
	return out
}
