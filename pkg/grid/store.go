package grid

import (
	"math"
	"strconv"

	"github.com/arnavshah/autohours-api-go/pkg/models"
)

const (
	MinPercent = 0
	MaxPercent = 100
)

// ValueStore is the percent matrix the engine edits. It is owned by the caller.
type ValueStore interface {
	Value(row, week string) float64
	SetValue(row, week string, v float64)
}

// Clamp bounds v to [MinPercent, MaxPercent]
func Clamp(v float64) float64 {
	return math.Min(MaxPercent, math.Max(MinPercent, v))
}

// ParsePercent parses a typed buffer. ok is false for empty or non-finite input.
func ParsePercent(s string) (v float64, ok bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// RowStore adapts a slice of auto-hours rows to ValueStore. Writes go
// straight into the rows' PercentByWeek maps.
type RowStore struct {
	rows []models.AutoHoursRow
	pos  map[string]int
}

// NewRowStore wraps rows without copying them
func NewRowStore(rows []models.AutoHoursRow) *RowStore {
	s := &RowStore{}
	s.Replace(rows)
	return s
}

// Replace swaps the underlying rows, e.g. after a reload from storage
func (s *RowStore) Replace(rows []models.AutoHoursRow) {
	s.rows = rows
	s.pos = make(map[string]int, len(rows))
	for i, r := range rows {
		if _, dup := s.pos[r.Key()]; !dup {
			s.pos[r.Key()] = i
		}
	}
}

// Rows returns the rows as mutated so far
func (s *RowStore) Rows() []models.AutoHoursRow { return s.rows }

// Keys returns row keys in row order
func (s *RowStore) Keys() []string {
	out := make([]string, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r.Key())
	}
	return out
}

func (s *RowStore) Value(row, week string) float64 {
	i, ok := s.pos[row]
	if !ok {
		return 0
	}
	return s.rows[i].PercentByWeek[week]
}

func (s *RowStore) SetValue(row, week string, v float64) {
	i, ok := s.pos[row]
	if !ok || math.IsNaN(v) {
		return
	}
	if s.rows[i].PercentByWeek == nil {
		s.rows[i].PercentByWeek = make(map[string]float64)
	}
	s.rows[i].PercentByWeek[week] = Clamp(v)
}
