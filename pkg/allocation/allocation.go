package allocation

import (
	"sort"
	"strconv"
	"time"

	"github.com/arnavshah/autohours-api-go/pkg/grid"
	"github.com/arnavshah/autohours-api-go/pkg/models"
)

// WeekStart returns midnight UTC of the Monday of t's week
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// Allocate spreads each role's hours over the weeks before due using the rows'
// percent-by-week. Week offset 0 is the deliverable's own week.
func Allocate(rows []models.AutoHoursRow, hoursByRole map[uint]float64, due time.Time) []models.WeeklyHours {
	base := WeekStart(due)

	var out []models.WeeklyHours
	for _, row := range rows {
		hours, ok := hoursByRole[row.RoleID]
		if !ok || hours <= 0 {
			continue
		}
		for week, pct := range row.PercentByWeek {
			offset, err := strconv.Atoi(week)
			if err != nil || offset < 0 {
				continue
			}
			pct = grid.Clamp(pct)
			if pct == 0 {
				continue
			}
			out = append(out, models.WeeklyHours{
				RoleID:     row.RoleID,
				WeekOffset: offset,
				WeekStart:  base.AddDate(0, 0, -7*offset),
				Percent:    pct,
				Hours:      hours * pct / 100,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].WeekStart.Equal(out[j].WeekStart) {
			return out[i].WeekStart.Before(out[j].WeekStart)
		}
		return out[i].RoleID < out[j].RoleID
	})
	return out
}

// Summarize totals allocated hours overall and per role
func Summarize(weeks []models.WeeklyHours) (total float64, byRole map[uint]float64) {
	byRole = make(map[uint]float64)
	for _, w := range weeks {
		total += w.Hours
		byRole[w.RoleID] += w.Hours
	}
	return total, byRole
}
