package allocation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/autohours-api-go/pkg/models"
)

func TestWeekStart(t *testing.T) {
	// 2026-10-16 is a Friday
	got := WeekStart(time.Date(2026, 10, 16, 15, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), got)

	sunday := time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), WeekStart(sunday))

	monday := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, WeekStart(monday))
}

func TestAllocate(t *testing.T) {
	rows := []models.AutoHoursRow{
		{RoleID: 1, PercentByWeek: map[string]float64{"0": 50, "1": 30, "2": 20}},
		{RoleID: 2, PercentByWeek: map[string]float64{"0": 100, "3": 0}},
		{RoleID: 3, PercentByWeek: map[string]float64{"0": 100}},
	}
	due := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

	weeks := Allocate(rows, map[uint]float64{1: 40, 2: 10}, due)
	require.Len(t, weeks, 4)

	first := weeks[0]
	assert.Equal(t, uint(1), first.RoleID)
	assert.Equal(t, 2, first.WeekOffset)
	assert.Equal(t, time.Date(2026, 9, 28, 0, 0, 0, 0, time.UTC), first.WeekStart)
	assert.InDelta(t, 8.0, first.Hours, 1e-9)

	last := weeks[3]
	assert.Equal(t, uint(2), last.RoleID)
	assert.Equal(t, 0, last.WeekOffset)
	assert.InDelta(t, 10.0, last.Hours, 1e-9)

	total, byRole := Summarize(weeks)
	assert.InDelta(t, 50.0, total, 1e-9)
	assert.InDelta(t, 40.0, byRole[1], 1e-9)
	assert.NotContains(t, byRole, uint(3))
}

func TestAllocate_ClampsAndSkipsBadWeeks(t *testing.T) {
	rows := []models.AutoHoursRow{
		{RoleID: 1, PercentByWeek: map[string]float64{"0": 250, "x": 50, "-1": 50}},
	}
	weeks := Allocate(rows, map[uint]float64{1: 8}, time.Now())
	require.Len(t, weeks, 1)
	assert.Equal(t, 100.0, weeks[0].Percent)
	assert.InDelta(t, 8.0, weeks[0].Hours, 1e-9)
}
