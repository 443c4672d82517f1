package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func workDay(t *testing.T, sheet *MonthSheet, day, inHour, inMin, outHour, outMin int) {
	t.Helper()
	in := time.Date(sheet.Key.Year, sheet.Key.Month, day, inHour, inMin, 0, 0, time.Local)
	out := time.Date(sheet.Key.Year, sheet.Key.Month, day, outHour, outMin, 0, 0, time.Local)
	rec := sheet.Day(in)
	require.NotNil(t, rec)
	applyCheckIn(rec, in, DefaultRules())
	_, err := applyCheckOut(rec, out, DefaultRules())
	require.NoError(t, err)
}

func TestRecompute_AggregatesWorkedLateAndOvertime(t *testing.T) {
	// GIVEN: A month with one on-time day, one late day, one overtime day
	// WHEN: The summary is recomputed
	// THEN: Counters and totals reflect exactly the populated days

	sheet := NewMonthSheet(Identity{ID: "USR0A1B2C3D", Name: "Ann"}, MonthKey{Year: 2026, Month: time.March})
	workDay(t, sheet, 2, 7, 50, 16, 0)  // on time, no overtime
	workDay(t, sheet, 3, 8, 20, 16, 0)  // late 20m
	workDay(t, sheet, 4, 7, 30, 17, 45) // overtime 45m

	sum := Recompute(sheet)

	assert.Equal(t, 3, sum.WorkingDays)
	assert.Equal(t, 1, sum.DaysLate)
	assert.Equal(t, 20*time.Minute, sum.TotalLate)
	assert.Equal(t, 1, sum.OvertimeDays)
	assert.Equal(t, 45*time.Minute, sum.TotalOvertime)
	expectedWorked := (8*time.Hour + 10*time.Minute) +
		(7*time.Hour + 40*time.Minute) +
		(10*time.Hour + 15*time.Minute)
	assert.Equal(t, expectedWorked, sum.TotalWorked)
}

func TestRecompute_Idempotent(t *testing.T) {
	// GIVEN: A sheet whose summary was already computed
	// WHEN: Recompute runs again with no new events
	// THEN: The result is identical

	sheet := NewMonthSheet(Identity{ID: "USR0A1B2C3D", Name: "Ann"}, MonthKey{Year: 2026, Month: time.March})
	workDay(t, sheet, 5, 8, 30, 18, 0)

	first := Recompute(sheet)
	sheet.Summary = first
	second := Recompute(sheet)

	assert.Equal(t, first, second)
}

func TestRecompute_EmptySheet(t *testing.T) {
	// GIVEN: A freshly materialized sheet with no events
	// WHEN: The summary is recomputed
	// THEN: Everything is zero

	sheet := NewMonthSheet(Identity{ID: "USR0A1B2C3D", Name: "Ann"}, MonthKey{Year: 2026, Month: time.March})

	sum := Recompute(sheet)

	assert.Equal(t, MonthSummary{}, sum)
}
