package journal_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facegate/attendance-engine/ledger"
	"github.com/facegate/attendance-engine/store/journal"
)

func newTestJournal(t *testing.T) *journal.Journal {
	t.Helper()
	j, err := journal.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func event(name string, kind ledger.EventKind, at time.Time) ledger.Event {
	return ledger.Event{
		At:       at,
		Identity: ledger.Identity{ID: ledger.DeriveID(name), Name: name},
		Kind:     kind,
		Outcome:  ledger.OutcomeNoop,
	}
}

func TestJournal_TodayCounters(t *testing.T) {
	// GIVEN: A day of mixed activity from two people
	// WHEN: Today's summary is read
	// THEN: Per-kind counters and the distinct people count line up

	j := newTestJournal(t)
	ctx := context.Background()
	day := time.Date(2026, time.March, 10, 8, 0, 0, 0, time.Local)

	require.NoError(t, j.Record(ctx, event("Ann", ledger.EventCheckIn, day)))
	require.NoError(t, j.Record(ctx, event("Ann", ledger.EventCheckOut, day.Add(8*time.Hour))))
	require.NoError(t, j.Record(ctx, event("Bob", ledger.EventCheckIn, day.Add(time.Hour))))
	require.NoError(t, j.Record(ctx, event("Bob", ledger.EventAccessGranted, day.Add(2*time.Hour))))
	require.NoError(t, j.Record(ctx, event("Eve", ledger.EventAccessDenied, day.Add(3*time.Hour))))

	sum, err := j.Today(ctx, day.Add(5*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 2, sum.CheckIns)
	assert.Equal(t, 1, sum.CheckOuts)
	assert.Equal(t, 1, sum.Grants)
	assert.Equal(t, 1, sum.Denials)
	assert.Equal(t, 3, sum.People)
}

func TestJournal_TodayExcludesOtherDays(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()
	day := time.Date(2026, time.March, 10, 8, 0, 0, 0, time.Local)

	require.NoError(t, j.Record(ctx, event("Ann", ledger.EventCheckIn, day.AddDate(0, 0, -1))))
	require.NoError(t, j.Record(ctx, event("Bob", ledger.EventCheckIn, day)))

	sum, err := j.Today(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.CheckIns)
	assert.Equal(t, 1, sum.People)
}

func TestJournal_SummarizeRange(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()
	day := time.Date(2026, time.March, 10, 8, 0, 0, 0, time.Local)

	for i := 0; i < 3; i++ {
		require.NoError(t, j.Record(ctx, event("Ann", ledger.EventCheckIn, day.AddDate(0, 0, i))))
	}

	sum, err := j.Summarize(ctx, ledger.Midnight(day), ledger.Midnight(day).AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, 2, sum.CheckIns)
}

func TestJournal_EmptyDay(t *testing.T) {
	j := newTestJournal(t)

	sum, err := j.Today(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, journal.DaySummary{}, sum)
}
