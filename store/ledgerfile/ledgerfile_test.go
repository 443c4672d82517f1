package ledgerfile_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facegate/attendance-engine/ledger"
	"github.com/facegate/attendance-engine/store/ledgerfile"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func containerPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "attendance.json")
}

func ann() ledger.Identity {
	return ledger.Identity{ID: ledger.DeriveID("Ann"), Name: "Ann"}
}

func march() ledger.MonthKey {
	return ledger.MonthKey{Year: 2026, Month: time.March}
}

func checkInAnn(t *testing.T, s *ledgerfile.Store, day, hour, minute int) time.Time {
	t.Helper()
	now := time.Date(2026, time.March, day, hour, minute, 0, 0, time.Local)
	err := s.Update(func(st *ledger.State) error {
		sheet := st.SheetFor(ann(), march())
		rec := sheet.Day(now)
		rec.FirstIn = &now
		rec.Punctuality = ledger.OnTime
		return nil
	})
	require.NoError(t, err)
	return now
}

// =============================================================================
// OPEN / ROUND TRIP
// =============================================================================

func TestOpen_CreatesMissingContainer(t *testing.T) {
	// GIVEN: No container on disk
	// WHEN: The store opens
	// THEN: A fresh empty container exists and is readable

	path := containerPath(t)
	s, err := ledgerfile.Open(path)
	require.NoError(t, err)

	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)

	s.View(func(st *ledger.State) {
		assert.Empty(t, st.Sheets)
	})
}

func TestOpen_RoundTripsCommittedState(t *testing.T) {
	// GIVEN: A container with one committed check-in
	// WHEN: A second store opens the same file
	// THEN: The record survives with its timestamps and punctuality

	path := containerPath(t)
	s1, err := ledgerfile.Open(path)
	require.NoError(t, err)
	in := checkInAnn(t, s1, 10, 8, 15)

	s2, err := ledgerfile.Open(path)
	require.NoError(t, err)

	s2.View(func(st *ledger.State) {
		sheet, ok := st.Sheet(ann().ID, march())
		require.True(t, ok)
		rec := sheet.Day(in)
		require.NotNil(t, rec)
		require.NotNil(t, rec.FirstIn)
		assert.True(t, rec.FirstIn.Equal(in))
		assert.Equal(t, ledger.OnTime, rec.Punctuality)
		assert.Nil(t, rec.LastOut)
	})
}

func TestOpen_EmptyDaysAreResynthesized(t *testing.T) {
	// GIVEN: A persisted sheet with a single populated day
	// WHEN: It is reloaded
	// THEN: The full month of day slots is present again

	path := containerPath(t)
	s1, err := ledgerfile.Open(path)
	require.NoError(t, err)
	checkInAnn(t, s1, 10, 8, 0)

	s2, err := ledgerfile.Open(path)
	require.NoError(t, err)

	s2.View(func(st *ledger.State) {
		sheet, ok := st.Sheet(ann().ID, march())
		require.True(t, ok)
		assert.Len(t, sheet.Days, 31)
		assert.Equal(t, time.Saturday, sheet.Days[6].Weekday) // March 7, 2026
		assert.True(t, sheet.Days[6].Weekend)
	})
}

// =============================================================================
// CORRUPTION RECOVERY
// =============================================================================

func TestOpen_QuarantinesGarbage(t *testing.T) {
	// GIVEN: A container full of garbage bytes
	// WHEN: The store opens
	// THEN: The garbage is renamed aside, kept on disk, and a fresh
	//       empty container takes its place

	path := containerPath(t)
	garbage := []byte("\x00\x01not json at all")
	require.NoError(t, os.WriteFile(path, garbage, 0o644))

	s, err := ledgerfile.Open(path)
	require.NoError(t, err)
	s.View(func(st *ledger.State) {
		assert.Empty(t, st.Sheets)
	})

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)

	var quarantined string
	for _, e := range entries {
		if strings.Contains(e.Name(), "_corrupt_") {
			quarantined = filepath.Join(filepath.Dir(path), e.Name())
		}
	}
	require.NotEmpty(t, quarantined, "expected a quarantined file next to the container")

	kept, err := os.ReadFile(quarantined)
	require.NoError(t, err)
	assert.Equal(t, garbage, kept)
}

func TestOpen_QuarantinesStructurallyInvalidJSON(t *testing.T) {
	// Valid JSON, wrong shape: a sheet with no identity.
	path := containerPath(t)
	bad := `{"version":1,"sheets":[{"month":"2026-03","days":[]}]}`
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o644))

	s, err := ledgerfile.Open(path)
	require.NoError(t, err)
	s.View(func(st *ledger.State) {
		assert.Empty(t, st.Sheets)
	})
}

// =============================================================================
// UPDATE SEMANTICS
// =============================================================================

func TestUpdate_FailedMutationLeavesStateUntouched(t *testing.T) {
	// GIVEN: A committed check-in
	// WHEN: A later update mutates the clone and then fails
	// THEN: Neither memory nor disk reflect the failed mutation

	path := containerPath(t)
	s, err := ledgerfile.Open(path)
	require.NoError(t, err)
	in := checkInAnn(t, s, 10, 8, 0)

	boom := fmt.Errorf("validation failed")
	err = s.Update(func(st *ledger.State) error {
		sheet, _ := st.Sheet(ann().ID, march())
		sheet.Day(in).FirstIn = nil
		return boom
	})
	assert.ErrorIs(t, err, boom)

	s.View(func(st *ledger.State) {
		sheet, _ := st.Sheet(ann().ID, march())
		assert.NotNil(t, sheet.Day(in).FirstIn)
	})

	// And on disk.
	s2, err := ledgerfile.Open(path)
	require.NoError(t, err)
	s2.View(func(st *ledger.State) {
		sheet, ok := st.Sheet(ann().ID, march())
		require.True(t, ok)
		assert.NotNil(t, sheet.Day(in).FirstIn)
	})
}

func TestSheetFor_Idempotent(t *testing.T) {
	path := containerPath(t)
	s, err := ledgerfile.Open(path)
	require.NoError(t, err)

	err = s.Update(func(st *ledger.State) error {
		first := st.SheetFor(ann(), march())
		second := st.SheetFor(ann(), march())
		assert.Same(t, first, second)
		assert.Len(t, st.Sheets, 1)
		return nil
	})
	require.NoError(t, err)
}
