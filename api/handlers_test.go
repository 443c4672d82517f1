package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facegate/attendance-engine/api"
	"github.com/facegate/attendance-engine/ledger"
	"github.com/facegate/attendance-engine/registry"
	"github.com/facegate/attendance-engine/store/journal"
	"github.com/facegate/attendance-engine/store/ledgerfile"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var testClock = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.Local)

func newTestRouter(t *testing.T, opts ...ledger.Option) http.Handler {
	t.Helper()
	dir := t.TempDir()

	store, err := ledgerfile.Open(filepath.Join(dir, "attendance.json"))
	require.NoError(t, err)
	ids, err := registry.Open(filepath.Join(dir, "identities.csv"))
	require.NoError(t, err)
	j, err := journal.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	opts = append(opts, ledger.WithEventSink(j))
	tracker := ledger.New(store, ids, ledger.DefaultRules(), opts...)

	h := api.NewHandler(tracker, ids, j)
	h.Clock = func() time.Time { return testClock }
	return api.NewRouter(h)
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func observe(t *testing.T, router http.Handler, name string, at time.Time) *httptest.ResponseRecorder {
	return do(t, router, http.MethodPost, "/api/observe", api.ObserveRequest{
		Name: name,
		At:   at.Format(time.RFC3339),
	})
}

// =============================================================================
// OBSERVATION FLOW
// =============================================================================

func TestObserve_TogglesPresence(t *testing.T) {
	// GIVEN: Ann is unknown
	// WHEN: She is observed in the morning and the evening
	// THEN: The first sighting checks her in, the second checks her out

	router := newTestRouter(t)
	morning := testClock.Add(-4 * time.Hour)
	evening := testClock.Add(5 * time.Hour)

	rec := observe(t, router, "Ann", morning)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[api.OutcomeDTO](t, rec)
	assert.Equal(t, "CHECKED_IN", out.Outcome)
	assert.Equal(t, "Ann", out.Identity.Name)
	assert.NotEmpty(t, out.Identity.ID)

	rec = observe(t, router, "Ann", evening)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CHECKED_OUT", decode[api.OutcomeDTO](t, rec).Outcome)
}

func TestObserve_CooldownReturns429(t *testing.T) {
	router := newTestRouter(t, ledger.WithCooldown(5*time.Minute))
	at := testClock.Add(-4 * time.Hour)

	rec := observe(t, router, "Ann", at)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = observe(t, router, "Ann", at.Add(2*time.Second))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, decode[api.ErrorResponse](t, rec).Error, "Cooldown")
}

func TestObserve_MissingName(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/observe", api.ObserveRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// EXPLICIT EVENTS
// =============================================================================

func TestRecordEvent_UnknownKind(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/events", api.EventRequest{Name: "Ann", Kind: "LUNCH"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordEvent_CheckOutWithoutCheckIn(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/events", api.EventRequest{Name: "Ann", Kind: "CHECK_OUT"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRecordEvent_AccessDeniedDoesNotEnroll(t *testing.T) {
	// GIVEN: A stranger at the gate
	// WHEN: An ACCESS_DENIED event is recorded
	// THEN: The event is accepted but the stranger stays unenrolled

	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/events", api.EventRequest{Name: "Stranger", Kind: "ACCESS_DENIED"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "DENIED", decode[api.OutcomeDTO](t, rec).Outcome)

	rec = do(t, router, http.MethodGet, "/api/identities", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]api.IdentityDTO](t, rec))
}

func TestCheckout_Manual(t *testing.T) {
	router := newTestRouter(t)
	observe(t, router, "Ann", testClock.Add(-4*time.Hour))

	rec := do(t, router, http.MethodPost, "/api/checkout/Ann", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CHECKED_OUT", decode[api.OutcomeDTO](t, rec).Outcome)

	rec = do(t, router, http.MethodPost, "/api/checkout/Nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// STATUS AND IDENTITIES
// =============================================================================

func TestStatus_ListAndSingle(t *testing.T) {
	router := newTestRouter(t)
	observe(t, router, "Ann", testClock.Add(-4*time.Hour))
	observe(t, router, "Bob", testClock.Add(-3*time.Hour))

	rec := do(t, router, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	statuses := decode[[]api.StatusDTO](t, rec)
	require.Len(t, statuses, 2)
	assert.Equal(t, "Ann", statuses[0].Identity.Name)
	assert.Equal(t, "IN", statuses[0].Presence)

	rec = do(t, router, http.MethodGet, "/api/status/Bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	single := decode[api.StatusDTO](t, rec)
	assert.Equal(t, "IN", single.Presence)
	require.NotNil(t, single.FirstIn)

	rec = do(t, router, http.MethodGet, "/api/status/Nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveIdentity(t *testing.T) {
	router := newTestRouter(t)
	observe(t, router, "Ann", testClock.Add(-4*time.Hour))

	rec := do(t, router, http.MethodDelete, "/api/identities/Ann", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/status/Ann", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// REPORTS
// =============================================================================

func TestMonthlyReport(t *testing.T) {
	router := newTestRouter(t)
	observe(t, router, "Ann", time.Date(2026, time.March, 10, 8, 20, 0, 0, time.Local))
	observe(t, router, "Ann", time.Date(2026, time.March, 10, 17, 30, 0, 0, time.Local))

	rec := do(t, router, http.MethodGet, "/api/report/2026-03", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	reports := decode[[]api.MonthReportDTO](t, rec)
	require.Len(t, reports, 1)
	assert.Equal(t, 1, reports[0].WorkingDays)
	assert.Equal(t, 1, reports[0].DaysLate)
	assert.Equal(t, "20m", reports[0].TotalLate)
	assert.Equal(t, 1, reports[0].OvertimeDays)

	rec = do(t, router, http.MethodGet, "/api/report/march-2026", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportCSV(t *testing.T) {
	router := newTestRouter(t)
	observe(t, router, "Ann", testClock.Add(-4*time.Hour))

	rec := do(t, router, http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Ann")

	rec = do(t, router, http.MethodGet, "/api/export?from=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJournalToday(t *testing.T) {
	router := newTestRouter(t)
	observe(t, router, "Ann", testClock.Add(-time.Hour))

	rec := do(t, router, http.MethodGet, "/api/journal/today", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[journal.DaySummary](t, rec)
	assert.Equal(t, 1, sum.CheckIns)
	assert.Equal(t, 1, sum.People)
}

func TestRouterRejectsUnknownRoutes(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, fmt.Sprintf("/api/unknown/%d", 42), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
