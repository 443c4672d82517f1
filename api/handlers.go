/*
handlers.go - HTTP API handlers for the attendance engine

PURPOSE:
  Exposes the attendance tracker via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Status:
    GET    /api/status                Today's status for everyone
    GET    /api/status/{name}         One person's status

  Events:
    POST   /api/observe               Sighting from a recognition gate
    POST   /api/events                Explicit attendance event
    POST   /api/checkout/{name}       Manual check-out

  Identities:
    GET    /api/identities            List enrolled people
    DELETE /api/identities/{name}     Remove a person and their records

  Reports:
    GET    /api/report/{month}        Monthly aggregates (YYYY-MM)
    GET    /api/export                CSV export (?from=&to=, YYYY-MM-DD)
    GET    /api/journal/today         Today's journal counters

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Unknown identity or month sheet
  - 409: Check-out without an open check-in
  - 429: Observation inside the cooldown window
  - 500: Storage errors

SECURITY NOTE:
  No authentication middleware. The server is meant to sit on a
  trusted local network next to the recognition gate.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/facegate/attendance-engine/ledger"
	"github.com/facegate/attendance-engine/store/journal"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Tracker    *ledger.Tracker
	Identities ledger.IdentityResolver
	Journal    *journal.Journal

	// Clock is overridable in tests. Defaults to time.Now.
	Clock func() time.Time
}

// NewHandler creates a new handler around the tracker.
func NewHandler(tracker *ledger.Tracker, ids ledger.IdentityResolver, j *journal.Journal) *Handler {
	return &Handler{
		Tracker:    tracker,
		Identities: ids,
		Journal:    j,
		Clock:      time.Now,
	}
}

// =============================================================================
// STATUS ENDPOINTS
// =============================================================================

// ListStatus returns today's status for every enrolled person.
// GET /api/status
func (h *Handler) ListStatus(w http.ResponseWriter, r *http.Request) {
	statuses := h.Tracker.TodaySummary(h.Clock())

	dtos := make([]StatusDTO, 0, len(statuses))
	for _, s := range statuses {
		dtos = append(dtos, toStatusDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetStatus returns one person's status for today.
// GET /api/status/{name}
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	name := pathName(r)
	if _, ok := h.Identities.Lookup(name); !ok {
		writeError(w, http.StatusNotFound, "Unknown person", nil)
		return
	}
	writeJSON(w, http.StatusOK, toStatusDTO(h.Tracker.StatusOf(name, h.Clock())))
}

// =============================================================================
// EVENT ENDPOINTS
// =============================================================================

// Observe handles a sighting from a recognition gate: it toggles the
// person between checked-in and checked-out, subject to the cooldown.
// POST /api/observe
func (h *Handler) Observe(w http.ResponseWriter, r *http.Request) {
	var req ObserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}
	at, err := h.parseAt(req.At)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid at timestamp (use RFC3339)", err)
		return
	}

	outcome, err := h.Tracker.Observe(r.Context(), req.Name, at)
	if err != nil {
		var cd *ledger.CooldownError
		if errors.As(err, &cd) {
			writeError(w, http.StatusTooManyRequests,
				fmt.Sprintf("Cooldown active, retry in %s", cd.Remaining.Round(time.Second)), nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to record observation", err)
		return
	}

	identity, _ := h.Identities.Lookup(req.Name)
	writeJSON(w, http.StatusOK, OutcomeDTO{
		Identity: toIdentityDTO(identity),
		Outcome:  string(outcome),
		At:       at.Format(time.RFC3339),
	})
}

// RecordEvent records an explicit attendance event, bypassing the
// cooldown. Access events go to the journal only.
// POST /api/events
func (h *Handler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}
	kind := ledger.EventKind(req.Kind)
	switch kind {
	case ledger.EventCheckIn, ledger.EventCheckOut, ledger.EventAccessGranted, ledger.EventAccessDenied:
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown event kind %q", req.Kind), nil)
		return
	}
	at, err := h.parseAt(req.At)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid at timestamp (use RFC3339)", err)
		return
	}

	// Denied access never enrolls: the name stays out of the registry
	// and the event carries a derived ID only.
	var identity ledger.Identity
	if kind == ledger.EventAccessDenied {
		var ok bool
		if identity, ok = h.Identities.Lookup(req.Name); !ok {
			identity = ledger.Identity{ID: ledger.DeriveID(req.Name), Name: req.Name}
		}
	} else {
		if identity, err = h.Identities.Resolve(req.Name); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid name", err)
			return
		}
	}

	outcome, err := h.Tracker.RecordEvent(r.Context(), identity, kind, at)
	if err != nil {
		if errors.Is(err, ledger.ErrNoOpenCheckIn) {
			writeError(w, http.StatusConflict, "No open check-in today", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to record event", err)
		return
	}

	writeJSON(w, http.StatusOK, OutcomeDTO{
		Identity: toIdentityDTO(identity),
		Outcome:  string(outcome),
		At:       at.Format(time.RFC3339),
	})
}

// Checkout closes the day for a person who is currently in.
// POST /api/checkout/{name}
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	name := pathName(r)
	now := h.Clock()

	outcome, err := h.Tracker.Checkout(r.Context(), name, now)
	if err != nil {
		if errors.Is(err, ledger.ErrIdentityNotFound) {
			writeError(w, http.StatusNotFound, "Unknown person", nil)
			return
		}
		if errors.Is(err, ledger.ErrNoOpenCheckIn) {
			writeError(w, http.StatusConflict, "No open check-in today", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to check out", err)
		return
	}

	identity, _ := h.Identities.Lookup(name)
	writeJSON(w, http.StatusOK, OutcomeDTO{
		Identity: toIdentityDTO(identity),
		Outcome:  string(outcome),
		At:       now.Format(time.RFC3339),
	})
}

// =============================================================================
// IDENTITY ENDPOINTS
// =============================================================================

// ListIdentities returns all enrolled people.
// GET /api/identities
func (h *Handler) ListIdentities(w http.ResponseWriter, r *http.Request) {
	ids := h.Identities.List()
	dtos := make([]IdentityDTO, 0, len(ids))
	for _, id := range ids {
		dtos = append(dtos, toIdentityDTO(id))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RemoveIdentity purges a person and all their ledger sheets.
// DELETE /api/identities/{name}
func (h *Handler) RemoveIdentity(w http.ResponseWriter, r *http.Request) {
	name := pathName(r)

	if err := h.Tracker.RemoveIdentity(name); err != nil {
		if errors.Is(err, ledger.ErrIdentityNotFound) {
			writeError(w, http.StatusNotFound, "Unknown person", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to remove person", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": name})
}

// =============================================================================
// REPORT ENDPOINTS
// =============================================================================

// MonthlyReport returns per-person aggregates for one month.
// GET /api/report/{month}
func (h *Handler) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	month, err := ledger.ParseMonthKey(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month (use YYYY-MM)", err)
		return
	}

	reports, err := h.Tracker.MonthlyReport(month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build report", err)
		return
	}

	dtos := make([]MonthReportDTO, 0, len(reports))
	for _, rep := range reports {
		dtos = append(dtos, toMonthReportDTO(rep))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ExportCSV streams populated day records as CSV.
// GET /api/export?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	from, err := h.parseDateParam(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
		return
	}
	to, err := h.parseDateParam(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance.csv"`)
	if err := h.Tracker.ExportCSV(w, from, to); err != nil {
		// Headers are already out, nothing sane left to do but log.
		writeError(w, http.StatusInternalServerError, "Failed to export", err)
	}
}

// JournalToday returns today's activity counters from the journal.
// GET /api/journal/today
func (h *Handler) JournalToday(w http.ResponseWriter, r *http.Request) {
	if h.Journal == nil {
		writeError(w, http.StatusNotFound, "Journal not configured", nil)
		return
	}
	sum, err := h.Journal.Today(r.Context(), h.Clock())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read journal", err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) parseAt(raw string) (time.Time, error) {
	if raw == "" {
		return h.Clock(), nil
	}
	return time.Parse(time.RFC3339, raw)
}

func (h *Handler) parseDateParam(r *http.Request, key string) (*time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// pathName extracts the {name} parameter, tolerating URL escaping for
// names with spaces.
func pathName(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(raw); err == nil {
		return unescaped
	}
	return raw
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
