/*
Package ledger provides the core attendance ledger engine.

PURPOSE:
  This package contains the domain types and algorithms for daily
  attendance bookkeeping: per-identity per-day check-in/check-out
  records, punctuality and overtime derivation, and monthly summary
  aggregation. Persistence is behind the Store interface so the file
  container lives in its own package.

KEY CONCEPTS IN THIS FILE (types.go):
  - Identity:   A tracked person with a stable derived id
  - DayRecord:  One day's attendance facts for one identity
  - MonthSheet: All DayRecords of one identity for one month, plus a
                cached summary block
  - State:      The in-memory ledger (directory of month sheets)

DESIGN PRINCIPLES:
  1. One row per (identity, day). FirstIn is set once and never
     overwritten; LastOut always reflects the most recent checkout.
  2. Month sheets are pre-materialized: every day of the month exists
     as an empty record, so date lookups are positional.
  3. The summary block is a cache. It must always be reproducible by
     a full rescan of the day records (see summary.go).

SEE ALSO:
  - daily.go:   The day-record state machine
  - tracker.go: The caller-facing facade (recordEvent, toggle, status)
  - store/ledgerfile: The durable single-file container
*/
package ledger

import (
	"crypto/sha1"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// IDENTITY
// =============================================================================

// IdentityID is the stable opaque token for a tracked person.
type IdentityID string

// Identity is a tracked person. The id is derived deterministically
// from the name, so re-deriving it is always safe.
type Identity struct {
	ID   IdentityID `json:"id"`
	Name string     `json:"name"`
}

// DeriveID computes the stable id for a name: "USR" plus the first
// eight uppercase hex characters of SHA-1(name). Same name, same id,
// forever - the registry relies on this being pure.
func DeriveID(name string) IdentityID {
	sum := sha1.Sum([]byte(name))
	return IdentityID("USR" + strings.ToUpper(fmt.Sprintf("%x", sum[:4])))
}

// IdentityResolver maps display names to identities. Implemented by
// the registry package; the tracker only needs this surface.
type IdentityResolver interface {
	// Resolve returns the identity for a name, creating and persisting
	// a new mapping on first sighting.
	Resolve(name string) (Identity, error)

	// Lookup returns an existing mapping without creating one.
	Lookup(name string) (Identity, bool)

	// List returns all known identities, sorted by name.
	List() []Identity

	// Remove deletes a mapping. Used by administrative identity removal.
	Remove(name string) error
}

// =============================================================================
// EVENTS
// =============================================================================

// EventKind is the kind of observation delivered to the ledger.
type EventKind string

const (
	EventCheckIn       EventKind = "CHECK_IN"
	EventCheckOut      EventKind = "CHECK_OUT"
	EventAccessGranted EventKind = "ACCESS_GRANTED"
	EventAccessDenied  EventKind = "ACCESS_DENIED"
)

// Outcome reports what an event application actually did.
type Outcome string

const (
	OutcomeCheckedIn  Outcome = "CHECKED_IN"  // first check-in of the day recorded
	OutcomeCheckedOut Outcome = "CHECKED_OUT" // checkout recorded (or overwritten)
	OutcomeReopened   Outcome = "REOPENED"    // completed day toggled back to IN
	OutcomeNoop       Outcome = "NO_CHANGE"   // idempotent re-entry, nothing mutated
	OutcomeGranted    Outcome = "GRANTED"     // access grant journaled
	OutcomeDenied     Outcome = "DENIED"      // access denial journaled
)

// =============================================================================
// DAY RECORD
// =============================================================================

// Punctuality classifies the first check-in of a day.
type Punctuality string

const (
	PunctualityUnknown Punctuality = ""
	OnTime             Punctuality = "ON_TIME"
	Late               Punctuality = "LATE"
)

// Presence is the derived in/out state of an identity.
type Presence string

const (
	PresenceNone Presence = "NONE" // no record for the day
	PresenceIn   Presence = "IN"   // first check-in set, no checkout
	PresenceOut  Presence = "OUT"  // both set
)

// DayRecord holds one day's attendance facts for one identity.
//
// FirstIn is the FIRST check-in of the day and is immutable once set.
// LastOut and Worked reflect the LAST checkout and are recomputed on
// every checkout. FirstIn set with LastOut empty means currently IN.
type DayRecord struct {
	Date    time.Time
	Weekday time.Weekday
	Weekend bool

	FirstIn *time.Time
	LastOut *time.Time

	// Worked is LastOut - FirstIn. Only meaningful when LastOut is set.
	Worked time.Duration

	Punctuality Punctuality
	LateBy      time.Duration
	OvertimeBy  time.Duration
}

// Presence derives the in/out state from the record itself. There is
// no separate status field to drift out of sync.
func (r *DayRecord) Presence() Presence {
	switch {
	case r.FirstIn == nil:
		return PresenceNone
	case r.LastOut == nil:
		return PresenceIn
	default:
		return PresenceOut
	}
}

// =============================================================================
// MONTH SHEET
// =============================================================================

// MonthKey identifies one calendar month.
type MonthKey struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// MonthKeyOf returns the key for the month containing t.
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// ParseMonthKey parses "2006-01".
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return MonthKey{}, fmt.Errorf("invalid month %q (use YYYY-MM): %w", s, err)
	}
	return MonthKey{Year: t.Year(), Month: t.Month()}, nil
}

func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// Days returns the number of calendar days in the month.
func (k MonthKey) Days() int {
	return time.Date(k.Year, k.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Contains reports whether t falls inside the month.
func (k MonthKey) Contains(t time.Time) bool {
	return t.Year() == k.Year && t.Month() == k.Month
}

// MonthSummary is the cached per-month aggregate block. It is never
// the source of truth; Recompute rebuilds it from the day records.
type MonthSummary struct {
	WorkingDays   int
	TotalWorked   time.Duration
	DaysLate      int
	TotalLate     time.Duration
	OvertimeDays  int
	TotalOvertime time.Duration
}

// MonthSheet is the persisted collection of DayRecords for one identity
// for one calendar month. Days holds every day of the month, index 0 is
// the 1st, so date lookups never search.
type MonthSheet struct {
	Identity Identity
	Key      MonthKey
	Days     []DayRecord
	Summary  MonthSummary
}

// NewMonthSheet synthesizes a sheet with every day of the month
// pre-populated as an empty DayRecord, weekends tagged for rendering.
func NewMonthSheet(identity Identity, key MonthKey) *MonthSheet {
	days := make([]DayRecord, key.Days())
	for i := range days {
		date := time.Date(key.Year, key.Month, i+1, 0, 0, 0, 0, time.Local)
		wd := date.Weekday()
		days[i] = DayRecord{
			Date:    date,
			Weekday: wd,
			Weekend: wd == time.Saturday || wd == time.Sunday,
		}
	}
	return &MonthSheet{Identity: identity, Key: key, Days: days}
}

// Day returns the record for the calendar day containing t, or nil if
// t falls outside the sheet's month.
func (s *MonthSheet) Day(t time.Time) *DayRecord {
	if !s.Key.Contains(t) {
		return nil
	}
	return &s.Days[t.Day()-1]
}

// Clone returns a deep copy. Store implementations mutate clones so a
// failed commit never corrupts the committed state.
func (s *MonthSheet) Clone() *MonthSheet {
	cp := *s
	cp.Days = make([]DayRecord, len(s.Days))
	copy(cp.Days, s.Days)
	for i := range cp.Days {
		if in := s.Days[i].FirstIn; in != nil {
			t := *in
			cp.Days[i].FirstIn = &t
		}
		if out := s.Days[i].LastOut; out != nil {
			t := *out
			cp.Days[i].LastOut = &t
		}
	}
	return &cp
}

// =============================================================================
// STATE - the in-memory ledger
// =============================================================================

// SheetKey names a sheet inside the container: "<identity id>|<YYYY-MM>".
type SheetKey string

// NewSheetKey builds the container key for an identity and month.
func NewSheetKey(id IdentityID, key MonthKey) SheetKey {
	return SheetKey(string(id) + "|" + key.String())
}

// State is the full in-memory ledger: a directory of month sheets.
// It is owned by a Store; all access goes through the store's lock.
type State struct {
	Sheets map[SheetKey]*MonthSheet
}

// NewState returns an empty ledger state.
func NewState() *State {
	return &State{Sheets: make(map[SheetKey]*MonthSheet)}
}

// Sheet returns the sheet for (identity, month) if it exists.
func (st *State) Sheet(id IdentityID, key MonthKey) (*MonthSheet, bool) {
	s, ok := st.Sheets[NewSheetKey(id, key)]
	return s, ok
}

// SheetFor returns the existing sheet or synthesizes a pre-populated
// one. Idempotent: two calls for the same (identity, month) return the
// same sheet without duplicating data.
func (st *State) SheetFor(identity Identity, key MonthKey) *MonthSheet {
	sk := NewSheetKey(identity.ID, key)
	if s, ok := st.Sheets[sk]; ok {
		return s
	}
	s := NewMonthSheet(identity, key)
	st.Sheets[sk] = s
	return s
}

// RemoveIdentity purges every sheet belonging to an identity and
// returns how many were removed. Used by administrative removal.
func (st *State) RemoveIdentity(id IdentityID) int {
	removed := 0
	for sk, s := range st.Sheets {
		if s.Identity.ID == id {
			delete(st.Sheets, sk)
			removed++
		}
	}
	return removed
}

// Clone deep-copies the whole ledger state.
func (st *State) Clone() *State {
	cp := NewState()
	for sk, s := range st.Sheets {
		cp.Sheets[sk] = s.Clone()
	}
	return cp
}

// Store is the durable, lock-guarded container of the ledger state.
// Implemented by store/ledgerfile.
type Store interface {
	// View runs fn with read access to the committed state. fn must not
	// retain or mutate the state.
	View(fn func(st *State))

	// Update runs fn against a mutable copy of the state and commits it
	// atomically. If fn or the commit fails, the committed state is
	// untouched and the error is returned (wrapped as ErrCommitFailed
	// for storage failures).
	Update(fn func(st *State) error) error
}
