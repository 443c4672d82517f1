/*
tracker.go - Caller-facing attendance facade

PURPOSE:
  Composes the store, the identity registry, the day-record state
  machine, and the cooldown index into the operations front ends use:

    RecordEvent      apply a CHECK_IN/CHECK_OUT (or journal an access
                     grant/denial) for a resolved identity
    Toggle           the one shared decision rule: IN -> CHECK_OUT,
                     otherwise CHECK_IN
    Observe          recognition-feed entry point: resolve, cooldown
                     gate, then Toggle
    StatusOf         derived in/out status for one identity
    TodaySummary     per-identity today status for every known identity
    RecomputeSummary rebuild one sheet's cached monthly summary

CONCURRENCY:
  Every mutation and every multi-step read goes through the store's
  single lock scope, so events apply in lock-acquisition order and a
  partial view of the container is never observed. The tracker itself
  holds no ledger state.

FAILURE:
  A commit failure aborts the transition; the event is reported as not
  recorded and in-memory state stays at the last committed snapshot.
  Journal writes are best-effort and never fail a ledger mutation.
*/
package ledger

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"
)

// =============================================================================
// EVENT SINK - append-only journal of raw observations (best-effort)
// =============================================================================

// Event is one journaled observation outcome.
type Event struct {
	At       time.Time
	Identity Identity
	Kind     EventKind
	Outcome  Outcome
}

// EventSink receives every applied event. Implemented by store/journal;
// a nil sink disables journaling.
type EventSink interface {
	Record(ctx context.Context, ev Event) error
}

// =============================================================================
// STATUS - derived read model
// =============================================================================

// Status is the current in/out view of one identity, derived purely
// from today's DayRecord so it can never disagree with the ledger.
type Status struct {
	Identity    Identity
	Presence    Presence
	FirstIn     *time.Time
	LastOut     *time.Time
	Worked      time.Duration
	Punctuality Punctuality
	LateBy      time.Duration
	OvertimeBy  time.Duration

	// InOvertime is true while the identity is IN past the overtime
	// cutoff (overtime not yet booked, used by dashboards).
	InOvertime bool
}

// MonthReport pairs an identity with its recomputed monthly summary.
type MonthReport struct {
	Identity Identity
	Month    MonthKey
	Summary  MonthSummary
}

// =============================================================================
// TRACKER
// =============================================================================

// Tracker is the attendance engine facade. Construct with New; the
// zero value is not usable.
type Tracker struct {
	store    Store
	ids      IdentityResolver
	rules    Rules
	cooldown *CooldownIndex
	sink     EventSink
	now      func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithEventSink journals every applied event to sink.
func WithEventSink(sink EventSink) Option {
	return func(t *Tracker) { t.sink = sink }
}

// WithCooldown sets the observation throttle window.
func WithCooldown(window time.Duration) Option {
	return func(t *Tracker) { t.cooldown = NewCooldownIndex(window) }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New creates a tracker and rebuilds the cooldown index from today's
// records in the committed state.
func New(store Store, ids IdentityResolver, rules Rules, opts ...Option) *Tracker {
	t := &Tracker{
		store:    store,
		ids:      ids,
		rules:    rules,
		cooldown: NewCooldownIndex(0),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	store.View(func(st *State) {
		t.cooldown.Seed(st, t.now())
	})
	return t
}

// Rules returns the configured cutoffs and toggle policy.
func (t *Tracker) Rules() Rules { return t.rules }

// =============================================================================
// MUTATIONS
// =============================================================================

// RecordEvent applies an event for an already-resolved identity at the
// given instant. CHECK_IN/CHECK_OUT mutate today's DayRecord inside one
// lock-and-commit scope; access events are journal-only. The cooldown
// index advances only on accepted check-ins and grants.
func (t *Tracker) RecordEvent(ctx context.Context, identity Identity, kind EventKind, now time.Time) (Outcome, error) {
	var outcome Outcome

	switch kind {
	case EventAccessGranted:
		outcome = OutcomeGranted
		t.cooldown.Mark(identity.ID, now)

	case EventAccessDenied:
		outcome = OutcomeDenied

	case EventCheckIn, EventCheckOut:
		err := t.store.Update(func(st *State) error {
			sheet := st.SheetFor(identity, MonthKeyOf(now))
			rec := sheet.Day(now)

			var terr error
			if kind == EventCheckIn {
				outcome = applyCheckIn(rec, now, t.rules)
			} else {
				outcome, terr = applyCheckOut(rec, now, t.rules)
			}
			if terr != nil {
				return terr
			}
			sheet.Summary = Recompute(sheet)
			return nil
		})
		if err != nil {
			return OutcomeNoop, err
		}
		if kind == EventCheckIn && outcome != OutcomeNoop {
			t.cooldown.Mark(identity.ID, now)
		}

	default:
		return OutcomeNoop, fmt.Errorf("unknown event kind %q", kind)
	}

	t.journal(ctx, Event{At: now, Identity: identity, Kind: kind, Outcome: outcome})
	return outcome, nil
}

// Toggle applies the one shared decision rule for a recognition event:
// currently IN means CHECK_OUT, anything else means CHECK_IN. All front
// ends (HTTP, CLI, feed) route through here so the policy lives in
// exactly one place.
func (t *Tracker) Toggle(ctx context.Context, name string, now time.Time) (Outcome, error) {
	identity, err := t.ids.Resolve(name)
	if err != nil {
		return OutcomeNoop, err
	}

	kind := EventCheckIn
	if t.statusOf(identity, now).Presence == PresenceIn {
		kind = EventCheckOut
	}
	return t.RecordEvent(ctx, identity, kind, now)
}

// Observe is the recognition-feed entry point: it resolves the name,
// enforces the cooldown, and toggles. A cooldown rejection reports the
// remaining wait and does not advance the index.
func (t *Tracker) Observe(ctx context.Context, name string, observedAt time.Time) (Outcome, error) {
	identity, err := t.ids.Resolve(name)
	if err != nil {
		return OutcomeNoop, err
	}
	if rem := t.cooldown.Remaining(identity.ID, observedAt); rem > 0 {
		return OutcomeNoop, &CooldownError{Identity: identity, Remaining: rem}
	}
	return t.Toggle(ctx, name, observedAt)
}

// Checkout forces a CHECK_OUT for a known identity (manual/admin path).
// Unknown names are not auto-enrolled here.
func (t *Tracker) Checkout(ctx context.Context, name string, now time.Time) (Outcome, error) {
	identity, ok := t.ids.Lookup(name)
	if !ok {
		return OutcomeNoop, fmt.Errorf("%w: %s", ErrIdentityNotFound, name)
	}
	return t.RecordEvent(ctx, identity, EventCheckOut, now)
}

// RemoveIdentity purges an identity: every month sheet it owns plus its
// registry entry. This is the only path that deletes historical data.
func (t *Tracker) RemoveIdentity(name string) error {
	identity, ok := t.ids.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrIdentityNotFound, name)
	}
	err := t.store.Update(func(st *State) error {
		st.RemoveIdentity(identity.ID)
		return nil
	})
	if err != nil {
		return err
	}
	return t.ids.Remove(name)
}

// =============================================================================
// QUERIES
// =============================================================================

// StatusOf returns the current status of one identity, derived from
// today's DayRecord. Unknown names report PresenceNone.
func (t *Tracker) StatusOf(name string, now time.Time) Status {
	identity, ok := t.ids.Lookup(name)
	if !ok {
		return Status{Identity: Identity{Name: name}, Presence: PresenceNone}
	}
	return t.statusOf(identity, now)
}

// TodaySummary returns today's status for every known identity, sorted
// by name. A store that failed to open yields empty data, not an error.
func (t *Tracker) TodaySummary(now time.Time) []Status {
	identities := t.ids.List()
	out := make([]Status, 0, len(identities))
	t.store.View(func(st *State) {
		for _, identity := range identities {
			out = append(out, statusFrom(st, identity, now, t.rules))
		}
	})
	return out
}

// RecomputeSummary rebuilds and persists the cached summary block for
// one identity's month sheet.
func (t *Tracker) RecomputeSummary(name string, month MonthKey) (MonthSummary, error) {
	identity, ok := t.ids.Lookup(name)
	if !ok {
		return MonthSummary{}, fmt.Errorf("%w: %s", ErrIdentityNotFound, name)
	}

	var sum MonthSummary
	err := t.store.Update(func(st *State) error {
		sheet, ok := st.Sheet(identity.ID, month)
		if !ok {
			return fmt.Errorf("%w: %s %s", ErrSheetNotFound, identity.Name, month)
		}
		sheet.Summary = Recompute(sheet)
		sum = sheet.Summary
		return nil
	})
	return sum, err
}

// MonthlyReport recomputes and returns every identity's summary for a
// month, sorted by identity name.
func (t *Tracker) MonthlyReport(month MonthKey) ([]MonthReport, error) {
	var reports []MonthReport
	err := t.store.Update(func(st *State) error {
		reports = reports[:0]
		for _, sheet := range st.Sheets {
			if sheet.Key != month {
				continue
			}
			sheet.Summary = Recompute(sheet)
			reports = append(reports, MonthReport{
				Identity: sheet.Identity,
				Month:    month,
				Summary:  sheet.Summary,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Identity.Name < reports[j].Identity.Name
	})
	return reports, nil
}

// CooldownRemaining exposes the throttle state for display ("wait 3m").
func (t *Tracker) CooldownRemaining(name string, now time.Time) time.Duration {
	identity, ok := t.ids.Lookup(name)
	if !ok {
		return 0
	}
	return t.cooldown.Remaining(identity.ID, now)
}

// =============================================================================
// INTERNALS
// =============================================================================

func (t *Tracker) statusOf(identity Identity, now time.Time) Status {
	var status Status
	t.store.View(func(st *State) {
		status = statusFrom(st, identity, now, t.rules)
	})
	return status
}

// statusFrom derives a Status from the committed state. Runs inside a
// View scope.
func statusFrom(st *State, identity Identity, now time.Time, rules Rules) Status {
	status := Status{Identity: identity, Presence: PresenceNone}
	sheet, ok := st.Sheet(identity.ID, MonthKeyOf(now))
	if !ok {
		return status
	}
	rec := sheet.Day(now)
	if rec == nil || rec.FirstIn == nil {
		return status
	}

	status.Presence = rec.Presence()
	status.FirstIn = rec.FirstIn
	status.LastOut = rec.LastOut
	status.Worked = rec.Worked
	status.Punctuality = rec.Punctuality
	status.LateBy = rec.LateBy
	status.OvertimeBy = rec.OvertimeBy
	status.InOvertime = status.Presence == PresenceIn && now.After(rules.OvertimeCutoff.On(now))
	return status
}

func (t *Tracker) journal(ctx context.Context, ev Event) {
	if t.sink == nil {
		return
	}
	if err := t.sink.Record(ctx, ev); err != nil {
		log.Printf("[WARNING] event journal write failed: %v", err)
	}
}

