/*
daily.go - The day-record state machine

PURPOSE:
  Pure transition functions for a single identity's attendance record
  on a single calendar day:

    EMPTY -> IN -> OUT -> IN -> OUT -> ...

  The functions mutate a DayRecord in place and report what happened.
  They know nothing about storage or locking; the tracker applies them
  inside the store's Update scope so a transition either commits fully
  or not at all.

TRANSITION TABLE (CHECK_IN):
  EMPTY          -> set FirstIn, derive punctuality, state IN
  IN             -> no-op (idempotent re-entry from duplicate observations)
  OUT            -> toggle-back: clear LastOut/Worked/OvertimeBy, keep
                    FirstIn and punctuality untouched, state IN.
                    Gated by Rules.AllowReopen; when disabled the event
                    is a no-op.

TRANSITION TABLE (CHECK_OUT):
  EMPTY          -> rejected with ErrNoOpenCheckIn
  IN or OUT      -> set LastOut=now, Worked=now-FirstIn, derive overtime
                    ("last out wins": a second checkout overwrites the
                    first using the existing FirstIn)

CUTOFFS:
  The punctuality and overtime cutoffs are configuration (Rules), not
  constants. One consistent pair applies to every entry point.
*/
package ledger

import (
	"time"
)

// =============================================================================
// RULES - configured policy applied by the state machine
// =============================================================================

// Rules carries the configured daily cutoffs and toggle policy.
type Rules struct {
	// PunctualityCutoff is the daily deadline: a first check-in at or
	// before it is ON_TIME, after it is LATE.
	PunctualityCutoff TimeOfDay

	// OvertimeCutoff is the end of the standard working day: a checkout
	// past it accrues overtime.
	OvertimeCutoff TimeOfDay

	// AllowReopen lets a CHECK_IN on a completed day clear the checkout
	// and return the identity to IN. This preserves the observed toggle
	// behavior; disable it to make completed days final.
	AllowReopen bool
}

// DefaultRules returns the documented product defaults: on time until
// 08:00:00, overtime after 17:00:00, reopen enabled.
func DefaultRules() Rules {
	return Rules{
		PunctualityCutoff: TimeOfDay{Hour: 8},
		OvertimeCutoff:    TimeOfDay{Hour: 17},
		AllowReopen:       true,
	}
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// applyCheckIn applies a CHECK_IN at now to the record.
func applyCheckIn(rec *DayRecord, now time.Time, rules Rules) Outcome {
	switch rec.Presence() {
	case PresenceIn:
		return OutcomeNoop

	case PresenceOut:
		if !rules.AllowReopen {
			return OutcomeNoop
		}
		// Toggle back to IN. FirstIn and punctuality are immutable for
		// the day; only the checkout side is cleared.
		rec.LastOut = nil
		rec.Worked = 0
		rec.OvertimeBy = 0
		return OutcomeReopened

	default: // EMPTY
		t := now
		rec.FirstIn = &t
		rec.Punctuality, rec.LateBy = punctualityAt(now, rules)
		return OutcomeCheckedIn
	}
}

// applyCheckOut applies a CHECK_OUT at now to the record. A checkout on
// an already-OUT day is treated as a fresh checkout against the
// existing FirstIn.
func applyCheckOut(rec *DayRecord, now time.Time, rules Rules) (Outcome, error) {
	if rec.FirstIn == nil {
		return OutcomeNoop, ErrNoOpenCheckIn
	}

	t := now
	rec.LastOut = &t
	rec.Worked = now.Sub(*rec.FirstIn)

	if cutoff := rules.OvertimeCutoff.On(now); now.After(cutoff) {
		rec.OvertimeBy = now.Sub(cutoff)
	} else {
		rec.OvertimeBy = 0
	}
	return OutcomeCheckedOut, nil
}

// punctualityAt classifies a first check-in. At or before the cutoff is
// ON_TIME; after it is LATE with the overshoot recorded.
func punctualityAt(now time.Time, rules Rules) (Punctuality, time.Duration) {
	cutoff := rules.PunctualityCutoff.On(now)
	if now.After(cutoff) {
		return Late, now.Sub(cutoff)
	}
	return OnTime, 0
}
