/*
errors.go - Centralized error types for the attendance engine

PURPOSE:
  All error kinds in one place. Storage failures are translated at the
  store boundary into one of these; callers never see raw I/O errors.

ERROR CATEGORIES:
  1. Storage errors  - container cannot be opened or committed
  2. Ledger errors   - invalid transitions (checkout with no check-in)
  3. Throttle errors - cooldown rejections from the observation feed

USAGE:
    if errors.Is(err, ledger.ErrNoOpenCheckIn) {
        // expected outcome of duplicate observations, not a failure
    }

SEE ALSO:
  - store/ledgerfile: wraps open/commit failures with these sentinels
  - tracker.go: returns CooldownError from Observe
*/
package ledger

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrStorageUnavailable is returned when the backing file cannot be
	// created or opened even after recovery. Fatal to the operator.
	ErrStorageUnavailable = errors.New("attendance storage unavailable")

	// ErrCorruptContainer marks a container that failed structural
	// validation at open. The store recovers automatically by renaming
	// the file to a quarantine path and starting fresh; this sentinel
	// surfaces only in logs and in the quarantine report.
	ErrCorruptContainer = errors.New("corrupt ledger container")

	// ErrNoOpenCheckIn is returned for a CHECK_OUT with no matching open
	// check-in. It is an expected outcome of duplicate observations and
	// is reported to the caller, never logged as an error.
	ErrNoOpenCheckIn = errors.New("no open check-in for today")

	// ErrCommitFailed is returned when writing the container back to
	// disk failed. The attempted mutation is not applied; in-memory
	// state stays at the last committed snapshot.
	ErrCommitFailed = errors.New("ledger commit failed")

	// ErrSheetNotFound is returned by queries against a month that has
	// no sheet for the identity.
	ErrSheetNotFound = errors.New("no month sheet for identity")

	// ErrIdentityNotFound is returned when an operation names an
	// identity the registry has never seen.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrCooldown is returned when an observation arrives before the
	// per-identity cooldown window has elapsed.
	ErrCooldown = errors.New("identity in check-in cooldown")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// CooldownError reports how long an identity must wait before the next
// observation is accepted.
type CooldownError struct {
	Identity  Identity
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s in cooldown for another %s", e.Identity.Name, e.Remaining.Round(time.Second))
}

func (e *CooldownError) Unwrap() error { return ErrCooldown }

// IsRejection reports whether err is an expected rejection (cooldown,
// checkout without check-in) rather than a storage failure. Front ends
// use this to render a notice instead of an error.
func IsRejection(err error) bool {
	return errors.Is(err, ErrNoOpenCheckIn) || errors.Is(err, ErrCooldown)
}
