/*
cooldown.go - Ephemeral per-identity observation throttle

PURPOSE:
  A noisy recognition feed can deliver the same face several times per
  second. The CooldownIndex remembers the last ACCEPTED check-in (or
  access grant) instant per identity and rejects observations arriving
  inside the configured window.

LIFECYCLE:
  Process-local and never persisted. Rebuilt at startup by scanning
  today's day records, discarded on exit. Losing it is safe: it only
  throttles input above the ledger, it does not gate correctness.
*/
package ledger

import (
	"sync"
	"time"
)

// CooldownIndex throttles repeat observations per identity.
type CooldownIndex struct {
	mu     sync.Mutex
	window time.Duration
	last   map[IdentityID]time.Time
}

// NewCooldownIndex creates an index with the given window. A zero or
// negative window disables throttling.
func NewCooldownIndex(window time.Duration) *CooldownIndex {
	return &CooldownIndex{
		window: window,
		last:   make(map[IdentityID]time.Time),
	}
}

// Allow reports whether an observation for id at now is outside the
// cooldown window.
func (c *CooldownIndex) Allow(id IdentityID, now time.Time) bool {
	return c.Remaining(id, now) <= 0
}

// Remaining returns how long id must still wait at now, or zero.
func (c *CooldownIndex) Remaining(id IdentityID, now time.Time) time.Duration {
	if c.window <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	last, ok := c.last[id]
	if !ok {
		return 0
	}
	if rem := c.window - now.Sub(last); rem > 0 {
		return rem
	}
	return 0
}

// Mark records an accepted check-in or access grant at now. Callers
// must not mark rejected events.
func (c *CooldownIndex) Mark(id IdentityID, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if last, ok := c.last[id]; !ok || now.After(last) {
		c.last[id] = now
	}
}

// Seed rebuilds the index from today's records in the ledger state.
// Each identity's first check-in of the day stands in for its last
// accepted event, matching what survives a restart.
func (c *CooldownIndex) Seed(st *State, now time.Time) {
	month := MonthKeyOf(now)
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sheet := range st.Sheets {
		if sheet.Key != month {
			continue
		}
		rec := sheet.Day(now)
		if rec == nil || rec.FirstIn == nil {
			continue
		}
		id := sheet.Identity.ID
		if last, ok := c.last[id]; !ok || rec.FirstIn.After(last) {
			c.last[id] = *rec.FirstIn
		}
	}
}
