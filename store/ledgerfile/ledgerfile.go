/*
Package ledgerfile provides the single-file container backing the
attendance ledger.

PURPOSE:
  Owns the durable file that holds every month sheet. Nothing else in
  the system reads or writes this file.

CONTRACT:
  At any instant the file on disk is either a complete, previously
  committed snapshot or does not exist. This is enforced by:
  - a single process-wide mutex serializing every read scan and every
    read-modify-write cycle (View / Update)
  - commit as write-new-then-swap: the snapshot is serialized to a
    temp file and renamed over the container, never patched in place
  - Update mutating a CLONE of the committed state, which only becomes
    the committed state after the swap succeeds - a failed commit
    leaves memory and disk at the previous snapshot

RECOVERY (the dominant failure contract):
  Open never blocks startup on a corrupt file. An unreadable or
  structurally invalid container is renamed to a timestamped
  quarantine path and replaced with a fresh empty ledger; the
  quarantined bytes stay on disk for forensics. Only the inability to
  create or replace the file at all is fatal (ErrStorageUnavailable).

SEE ALSO:
  - codec.go: the on-disk JSON sheet-directory format
  - ledger/types.go: State, MonthSheet, Store interface
*/
package ledgerfile

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/facegate/attendance-engine/ledger"
)

// Store implements ledger.Store on a single JSON container file.
type Store struct {
	path string

	mu    sync.Mutex
	state *ledger.State // last committed snapshot
}

// Open opens or recovers the container at path (openOrRecover).
//
//   - missing file:  a fresh empty ledger is created and committed
//   - corrupt file:  quarantined under a timestamped name, then a
//     fresh empty ledger is created in its place
//   - anything else: ErrStorageUnavailable
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.state = ledger.NewState()

	case err != nil:
		return nil, fmt.Errorf("%w: reading %s: %v", ledger.ErrStorageUnavailable, path, err)

	default:
		st, derr := decodeContainer(data)
		if derr == nil {
			s.state = st
			return s, nil
		}
		// Corrupt container: quarantine, never delete, never crash.
		qpath := quarantinePath(path, time.Now())
		if rerr := os.Rename(path, qpath); rerr != nil {
			return nil, fmt.Errorf("%w: quarantining corrupt container: %v", ledger.ErrStorageUnavailable, rerr)
		}
		log.Printf("[WARNING] %v: %v; quarantined to %s", ledger.ErrCorruptContainer, derr, qpath)
		s.state = ledger.NewState()
	}

	if err := s.commit(s.state); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", ledger.ErrStorageUnavailable, path, err)
	}
	return s, nil
}

// Path returns the container file path.
func (s *Store) Path() string { return s.path }

// View runs fn with read access to the committed state under the
// store lock. Multi-step scans see one consistent snapshot.
func (s *Store) View(fn func(st *ledger.State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}

// Update runs fn against a clone of the committed state, then commits
// the clone atomically and makes it the new committed state. If fn or
// the commit fails the committed state is untouched. The lock is held
// for the whole read-modify-write-commit cycle and released on every
// exit path, panics included.
func (s *Store) Update(fn func(st *ledger.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := s.commit(next); err != nil {
		return err
	}
	s.state = next
	return nil
}

// commit serializes a snapshot and swaps it into place. Caller holds
// the lock (or owns the store exclusively, as in Open).
func (s *Store) commit(st *ledger.State) error {
	data, err := encodeContainer(st)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ledger.ErrCommitFailed, err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrCommitFailed, err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrCommitFailed, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %v", ledger.ErrCommitFailed, err)
	}
	return nil
}

// quarantinePath derives the timestamped name a corrupt container is
// renamed to, e.g. attendance_corrupt_20250114_093042.json.
func quarantinePath(path string, now time.Time) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s_corrupt_%s%s", base, now.Format("20060102_150405"), ext)
}
