/*
Package journal provides a SQLite-backed append-only event journal.

PURPOSE:
  Records every observation outcome (check-ins, check-outs, access
  grants and denials) as an immutable audit trail next to the ledger
  container. The journal is advisory: the ledger file remains the
  source of truth for day records, the journal answers "what happened
  when" and feeds the daily activity counters.

APPEND-ONLY ENFORCEMENT:
  - No UPDATE or DELETE statements on the events table
  - Every row gets a fresh UUID and a recorded_at timestamp

KEY TABLES:
  events: one row per observation outcome

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so status reads do
  not block event appends.

USAGE:
  j, err := journal.Open("./data/journal.db")
  if err != nil {
      log.Fatal(err)
  }
  defer j.Close()

  tracker := ledger.New(store, ids, rules, ledger.WithEventSink(j))

SEE ALSO:
  - ledger/tracker.go: EventSink contract and Event shape
*/
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/facegate/attendance-engine/ledger"
)

// Journal implements ledger.EventSink using SQLite.
type Journal struct {
	db *sql.DB
	mu sync.RWMutex
}

// DaySummary counts activity within a single day.
type DaySummary struct {
	CheckIns  int `json:"check_ins"`
	CheckOuts int `json:"check_outs"`
	Grants    int `json:"grants"`
	Denials   int `json:"denials"`
	People    int `json:"people"`
}

// Open creates or opens the journal database at dbPath.
// Use ":memory:" for an in-memory journal.
func Open(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}
	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		recorded_at TEXT NOT NULL,
		identity_id TEXT NOT NULL,
		identity_name TEXT NOT NULL,
		kind TEXT NOT NULL,
		outcome TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_recorded_at
		ON events(recorded_at);
	CREATE INDEX IF NOT EXISTS idx_events_identity
		ON events(identity_id, recorded_at);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Record appends one event row. Implements ledger.EventSink.
func (j *Journal) Record(ctx context.Context, ev ledger.Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO events (id, recorded_at, identity_id, identity_name, kind, outcome)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(),
		ev.At.Format(time.RFC3339),
		string(ev.Identity.ID),
		ev.Identity.Name,
		string(ev.Kind),
		string(ev.Outcome),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// Today summarizes activity for the day containing now.
func (j *Journal) Today(ctx context.Context, now time.Time) (DaySummary, error) {
	return j.Summarize(ctx, ledger.Midnight(now), ledger.Midnight(now).AddDate(0, 0, 1))
}

// Summarize counts events with from <= recorded_at < to.
func (j *Journal) Summarize(ctx context.Context, from, to time.Time) (DaySummary, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var sum DaySummary
	err := j.db.QueryRowContext(ctx, `
		SELECT
			COUNT(CASE WHEN kind = ? THEN 1 END),
			COUNT(CASE WHEN kind = ? THEN 1 END),
			COUNT(CASE WHEN kind = ? THEN 1 END),
			COUNT(CASE WHEN kind = ? THEN 1 END),
			COUNT(DISTINCT identity_id)
		FROM events
		WHERE recorded_at >= ? AND recorded_at < ?`,
		string(ledger.EventCheckIn),
		string(ledger.EventCheckOut),
		string(ledger.EventAccessGranted),
		string(ledger.EventAccessDenied),
		from.Format(time.RFC3339),
		to.Format(time.RFC3339),
	).Scan(&sum.CheckIns, &sum.CheckOuts, &sum.Grants, &sum.Denials, &sum.People)
	if err != nil {
		return DaySummary{}, fmt.Errorf("failed to summarize events: %w", err)
	}
	return sum, nil
}
