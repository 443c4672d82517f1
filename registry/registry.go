/*
registry.go - Identity registry backed by a CSV side index

PURPOSE:
  Maps person names to stable IDs. IDs are derived from the name, so
  the registry file is a convenience index rather than the source of
  truth: a missing or partial file never blocks enrollment, and every
  successful Resolve re-appends any row the file lost.

SEE ALSO:
  - ledger/types.go for DeriveID and the IdentityResolver contract
*/
package registry

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/facegate/attendance-engine/ledger"
)

var csvHeader = []string{"name", "user_id"}

// Registry is an in-memory name index with a CSV file trailing it.
// Safe for concurrent use.
type Registry struct {
	path string

	mu     sync.Mutex
	byName map[string]ledger.Identity
}

// Open loads the index at path. A missing file is an empty registry;
// a malformed row is skipped with a warning rather than failing open.
func Open(path string) (*Registry, error) {
	r := &Registry{
		path:   path,
		byName: make(map[string]ledger.Identity),
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open registry: %v", ledger.ErrStorageUnavailable, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	first := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("[WARNING] registry %s: skipping malformed row: %v", path, err)
			continue
		}
		if first {
			first = false
			if len(row) > 0 && row[0] == csvHeader[0] {
				continue
			}
		}
		if len(row) < 1 || row[0] == "" {
			continue
		}
		name := row[0]
		r.byName[name] = ledger.Identity{ID: ledger.DeriveID(name), Name: name}
	}
	return r, nil
}

// Resolve returns the identity for name, enrolling it on first sight.
// A failed file append is logged and tolerated: the derived ID is
// deterministic, so the row reappears on the next save.
func (r *Registry) Resolve(name string) (ledger.Identity, error) {
	if name == "" {
		return ledger.Identity{}, fmt.Errorf("%w: empty name", ledger.ErrIdentityNotFound)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byName[name]; ok {
		return id, nil
	}
	id := ledger.Identity{ID: ledger.DeriveID(name), Name: name}
	r.byName[name] = id
	if err := r.append(id); err != nil {
		log.Printf("[WARNING] registry %s: append failed for %s: %v", r.path, name, err)
	}
	return id, nil
}

// Lookup reports whether name is already enrolled, without enrolling it.
func (r *Registry) Lookup(name string) (ledger.Identity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byName[name]
	return id, ok
}

// List returns all enrolled identities sorted by name.
func (r *Registry) List() []ledger.Identity {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ledger.Identity, 0, len(r.byName))
	for _, id := range r.byName {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Remove drops name from the index and rewrites the file.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[name]; !ok {
		return fmt.Errorf("%w: %s", ledger.ErrIdentityNotFound, name)
	}
	delete(r.byName, name)
	return r.rewrite()
}

// =============================================================================
// FILE I/O
// =============================================================================

func (r *Registry) append(id ledger.Identity) error {
	fresh := false
	if _, err := os.Stat(r.path); os.IsNotExist(err) {
		fresh = true
		if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(csvHeader); err != nil {
			return err
		}
	}
	if err := w.Write([]string{id.Name, string(id.ID)}); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (r *Registry) rewrite() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrStorageUnavailable, err)
	}
	tmp := r.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrStorageUnavailable, err)
	}

	w := csv.NewWriter(f)
	rows := [][]string{csvHeader}
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rows = append(rows, []string{name, string(r.byName[name].ID)})
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", ledger.ErrStorageUnavailable, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", ledger.ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", ledger.ErrStorageUnavailable, err)
	}
	return nil
}
