// Package lockdb keeps the set of library paths excluded from
// reconciliation. The journal is a newline-delimited file of root-relative
// paths. New locks are appended; a removal rewrites the whole file.
//
// The database is single-writer by convention. Nothing stops two processes
// from flushing the same journal.
package lockdb

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/olimci/musync/pkg/fspath"
)

var ErrNotInRoot = errors.New("path is not inside the library root")

// DB is the in-memory view of a lock journal.
type DB struct {
	journal   string
	committed map[string]struct{}
	pending   []string
	removed   bool
}

// Open loads the journal at journalPath, creating an empty one if missing.
func Open(journalPath string) (*DB, error) {
	db := &DB{
		journal:   journalPath,
		committed: make(map[string]struct{}, 64),
	}

	f, err := os.Open(journalPath)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(journalPath), 0o755); err != nil {
			return nil, fmt.Errorf("create directory for %s: %w", journalPath, err)
		}
		if err := os.WriteFile(journalPath, nil, 0o644); err != nil {
			return nil, fmt.Errorf("create %s: %w", journalPath, err)
		}
		return db, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", journalPath, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		db.committed[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", journalPath, err)
	}

	return db, nil
}

func (db *DB) Path() string {
	return db.journal
}

// Lock queues p for addition. It becomes visible to IsLocked after Flush.
func (db *DB) Lock(p fspath.Path) error {
	rel, ok := p.Rel()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotInRoot, p.Path)
	}
	if _, exists := db.committed[rel]; exists {
		return nil
	}
	for _, queued := range db.pending {
		if queued == rel {
			return nil
		}
	}

	db.pending = append(db.pending, rel)
	return nil
}

// IsLocked reports whether p itself is in the committed set.
func (db *DB) IsLocked(p fspath.Path) bool {
	rel, ok := p.Rel()
	if !ok {
		return false
	}
	_, locked := db.committed[rel]
	return locked
}

// ParentIsLocked reports whether any directory above p, up to and including
// the root, is in the committed set.
func (db *DB) ParentIsLocked(p fspath.Path) bool {
	rel, ok := p.Rel()
	if !ok || rel == "." {
		return false
	}

	for dir := path.Dir(rel); ; dir = path.Dir(dir) {
		if _, locked := db.committed[dir]; locked {
			return true
		}
		if dir == "." || dir == "/" {
			return false
		}
	}
}

// Unlock drops p from the committed set and the pending list.
func (db *DB) Unlock(p fspath.Path) error {
	rel, ok := p.Rel()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotInRoot, p.Path)
	}

	if _, exists := db.committed[rel]; exists {
		delete(db.committed, rel)
		db.removed = true
	}

	kept := db.pending[:0]
	for _, queued := range db.pending {
		if queued != rel {
			kept = append(kept, queued)
		}
	}
	db.pending = kept

	return nil
}

// Locked returns the committed entries in lexical order.
func (db *DB) Locked() []string {
	out := make([]string, 0, len(db.committed))
	for rel := range db.committed {
		out = append(out, rel)
	}
	sort.Strings(out)
	return out
}

// Dirty reports whether Flush has anything to write.
func (db *DB) Dirty() bool {
	return db.removed || len(db.pending) > 0
}

// Flush persists pending changes. Without removals the pending entries are
// appended; otherwise the journal is rewritten. Pending entries join the
// committed set only once they are on disk.
func (db *DB) Flush() error {
	if !db.Dirty() {
		return nil
	}

	var err error
	if db.removed {
		err = db.rewrite()
	} else {
		err = db.appendPending()
	}
	if err != nil {
		return err
	}

	for _, rel := range db.pending {
		db.committed[rel] = struct{}{}
	}
	db.pending = nil
	db.removed = false
	return nil
}

func (db *DB) appendPending() error {
	f, err := os.OpenFile(db.journal, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", db.journal, err)
	}

	w := bufio.NewWriter(f)
	for _, rel := range db.pending {
		if _, err := w.WriteString(rel + "\n"); err != nil {
			_ = f.Close()
			return fmt.Errorf("append %s: %w", db.journal, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("append %s: %w", db.journal, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", db.journal, err)
	}
	return nil
}

func (db *DB) rewrite() error {
	tp := db.journal + ".tmp"

	f, err := os.OpenFile(tp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", tp, err)
	}
	defer f.Close()

	entries := db.Locked()
	for _, rel := range db.pending {
		if _, ok := db.committed[rel]; !ok {
			entries = append(entries, rel)
		}
	}
	sort.Strings(entries)

	w := bufio.NewWriter(f)
	for _, rel := range entries {
		if _, err := w.WriteString(rel + "\n"); err != nil {
			_ = os.Remove(tp)
			return fmt.Errorf("write %s: %w", tp, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = os.Remove(tp)
		return fmt.Errorf("write %s: %w", tp, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tp)
		return fmt.Errorf("close %s: %w", tp, err)
	}

	if err := os.Rename(tp, db.journal); err != nil {
		_ = os.Remove(tp)
		return fmt.Errorf("replace %s: %w", db.journal, err)
	}

	return nil
}
