// Package library implements the per-path musync operations on top of the
// reconciliation engine and the lock database.
package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/olimci/musync/pkg/fspath"
	"github.com/olimci/musync/pkg/lockdb"
	"github.com/olimci/musync/pkg/meta"
	"github.com/olimci/musync/pkg/reconcile"
)

type Options struct {
	Pretend   bool
	LockAfter bool
	NoFixme   bool
	Overrides meta.Overrides
}

type Library struct {
	engine *reconcile.Engine
	locks  *lockdb.DB
	reader meta.Reader
	opts   Options
	log    *slog.Logger
	out    io.Writer
}

// New wires a Library. out receives inspect and locks tables.
func New(engine *reconcile.Engine, locks *lockdb.DB, reader meta.Reader, opts Options, logger *slog.Logger, out io.Writer) *Library {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if out == nil {
		out = os.Stdout
	}
	return &Library{
		engine: engine,
		locks:  locks,
		reader: reader,
		opts:   opts,
		log:    logger,
		out:    out,
	}
}

// Close flushes the lock database. A failed flush is fatal.
func (l *Library) Close() error {
	if err := l.locks.Flush(); err != nil {
		return reconcile.Fatalf(l.locks.Path(), err, "flush lock database")
	}
	return nil
}

// Add places p in the library.
func (l *Library) Add(_ context.Context, p fspath.Path) error {
	if p.IsDir() {
		l.log.Debug("ignoring directory", "path", p.Display())
		return nil
	}

	rec, err := l.record(p)
	if err != nil {
		return err
	}
	target, err := l.engine.Resolve(rec)
	if err != nil {
		return withPath(err, p)
	}
	if l.lockedTarget(target) {
		return reconcile.Warnf(target.Display(), "target is locked")
	}
	if final := l.engine.TranscodeTarget(p, target); final.Path != target.Path && l.lockedTarget(final) {
		return reconcile.Warnf(final.Display(), "target is locked")
	}

	src, dst, err := l.engine.Transcode(p, target)
	if err != nil {
		return err
	}
	if src.Path != p.Path {
		defer func() { _ = os.Remove(src.Path) }()
		rec.Ext = dst.Ext
	}

	if err := l.engine.Add(src, dst, rec); err != nil {
		return err
	}
	if !l.opts.Pretend {
		l.log.Info("added", "source", p.Display(), "target", dst.Display())
	}

	return l.lockAfter(dst)
}

// Remove deletes the library copy of p. An empty directory inside the root
// is removed itself.
func (l *Library) Remove(_ context.Context, p fspath.Path) error {
	if l.isJournal(p) {
		return nil
	}

	if p.IsDir() {
		if !p.InRoot() {
			return reconcile.Warnf(p.Path, "directory is not in root")
		}
		if !p.IsEmpty() {
			l.log.Debug("directory not empty", "path", p.Display())
			return nil
		}
		return l.engine.FixDir(p)
	}

	rec, err := l.record(p)
	if err != nil {
		return err
	}
	target, err := l.engine.Resolve(rec)
	if err != nil {
		return withPath(err, p)
	}
	if l.lockedTarget(target) {
		return reconcile.Warnf(target.Display(), "target is locked")
	}
	if !target.IsFile() && !target.IsLink() {
		return reconcile.Warnf(target.Display(), "target does not exist")
	}

	return l.engine.Remove(p, target)
}

// Fix moves a misplaced library file to where its metadata says it belongs
// and removes empty directories.
func (l *Library) Fix(_ context.Context, p fspath.Path) error {
	if !p.InRoot() {
		return reconcile.Warnf(p.Path, "path is not in root")
	}
	if l.isJournal(p) {
		return nil
	}
	if l.locks.IsLocked(p) || l.locks.ParentIsLocked(p) {
		return reconcile.Warnf(p.Display(), "path is locked")
	}

	if p.IsDir() {
		return l.engine.FixDir(p)
	}

	rec, err := l.record(p)
	if err != nil {
		return err
	}
	target, err := l.engine.Resolve(rec)
	if err != nil {
		return withPath(err, p)
	}

	if err := l.engine.FixFile(p, target, rec); err != nil {
		return err
	}
	return l.lockAfter(target)
}

func (l *Library) Lock(_ context.Context, p fspath.Path) error {
	if !p.InRoot() {
		return reconcile.Warnf(p.Path, "path is not in root")
	}
	if l.opts.Pretend {
		l.log.Info("would lock", "path", p.Display())
		return nil
	}
	if err := l.locks.Lock(p); err != nil {
		return reconcile.Warnf(p.Path, "%v", err)
	}
	l.log.Debug("locked", "path", p.Display())
	return nil
}

func (l *Library) Unlock(_ context.Context, p fspath.Path) error {
	if !p.InRoot() {
		return reconcile.Warnf(p.Path, "path is not in root")
	}
	if !l.locks.IsLocked(p) {
		if l.locks.ParentIsLocked(p) {
			return reconcile.Warnf(p.Display(), "parent directory is locked")
		}
		return reconcile.Warnf(p.Display(), "path is not locked")
	}
	if l.opts.Pretend {
		l.log.Info("would unlock", "path", p.Display())
		return nil
	}
	if err := l.locks.Unlock(p); err != nil {
		return reconcile.Warnf(p.Path, "%v", err)
	}
	l.log.Debug("unlocked", "path", p.Display())
	return nil
}

// record reads p's metadata and applies overrides. Incomplete metadata is a
// warning unless NoFixme is set.
func (l *Library) record(p fspath.Path) (meta.Record, error) {
	rec, err := l.reader.Read(p.Path)
	if err != nil {
		return meta.Record{}, reconcile.Warnf(p.Display(), "cannot read metadata: %v", unwrapPath(err))
	}
	if rec.Ext == "" {
		rec.Ext = p.Ext
	}

	rec, err = l.opts.Overrides.Apply(rec)
	if err != nil {
		return meta.Record{}, reconcile.Warnf(p.Display(), "%v", err)
	}

	if missing := rec.Missing(); len(missing) > 0 && !l.opts.NoFixme {
		l.log.Debug("fixme", "path", p.Path, "missing", strings.Join(missing, ","))
		return meta.Record{}, reconcile.Warnf(p.Display(), "fixme, missing %s", strings.Join(missing, ", "))
	}
	return rec, nil
}

func (l *Library) lockedTarget(target fspath.Path) bool {
	return l.locks.IsLocked(target) || l.locks.ParentIsLocked(target)
}

func (l *Library) lockAfter(target fspath.Path) error {
	if !l.opts.LockAfter || l.opts.Pretend {
		return nil
	}
	if err := l.locks.Lock(target); err != nil {
		return reconcile.Warnf(target.Path, "%v", err)
	}
	l.log.Debug("locked", "path", target.Display())
	return nil
}

func (l *Library) isJournal(p fspath.Path) bool {
	if p.Path == l.locks.Path() || p.Path == l.locks.Path()+".tmp" {
		l.log.Debug("ignoring lock database", "path", p.Display())
		return true
	}
	return false
}

// withPath attaches p to a Warning raised without one.
func withPath(err error, p fspath.Path) error {
	var w *reconcile.Warning
	if errors.As(err, &w) && w.Path == "" {
		return reconcile.Warnf(p.Display(), "%s", w.Msg)
	}
	return err
}

func unwrapPath(err error) string {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	return fmt.Sprint(err)
}
