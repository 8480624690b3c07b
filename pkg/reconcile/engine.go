// Package reconcile moves media files into the layout their metadata
// describes. Every filesystem effect goes through a Capabilities value so the
// engine itself never touches file contents.
package reconcile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/olimci/musync/pkg/digest"
	"github.com/olimci/musync/pkg/fspath"
	"github.com/olimci/musync/pkg/meta"
)

// DefaultMaxAttempts is the number of copy attempts add makes before a
// persistent hash mismatch becomes fatal.
const DefaultMaxAttempts = 4

// Converter produces dst from src in another format.
type Converter func(src, dst string) error

// Capabilities is the configured environment the engine acts through.
type Capabilities interface {
	// TargetPath names the file for rec, relative to the library root.
	TargetPath(rec meta.Record) (string, error)
	// Add populates dst from src. It may copy, move or link.
	Add(src, dst string) error
	// Remove deletes a file, a symlink or an empty directory.
	Remove(path string) error
	Hash(path string) (digest.Digest, error)
	// CheckHash reports whether copies of rec are verified.
	CheckHash(rec meta.Record) bool
	Transcoder(from, to string) (Converter, bool)
	// LinksToSource reports whether Add leaves dst depending on src, as a
	// symlink does.
	LinksToSource() bool
}

// TranscodeRule converts files whose extension is in From to To.
type TranscodeRule struct {
	From []string
	To   string
}

func (r TranscodeRule) Applies(ext string) bool {
	return r.To != "" && slices.Contains(r.From, strings.ToLower(ext))
}

type Options struct {
	Pretend     bool
	Force       bool
	MaxAttempts int
	TempDir     string
	Transcode   TranscodeRule
}

type Engine struct {
	caps Capabilities
	root fspath.Path
	opts Options
	log  *slog.Logger
}

func New(caps Capabilities, root fspath.Path, opts Options, logger *slog.Logger) *Engine {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{caps: caps, root: root, opts: opts, log: logger}
}

func (e *Engine) Options() Options {
	return e.opts
}

func (e *Engine) Root() fspath.Path {
	return e.root
}

// Resolve returns where a file with metadata rec belongs.
func (e *Engine) Resolve(rec meta.Record) (fspath.Path, error) {
	rel, err := e.caps.TargetPath(rec)
	if err != nil {
		return fspath.Path{}, Warnf("", "cannot build target path: %v", err)
	}
	if strings.TrimSpace(rel) == "" || filepath.IsAbs(rel) {
		return fspath.Path{}, Warnf(rel, "target path must be relative to the root")
	}

	target := e.root.Join(rel)
	if !target.InRoot() || target.IsRoot() {
		return fspath.Path{}, Warnf(rel, "target path escapes the root")
	}
	return target, nil
}

// Add places src at dst, verifying the copy when the hash policy applies to
// rec. A mismatch is retried until MaxAttempts copies have been made.
func (e *Engine) Add(src, dst fspath.Path, rec meta.Record) error {
	if !dst.Parent().IsDir() {
		if e.opts.Pretend {
			e.log.Debug("would create directory", "path", dst.Parent().Display())
		} else if err := os.MkdirAll(dst.Dir, 0o755); err != nil {
			return Fatalf(dst.Path, err, "create directory")
		}
	}

	if dst.Path == src.Path {
		return Warnf(src.Display(), "source and target are the same file")
	}

	if dst.Exists() || dst.IsLink() {
		if !e.opts.Force {
			return Warnf(dst.Display(), "file already exists")
		}
		if e.opts.Pretend {
			e.log.Info("would replace", "target", dst.Display())
		} else if err := e.caps.Remove(dst.Path); err != nil {
			return Fatalf(dst.Path, err, "remove existing target")
		}
	}

	if e.opts.Pretend {
		e.log.Info("would add", "source", src.Display(), "target", dst.Display())
		return nil
	}

	verify := e.caps.CheckHash(rec)
	for attempt := 0; attempt < e.opts.MaxAttempts; attempt++ {
		if attempt > 0 && !src.Exists() {
			return Fatalf(src.Path, nil, "source file no longer exists")
		}

		var want digest.Digest
		if verify {
			sum, err := e.caps.Hash(src.Path)
			if err != nil {
				return Fatalf(src.Path, err, "hash source")
			}
			want = sum
		}

		if err := e.caps.Add(src.Path, dst.Path); err != nil {
			return Fatalf(dst.Path, err, "add")
		}

		if !verify {
			return nil
		}

		got, err := e.caps.Hash(dst.Path)
		if err != nil {
			return Fatalf(dst.Path, err, "hash target")
		}
		if want.Equal(got) {
			e.log.Debug("checkhash ok", "target", dst.Display(), "digest", got.Short())
			return nil
		}

		e.log.Warn("checkhash failed",
			"target", dst.Display(),
			"attempt", attempt+1,
			"want", want.Short(),
			"got", got.Short(),
		)
	}

	return Fatalf(dst.Path, nil, "failed too many times")
}

// Remove deletes dst. Removing the file a command was pointed at needs force.
func (e *Engine) Remove(src, dst fspath.Path) error {
	if dst.Path == src.Path && !e.opts.Force {
		return Warnf(dst.Display(), "target is the same as source (use --force to remove it)")
	}

	if !dst.Exists() && !dst.IsLink() {
		return Warnf(dst.Display(), "file does not exist")
	}

	if e.opts.Pretend {
		e.log.Info("would remove", "target", dst.Display())
		return nil
	}

	if err := e.caps.Remove(dst.Path); err != nil {
		return Fatalf(dst.Path, err, "remove")
	}
	e.log.Info("removed", "target", dst.Display())
	return nil
}

// FixFile brings src to dst. A file already at its target is left alone.
// The stale source is removed only once the target is in place.
func (e *Engine) FixFile(src, dst fspath.Path, rec meta.Record) error {
	if dst.Path == src.Path {
		e.log.Debug("sane", "path", src.Display())
		return nil
	}

	if !dst.IsFile() && !dst.IsLink() {
		e.log.Info("adding insane file", "source", src.Display(), "target", dst.Display())
		if err := e.Add(src, dst, rec); err != nil {
			return err
		}
	}

	if !src.IsFile() {
		return nil
	}
	if pointsAt(dst, src) {
		e.log.Debug("keeping source, target links to it", "path", src.Display(), "target", dst.Display())
		return nil
	}

	if e.opts.Pretend {
		e.log.Info("would remove insane file", "path", src.Display())
		return nil
	}

	e.log.Info("removing insane file", "path", src.Display())
	if err := e.caps.Remove(src.Path); err != nil {
		return Fatalf(src.Path, err, "remove insane file")
	}
	return nil
}

// FixDir removes dir when it is empty. Parents are not revisited.
func (e *Engine) FixDir(dir fspath.Path) error {
	if !dir.IsEmpty() {
		e.log.Debug("sane", "path", dir.Display())
		return nil
	}
	if dir.IsRoot() || dir.Path == e.root.Path {
		e.log.Debug("not removing the library root", "path", dir.Display())
		return nil
	}

	if e.opts.Pretend {
		e.log.Info("would remove empty directory", "path", dir.Display())
		return nil
	}

	e.log.Info("removing empty directory", "path", dir.Display())
	if err := e.caps.Remove(dir.Path); err != nil {
		return Fatalf(dir.Path, err, "remove empty directory")
	}
	return nil
}

// TranscodeTarget is where dst lands once src has been transcoded. It is dst
// itself when no rule applies.
func (e *Engine) TranscodeTarget(src, dst fspath.Path) fspath.Path {
	rule := e.opts.Transcode
	if !rule.Applies(src.Ext) {
		return dst
	}
	return dst.WithExt(strings.ToLower(rule.To))
}

// Transcode substitutes a converted temporary file for src when the
// transcode rule applies to it. The returned pair is what the caller adds.
// When the converted target already exists without force, the unchanged pair
// is returned with a Warning and the caller should skip the file.
func (e *Engine) Transcode(src, dst fspath.Path) (fspath.Path, fspath.Path, error) {
	rule := e.opts.Transcode
	if !rule.Applies(src.Ext) {
		return src, dst, nil
	}
	if e.caps.LinksToSource() {
		return src, dst, Warnf(src.Display(), "cannot transcode when targets link to their source")
	}

	from, to := src.Ext, strings.ToLower(rule.To)
	target := e.TranscodeTarget(src, dst)

	if (target.Exists() || target.IsLink()) && !e.opts.Force {
		return src, dst, Warnf(target.Display(), "file already exists")
	}

	convert, ok := e.caps.Transcoder(from, to)
	if !ok {
		return src, dst, Warnf(src.Display(), "no transcoder for %s-to-%s", from, to)
	}

	if e.opts.Pretend {
		e.log.Info("would transcode", "source", src.Display(), "from", from, "to", to)
		return src, dst, nil
	}

	tmp := filepath.Join(e.opts.TempDir, fmt.Sprintf("musync.trans.%d.%s", os.Getpid(), to))
	e.log.Info("transcoding", "source", src.Display(), "from", from, "to", to)
	if err := convert(src.Path, tmp); err != nil {
		_ = os.Remove(tmp)
		return src, dst, Warnf(src.Display(), "transcode %s-to-%s failed: %v", from, to, err)
	}

	return src.Sibling(tmp), target, nil
}

// pointsAt reports whether link is a symlink resolving to target.
func pointsAt(link, target fspath.Path) bool {
	if !link.IsLink() {
		return false
	}
	resolved, err := filepath.EvalSymlinks(link.Path)
	if err != nil {
		return false
	}
	want, err := filepath.EvalSymlinks(target.Path)
	if err != nil {
		return false
	}
	return resolved == want
}
