// Package fspath describes single filesystem locations relative to a
// library root.
package fspath

import (
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/olimci/musync/pkg/utils/fileutils"
)

// Path is an immutable description of one filesystem location. The zero
// value is not usable, construct with New.
type Path struct {
	Path string // absolute, cleaned
	Ext  string // lower-case extension without the dot
	Dir  string
	Base string // file name without extension
	Root string // absolute library root, may be empty
}

// New resolves raw (relative to the working directory, "~" expanded) against
// the given library root.
func New(root, raw string) (Path, error) {
	abs, err := fileutils.AbsPath(raw)
	if err != nil {
		return Path{}, err
	}

	var absRoot string
	if strings.TrimSpace(root) != "" {
		absRoot, err = fileutils.AbsPath(root)
		if err != nil {
			return Path{}, err
		}
	}

	return build(absRoot, abs), nil
}

func build(root, abs string) Path {
	name := filepath.Base(abs)
	ext := filepath.Ext(name)

	return Path{
		Path: abs,
		Ext:  strings.ToLower(strings.TrimPrefix(ext, ".")),
		Dir:  filepath.Dir(abs),
		Base: strings.TrimSuffix(name, ext),
		Root: root,
	}
}

// Join returns the location of rel below p.
func (p Path) Join(rel string) Path {
	return build(p.Root, filepath.Clean(filepath.Join(p.Path, rel)))
}

// WithExt returns a sibling path with the extension replaced.
func (p Path) WithExt(ext string) Path {
	return build(p.Root, filepath.Join(p.Dir, p.Base+"."+strings.TrimPrefix(ext, ".")))
}

// Sibling builds a path sharing p's root from an absolute location.
func (p Path) Sibling(abs string) Path {
	return build(p.Root, filepath.Clean(abs))
}

func (p Path) String() string {
	return p.Path
}

func (p Path) Name() string {
	return filepath.Base(p.Path)
}

func (p Path) Exists() bool {
	_, err := os.Stat(p.Path)
	return err == nil
}

func (p Path) IsFile() bool {
	info, err := os.Stat(p.Path)
	return err == nil && info.Mode().IsRegular()
}

func (p Path) IsDir() bool {
	info, err := os.Stat(p.Path)
	return err == nil && info.IsDir()
}

func (p Path) IsLink() bool {
	info, err := os.Lstat(p.Path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// IsEmpty reports whether the location has no children. Files and missing
// paths have none.
func (p Path) IsEmpty() bool {
	f, err := os.Open(p.Path)
	if err != nil {
		return true
	}
	defer f.Close()

	names, _ := f.Readdirnames(1)
	return len(names) == 0
}

// Size is the size in bytes, or zero when the path cannot be stat'ed.
func (p Path) Size() int64 {
	info, err := os.Stat(p.Path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func (p Path) Parent() Path {
	return build(p.Root, filepath.Dir(p.Path))
}

// Children lists immediate entries in lexical order. Listing failures
// produce an empty sequence.
func (p Path) Children() iter.Seq[Path] {
	return func(yield func(Path) bool) {
		entries, err := os.ReadDir(p.Path)
		if err != nil {
			return
		}
		for _, entry := range entries {
			if !yield(build(p.Root, filepath.Join(p.Path, entry.Name()))) {
				return
			}
		}
	}
}

// Walk yields p and, when p is a directory, every descendant depth first with
// each directory before its contents. Symlinked directories are not entered.
func (p Path) Walk() iter.Seq[Path] {
	return func(yield func(Path) bool) {
		p.walk(yield)
	}
}

func (p Path) walk(yield func(Path) bool) bool {
	if !yield(p) {
		return false
	}
	if p.IsLink() || !p.IsDir() {
		return true
	}

	children := make([]Path, 0, 16)
	for child := range p.Children() {
		children = append(children, child)
	}
	sort.Slice(children, func(i, j int) bool {
		return children[i].Path < children[j].Path
	})

	for _, child := range children {
		if !child.walk(yield) {
			return false
		}
	}
	return true
}

// Rel returns the path relative to the library root. ok is false when the
// path lies outside the root or no root is known.
func (p Path) Rel() (string, bool) {
	if p.Root == "" {
		return "", false
	}

	rel, err := filepath.Rel(p.Root, p.Path)
	if err != nil {
		return "", false
	}

	up := ".." + string(filepath.Separator)
	if rel == ".." || strings.HasPrefix(rel, up) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// Display is the root-relative path when available, the absolute path
// otherwise.
func (p Path) Display() string {
	if rel, ok := p.Rel(); ok {
		return rel
	}
	return p.Path
}

func (p Path) InRoot() bool {
	_, ok := p.Rel()
	return ok
}

func (p Path) IsRoot() bool {
	rel, ok := p.Rel()
	return ok && rel == "."
}
