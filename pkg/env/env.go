// Package env builds the capability environment the reconciliation engine
// acts through from resolved settings.
package env

import (
	"fmt"
	"slices"
	"strings"
	"text/template"

	"github.com/olimci/musync/pkg/digest"
	"github.com/olimci/musync/pkg/meta"
	"github.com/olimci/musync/pkg/reconcile"
	"github.com/olimci/musync/pkg/store"
	"github.com/olimci/musync/pkg/utils/fileutils"
)

// AddMode selects how a file is placed at its target.
type AddMode string

const (
	AddCopy    AddMode = "copy"
	AddMove    AddMode = "move"
	AddLink    AddMode = "link"
	AddSymlink AddMode = "symlink"
)

func ParseAddMode(raw string) (AddMode, error) {
	switch mode := AddMode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case AddCopy, AddMove, AddLink, AddSymlink:
		return mode, nil
	case "":
		return AddCopy, nil
	default:
		return "", fmt.Errorf("unknown add mode %q (expected copy, move, link or symlink)", raw)
	}
}

// Environment implements reconcile.Capabilities.
type Environment struct {
	mode        AddMode
	algorithm   digest.Algorithm
	checkhash   bool
	checkExts   []string
	targetpath  *template.Template
	transcoders map[string][]string
}

var _ reconcile.Capabilities = (*Environment)(nil)

// New validates st and builds an Environment from it.
func New(st store.Settings) (*Environment, error) {
	mode, err := ParseAddMode(st.Add)
	if err != nil {
		return nil, err
	}

	algorithm := digest.Algorithm(strings.ToLower(strings.TrimSpace(st.Hash)))
	if algorithm == "" {
		algorithm = digest.AlgorithmSHA256
	}
	if err := digest.ValidateAlgorithm(algorithm); err != nil {
		return nil, err
	}

	tmpl, err := ParseTargetPath(st.TargetPath)
	if err != nil {
		return nil, err
	}

	exts := make([]string, 0, len(st.CheckHashExt))
	for _, ext := range st.CheckHashExt {
		exts = append(exts, strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), ".")))
	}

	transcoders := make(map[string][]string, len(st.Transcoders))
	for name, tc := range st.Transcoders {
		transcoders[strings.ToLower(name)] = tc.Command
	}

	return &Environment{
		mode:        mode,
		algorithm:   algorithm,
		checkhash:   st.CheckHashEnabled(),
		checkExts:   exts,
		targetpath:  tmpl,
		transcoders: transcoders,
	}, nil
}

func (e *Environment) Mode() AddMode {
	return e.mode
}

func (e *Environment) TargetPath(rec meta.Record) (string, error) {
	return renderTargetPath(e.targetpath, rec)
}

func (e *Environment) Add(src, dst string) error {
	switch e.mode {
	case AddMove:
		return fileutils.MovePath(src, dst)
	case AddLink:
		return fileutils.LinkFile(src, dst)
	case AddSymlink:
		return fileutils.SymlinkFile(src, dst)
	default:
		return fileutils.CopyFile(src, dst)
	}
}

func (e *Environment) LinksToSource() bool {
	return e.mode == AddSymlink
}

func (e *Environment) Remove(path string) error {
	return fileutils.RemovePath(path)
}

func (e *Environment) Hash(path string) (digest.Digest, error) {
	return digest.ForFile(path, e.algorithm)
}

func (e *Environment) CheckHash(rec meta.Record) bool {
	if !e.checkhash {
		return false
	}
	return len(e.checkExts) == 0 || slices.Contains(e.checkExts, strings.ToLower(rec.Ext))
}
