package library

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/olimci/musync/pkg/fspath"
	"github.com/olimci/musync/pkg/reconcile"
)

// Inspect prints p's metadata and the target it resolves to.
func (l *Library) Inspect(_ context.Context, p fspath.Path) error {
	if !p.IsFile() {
		return reconcile.Warnf(p.Display(), "not a file")
	}

	rec, err := l.reader.Read(p.Path)
	if err != nil {
		return reconcile.Warnf(p.Display(), "cannot read metadata: %v", unwrapPath(err))
	}
	if rec.Ext == "" {
		rec.Ext = p.Ext
	}
	if rec, err = l.opts.Overrides.Apply(rec); err != nil {
		return reconcile.Warnf(p.Display(), "%v", err)
	}

	var target string
	if t, err := l.engine.Resolve(rec); err == nil {
		target = t.Display()
		if l.lockedTarget(t) {
			target += " (locked)"
		}
	} else {
		target = fmt.Sprintf("(%v)", err)
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(p.Name())
	tw.AppendRows([]table.Row{
		{"artist", orDash(rec.Artist)},
		{"album", orDash(rec.Album)},
		{"title", orDash(rec.Title)},
		{"track", intOrDash(rec.Track)},
		{"year", intOrDash(rec.Year)},
		{"size", humanize.IBytes(uint64(max(p.Size(), 0)))},
		{"target", target},
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
	})

	_, err = fmt.Fprintln(l.out, tw.Render())
	return err
}

// PrintLocks lists the committed lock entries.
func (l *Library) PrintLocks() error {
	locked := l.locks.Locked()
	if len(locked) == 0 {
		_, err := fmt.Fprintln(l.out, "no locked paths")
		return err
	}

	root := l.engine.Root()
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"path", "kind"})
	for _, rel := range locked {
		p := root.Join(rel)
		kind := "missing"
		switch {
		case p.IsDir():
			kind = "dir"
		case p.IsFile():
			kind = "file"
		}
		tw.AppendRow(table.Row{rel, kind})
	}
	tw.AppendFooter(table.Row{strconv.Itoa(len(locked)) + " locked", ""})

	_, err := fmt.Fprintln(l.out, tw.Render())
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func intOrDash(n int) string {
	if n == 0 {
		return "-"
	}
	return strconv.Itoa(n)
}
