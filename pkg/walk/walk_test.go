package walk

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/olimci/musync/pkg/fspath"
	"github.com/olimci/musync/pkg/reconcile"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()

	for _, rel := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(rel), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

type recorder struct {
	seen []string
}

func (r *recorder) op(fail map[string]error) Op {
	return func(_ context.Context, p fspath.Path) error {
		r.seen = append(r.seen, p.Display())
		return fail[p.Display()]
	}
}

func TestRunArgs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, "a.flac", "b.flac")

	var rec recorder
	d := Driver{Root: root}
	summary, err := d.Run(context.Background(), []string{filepath.Join(root, "b.flac"), filepath.Join(root, "a.flac")}, nil, rec.op(nil))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if strings.Join(rec.seen, ",") != "b.flac,a.flac" {
		t.Fatalf("seen = %v", rec.seen)
	}
	if summary.Processed != 2 || summary.Warnings != 0 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestRunReadsStdinWhenNoArgs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, "a.flac", "b.flac")

	stdin := strings.NewReader(filepath.Join(root, "a.flac") + "\n\n   \n" + filepath.Join(root, "b.flac") + "\r\n")

	var rec recorder
	d := Driver{Root: root}
	if _, err := d.Run(context.Background(), nil, stdin, rec.op(nil)); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if strings.Join(rec.seen, ",") != "a.flac,b.flac" {
		t.Fatalf("seen = %v", rec.seen)
	}
}

func TestRunRecursiveOrder(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, "b/3.flac", "a/1.flac", "a/nested/2.flac")

	var rec recorder
	d := Driver{Root: root, Recursive: true}
	if _, err := d.Run(context.Background(), []string{root}, nil, rec.op(nil)); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := ".,a,a/1.flac,a/nested,a/nested/2.flac,b,b/3.flac"
	if got := strings.Join(rec.seen, ","); got != want {
		t.Fatalf("seen = %s, want %s", got, want)
	}
}

func TestRunNonRecursiveYieldsDirectoryOnce(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, "a/1.flac")

	var rec recorder
	d := Driver{Root: root}
	if _, err := d.Run(context.Background(), []string{filepath.Join(root, "a")}, nil, rec.op(nil)); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if strings.Join(rec.seen, ",") != "a" {
		t.Fatalf("seen = %v", rec.seen)
	}
}

func TestRunContinuesAfterWarning(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, "a.flac", "b.flac", "c.flac")

	var rec recorder
	fail := map[string]error{"b.flac": reconcile.Warnf("b.flac", "file already exists")}
	d := Driver{Root: root, Recursive: true}

	summary, err := d.Run(context.Background(), []string{
		filepath.Join(root, "a.flac"),
		filepath.Join(root, "b.flac"),
		filepath.Join(root, "c.flac"),
	}, nil, rec.op(fail))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(rec.seen) != 3 || summary.Warnings != 1 || summary.Processed != 3 {
		t.Fatalf("seen = %v summary = %+v", rec.seen, summary)
	}
}

func TestRunAbortsOnFatal(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, "a.flac", "b.flac", "c.flac")

	var rec recorder
	fail := map[string]error{"b.flac": reconcile.Fatalf("", nil, "failed too many times")}
	d := Driver{Root: root, Recursive: true}

	_, err := d.Run(context.Background(), []string{root}, nil, rec.op(fail))

	var fatal *reconcile.Fatal
	if !errors.As(err, &fatal) {
		t.Fatalf("expected Fatal, got %v", err)
	}
	if fatal.Path != "b.flac" {
		t.Fatalf("fatal path = %q, want b.flac", fatal.Path)
	}
	if strings.Join(rec.seen, ",") != ".,a.flac,b.flac" {
		t.Fatalf("seen = %v", rec.seen)
	}
}

func TestRunWrapsUnclassifiedErrors(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, "a.flac")

	var rec recorder
	raw := errors.New("permission denied")
	d := Driver{Root: root}

	_, err := d.Run(context.Background(), []string{filepath.Join(root, "a.flac")}, nil, rec.op(map[string]error{"a.flac": raw}))
	if !reconcile.IsFatal(err) || !errors.Is(err, raw) {
		t.Fatalf("expected Fatal wrapping the raw error, got %v", err)
	}
}

func TestRunStopsWhenCancelled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, "a.flac", "b.flac", "c.flac")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var seen []string
	op := func(_ context.Context, p fspath.Path) error {
		seen = append(seen, p.Display())
		if p.Display() == "a.flac" {
			cancel()
		}
		return nil
	}

	d := Driver{Root: root}
	summary, err := d.Run(ctx, []string{
		filepath.Join(root, "a.flac"),
		filepath.Join(root, "b.flac"),
		filepath.Join(root, "c.flac"),
	}, nil, op)

	if !reconcile.IsFatal(err) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected Fatal interrupt, got %v", err)
	}
	if len(seen) != 1 || summary.Processed != 1 {
		t.Fatalf("seen = %v summary = %+v", seen, summary)
	}
}
