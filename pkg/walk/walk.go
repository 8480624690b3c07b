// Package walk expands command arguments into paths and runs an operation
// on each of them.
package walk

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/olimci/musync/pkg/fspath"
	"github.com/olimci/musync/pkg/reconcile"
)

// Op is applied to every path a Driver yields.
type Op func(ctx context.Context, p fspath.Path) error

type Driver struct {
	Root      string
	Recursive bool
	Logger    *slog.Logger
}

type Summary struct {
	Processed int
	Warnings  int
}

// Run applies op to each argument, or to each line of stdin when args is
// empty. Warnings are logged and counted. The first Fatal, or cancellation
// of ctx, stops the run; completed paths are not rolled back.
func (d Driver) Run(ctx context.Context, args []string, stdin io.Reader, op Op) (Summary, error) {
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var (
		summary Summary
		runErr  error
	)

	for raw, inputErr := range inputs(args, stdin) {
		if inputErr != nil {
			return summary, reconcile.AsFatal("", fmt.Errorf("read stdin: %w", inputErr))
		}

		p, err := fspath.New(d.Root, raw)
		if err != nil {
			summary.Warnings++
			logger.Warn("cannot use path", "path", raw, "error", err)
			continue
		}

		for entity := range d.expand(p) {
			if err := ctx.Err(); err != nil {
				runErr = reconcile.Fatalf(entity.Display(), err, "interrupted")
				break
			}

			summary.Processed++
			err := op(ctx, entity)
			if err == nil {
				continue
			}
			if reconcile.IsWarning(err) {
				summary.Warnings++
				logger.Warn(err.Error())
				continue
			}

			runErr = reconcile.AsFatal(entity.Display(), err)
			break
		}
		if runErr != nil {
			return summary, runErr
		}
	}

	return summary, nil
}

func (d Driver) expand(p fspath.Path) iter.Seq[fspath.Path] {
	if d.Recursive && p.IsDir() && !p.IsLink() {
		return p.Walk()
	}
	return func(yield func(fspath.Path) bool) {
		yield(p)
	}
}

// inputs yields args, or the non-blank lines of stdin when there are none.
func inputs(args []string, stdin io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if len(args) > 0 {
			for _, arg := range args {
				if !yield(arg, nil) {
					return
				}
			}
			return
		}
		if stdin == nil {
			return
		}

		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			line := strings.TrimRight(scanner.Text(), "\r")
			if strings.TrimSpace(line) == "" {
				continue
			}
			if !yield(line, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield("", err)
		}
	}
}
