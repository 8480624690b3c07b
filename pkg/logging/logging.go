// Package logging builds the slog logger a musync run reports through.
//
// Levels carry musync's message classes: Debug is a notice (shown with
// --verbose), Info an action, Warn a skipped path and Error the fatal report.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
)

// FieldRun tags every record with the id of the run that produced it. The
// console omits it.
const FieldRun = "run"

type Options struct {
	Verbose bool
	Silent  bool
	// LogFile, when set, receives every record as JSON regardless of level.
	LogFile string
	// Console defaults to os.Stderr.
	Console io.Writer
	// Color forces colour on or off; nil detects a terminal.
	Color *bool
}

// Logger is a run's logger and the file it may have opened.
type Logger struct {
	*slog.Logger
	RunID string
	file  *os.File
}

func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

func New(opts Options) (*Logger, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	color := isTerminal(console)
	if opts.Color != nil {
		color = *opts.Color
	}

	handlers := []slog.Handler{newConsoleHandler(console, consoleLevel(opts), color)}

	var file *os.File
	if path := strings.TrimSpace(opts.LogFile); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		file = f
		handlers = append(handlers, newJSONHandler(f))
	}

	runID := uuid.NewString()
	logger := slog.New(newFanoutHandler(handlers...)).With(FieldRun, runID)

	return &Logger{Logger: logger, RunID: runID, file: file}, nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func consoleLevel(opts Options) slog.Level {
	switch {
	case opts.Silent:
		return slog.LevelWarn
	case opts.Verbose:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

func newJSONHandler(w io.Writer) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			}
			return attr
		},
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
