package reconcile

import (
	"errors"
	"fmt"
)

// Warning is a recoverable, path-scoped failure. A batch logs it and moves
// on to the next path.
type Warning struct {
	Path string
	Msg  string
}

func (w *Warning) Error() string {
	if w.Path == "" {
		return w.Msg
	}
	return fmt.Sprintf("%s: %s", w.Msg, w.Path)
}

// Fatal aborts the batch it occurs in.
type Fatal struct {
	Path string
	Msg  string
	Err  error
}

func (f *Fatal) Error() string {
	msg := f.Msg
	if f.Err != nil {
		if msg == "" {
			msg = f.Err.Error()
		} else {
			msg = fmt.Sprintf("%s: %v", msg, f.Err)
		}
	}
	if f.Path == "" {
		return msg
	}
	return fmt.Sprintf("%s (%s)", msg, f.Path)
}

func (f *Fatal) Unwrap() error {
	return f.Err
}

func Warnf(path, format string, args ...any) error {
	return &Warning{Path: path, Msg: fmt.Sprintf(format, args...)}
}

func Fatalf(path string, err error, format string, args ...any) error {
	return &Fatal{Path: path, Msg: fmt.Sprintf(format, args...), Err: err}
}

// IsWarning reports whether err carries a *Warning.
func IsWarning(err error) bool {
	var w *Warning
	return errors.As(err, &w)
}

// IsFatal reports whether err carries a *Fatal.
func IsFatal(err error) bool {
	var f *Fatal
	return errors.As(err, &f)
}

// AsFatal returns err as a *Fatal, wrapping unclassified errors so nothing
// raw escapes a batch.
func AsFatal(path string, err error) *Fatal {
	var f *Fatal
	if errors.As(err, &f) {
		if f.Path == "" {
			f.Path = path
		}
		return f
	}
	return &Fatal{Path: path, Err: err}
}
