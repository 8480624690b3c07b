package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/olimci/musync/pkg/env"
	"github.com/olimci/musync/pkg/fspath"
	"github.com/olimci/musync/pkg/library"
	"github.com/olimci/musync/pkg/lockdb"
	"github.com/olimci/musync/pkg/logging"
	"github.com/olimci/musync/pkg/meta"
	"github.com/olimci/musync/pkg/reconcile"
	"github.com/olimci/musync/pkg/store"
	"github.com/urfave/cli/v3"
)

// ErrReported is returned once a fatal error has been logged, so main only
// sets the exit status.
var ErrReported = errors.New("fatal error reported")

// session is everything one command invocation works with.
type session struct {
	settings store.Settings
	log      *logging.Logger
	lib      *library.Library
	recurse  bool
}

func openSession(cmd *cli.Command) (*session, error) {
	s, err := store.DefaultStore()
	if err != nil {
		return nil, err
	}
	if err := s.EnsureInstalled(); err != nil {
		return nil, err
	}

	st, err := s.Settings(overridesFromCommand(cmd))
	if err != nil {
		return nil, err
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}

	caps, err := env.New(st)
	if err != nil {
		return nil, err
	}
	rule, err := parseTranscode(stringFlag(cmd, "transcode"))
	if err != nil {
		return nil, err
	}
	overrides, err := meta.ParseOverrides(sliceFlag(cmd, "modify"))
	if err != nil {
		return nil, err
	}
	root, err := fspath.New(st.Root, st.Root)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Verbose: isVerbose(cmd),
		Silent:  boolFlag(cmd, "silent"),
		LogFile: stringFlag(cmd, "log-file"),
	})
	if err != nil {
		return nil, err
	}

	locks, err := lockdb.Open(st.LockDB)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	pretend := boolFlag(cmd, "pretend")
	engine := reconcile.New(caps, root, reconcile.Options{
		Pretend:   pretend,
		Force:     boolFlag(cmd, "force"),
		TempDir:   st.Tmp,
		Transcode: rule,
	}, logger.Logger)

	lib := library.New(engine, locks, meta.TagReader{}, library.Options{
		Pretend:   pretend,
		LockAfter: boolFlag(cmd, "lock"),
		NoFixme:   st.NoFixmeEnabled(),
		Overrides: overrides,
	}, logger.Logger, os.Stdout)

	logger.Debug("session",
		"root", st.Root,
		"lockdb", st.LockDB,
		"add", caps.Mode(),
		"profiles", st.Applied,
	)

	return &session{
		settings: st,
		log:      logger,
		lib:      lib,
		recurse:  boolFlag(cmd, "recursive"),
	}, nil
}

// close flushes the lock database and reports the first fatal error. err is
// the outcome of the run itself.
func (s *session) close(err error) error {
	if closeErr := s.lib.Close(); err == nil {
		err = closeErr
	}
	defer s.log.Close()

	if err == nil {
		return nil
	}
	s.log.Error(err.Error())
	return ErrReported
}

// stdinPaths refuses to wait on an interactive terminal.
func stdinPaths(args []string) (io.Reader, error) {
	if len(args) > 0 {
		return nil, nil
	}
	if isatty.IsTerminal(os.Stdin.Fd()) {
		return nil, fmt.Errorf("no paths given (pass them as arguments or on stdin)")
	}
	return os.Stdin, nil
}

func withSession(fn func(context.Context, *cli.Command, *session) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		sess, err := openSession(cmd)
		if err != nil {
			return err
		}
		return sess.close(fn(ctx, cmd, sess))
	}
}
