package cmd

import (
	"context"
	"fmt"

	"github.com/olimci/musync/pkg/fspath"
	"github.com/olimci/musync/pkg/library"
	"github.com/olimci/musync/pkg/walk"
	"github.com/urfave/cli/v3"
)

func addCommand() *cli.Command {
	return pathCommand("add", nil, "add files to the library", (*library.Library).Add)
}

func removeCommand() *cli.Command {
	return pathCommand("rm", []string{"remove"}, "remove files from the library", (*library.Library).Remove)
}

func fixCommand() *cli.Command {
	return pathCommand("fix", nil, "move misplaced library files and prune empty directories", (*library.Library).Fix)
}

func lockCommand() *cli.Command {
	return pathCommand("lock", nil, "lock library paths", (*library.Library).Lock)
}

func unlockCommand() *cli.Command {
	return pathCommand("unlock", nil, "unlock library paths", (*library.Library).Unlock)
}

func inspectCommand() *cli.Command {
	return pathCommand("inspect", nil, "show metadata and target paths", (*library.Library).Inspect)
}

// pathCommand runs op over the command's path arguments, or stdin lines.
func pathCommand(name string, aliases []string, usage string, op func(*library.Library, context.Context, fspath.Path) error) *cli.Command {
	return &cli.Command{
		Name:      name,
		Aliases:   aliases,
		Usage:     usage,
		ArgsUsage: "[paths...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			stdin, err := stdinPaths(args)
			if err != nil {
				return err
			}

			return withSession(func(ctx context.Context, _ *cli.Command, s *session) error {
				driver := walk.Driver{
					Root:      s.settings.Root,
					Recursive: s.recurse,
					Logger:    s.log.Logger,
				}
				summary, err := driver.Run(ctx, args, stdin, func(ctx context.Context, p fspath.Path) error {
					return op(s.lib, ctx, p)
				})
				s.log.Debug("done", "command", name, "processed", summary.Processed, "warnings", summary.Warnings)
				return err
			})(ctx, cmd)
		},
	}
}

func locksCommand() *cli.Command {
	return &cli.Command{
		Name:  "locks",
		Usage: "list locked library paths",
		Action: withSession(func(_ context.Context, cmd *cli.Command, s *session) error {
			if cmd.Args().Len() > 0 {
				return fmt.Errorf("locks does not accept arguments")
			}
			return s.lib.PrintLocks()
		}),
	}
}
