package cmd

import (
	"context"

	"github.com/olimci/musync/pkg/version"
	"github.com/urfave/cli/v3"
)

// Commands:
// add [paths...]
//   places each file in the library at the path its metadata resolves to
//
// rm [paths...]
//   removes the library copy of each file; empty library directories go too
//
// fix [paths...]
//   moves misplaced library files to their target and prunes empty directories
//
// lock / unlock [paths...]
//   marks library paths as untouchable (journaled in the lock database)
//
// inspect [paths...]
//   shows metadata and the resolved target without changing anything
//
// locks
//   lists the lock database
//
// Paths are read from stdin, one per line, when none are given.

func Execute(ctx context.Context, args []string) error {
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version",
		Usage: "print the version",
	}

	app := &cli.Command{
		Name:                      "musync",
		Usage:                     "keep a music library organised by its metadata",
		Version:                   version.Version,
		DisableSliceFlagSeparator: true,
		Flags:                     globalFlags(),
		Commands: []*cli.Command{
			addCommand(),
			removeCommand(),
			fixCommand(),
			lockCommand(),
			unlockCommand(),
			inspectCommand(),
			locksCommand(),
			statusCommand(),
			validateCommand(),
			installCommand(),
			uninstallCommand(),
			versionCommand(),
		},
	}

	return app.Run(ctx, args)
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "pretend",
			Aliases: []string{"p"},
			Usage:   "log what would happen without touching the filesystem",
		},
		&cli.BoolFlag{
			Name:    "force",
			Aliases: []string{"f"},
			Usage:   "replace existing targets",
		},
		&cli.BoolFlag{
			Name:    "recursive",
			Aliases: []string{"R"},
			Usage:   "descend into directories",
		},
		&cli.BoolFlag{
			Name:    "lock",
			Aliases: []string{"L"},
			Usage:   "lock targets after adding or fixing them",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "show notices",
		},
		&cli.BoolFlag{
			Name:    "silent",
			Aliases: []string{"s"},
			Usage:   "only show warnings and errors",
		},
		&cli.StringFlag{
			Name:  "root",
			Usage: "library root (overrides the config file)",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "comma separated profiles to apply",
		},
		&cli.StringSliceFlag{
			Name:    "modify",
			Aliases: []string{"M"},
			Usage:   "override a metadata field, key=value (repeatable)",
		},
		&cli.StringFlag{
			Name:    "transcode",
			Aliases: []string{"T"},
			Usage:   "transcode files on add, from[,from]=to",
		},
		&cli.BoolFlag{
			Name:  "no-fixme",
			Usage: "accept files with incomplete metadata",
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "append every record to this file as JSON",
		},
	}
}
