package cmd

import (
	"context"
	"fmt"

	"github.com/olimci/musync/pkg/version"
	"github.com/urfave/cli/v3"
)

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "show version",
		Action: versionAction,
	}
}

func versionAction(_ context.Context, _ *cli.Command) error {
	fmt.Println(version.String())
	return nil
}
