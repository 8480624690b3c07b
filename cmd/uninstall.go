package cmd

import (
	"context"
	"fmt"

	"github.com/olimci/musync/pkg/store"
	"github.com/urfave/cli/v3"
)

func uninstallCommand() *cli.Command {
	return &cli.Command{
		Name:   "uninstall",
		Usage:  "remove the config file (the library and its lock database are kept)",
		Action: uninstallAction,
	}
}

func uninstallAction(_ context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()

	if len(args) > 0 {
		return fmt.Errorf("uninstall does not accept arguments")
	}

	s, err := store.DefaultStore()
	if err != nil {
		return err
	}

	if !s.IsInstalled() {
		return fmt.Errorf("musync is not installed")
	}

	if err := s.Uninstall(); err != nil {
		return err
	}
	if isVerbose(cmd) {
		fmt.Printf("removed %s\n", s.ConfigPath())
	}

	fmt.Printf("uninstalled musync store from %s\n", s.Root)
	return nil
}
