package cmd

import (
	"context"
	"fmt"

	storepkg "github.com/olimci/musync/pkg/store"
	"github.com/urfave/cli/v3"
)

func installCommand() *cli.Command {
	return &cli.Command{
		Name:   "install",
		Usage:  "write the default config file (--root sets the library root in it)",
		Action: installAction,
	}
}

func installAction(_ context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()

	if len(args) > 0 {
		return fmt.Errorf("install does not accept arguments")
	}

	store, err := storepkg.DefaultStore()
	if err != nil {
		return err
	}

	if store.IsInstalled() {
		return fmt.Errorf("musync is already installed in %s", store.Root)
	}

	if err := store.Install(); err != nil {
		return err
	}

	if root := stringFlag(cmd, "root"); root != "" {
		cfg, err := store.LoadConfig()
		if err != nil {
			return err
		}
		cfg.General.Root = root
		if err := store.SaveConfig(cfg); err != nil {
			return err
		}
	}

	fmt.Printf("wrote default config to %s\n", store.ConfigPath())
	return nil
}
