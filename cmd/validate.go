package cmd

import (
	"context"
	"fmt"

	"github.com/olimci/musync/pkg/env"
	"github.com/olimci/musync/pkg/store"
	"github.com/urfave/cli/v3"
)

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:   "validate",
		Usage:  "check the config file and flags without touching the library",
		Action: validateAction,
	}
}

func validateAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() > 0 {
		return fmt.Errorf("validate does not accept arguments")
	}

	s, err := store.DefaultStore()
	if err != nil {
		return err
	}

	st, err := s.Settings(overridesFromCommand(cmd))
	if err != nil {
		return err
	}
	if err := st.Validate(); err != nil {
		return err
	}
	caps, err := env.New(st)
	if err != nil {
		return err
	}
	if _, err := parseTranscode(stringFlag(cmd, "transcode")); err != nil {
		return err
	}

	fmt.Printf("validated %s (root %s, add %s, %d transcoder(s))\n", st.ConfigPath, st.Root, caps.Mode(), len(st.Transcoders))
	return nil
}
