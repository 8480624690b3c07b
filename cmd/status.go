package cmd

import (
	"context"
	"fmt"
	"strings"

	storepkg "github.com/olimci/musync/pkg/store"
	"github.com/urfave/cli/v3"
)

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "show the resolved configuration",
		Action: statusAction,
	}
}

func statusAction(_ context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) > 0 {
		return fmt.Errorf("status does not accept arguments")
	}

	store, err := storepkg.DefaultStore()
	if err != nil {
		return err
	}

	snapshot, err := store.Status(overridesFromCommand(cmd))
	if err != nil {
		return err
	}
	st := snapshot.Settings

	if snapshot.Installed {
		fmt.Printf("Config: %s\n", snapshot.ConfigPath)
	} else {
		fmt.Printf("Config: %s (not installed, using defaults)\n", snapshot.ConfigPath)
	}
	if len(st.Applied) > 0 {
		fmt.Printf("Profiles: %s\n", strings.Join(st.Applied, ", "))
	}

	fmt.Println()
	if snapshot.RootOK {
		fmt.Printf("Root: %s\n", st.Root)
	} else {
		fmt.Printf("Root: %s (%s)\n", st.Root, snapshot.RootErr)
	}
	fmt.Printf("Lock database: %s (%d locked)\n", st.LockDB, snapshot.LockCount)
	fmt.Printf("Add mode: %s\n", st.Add)
	fmt.Printf("Hash: %s (checkhash %s)\n", st.Hash, checkhashLabel(st))
	fmt.Printf("Target path: %s\n", st.TargetPath)
	fmt.Printf("Temp dir: %s\n", st.Tmp)

	fmt.Println()
	fmt.Println("Transcoders:")
	if len(snapshot.Transcoders) == 0 {
		fmt.Println("  (none)")
	}
	for _, name := range snapshot.Transcoders {
		fmt.Printf("  %s  %s\n", name, strings.Join(st.Transcoders[name].Command, " "))
	}

	return nil
}

func checkhashLabel(st storepkg.Settings) string {
	switch {
	case !st.CheckHashEnabled():
		return "off"
	case len(st.CheckHashExt) == 0:
		return "on"
	default:
		return "on for " + strings.Join(st.CheckHashExt, ", ")
	}
}
