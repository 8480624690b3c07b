package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/olimci/musync/cmd"
	"golang.org/x/sys/unix"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	err := cmd.Execute(ctx, os.Args)
	stop()

	if err != nil {
		if !errors.Is(err, cmd.ErrReported) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
