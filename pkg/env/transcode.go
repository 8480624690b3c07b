package env

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
	"text/template"

	"github.com/olimci/musync/pkg/reconcile"
)

type commandArgs struct {
	Src string
	Dst string
}

// Transcoder returns the configured "<from>-to-<to>" command as a converter.
// The command runs to completion; interrupts are only observed between
// files.
func (e *Environment) Transcoder(from, to string) (reconcile.Converter, bool) {
	argv, ok := e.transcoders[strings.ToLower(from)+"-to-"+strings.ToLower(to)]
	if !ok || len(argv) == 0 {
		return nil, false
	}

	return func(src, dst string) error {
		args, err := expandArgs(argv, commandArgs{Src: src, Dst: dst})
		if err != nil {
			return err
		}

		cmd := exec.Command(args[0], args[1:]...) //nolint:gosec
		if output, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("%s: %w: %s", args[0], err, strings.TrimSpace(string(output)))
		}
		return nil
	}, true
}

func expandArgs(argv []string, data commandArgs) ([]string, error) {
	out := make([]string, 0, len(argv))
	for i, arg := range argv {
		tmpl, err := template.New(fmt.Sprintf("arg%d", i)).Parse(arg)
		if err != nil {
			return nil, fmt.Errorf("parse transcoder argument %q: %w", arg, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("expand transcoder argument %q: %w", arg, err)
		}
		out = append(out, buf.String())
	}
	return out, nil
}
