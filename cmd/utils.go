package cmd

import (
	"fmt"
	"strings"

	"github.com/olimci/musync/pkg/reconcile"
	"github.com/olimci/musync/pkg/store"
	"github.com/urfave/cli/v3"
)

// boolFlag reads a global flag from cmd or, failing that, the root command.
func boolFlag(cmd *cli.Command, name string) bool {
	if cmd == nil {
		return false
	}
	if cmd.Bool(name) {
		return true
	}
	root := cmd.Root()
	return root != nil && root.Bool(name)
}

func stringFlag(cmd *cli.Command, name string) string {
	if cmd == nil {
		return ""
	}
	if v := cmd.String(name); v != "" {
		return v
	}
	if root := cmd.Root(); root != nil {
		return root.String(name)
	}
	return ""
}

func sliceFlag(cmd *cli.Command, name string) []string {
	if cmd == nil {
		return nil
	}
	if v := cmd.StringSlice(name); len(v) > 0 {
		return v
	}
	if root := cmd.Root(); root != nil {
		return root.StringSlice(name)
	}
	return nil
}

func isVerbose(cmd *cli.Command) bool {
	return boolFlag(cmd, "verbose")
}

func overridesFromCommand(cmd *cli.Command) store.Overrides {
	return store.Overrides{
		Root:     stringFlag(cmd, "root"),
		NoFixme:  boolFlag(cmd, "no-fixme"),
		Profiles: splitList(stringFlag(cmd, "config")),
	}
}

// splitList splits a comma separated flag value, dropping empty items.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parseTranscode reads "from[,from]=to".
func parseTranscode(raw string) (reconcile.TranscodeRule, error) {
	if strings.TrimSpace(raw) == "" {
		return reconcile.TranscodeRule{}, nil
	}

	from, to, ok := strings.Cut(raw, "=")
	to = normaliseExt(to)
	if !ok || to == "" {
		return reconcile.TranscodeRule{}, fmt.Errorf("invalid transcode argument %q (expected from[,from]=to)", raw)
	}

	rule := reconcile.TranscodeRule{To: to}
	for _, ext := range splitList(from) {
		rule.From = append(rule.From, normaliseExt(ext))
	}
	if len(rule.From) == 0 {
		return reconcile.TranscodeRule{}, fmt.Errorf("invalid transcode argument %q: no source extensions", raw)
	}
	return rule, nil
}

func normaliseExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
