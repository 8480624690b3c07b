package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/olimci/musync/pkg/store/config"
	"github.com/olimci/musync/pkg/utils/fileutils"
)

// Overrides are values given on the command line. They are applied after
// every profile.
type Overrides struct {
	Root     string
	NoFixme  bool
	Profiles []string
}

// Settings is the configuration a single run works with.
type Settings struct {
	config.General
	Transcoders map[string]config.Transcoder
	Applied     []string // profiles, in the order they were overlaid
	ConfigPath  string
}

// Settings loads the config file and resolves profiles and overrides into
// one set of values. Paths are made absolute but not checked; see Validate.
func (s Store) Settings(o Overrides) (Settings, error) {
	cfg, err := s.LoadConfig()
	if err != nil {
		return Settings{}, err
	}
	return resolveSettings(cfg, s.ConfigPath(), o)
}

func resolveSettings(cfg config.Config, configPath string, o Overrides) (Settings, error) {
	applied := append(append([]string(nil), cfg.General.Profiles...), o.Profiles...)

	general, err := cfg.Resolve(applied)
	if err != nil {
		return Settings{}, err
	}

	noFixme := o.NoFixme || general.NoFixmeEnabled()
	general = general.Overlay(config.General{Root: strings.TrimSpace(o.Root), NoFixme: &noFixme})

	root, err := fileutils.AbsPath(general.Root)
	if err != nil {
		return Settings{}, fmt.Errorf("resolve root: %w", err)
	}
	general.Root = root

	if strings.TrimSpace(general.LockDB) == "" {
		general.LockDB = filepath.Join(root, lockFileName)
	} else if general.LockDB, err = fileutils.AbsPath(general.LockDB); err != nil {
		return Settings{}, fmt.Errorf("resolve lockdb: %w", err)
	}

	if strings.TrimSpace(general.Tmp) == "" {
		general.Tmp = os.TempDir()
	} else if general.Tmp, err = fileutils.AbsPath(general.Tmp); err != nil {
		return Settings{}, fmt.Errorf("resolve tmp: %w", err)
	}

	if general.TargetPath == "" {
		general.TargetPath = DefaultTargetPath
	}

	return Settings{
		General:     general,
		Transcoders: cfg.Transcoders,
		Applied:     applied,
		ConfigPath:  configPath,
	}, nil
}

// Validate checks that the library root is a writable directory and that
// every transcoder has a command.
func (st Settings) Validate() error {
	info, err := os.Stat(st.Root)
	if err != nil {
		return fmt.Errorf("root %s: %w", st.Root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root %s is not a directory", st.Root)
	}
	if err := writable(st.Root); err != nil {
		return fmt.Errorf("root: %w", err)
	}

	for name, tc := range st.Transcoders {
		from, to, ok := strings.Cut(name, "-to-")
		if !ok || from == "" || to == "" {
			return fmt.Errorf("transcoder %q: name must look like <from>-to-<to>", name)
		}
		if len(tc.Command) == 0 {
			return fmt.Errorf("transcoder %q: command is empty", name)
		}
	}

	return nil
}
