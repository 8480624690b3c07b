package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/olimci/musync/pkg/store/config"
	"github.com/olimci/musync/pkg/version"
)

const (
	dirName     = "musync"
	configFile  = "config.toml"
	envStoreDir = "MUSYNC_STORE_DIR"

	DefaultTargetPath = `{{ clean .Artist }}/{{ clean .Album }}/{{ pad .Track 2 }}-{{ clean .Title }}.{{ .Ext }}`
	lockFileName      = ".musync.lock"
)

var (
	ErrAlreadyInstalled = errors.New("musync is already installed")
	ErrNotInstalled     = errors.New("musync is not installed")
)

// Store points to the directory holding musync's config file.
type Store struct {
	Root string
}

func DefaultStore() (Store, error) {
	if customRoot := strings.TrimSpace(os.Getenv(envStoreDir)); customRoot != "" {
		absRoot, err := filepath.Abs(customRoot)
		if err != nil {
			return Store{}, fmt.Errorf("resolve %s: %w", envStoreDir, err)
		}
		return Store{Root: absRoot}, nil
	}

	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return Store{}, fmt.Errorf("resolve user config directory: %w", err)
	}

	return Store{Root: filepath.Join(cfgDir, dirName)}, nil
}

func (s Store) ConfigPath() string {
	return filepath.Join(s.Root, configFile)
}

func (s Store) IsInstalled() bool {
	_, err := os.Stat(s.ConfigPath())
	return err == nil
}

func DefaultConfig() config.Config {
	checkhash := true
	noFixme := false

	return config.Config{
		Musync: config.Musync{
			Version: version.Version,
		},
		General: config.General{
			Root:         "~/Music",
			Add:          "copy",
			Hash:         "sha256",
			CheckHash:    &checkhash,
			CheckHashExt: []string{},
			TargetPath:   DefaultTargetPath,
			NoFixme:      &noFixme,
		},
		Profiles:    map[string]config.Profile{},
		Transcoders: map[string]config.Transcoder{},
	}
}

// Install writes the default config and fails if one already exists.
func (s Store) Install() error {
	if s.IsInstalled() {
		return ErrAlreadyInstalled
	}

	_, err := s.installMissing()
	return err
}

// EnsureInstalled writes the default config if missing.
func (s Store) EnsureInstalled() error {
	_, err := s.installMissing()
	return err
}

func (s Store) installMissing() (bool, error) {
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return false, fmt.Errorf("create store directory: %w", err)
	}
	return ensureDefaultConfig(s.ConfigPath())
}

// Uninstall removes the config file and, when nothing else is left, the
// store directory.
func (s Store) Uninstall() error {
	if !s.IsInstalled() {
		return ErrNotInstalled
	}
	if err := os.Remove(s.ConfigPath()); err != nil {
		return fmt.Errorf("remove %s: %w", s.ConfigPath(), err)
	}
	if err := os.Remove(s.Root); err != nil && !errors.Is(err, os.ErrNotExist) && !isNotEmpty(err) {
		return fmt.Errorf("remove %s: %w", s.Root, err)
	}
	return nil
}

// LoadConfig decodes the config file on top of the defaults. A missing file
// yields the defaults.
func (s Store) LoadConfig() (config.Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(s.ConfigPath()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return config.Config{}, fmt.Errorf("stat %s: %w", s.ConfigPath(), err)
	}

	md, err := toml.DecodeFile(s.ConfigPath(), &cfg)
	if err != nil {
		return config.Config{}, fmt.Errorf("decode %s: %w", s.ConfigPath(), err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return config.Config{}, fmt.Errorf("decode %s: unknown key %q", s.ConfigPath(), undecoded[0].String())
	}

	if cfg.Musync.Version == "" {
		cfg.Musync.Version = version.Version
	}
	if err := version.EnsureCompatible(cfg.Musync.Version); err != nil {
		return config.Config{}, fmt.Errorf("unsupported config version %q: %w", cfg.Musync.Version, err)
	}

	return cfg, nil
}

func (s Store) SaveConfig(cfg config.Config) error {
	if cfg.Musync.Version == "" {
		cfg.Musync.Version = version.Version
	}
	return writeTOML(s.ConfigPath(), cfg)
}
