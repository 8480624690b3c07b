package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/olimci/musync/pkg/version"
)

func testInstalledStore(t *testing.T) Store {
	t.Helper()

	store := Store{Root: t.TempDir()}
	if err := store.Install(); err != nil {
		t.Fatalf("Install returned error: %v", err)
	}
	return store
}

func writeConfig(t *testing.T, store Store, body string) {
	t.Helper()

	if err := os.WriteFile(store.ConfigPath(), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func incompatibleVersion(t *testing.T) string {
	t.Helper()

	current, err := version.ParseSemVer(version.Version)
	if err != nil {
		t.Fatalf("parse current version: %v", err)
	}
	current.Major++
	return current.String()
}

func TestInstallWritesDefaultConfig(t *testing.T) {
	t.Parallel()

	store := testInstalledStore(t)
	if !store.IsInstalled() {
		t.Fatal("store should be installed")
	}
	if err := store.Install(); !errors.Is(err, ErrAlreadyInstalled) {
		t.Fatalf("second Install should fail with ErrAlreadyInstalled, got %v", err)
	}

	cfg, err := store.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Musync.Version != version.Version {
		t.Fatalf("config version = %q", cfg.Musync.Version)
	}
	if cfg.General.Add != "copy" || cfg.General.Hash != "sha256" || !cfg.General.CheckHashEnabled() {
		t.Fatalf("unexpected defaults: %+v", cfg.General)
	}
	if cfg.General.TargetPath != DefaultTargetPath {
		t.Fatalf("targetpath = %q", cfg.General.TargetPath)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	store := Store{Root: filepath.Join(t.TempDir(), "absent")}
	cfg, err := store.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.General.Root != "~/Music" {
		t.Fatalf("root = %q", cfg.General.Root)
	}
}

func TestLoadConfigRejectsIncompatibleVersion(t *testing.T) {
	t.Parallel()

	store := testInstalledStore(t)
	writeConfig(t, store, fmt.Sprintf("[musync]\nversion = %q\n", incompatibleVersion(t)))

	_, err := store.LoadConfig()
	if err == nil || !strings.Contains(err.Error(), "unsupported config version") {
		t.Fatalf("expected version error, got %v", err)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	store := testInstalledStore(t)
	writeConfig(t, store, "[general]\nroot = \"/music\"\nbogus = 1\n")

	if _, err := store.LoadConfig(); err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	t.Parallel()

	store := testInstalledStore(t)
	cfg, err := store.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	cfg.General.Add = "link"
	if err := store.SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig returned error: %v", err)
	}

	again, err := store.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if again.General.Add != "link" {
		t.Fatalf("add = %q, want link", again.General.Add)
	}
}

func TestSettingsResolvesProfilesAndOverrides(t *testing.T) {
	t.Parallel()

	store := testInstalledStore(t)
	music := t.TempDir()
	lossy := t.TempDir()
	writeConfig(t, store, fmt.Sprintf(`
[general]
root = %q
add = "copy"
profiles = ["lossy"]

[profiles.lossy]
root = %q
add = "move"

[profiles.quick]
checkhash = false

[transcoders.flac-to-ogg]
command = ["oggenc", "-o", "{{ .Dst }}", "{{ .Src }}"]
`, music, lossy))

	st, err := store.Settings(Overrides{Profiles: []string{"quick"}})
	if err != nil {
		t.Fatalf("Settings returned error: %v", err)
	}
	if st.Root != lossy || st.Add != "move" || st.CheckHashEnabled() {
		t.Fatalf("unexpected settings: %+v", st.General)
	}
	if st.LockDB != filepath.Join(lossy, ".musync.lock") {
		t.Fatalf("lockdb = %q", st.LockDB)
	}
	if len(st.Applied) != 2 || st.Applied[0] != "lossy" || st.Applied[1] != "quick" {
		t.Fatalf("applied = %v", st.Applied)
	}
	if _, ok := st.Transcoders["flac-to-ogg"]; !ok {
		t.Fatalf("transcoders = %v", st.Transcoders)
	}
	if err := st.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}

	st, err = store.Settings(Overrides{Root: music, NoFixme: true})
	if err != nil {
		t.Fatalf("Settings returned error: %v", err)
	}
	if st.Root != music || !st.NoFixmeEnabled() {
		t.Fatalf("flags should override profiles: %+v", st.General)
	}
}

func TestValidateRejectsBadRoot(t *testing.T) {
	t.Parallel()

	store := testInstalledStore(t)
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	for _, root := range []string{filepath.Join(t.TempDir(), "missing"), file} {
		st, err := store.Settings(Overrides{Root: root})
		if err != nil {
			t.Fatalf("Settings returned error: %v", err)
		}
		if err := st.Validate(); err == nil {
			t.Fatalf("Validate should reject root %s", root)
		}
	}
}

func TestValidateRejectsBadTranscoder(t *testing.T) {
	t.Parallel()

	store := testInstalledStore(t)
	writeConfig(t, store, fmt.Sprintf("[general]\nroot = %q\n\n[transcoders.flac]\ncommand = [\"x\"]\n", t.TempDir()))

	st, err := store.Settings(Overrides{})
	if err != nil {
		t.Fatalf("Settings returned error: %v", err)
	}
	if err := st.Validate(); err == nil || !strings.Contains(err.Error(), "-to-") {
		t.Fatalf("expected transcoder name error, got %v", err)
	}
}

func TestStatusCountsLocks(t *testing.T) {
	t.Parallel()

	store := testInstalledStore(t)
	music := t.TempDir()
	if err := os.WriteFile(filepath.Join(music, ".musync.lock"), []byte("a.flac\nb.flac\n"), 0o644); err != nil {
		t.Fatalf("write journal: %v", err)
	}

	snapshot, err := store.Status(Overrides{Root: music})
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if !snapshot.Installed || !snapshot.RootOK || snapshot.LockCount != 2 {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
}

func TestStatusDoesNotCreateJournal(t *testing.T) {
	t.Parallel()

	store := testInstalledStore(t)
	music := t.TempDir()

	if _, err := store.Status(Overrides{Root: music}); err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(music, ".musync.lock")); !os.IsNotExist(err) {
		t.Fatalf("journal should not be created, stat err = %v", err)
	}
}

func TestUninstall(t *testing.T) {
	t.Parallel()

	store := testInstalledStore(t)
	if err := store.Uninstall(); err != nil {
		t.Fatalf("Uninstall returned error: %v", err)
	}
	if store.IsInstalled() {
		t.Fatal("store should not be installed")
	}
	if err := store.Uninstall(); !errors.Is(err, ErrNotInstalled) {
		t.Fatalf("expected ErrNotInstalled, got %v", err)
	}
}
