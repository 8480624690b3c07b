package store

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/olimci/musync/pkg/lockdb"
)

type StatusSnapshot struct {
	ConfigPath  string
	Installed   bool
	Settings    Settings
	RootOK      bool
	RootErr     string
	LockCount   int
	Transcoders []string
}

// Status summarizes the resolved settings without creating anything on
// disk.
func (s Store) Status(o Overrides) (StatusSnapshot, error) {
	st, err := s.Settings(o)
	if err != nil {
		return StatusSnapshot{}, err
	}

	snapshot := StatusSnapshot{
		ConfigPath: s.ConfigPath(),
		Installed:  s.IsInstalled(),
		Settings:   st,
		RootOK:     true,
	}

	if err := st.Validate(); err != nil {
		snapshot.RootOK = false
		snapshot.RootErr = err.Error()
	}

	if _, err := os.Stat(st.LockDB); err == nil {
		db, err := lockdb.Open(st.LockDB)
		if err != nil {
			return StatusSnapshot{}, err
		}
		snapshot.LockCount = len(db.Locked())
	} else if !errors.Is(err, os.ErrNotExist) {
		return StatusSnapshot{}, fmt.Errorf("stat %s: %w", st.LockDB, err)
	}

	for name := range st.Transcoders {
		snapshot.Transcoders = append(snapshot.Transcoders, name)
	}
	sort.Strings(snapshot.Transcoders)

	return snapshot, nil
}
