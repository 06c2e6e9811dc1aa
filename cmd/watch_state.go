package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// watchState is the record a running watcher leaves on disk. It doubles as
// the lock: only one live watcher may own the file.
type watchState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	Backend   string    `json:"backend"`
	Schedule  string    `json:"schedule"`
	StartedAt time.Time `json:"started_at"`
}

var errNoWatcher = errors.New("watcher is not running")

func readWatchState(path string) (watchState, error) {
	var st watchState
	//nolint:gosec // state path is configured by the local user
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return st, errNoWatcher
	}
	if err != nil {
		return st, fmt.Errorf("read watcher state: %w", err)
	}
	if err := json.Unmarshal(data, &st); err != nil || st.PID <= 0 {
		return st, fmt.Errorf("corrupt watcher state in %s", path)
	}
	return st, nil
}

// save writes the state atomically so a concurrent `watch status` never sees
// a half-written file.
func (st watchState) save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create watcher state dir: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write watcher state: %w", err)
	}
	return os.Rename(tmp, path)
}

// alive reports whether the recorded process still exists.
func (st watchState) alive() bool {
	proc, err := os.FindProcess(st.PID)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

// claimWatchState fails if another live watcher owns path and clears any
// stale or corrupt record otherwise.
func claimWatchState(path string) error {
	st, err := readWatchState(path)
	switch {
	case errors.Is(err, errNoWatcher):
		return nil
	case err == nil && st.alive():
		return fmt.Errorf("watcher already running (pid %d, http://%s)", st.PID, st.Addr)
	}
	if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		return fmt.Errorf("remove stale watcher state: %w", rmErr)
	}
	return nil
}
