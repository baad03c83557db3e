package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const stateFileName = "resonance_state.json"

// #region store-struct
// FileStore persists the engine state as a JSON file in the instance
// directory. Writes go through a temp file and an atomic rename; the
// directory and file are kept owner-only. There is no cross-process lock:
// concurrent writers see last-writer-wins, which is acceptable for a
// single-process deployment (callers serialize through engine.Engine).
type FileStore struct {
	dir string
}
// #endregion store-struct

// #region constructor
// NewFileStore creates the instance directory (0700) if needed and returns a store.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create instance dir %s: %w", dir, err)
	}
	if err := os.Chmod(dir, 0o700); err != nil {
		slog.Warn("could not restrict instance dir permissions", "dir", dir, "error", err)
	}
	return &FileStore{dir: dir}, nil
}
// #endregion constructor

// #region path
// Path returns the full path of the state file.
func (fs *FileStore) Path() string {
	return filepath.Join(fs.dir, stateFileName)
}
// #endregion path

// #region load
// Load reads the state file, creating it with defaults on first call.
// A corrupt or unreadable file is treated as absent: Load logs the problem
// and returns defaults rather than failing.
func (fs *FileStore) Load() (*State, error) {
	path := fs.Path()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		st := DefaultState()
		if err := fs.Save(st); err != nil {
			return nil, fmt.Errorf("initialize state file: %w", err)
		}
		return st, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("failed to read state file, using defaults", "path", path, "error", err)
		return DefaultState(), nil
	}

	st := DefaultState()
	if err := json.Unmarshal(data, st); err != nil {
		slog.Error("state file corrupted, using defaults", "path", path, "error", err)
		return DefaultState(), nil
	}
	if st.Domains == nil {
		st.Domains = map[string]float64{}
	}
	if st.UsedSessionIDs == nil {
		st.UsedSessionIDs = map[string]string{}
	}
	return st, nil
}
// #endregion load

// #region save
// Save writes the state via temp-file-then-rename with owner-only permissions.
// A save failure propagates to the caller: the mutation was not made durable.
func (fs *FileStore) Save(st *State) error {
	st.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp, err := os.CreateTemp(fs.dir, stateFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp state file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, fs.Path()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
// #endregion save
