// ABOUTME: File-backed variable store with tolerant load and atomic save
// ABOUTME: One JSON object per file; in-memory writes survive save failures

package vars

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// StoreFileName is the file name used under a config directory.
const StoreFileName = "variables.json"

// Store is a mutex-guarded mapping from variable name to Value, backed
// by exactly one JSON file. Two stores opened on the same path are
// independent snapshots; the last saver wins.
type Store struct {
	mu     sync.Mutex
	path   string
	values map[string]Value
	logger *slog.Logger
}

// DefaultPath returns the default store location,
// $XDG_CONFIG_HOME/coven-vars/variables.json or the ~/.config equivalent.
func DefaultPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return StoreFileName
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "coven-vars", StoreFileName)
}

// Open binds a store to the given path and loads existing content.
// A missing, unreadable, or malformed file yields an empty store;
// Open never fails.
func Open(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	s := &Store{
		path:   path,
		values: make(map[string]Value),
		logger: slog.Default().With("component", "vars"),
	}
	s.load()
	return s
}

// Path returns the file path backing this store.
func (s *Store) Path() string {
	return s.path
}

// load replaces the in-memory map with the file content, if the file
// holds a valid JSON object. Anything else leaves the store empty.
func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}

	var values map[string]Value
	if err := json.Unmarshal(data, &values); err != nil {
		s.logger.Warn("ignoring unparseable store file", "path", s.path, "error", err)
		return
	}
	if values == nil {
		// A file holding the literal `null` decodes without error but
		// yields no map; treat it like any other non-object content.
		s.logger.Warn("ignoring non-object store file", "path", s.path)
		return
	}
	s.values = values
}

// Get returns the value for name and whether it exists.
func (s *Store) Get(name string) (Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[name]
	if !ok {
		return Value{}, false
	}
	return v.clone(), true
}

// Set writes name to value in memory and persists the full map. The
// in-memory write always takes effect; the returned error reports a
// persistence failure only, which callers may log and ignore.
func (s *Store) Set(name string, value Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[name] = value.clone()
	return s.save()
}

// Len returns the number of variables in the store.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}

// Snapshot returns a deep copy of all variables with no aliasing into
// the store's internal state.
func (s *Store) Snapshot() map[string]Value {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]Value, len(s.values))
	for k, v := range s.values {
		out[k] = v.clone()
	}
	return out
}

// JSON returns the store content in its persisted form: a single JSON
// object with variable names as keys.
func (s *Store) JSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return marshalValues(s.values)
}

// save writes the full map to the backing file. The write goes to a
// temporary file in the same directory, is synced, then renamed over
// the destination, so a crash mid-write never leaves a truncated file.
// Must be called with s.mu held.
func (s *Store) save() error {
	data, err := marshalValues(s.values)
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, StoreFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing store file: %w", err)
	}
	return nil
}

// marshalValues encodes the name->value map as an indented JSON object.
func marshalValues(values map[string]Value) ([]byte, error) {
	return json.MarshalIndent(values, "", "  ")
}
