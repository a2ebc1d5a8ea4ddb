// Package store persists the word list and speech settings as
// string-serialized JSON under the user data directory. Malformed or absent
// entries never fail a load; callers get defaults and the problem is logged.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
)

// Keys under which application state is persisted.
const (
	KeyWords    = "words"
	KeySettings = "speech_settings"
)

// Store is a small JSON key-value persistence layer. Each key is one file.
type Store struct {
	dir string
}

// New opens a store rooted at dir, creating it when missing.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// NewDefault opens the store in the user's data directory.
func NewDefault() (*Store, error) {
	scope := gap.NewScope(gap.User, "spelldrill")
	dir, err := scope.DataPath("")
	if err != nil {
		return nil, fmt.Errorf("could not resolve data directory: %w", err)
	}
	return New(dir)
}

// Path returns the file backing a key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get unmarshals the value for key into v. Returns false, never an error,
// when the key is absent or holds malformed JSON; v is left untouched so a
// caller-initialized default survives.
func (s *Store) Get(key string, v any) bool {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("could not read persisted state", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Warn("malformed persisted state, using defaults", "key", key, "error", err)
		return false
	}
	return true
}

// Put marshals v and writes it atomically (temp file + rename).
func (s *Store) Put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", key, err)
	}
	tmp, err := os.CreateTemp(s.dir, key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(key)); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }
