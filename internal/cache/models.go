package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ModelStore keeps downloaded neural voice models on disk, keyed by voice
// id. Models are stored uncompressed as <voiceID>.onnx plus
// <voiceID>.onnx.json so the synthesizer can open them directly by path.
type ModelStore struct {
	dir string
}

// NewModelStore opens (or creates) the model directory.
func NewModelStore(dir string) (*ModelStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create model directory: %w", err)
	}
	return &ModelStore{dir: dir}, nil
}

// ModelPath returns the path of the model file for a voice, whether or not
// it exists yet.
func (s *ModelStore) ModelPath(voiceID string) string {
	return filepath.Join(s.dir, voiceID+".onnx")
}

// ConfigPath returns the path of the model's JSON config.
func (s *ModelStore) ConfigPath(voiceID string) string {
	return filepath.Join(s.dir, voiceID+".onnx.json")
}

// Has reports whether both model and config files are present.
func (s *ModelStore) Has(voiceID string) bool {
	if _, err := os.Stat(s.ModelPath(voiceID)); err != nil {
		return false
	}
	_, err := os.Stat(s.ConfigPath(voiceID))
	return err == nil
}

// List returns the voice ids with a complete model on disk, sorted.
func (s *ModelStore) List() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".onnx") {
			continue
		}
		id := strings.TrimSuffix(name, ".onnx")
		if s.Has(id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Remove evicts a voice model from disk. Missing models are a no-op.
func (s *ModelStore) Remove(voiceID string) error {
	var firstErr error
	for _, p := range []string{s.ModelPath(voiceID), s.ConfigPath(voiceID)} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Dir returns the store's directory.
func (s *ModelStore) Dir() string { return s.dir }
