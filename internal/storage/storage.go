package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nikbrunner/scenelib/internal/model"
)

// WorldStorage persists the host world collection as a JSON file.
type WorldStorage struct {
	path string
}

// NewWorldStorage creates a new WorldStorage with the given file path.
func NewWorldStorage(path string) *WorldStorage {
	return &WorldStorage{path: path}
}

// Path returns the storage file path.
func (s *WorldStorage) Path() string {
	return s.path
}

// Load reads the store from the JSON file.
// Returns an empty store if the file doesn't exist.
func (s *WorldStorage) Load() (*model.Store, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.NewStore(), nil
		}
		return nil, err
	}

	var store model.Store
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}

	// Ensure slices are not nil
	if store.Folders == nil {
		store.Folders = []model.SceneFolder{}
	}
	if store.Scenes == nil {
		store.Scenes = []model.Scene{}
	}

	return &store, nil
}

// Save writes the store to the JSON file.
// Creates the directory if it doesn't exist.
func (s *WorldStorage) Save(store *model.Store) error {
	return writeJSON(s.path, store)
}

// JSONFlagStore implements FlagStore on top of a single JSON object file.
type JSONFlagStore struct {
	path   string
	values map[string]json.RawMessage
}

// NewJSONFlagStore creates a JSONFlagStore backed by path. The file is read lazily.
func NewJSONFlagStore(path string) *JSONFlagStore {
	return &JSONFlagStore{path: path}
}

// Path returns the storage file path.
func (s *JSONFlagStore) Path() string {
	return s.path
}

func (s *JSONFlagStore) load() error {
	if s.values != nil {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.values = map[string]json.RawMessage{}
			return nil
		}
		return err
	}
	values := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}
	s.values = values
	return nil
}

// Get implements FlagStore.
func (s *JSONFlagStore) Get(_ context.Context, key string, dst any) (bool, error) {
	if err := s.load(); err != nil {
		return false, err
	}
	raw, ok := s.values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("decode flag %q: %w", key, err)
	}
	return true, nil
}

// Set implements FlagStore. The whole file is rewritten on every call.
func (s *JSONFlagStore) Set(ctx context.Context, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.load(); err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode flag %q: %w", key, err)
	}

	prev, had := s.values[key]
	s.values[key] = raw
	if err := writeJSON(s.path, s.values); err != nil {
		// Keep the cache in line with what is on disk.
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

func writeJSON(path string, v any) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// OpenFlagStore opens the flag store backend selected by the config.
func OpenFlagStore(cfg *Config) (FlagStore, error) {
	switch cfg.FlagBackend {
	case BackendSQLite:
		return NewSQLiteFlagStore(cfg.FlagsPath)
	case BackendJSON, "":
		return NewJSONFlagStore(cfg.FlagsPath), nil
	default:
		return nil, fmt.Errorf("unknown flag backend %q", cfg.FlagBackend)
	}
}
