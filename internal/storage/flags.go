package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Flag keys used by the library core.
const (
	KeyFavorites    = "favorites"
	KeyRecent       = "recentScenes"
	KeySceneTags    = "sceneTags"
	KeyShowTags     = "showTags"
	KeyPaginate     = "paginate"
	KeyUseFullImage = "useFullImage"
)

// FlagStore is the external key-value store backing favorites, recents,
// per-scene tags and display preferences. Values are JSON encoded.
type FlagStore interface {
	// Get decodes the value stored under key into dst.
	// Reports false when the key has never been set.
	Get(ctx context.Context, key string, dst any) (bool, error)
	// Set stores value under key. The write is committed when Set returns nil.
	Set(ctx context.Context, key string, value any) error
}

// MemoryFlagStore is an in-process FlagStore.
// Setting FailWrites makes every Set fail with that error.
type MemoryFlagStore struct {
	values     map[string]json.RawMessage
	FailWrites error
	Writes     int
}

// NewMemoryFlagStore creates an empty MemoryFlagStore.
func NewMemoryFlagStore() *MemoryFlagStore {
	return &MemoryFlagStore{values: map[string]json.RawMessage{}}
}

// Get implements FlagStore.
func (m *MemoryFlagStore) Get(_ context.Context, key string, dst any) (bool, error) {
	raw, ok := m.values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("decode flag %q: %w", key, err)
	}
	return true, nil
}

// Set implements FlagStore.
func (m *MemoryFlagStore) Set(ctx context.Context, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.FailWrites != nil {
		return m.FailWrites
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode flag %q: %w", key, err)
	}
	m.values[key] = raw
	m.Writes++
	return nil
}
