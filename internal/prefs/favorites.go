// Package prefs holds the per-user favorites, recents and display toggles,
// persisted through a storage.FlagStore.
package prefs

import (
	"context"
	"slices"

	"github.com/nikbrunner/scenelib/internal/metrics"
	"github.com/nikbrunner/scenelib/internal/model"
	"github.com/nikbrunner/scenelib/internal/storage"
)

// Kind distinguishes favorite folders from favorite scenes.
type Kind int

const (
	KindItem Kind = iota
	KindFolder
)

func (k Kind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "scene"
}

// favoritesFlag is the persisted shape of the favorites flag.
type favoritesFlag struct {
	Scenes  []string `json:"scenes"`
	Folders []string `json:"folders"`
}

// Favorites is the set of favorite folder and scene ids.
type Favorites struct {
	store   storage.FlagStore
	items   map[string]struct{}
	folders map[string]struct{}
}

// LoadFavorites reads the favorites flag. A missing flag yields empty sets.
func LoadFavorites(ctx context.Context, store storage.FlagStore) (*Favorites, error) {
	var flag favoritesFlag
	if _, err := store.Get(ctx, storage.KeyFavorites, &flag); err != nil {
		return nil, err
	}

	f := &Favorites{
		store:   store,
		items:   make(map[string]struct{}, len(flag.Scenes)),
		folders: make(map[string]struct{}, len(flag.Folders)),
	}
	for _, id := range flag.Scenes {
		f.items[id] = struct{}{}
	}
	for _, id := range flag.Folders {
		f.folders[id] = struct{}{}
	}
	return f, nil
}

func (f *Favorites) set(kind Kind) map[string]struct{} {
	if kind == KindFolder {
		return f.folders
	}
	return f.items
}

// IsFavorite reports whether id is a favorite of the given kind.
func (f *Favorites) IsFavorite(kind Kind, id string) bool {
	_, ok := f.set(kind)[id]
	return ok
}

// Count returns the number of favorites of the given kind.
func (f *Favorites) Count(kind Kind) int {
	return len(f.set(kind))
}

// Toggle flips membership of id and persists the result.
// It returns the new membership. On a persistence error the in-memory
// change is kept and the error is a *model.PersistError.
func (f *Favorites) Toggle(ctx context.Context, kind Kind, id string) (bool, error) {
	set := f.set(kind)
	_, was := set[id]
	if was {
		delete(set, id)
	} else {
		set[id] = struct{}{}
	}
	return !was, f.save(ctx)
}

func (f *Favorites) save(ctx context.Context) error {
	flag := favoritesFlag{Scenes: sortedKeys(f.items), Folders: sortedKeys(f.folders)}
	return persist(ctx, f.store, storage.KeyFavorites, flag)
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// persist writes one flag, converting failures into *model.PersistError.
func persist(ctx context.Context, store storage.FlagStore, key string, value any) error {
	if err := store.Set(ctx, key, value); err != nil {
		metrics.PersistFailuresTotal.WithLabelValues(key).Inc()
		return &model.PersistError{Key: key, Err: err}
	}
	return nil
}
