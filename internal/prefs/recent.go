package prefs

import (
	"context"
	"slices"

	"github.com/nikbrunner/scenelib/internal/storage"
)

// MaxRecent bounds the recency list.
const MaxRecent = 50

// Recents is the most-recently-used scene list, most recent first.
type Recents struct {
	store storage.FlagStore
	ids   []string
}

// LoadRecents reads the recency flag, repairing duplicates and overlong lists.
func LoadRecents(ctx context.Context, store storage.FlagStore) (*Recents, error) {
	var ids []string
	if _, err := store.Get(ctx, storage.KeyRecent, &ids); err != nil {
		return nil, err
	}

	clean := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		clean = append(clean, id)
	}
	if len(clean) > MaxRecent {
		clean = clean[:MaxRecent]
	}
	return &Recents{store: store, ids: clean}, nil
}

// List returns a copy of the recency list.
func (r *Recents) List() []string {
	return slices.Clone(r.ids)
}

// Len returns the number of recent entries.
func (r *Recents) Len() int {
	return len(r.ids)
}

// Position returns the index of id in the list, or -1.
func (r *Recents) Position(id string) int {
	return slices.Index(r.ids, id)
}

// Add moves id to the front of the list and truncates it to MaxRecent.
func (r *Recents) Add(ctx context.Context, id string) error {
	ids := make([]string, 0, len(r.ids)+1)
	ids = append(ids, id)
	for _, other := range r.ids {
		if other != id {
			ids = append(ids, other)
		}
	}
	if len(ids) > MaxRecent {
		ids = ids[:MaxRecent]
	}
	r.ids = ids
	return r.save(ctx)
}

// Remove drops id from the list. Removing an absent id still persists.
func (r *Recents) Remove(ctx context.Context, id string) error {
	r.ids = slices.DeleteFunc(r.ids, func(other string) bool { return other == id })
	return r.save(ctx)
}

// Clear empties the list.
func (r *Recents) Clear(ctx context.Context) error {
	r.ids = []string{}
	return r.save(ctx)
}

func (r *Recents) save(ctx context.Context) error {
	return persist(ctx, r.store, storage.KeyRecent, r.ids)
}
