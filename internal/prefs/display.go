package prefs

import (
	"context"

	"github.com/nikbrunner/scenelib/internal/storage"
)

// Display holds the boolean display preferences.
type Display struct {
	store        storage.FlagStore
	ShowTags     bool
	Paginate     bool
	UseFullImage bool
}

// LoadDisplay reads the display flags. Pagination and tag display default to on.
func LoadDisplay(ctx context.Context, store storage.FlagStore) (*Display, error) {
	d := &Display{store: store, ShowTags: true, Paginate: true}
	for key, dst := range map[string]*bool{
		storage.KeyShowTags:     &d.ShowTags,
		storage.KeyPaginate:     &d.Paginate,
		storage.KeyUseFullImage: &d.UseFullImage,
	} {
		if _, err := store.Get(ctx, key, dst); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// ToggleShowTags flips tag display and persists it.
func (d *Display) ToggleShowTags(ctx context.Context) error {
	d.ShowTags = !d.ShowTags
	return persist(ctx, d.store, storage.KeyShowTags, d.ShowTags)
}

// TogglePaginate flips pagination and persists it.
func (d *Display) TogglePaginate(ctx context.Context) error {
	d.Paginate = !d.Paginate
	return persist(ctx, d.store, storage.KeyPaginate, d.Paginate)
}

// ToggleUseFullImage flips full-image mode and persists it.
func (d *Display) ToggleUseFullImage(ctx context.Context) error {
	d.UseFullImage = !d.UseFullImage
	return persist(ctx, d.store, storage.KeyUseFullImage, d.UseFullImage)
}

// Prefs bundles everything loaded from the flag store for one session.
type Prefs struct {
	Favorites *Favorites
	Recents   *Recents
	Display   *Display
}

// Load reads favorites, recents and display flags.
func Load(ctx context.Context, store storage.FlagStore) (*Prefs, error) {
	favs, err := LoadFavorites(ctx, store)
	if err != nil {
		return nil, err
	}
	recents, err := LoadRecents(ctx, store)
	if err != nil {
		return nil, err
	}
	display, err := LoadDisplay(ctx, store)
	if err != nil {
		return nil, err
	}
	return &Prefs{Favorites: favs, Recents: recents, Display: display}, nil
}
