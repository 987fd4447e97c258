package source

import (
	"context"

	"github.com/nikbrunner/scenelib/internal/model"
)

// World adapts the mutable host collection and applies mutations to it.
type World struct {
	store *model.Store
}

// NewWorld wraps a host store.
func NewWorld(store *model.Store) *World {
	return &World{store: store}
}

// Store returns the wrapped host store.
func (w *World) Store() *model.Store {
	return w.store
}

// ID implements Adapter.
func (w *World) ID() string { return model.WorldSourceID }

// ReadOnly implements Adapter.
func (w *World) ReadOnly() bool { return false }

// ListFolders implements Adapter.
func (w *World) ListFolders(_ context.Context) ([]model.Folder, error) {
	folders := make([]model.Folder, 0, len(w.store.Folders))
	for _, f := range w.store.Folders {
		folders = append(folders, model.Folder{
			ID:       model.JoinID(model.WorldSourceID, f.ID),
			Name:     f.Name,
			ParentID: worldRef(f.ParentID),
			Color:    f.Color,
			Sort:     f.Sort,
			SourceID: model.WorldSourceID,
		})
	}
	return folders, nil
}

// ListItems implements Adapter.
func (w *World) ListItems(_ context.Context, folderID *string) ([]model.Item, error) {
	var rawFolder *string
	if folderID != nil {
		raw, err := w.rawID(*folderID)
		if err != nil {
			return []model.Item{}, nil
		}
		rawFolder = &raw
	}

	items := make([]model.Item, 0, len(w.store.Scenes))
	for _, sc := range w.store.Scenes {
		if folderID != nil && (sc.FolderID == nil || *sc.FolderID != *rawFolder) {
			continue
		}
		items = append(items, sceneToItem(sc))
	}
	return items, nil
}

// ItemIDs returns the composite ids of every live scene.
func (w *World) ItemIDs() []string {
	ids := make([]string, len(w.store.Scenes))
	for i, sc := range w.store.Scenes {
		ids[i] = model.JoinID(model.WorldSourceID, sc.ID)
	}
	return ids
}

// MoveItem reassigns a scene to a folder; nil moves it to unsorted.
func (w *World) MoveItem(_ context.Context, itemID string, folderID *string) error {
	raw, err := w.rawID(itemID)
	if err != nil {
		return err
	}
	sc := w.store.GetSceneByID(raw)
	if sc == nil {
		return model.NotFoundf("scene %s", itemID)
	}
	dest, err := w.folderRef(folderID)
	if err != nil {
		return err
	}
	sc.FolderID = dest
	return nil
}

// MoveFolder reparents a folder; nil moves it to the root.
// Cycle detection is the caller's job.
func (w *World) MoveFolder(_ context.Context, folderID string, parentID *string) error {
	raw, err := w.rawID(folderID)
	if err != nil {
		return err
	}
	f := w.store.GetFolderByID(raw)
	if f == nil {
		return model.NotFoundf("folder %s", folderID)
	}
	dest, err := w.folderRef(parentID)
	if err != nil {
		return err
	}
	f.ParentID = dest
	return nil
}

// ImportItem copies a record from another source into the world.
// It returns the composite id of the new scene.
func (w *World) ImportItem(_ context.Context, item model.Item, destFolderID *string) (string, error) {
	dest, err := w.folderRef(destFolderID)
	if err != nil {
		return "", err
	}
	sc := model.NewScene(model.NewSceneParams{
		Name:       item.Name,
		FolderID:   dest,
		Thumb:      item.Thumb,
		Background: item.Background,
	})
	sc.Navigation = item.Navigation
	if item.HasGrid {
		sc.GridType = 1
	}
	sc.TokenVision = item.HasVision
	w.store.AddScene(sc)
	return model.JoinID(model.WorldSourceID, sc.ID), nil
}

// DeleteItem removes a scene.
func (w *World) DeleteItem(_ context.Context, itemID string) error {
	raw, err := w.rawID(itemID)
	if err != nil {
		return err
	}
	if !w.store.RemoveScene(raw) {
		return model.NotFoundf("scene %s", itemID)
	}
	return nil
}

// rawID strips the world prefix from a composite id.
func (w *World) rawID(id string) (string, error) {
	src, raw, ok := model.SplitID(id)
	if !ok || src != model.WorldSourceID {
		return "", model.NotFoundf("%s is not a world id", id)
	}
	return raw, nil
}

// folderRef resolves an optional composite folder id to a raw world folder id.
func (w *World) folderRef(folderID *string) (*string, error) {
	if folderID == nil {
		return nil, nil
	}
	raw, err := w.rawID(*folderID)
	if err != nil {
		return nil, err
	}
	if w.store.GetFolderByID(raw) == nil {
		return nil, model.NotFoundf("folder %s", *folderID)
	}
	return &raw, nil
}

func worldRef(raw *string) *string {
	if raw == nil {
		return nil
	}
	id := model.JoinID(model.WorldSourceID, *raw)
	return &id
}

// sceneToItem converts a host scene into a plain record.
func sceneToItem(sc model.Scene) model.Item {
	return model.Item{
		ID:         model.JoinID(model.WorldSourceID, sc.ID),
		Name:       sc.Name,
		FolderID:   worldRef(sc.FolderID),
		SourceID:   model.WorldSourceID,
		Tags:       []string{},
		Sort:       sc.Sort,
		Thumb:      sc.Thumb,
		Background: sc.Background,
		Active:     sc.Active,
		Navigation: sc.Navigation,
		HasGrid:    sc.GridType != 0,
		HasVision:  sc.TokenVision,
	}
}
