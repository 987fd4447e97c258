// Package source adapts content sources (the mutable world collection and
// read-only packs) into plain, namespaced folder and item records.
package source

import (
	"context"

	"github.com/nikbrunner/scenelib/internal/model"
)

// Adapter exposes one content source to the query core.
type Adapter interface {
	// ID returns the source id used as namespace prefix of every record.
	ID() string
	// ReadOnly reports whether the source rejects mutations.
	ReadOnly() bool
	// ListFolders returns every folder of the source.
	ListFolders(ctx context.Context) ([]model.Folder, error)
	// ListItems returns the items of a folder, or every item when folderID is nil.
	ListItems(ctx context.Context, folderID *string) ([]model.Item, error)
}

// Snapshot is the folder and item listing of one source at query time.
type Snapshot struct {
	SourceID string
	Folders  []model.Folder
	Items    []model.Item
}

// Take lists folders and items of a. On failure it returns an empty snapshot
// and a *model.SourceError.
func Take(ctx context.Context, a Adapter) (Snapshot, error) {
	snap := Snapshot{SourceID: a.ID(), Folders: []model.Folder{}, Items: []model.Item{}}

	folders, err := a.ListFolders(ctx)
	if err != nil {
		return snap, asSourceError(a.ID(), err)
	}
	items, err := a.ListItems(ctx, nil)
	if err != nil {
		return snap, asSourceError(a.ID(), err)
	}

	snap.Folders = folders
	snap.Items = items
	return snap, nil
}

func asSourceError(id string, err error) error {
	if se, ok := err.(*model.SourceError); ok {
		return se
	}
	return &model.SourceError{SourceID: id, Err: err}
}
