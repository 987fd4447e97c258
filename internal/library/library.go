// Package library is the query and mutation surface of the scene library.
// Queries are recomputed from the sources on every call; only the tag
// vocabulary and pack indexes are cached.
package library

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nikbrunner/scenelib/internal/compose"
	"github.com/nikbrunner/scenelib/internal/events"
	"github.com/nikbrunner/scenelib/internal/logging"
	"github.com/nikbrunner/scenelib/internal/metrics"
	"github.com/nikbrunner/scenelib/internal/model"
	"github.com/nikbrunner/scenelib/internal/prefs"
	"github.com/nikbrunner/scenelib/internal/search"
	"github.com/nikbrunner/scenelib/internal/source"
	"github.com/nikbrunner/scenelib/internal/tags"
	"github.com/nikbrunner/scenelib/internal/visibility"
)

// TreeView is the folder tree of a source plus the system scope counts.
type TreeView struct {
	Nodes  []visibility.Node
	Counts compose.Counts
}

// ItemsView is one page of the item listing.
type ItemsView compose.Result

// Params configures a Library.
type Params struct {
	Registry *source.Registry
	Catalog  *tags.Catalog
	Prefs    *prefs.Prefs
	Bus      *events.Bus
	Logger   *log.Logger
	PageSize int
}

// Library answers tree and item queries and applies mutations.
type Library struct {
	registry    *source.Registry
	catalog     *tags.Catalog
	prefs       *prefs.Prefs
	bus         *events.Bus
	logger      *log.Logger
	pageSize    int
	unsubscribe func()
}

// New creates a Library and subscribes it to the bus.
func New(params Params) *Library {
	bus := params.Bus
	if bus == nil {
		bus = events.NewBus()
	}
	l := &Library{
		registry: params.Registry,
		catalog:  params.Catalog,
		prefs:    params.Prefs,
		bus:      bus,
		logger:   logging.OrDiscard(params.Logger),
		pageSize: params.PageSize,
	}
	if l.pageSize <= 0 {
		l.pageSize = compose.DefaultPageSize
	}
	l.unsubscribe = bus.Subscribe(l.handle)
	return l
}

// Close detaches the library from its bus.
func (l *Library) Close() {
	l.unsubscribe()
}

// Bus returns the change bus the library listens on.
func (l *Library) Bus() *events.Bus { return l.bus }

// Prefs returns the session preferences.
func (l *Library) Prefs() *prefs.Prefs { return l.prefs }

// Registry returns the source registry.
func (l *Library) Registry() *source.Registry { return l.registry }

// handle keeps caches in line with source changes.
func (l *Library) handle(ctx context.Context, ev events.SourceChanged) error {
	switch ev.Kind {
	case events.ItemDeleted:
		var errs []error
		for _, id := range ev.IDs {
			errs = append(errs, l.catalog.OnItemDeleted(ctx, id))
		}
		return errors.Join(errs...)
	case events.PackReindexed:
		l.registry.Invalidate(ev.SourceID)
	}
	return nil
}

// items lists a source with favorite flags and catalog tags applied.
func (l *Library) items(ctx context.Context, sourceID string) (source.Snapshot, error) {
	snap, err := l.registry.Snapshot(ctx, sourceID)
	if err != nil {
		return snap, err
	}
	for i := range snap.Items {
		it := &snap.Items[i]
		if t := l.catalog.Tags(it.ID); len(t) > 0 || it.SourceID == model.WorldSourceID {
			it.Tags = t
		}
		it.IsFavorite = l.prefs.Favorites.IsFavorite(prefs.KindItem, it.ID)
	}
	return snap, nil
}

// VisibleTree computes the folder tree for v. A failing source yields an
// empty tree and an error matching model.ErrSourceUnavailable.
func (l *Library) VisibleTree(ctx context.Context, v ViewState) (TreeView, error) {
	start := time.Now()
	defer metrics.ObserveQuery("tree", start)

	snap, err := l.items(ctx, v.Source)
	if err != nil {
		return TreeView{Nodes: []visibility.Node{}}, err
	}

	nodes := visibility.Build(visibility.Input{
		Folders:   snap.Folders,
		Items:     snap.Items,
		Favorites: l.prefs.Favorites,
		Expanded:  v.Expanded,
		Term:      v.FolderSearch,
	})
	l.logger.Debug("tree query", "source", snap.SourceID, "folders", len(snap.Folders), "roots", len(nodes))
	return TreeView{
		Nodes:  nodes,
		Counts: compose.CountScopes(snap.Items, l.prefs.Recents.List()),
	}, nil
}

// VisibleItems computes the item page for v. The returned page is the
// clamped page the caller should track.
func (l *Library) VisibleItems(ctx context.Context, v ViewState) (ItemsView, error) {
	start := time.Now()
	defer metrics.ObserveQuery("items", start)

	snap, err := l.items(ctx, v.Source)
	if err != nil {
		return ItemsView{Items: []model.Item{}, Page: 1, TotalPages: 1}, err
	}

	res := compose.Compose(snap.Items, compose.Request{
		Scope:    v.Scope,
		Query:    search.Parse(v.ItemSearch),
		Recent:   l.prefs.Recents.List(),
		Page:     v.Page,
		PageSize: l.pageSize,
		Paginate: l.prefs.Display.Paginate,
	})
	l.logger.Debug("items query", "source", snap.SourceID, "scope", v.Scope, "total", res.Total, "page", res.Page)
	return ItemsView(res), nil
}

// ToggleFavorite flips the favorite state of an item or folder.
func (l *Library) ToggleFavorite(ctx context.Context, kind prefs.Kind, id string) (bool, error) {
	var (
		ok  bool
		err error
	)
	if kind == prefs.KindFolder {
		_, ok, err = l.registry.FindFolder(ctx, id)
	} else {
		_, ok, err = l.registry.FindItem(ctx, id)
	}
	if err != nil {
		return false, err
	}
	// Stale favorites of removed records can still be switched off.
	if !ok && !l.prefs.Favorites.IsFavorite(kind, id) {
		return false, model.NotFoundf("%s %s", kind, id)
	}
	return l.prefs.Favorites.Toggle(ctx, kind, id)
}

// SetTags replaces the tags of a world scene.
func (l *Library) SetTags(ctx context.Context, id string, tagList []string) error {
	if model.SourceOf(id) != model.WorldSourceID {
		if _, ok, _ := l.registry.FindItem(ctx, id); ok {
			return fmt.Errorf("tag %s: %w", id, model.ErrReadOnly)
		}
	}
	if err := l.catalog.SetTags(ctx, id, tagList); err != nil {
		return err
	}
	return l.bus.Publish(ctx, events.SourceChanged{Kind: events.ItemUpdated, SourceID: model.SourceOf(id), IDs: []string{id}})
}

// AddToRecent moves an item to the front of the recency list.
func (l *Library) AddToRecent(ctx context.Context, id string) error {
	_, ok, err := l.registry.FindItem(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return model.NotFoundf("scene %s", id)
	}
	return l.prefs.Recents.Add(ctx, id)
}

// RemoveFromRecent drops an id from the recency list.
func (l *Library) RemoveFromRecent(ctx context.Context, id string) error {
	if l.prefs.Recents.Position(id) < 0 {
		return model.NotFoundf("recent entry %s", id)
	}
	return l.prefs.Recents.Remove(ctx, id)
}

// ClearRecent empties the recency list.
func (l *Library) ClearRecent(ctx context.Context) error {
	return l.prefs.Recents.Clear(ctx)
}

// MoveItem moves a world scene into a folder; nil moves it to unsorted.
func (l *Library) MoveItem(ctx context.Context, id string, folderID *string) error {
	if err := l.writable(id); err != nil {
		return err
	}
	if err := l.registry.World().MoveItem(ctx, id, folderID); err != nil {
		return err
	}
	return l.bus.Publish(ctx, events.SourceChanged{Kind: events.ItemUpdated, SourceID: model.WorldSourceID, IDs: []string{id}})
}

// MoveFolder reparents a world folder; nil moves it to the root. Moves that
// would nest a folder inside itself are rejected before anything changes.
func (l *Library) MoveFolder(ctx context.Context, id string, parentID *string) error {
	if err := l.writable(id); err != nil {
		return err
	}
	world := l.registry.World()
	folders, err := world.ListFolders(ctx)
	if err != nil {
		return err
	}
	if err := compose.CheckMove(folders, id, parentID); err != nil {
		l.logger.Debug("folder move rejected", "folder", id, "err", err)
		return err
	}
	if err := world.MoveFolder(ctx, id, parentID); err != nil {
		return err
	}
	return l.bus.Publish(ctx, events.SourceChanged{Kind: events.FolderUpdated, SourceID: model.WorldSourceID, IDs: []string{id}})
}

// ImportItem copies an item of any source into a world folder and carries
// its tags over. It returns the id of the new world scene.
func (l *Library) ImportItem(ctx context.Context, id string, destFolderID *string) (string, error) {
	it, ok, err := l.registry.FindItem(ctx, id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", model.NotFoundf("scene %s", id)
	}

	world := l.registry.World()
	newID, err := world.ImportItem(ctx, it, destFolderID)
	if err != nil {
		return "", err
	}
	l.logger.Info("imported scene", "from", id, "to", newID)

	tagList := it.Tags
	if t := l.catalog.Tags(id); len(t) > 0 {
		tagList = t
	}
	if len(tagList) > 0 {
		if err := l.catalog.SetTags(ctx, newID, tagList); err != nil {
			return newID, err
		}
	}
	return newID, l.bus.Publish(ctx, events.SourceChanged{Kind: events.ItemCreated, SourceID: model.WorldSourceID, IDs: []string{newID}})
}

// DeleteItem removes a world scene and announces the deletion.
func (l *Library) DeleteItem(ctx context.Context, id string) error {
	if err := l.writable(id); err != nil {
		return err
	}
	if err := l.registry.World().DeleteItem(ctx, id); err != nil {
		return err
	}
	return l.bus.Publish(ctx, events.SourceChanged{Kind: events.ItemDeleted, SourceID: model.WorldSourceID, IDs: []string{id}})
}

// Reindex drops the cached index of a pack.
func (l *Library) Reindex(ctx context.Context, packID string) error {
	if _, ok := l.registry.Get(packID); !ok {
		return model.NotFoundf("source %s", packID)
	}
	return l.bus.Publish(ctx, events.SourceChanged{Kind: events.PackReindexed, SourceID: packID})
}

// Vocabulary returns every tag in use in the world.
func (l *Library) Vocabulary() []string {
	return l.catalog.Vocabulary()
}

// SuggestTags ranks vocabulary tags against a partial tag.
func (l *Library) SuggestTags(query string, limit int) []string {
	return l.catalog.Suggest(query, limit)
}

func (l *Library) writable(id string) error {
	src := model.SourceOf(id)
	if src == model.WorldSourceID {
		return nil
	}
	if _, ok := l.registry.Get(src); ok {
		return fmt.Errorf("%s: %w", id, model.ErrReadOnly)
	}
	return model.NotFoundf("%s", id)
}
