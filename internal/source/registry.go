package source

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/nikbrunner/scenelib/internal/logging"
	"github.com/nikbrunner/scenelib/internal/model"
)

const maxConcurrentFetches = 4

// Registry holds the world adapter and every pack adapter.
type Registry struct {
	world  *World
	packs  []*Pack
	byID   map[string]Adapter
	logger *log.Logger
}

// NewRegistry creates a registry over the world and the given packs.
func NewRegistry(world *World, packs []*Pack, logger *log.Logger) *Registry {
	r := &Registry{
		world:  world,
		packs:  packs,
		byID:   map[string]Adapter{world.ID(): world},
		logger: logging.OrDiscard(logger),
	}
	for _, p := range packs {
		r.byID[p.ID()] = p
	}
	return r
}

// World returns the mutable world adapter.
func (r *Registry) World() *World { return r.world }

// Packs returns the pack adapters in registration order.
func (r *Registry) Packs() []*Pack { return r.packs }

// Sources returns every adapter, world first.
func (r *Registry) Sources() []Adapter {
	out := make([]Adapter, 0, len(r.packs)+1)
	out = append(out, r.world)
	for _, p := range r.packs {
		out = append(out, p)
	}
	return out
}

// Get looks up an adapter by source id.
func (r *Registry) Get(id string) (Adapter, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// Snapshot lists one source. An unknown source id yields an empty snapshot
// without error; a failing source yields an empty snapshot and a *model.SourceError.
func (r *Registry) Snapshot(ctx context.Context, sourceID string) (Snapshot, error) {
	if sourceID == "" {
		sourceID = model.WorldSourceID
	}
	a, ok := r.Get(sourceID)
	if !ok {
		return Snapshot{SourceID: sourceID, Folders: []model.Folder{}, Items: []model.Item{}}, nil
	}
	return Take(ctx, a)
}

// FindItem resolves a composite item id against its source.
func (r *Registry) FindItem(ctx context.Context, id string) (model.Item, bool, error) {
	a, ok := r.Get(model.SourceOf(id))
	if !ok {
		return model.Item{}, false, nil
	}
	items, err := a.ListItems(ctx, nil)
	if err != nil {
		return model.Item{}, false, asSourceError(a.ID(), err)
	}
	for _, it := range items {
		if it.ID == id {
			return it, true, nil
		}
	}
	return model.Item{}, false, nil
}

// FindFolder resolves a composite folder id against its source.
func (r *Registry) FindFolder(ctx context.Context, id string) (model.Folder, bool, error) {
	a, ok := r.Get(model.SourceOf(id))
	if !ok {
		return model.Folder{}, false, nil
	}
	folders, err := a.ListFolders(ctx)
	if err != nil {
		return model.Folder{}, false, asSourceError(a.ID(), err)
	}
	for _, f := range folders {
		if f.ID == id {
			return f, true, nil
		}
	}
	return model.Folder{}, false, nil
}

// Invalidate drops cached listings of a pack. The world is never cached.
func (r *Registry) Invalidate(sourceID string) {
	for _, p := range r.packs {
		if p.ID() == sourceID {
			p.Invalidate()
		}
	}
}

// Prefetch fetches every pack index concurrently. Failures are reported per
// source and never stop the other fetches.
func (r *Registry) Prefetch(ctx context.Context) map[string]error {
	var (
		mu     sync.Mutex
		failed = map[string]error{}
		g      errgroup.Group
	)
	g.SetLimit(maxConcurrentFetches)

	for _, p := range r.packs {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if _, err := p.Index(ctx); err != nil {
				mu.Lock()
				failed[p.ID()] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failed) > 0 {
		r.logger.Warn("some packs are unavailable", "failed", len(failed), "packs", len(r.packs))
	}
	return failed
}
