package library_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/scenelib/internal/library"
	"github.com/nikbrunner/scenelib/internal/model"
	"github.com/nikbrunner/scenelib/internal/prefs"
	"github.com/nikbrunner/scenelib/internal/source"
	"github.com/nikbrunner/scenelib/internal/storage"
	"github.com/nikbrunner/scenelib/internal/tags"
	"github.com/nikbrunner/scenelib/internal/visibility"
)

type fixture struct {
	lib   *library.Library
	world *source.World
	flags *storage.MemoryFlagStore
}

// World layout:
//
//	dungeons (f1)
//	  caves (f2)
//	    s1 Crystal Cave
//	  s2 Crypt
//	towns (f3)
//	  s3 Tavern
//	s4 Castle Gate (unsorted)
func newFixture(t *testing.T, packs ...*source.Pack) fixture {
	t.Helper()
	ctx := context.Background()

	f1, f2, f3 := "f1", "f2", "f3"
	world := source.NewWorld(&model.Store{
		Folders: []model.SceneFolder{
			{ID: f1, Name: "Dungeons", Sort: 1},
			{ID: f2, Name: "Caves", ParentID: &f1, Sort: 1},
			{ID: f3, Name: "Towns", Sort: 2},
		},
		Scenes: []model.Scene{
			{ID: "s1", Name: "Crystal Cave", FolderID: &f2, Sort: 1},
			{ID: "s2", Name: "Crypt", FolderID: &f1, Sort: 2},
			{ID: "s3", Name: "Tavern", FolderID: &f3, Sort: 3},
			{ID: "s4", Name: "Castle Gate", Sort: 4},
		},
	})

	flags := storage.NewMemoryFlagStore()
	p, err := prefs.Load(ctx, flags)
	assert.NilError(t, err)
	catalog, err := tags.Load(ctx, world, flags, nil)
	assert.NilError(t, err)

	lib := library.New(library.Params{
		Registry: source.NewRegistry(world, packs, nil),
		Catalog:  catalog,
		Prefs:    p,
		PageSize: 12,
	})
	t.Cleanup(lib.Close)
	return fixture{lib: lib, world: world, flags: flags}
}

func nodeIDs(tv library.TreeView) []string {
	out := []string{}
	for _, n := range visibility.Flatten(tv.Nodes) {
		out = append(out, n.Folder.ID)
	}
	return out
}

func itemIDs(items []model.Item) []string {
	out := []string{}
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func staticPack(name string, idx *source.PackIndex) *source.Pack {
	return source.NewPack(name, source.IndexFetcherFunc(func(context.Context) (*source.PackIndex, error) {
		return idx, nil
	}), nil)
}

func TestVisibleTree_FavoriteRevealsBranch(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	tv, err := fx.lib.VisibleTree(ctx, library.NewViewState())
	assert.NilError(t, err)
	assert.DeepEqual(t, nodeIDs(tv), []string{"world/f1", "world/f3"})

	_, err = fx.lib.ToggleFavorite(ctx, prefs.KindItem, "world/s1")
	assert.NilError(t, err)

	tv, err = fx.lib.VisibleTree(ctx, library.NewViewState())
	assert.NilError(t, err)
	assert.DeepEqual(t, nodeIDs(tv), []string{"world/f1", "world/f2", "world/f3"})
	assert.Check(t, is.Equal(tv.Counts.Favorites, 1))
	assert.Check(t, is.Equal(tv.Counts.All, 4))
	assert.Check(t, is.Equal(tv.Counts.Unsorted, 1))
}

func TestVisibleTree_Counts(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	tv, err := fx.lib.VisibleTree(ctx, library.NewViewState().WithExpanded("world/f1", true))
	assert.NilError(t, err)

	f1, ok := visibility.Find(tv.Nodes, "world/f1")
	assert.Assert(t, ok)
	assert.Check(t, is.Equal(f1.Count, 1))
	f2, ok := visibility.Find(tv.Nodes, "world/f2")
	assert.Assert(t, ok)
	assert.Check(t, is.Equal(f2.Count, 1))
}

func TestVisibleItems_Scopes(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	vs := library.NewViewState()

	iv, err := fx.lib.VisibleItems(ctx, vs)
	assert.NilError(t, err)
	assert.Check(t, is.Len(iv.Items, 0), "no favorites yet")

	iv, err = fx.lib.VisibleItems(ctx, vs.WithScope(model.UnsortedScope))
	assert.NilError(t, err)
	assert.DeepEqual(t, itemIDs(iv.Items), []string{"world/s4"})

	iv, err = fx.lib.VisibleItems(ctx, vs.WithScope(model.FolderScope("world/f1")))
	assert.NilError(t, err)
	assert.DeepEqual(t, itemIDs(iv.Items), []string{"world/s2"})

	_, err = fx.lib.ToggleFavorite(ctx, prefs.KindItem, "world/s3")
	assert.NilError(t, err)
	iv, err = fx.lib.VisibleItems(ctx, vs.WithScope(model.AllScope))
	assert.NilError(t, err)
	assert.DeepEqual(t, itemIDs(iv.Items), []string{"world/s3", "world/s1", "world/s2", "world/s4"})
	assert.Check(t, iv.Items[0].IsFavorite)
}

func TestVisibleItems_Recent(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	for _, id := range []string{"world/s4", "world/s1", "world/s3"} {
		assert.NilError(t, fx.lib.AddToRecent(ctx, id))
	}
	_, err := fx.lib.ToggleFavorite(ctx, prefs.KindItem, "world/s4")
	assert.NilError(t, err)

	iv, err := fx.lib.VisibleItems(ctx, library.NewViewState().WithScope(model.RecentScope))
	assert.NilError(t, err)
	assert.DeepEqual(t, itemIDs(iv.Items), []string{"world/s3", "world/s1", "world/s4"})

	assert.NilError(t, fx.lib.RemoveFromRecent(ctx, "world/s1"))
	assert.Check(t, errors.Is(fx.lib.RemoveFromRecent(ctx, "world/s1"), model.ErrNotFound))
	assert.Check(t, errors.Is(fx.lib.AddToRecent(ctx, "world/nope"), model.ErrNotFound))

	assert.NilError(t, fx.lib.ClearRecent(ctx))
	assert.Check(t, is.Equal(fx.lib.Prefs().Recents.Len(), 0))
}

func TestVisibleItems_SearchAndPageClamp(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	store := fx.world.Store()
	for i := range 21 {
		store.AddScene(model.NewScene(model.NewSceneParams{Name: fmt.Sprintf("Extra %02d", i)}))
	}

	vs := library.NewViewState().WithScope(model.AllScope).WithPage(3)
	iv, err := fx.lib.VisibleItems(ctx, vs)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(iv.Total, 25))
	assert.Check(t, is.Equal(iv.TotalPages, 3))
	assert.Check(t, is.Len(iv.Items, 1))

	vs = vs.WithPage(5).WithItemSearch("$c")
	iv, err = fx.lib.VisibleItems(ctx, vs)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(iv.Total, 3))
	assert.Check(t, is.Equal(iv.Page, 1))
	assert.Check(t, is.Equal(vs.Page, 5), "view state is not modified")
}

func TestSetTags_QueriesAndVocabulary(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	assert.NilError(t, fx.lib.SetTags(ctx, "world/s1", []string{"Cave", "dragon"}))
	assert.NilError(t, fx.lib.SetTags(ctx, "world/s3", []string{"inn", "Dragon"}))
	assert.DeepEqual(t, fx.lib.Vocabulary(), []string{"cave", "dragon", "inn"})

	vs := library.NewViewState().WithScope(model.AllScope)
	iv, err := fx.lib.VisibleItems(ctx, vs.WithItemSearch("#dragon cave"))
	assert.NilError(t, err)
	assert.DeepEqual(t, itemIDs(iv.Items), []string{"world/s1"})

	iv, err = fx.lib.VisibleItems(ctx, vs.WithItemSearch("drag"))
	assert.NilError(t, err)
	assert.DeepEqual(t, itemIDs(iv.Items), []string{"world/s1", "world/s3"})

	iv, err = fx.lib.VisibleItems(ctx, vs.WithItemSearch("#drag"))
	assert.NilError(t, err)
	assert.Check(t, is.Len(iv.Items, 0), "tag queries match whole tags")

	assert.NilError(t, fx.lib.DeleteItem(ctx, "world/s3"))
	assert.DeepEqual(t, fx.lib.Vocabulary(), []string{"cave", "dragon"})

	assert.Check(t, errors.Is(fx.lib.SetTags(ctx, "world/nope", []string{"x"}), model.ErrNotFound))
	assert.DeepEqual(t, fx.lib.SuggestTags("#dr", 5), []string{"dragon"})
}

func TestMoveFolder_RejectsCycles(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	before := fx.world.Store().GetFolderByID("f1").ParentID

	err := fx.lib.MoveFolder(ctx, "world/f1", model.StringPtr("world/f2"))
	assert.Check(t, errors.Is(err, model.ErrWouldCreateCycle))
	err = fx.lib.MoveFolder(ctx, "world/f1", model.StringPtr("world/f1"))
	assert.Check(t, errors.Is(err, model.ErrWouldCreateCycle))
	assert.Check(t, fx.world.Store().GetFolderByID("f1").ParentID == before)

	assert.NilError(t, fx.lib.MoveFolder(ctx, "world/f2", model.StringPtr("world/f3")))
	assert.Check(t, is.Equal(*fx.world.Store().GetFolderByID("f2").ParentID, "f3"))

	err = fx.lib.MoveFolder(ctx, "world/missing", nil)
	assert.Check(t, errors.Is(err, model.ErrNotFound))
}

func TestMoveItem(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	assert.NilError(t, fx.lib.MoveItem(ctx, "world/s4", model.StringPtr("world/f3")))
	iv, err := fx.lib.VisibleItems(ctx, library.NewViewState().WithScope(model.FolderScope("world/f3")))
	assert.NilError(t, err)
	assert.DeepEqual(t, itemIDs(iv.Items), []string{"world/s3", "world/s4"})

	assert.Check(t, errors.Is(fx.lib.MoveItem(ctx, "world/nope", nil), model.ErrNotFound))
}

func TestPackSource(t *testing.T) {
	ctx := context.Background()
	pack := staticPack("maps", &source.PackIndex{
		Items: []source.PackEntry{
			{ID: "1", Name: "Glade", Folder: model.StringPtr("a"), Tags: []string{"forest"}},
			{ID: "2", Name: "Bog", Folder: model.StringPtr("a")},
		},
	})
	fx := newFixture(t, pack)

	vs := library.NewViewState().WithSource("pack:maps")
	tv, err := fx.lib.VisibleTree(ctx, vs)
	assert.NilError(t, err)
	assert.DeepEqual(t, nodeIDs(tv), []string{"pack:maps/a"})
	assert.Check(t, is.Equal(tv.Nodes[0].Folder.Name, "Folder 1"))
	assert.Check(t, is.Equal(tv.Nodes[0].Count, 2))

	iv, err := fx.lib.VisibleItems(ctx, vs.WithScope(model.AllScope).WithItemSearch("#forest"))
	assert.NilError(t, err)
	assert.DeepEqual(t, itemIDs(iv.Items), []string{"pack:maps/1"})

	err = fx.lib.MoveItem(ctx, "pack:maps/1", nil)
	assert.Check(t, errors.Is(err, model.ErrReadOnly))
	err = fx.lib.SetTags(ctx, "pack:maps/1", []string{"x"})
	assert.Check(t, errors.Is(err, model.ErrReadOnly))

	on, err := fx.lib.ToggleFavorite(ctx, prefs.KindItem, "pack:maps/1")
	assert.NilError(t, err)
	assert.Check(t, on)

	newID, err := fx.lib.ImportItem(ctx, "pack:maps/1", model.StringPtr("world/f3"))
	assert.NilError(t, err)
	assert.Check(t, is.Equal(model.SourceOf(newID), model.WorldSourceID))
	assert.DeepEqual(t, fx.lib.Vocabulary(), []string{"forest"})

	_, err = fx.lib.ImportItem(ctx, "pack:maps/404", nil)
	assert.Check(t, errors.Is(err, model.ErrNotFound))
}

func TestPackSource_SlashedRawIDs(t *testing.T) {
	ctx := context.Background()
	pack := staticPack("maps", &source.PackIndex{
		Folders: []source.PackFolder{{ID: "regions/north", Name: "North"}},
		Items: []source.PackEntry{
			{ID: "scenes/1", Name: "Glade", Folder: model.StringPtr("regions/north")},
		},
	})
	fx := newFixture(t, pack)

	iv, err := fx.lib.VisibleItems(ctx, library.NewViewState().WithSource("pack:maps").WithScope(model.AllScope))
	assert.NilError(t, err)
	assert.DeepEqual(t, itemIDs(iv.Items), []string{"pack:maps/scenes/1"})
	id := iv.Items[0].ID
	assert.Check(t, is.Equal(model.SourceOf(id), "pack:maps"))

	_, ok, err := fx.lib.Registry().FindItem(ctx, id)
	assert.NilError(t, err)
	assert.Check(t, ok)
	_, ok, err = fx.lib.Registry().FindFolder(ctx, "pack:maps/regions/north")
	assert.NilError(t, err)
	assert.Check(t, ok)

	on, err := fx.lib.ToggleFavorite(ctx, prefs.KindItem, id)
	assert.NilError(t, err)
	assert.Check(t, on)
	assert.NilError(t, fx.lib.AddToRecent(ctx, id))

	newID, err := fx.lib.ImportItem(ctx, id, nil)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(model.SourceOf(newID), model.WorldSourceID))
}

func TestUnavailablePack(t *testing.T) {
	ctx := context.Background()
	broken := source.NewPack("broken", source.IndexFetcherFunc(func(context.Context) (*source.PackIndex, error) {
		return nil, errors.New("offline")
	}), nil)
	fx := newFixture(t, broken)

	vs := library.NewViewState().WithSource("pack:broken")
	tv, err := fx.lib.VisibleTree(ctx, vs)
	assert.Check(t, errors.Is(err, model.ErrSourceUnavailable))
	assert.Check(t, is.Len(tv.Nodes, 0))

	iv, err := fx.lib.VisibleItems(ctx, vs.WithScope(model.AllScope))
	assert.Check(t, errors.Is(err, model.ErrSourceUnavailable))
	assert.Check(t, is.Len(iv.Items, 0))

	// The world is unaffected.
	_, err = fx.lib.VisibleTree(ctx, library.NewViewState())
	assert.NilError(t, err)
}

func TestUnknownInputsYieldEmptyResults(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	iv, err := fx.lib.VisibleItems(ctx, library.NewViewState().WithScope(model.FolderScope("world/nope")))
	assert.NilError(t, err)
	assert.Check(t, is.Len(iv.Items, 0))

	tv, err := fx.lib.VisibleTree(ctx, library.NewViewState().WithSource("pack:unknown"))
	assert.NilError(t, err)
	assert.Check(t, is.Len(tv.Nodes, 0))

	_, err = fx.lib.ToggleFavorite(ctx, prefs.KindFolder, "world/nope")
	assert.Check(t, errors.Is(err, model.ErrNotFound))
}

func TestReindexRefetchesPack(t *testing.T) {
	ctx := context.Background()
	calls := 0
	pack := source.NewPack("live", source.IndexFetcherFunc(func(context.Context) (*source.PackIndex, error) {
		calls++
		return &source.PackIndex{Items: []source.PackEntry{{ID: fmt.Sprint(calls), Name: "Scene"}}}, nil
	}), nil)
	fx := newFixture(t, pack)
	vs := library.NewViewState().WithSource("pack:live").WithScope(model.AllScope)

	iv, err := fx.lib.VisibleItems(ctx, vs)
	assert.NilError(t, err)
	assert.DeepEqual(t, itemIDs(iv.Items), []string{"pack:live/1"})

	assert.NilError(t, fx.lib.Reindex(ctx, "pack:live"))
	iv, err = fx.lib.VisibleItems(ctx, vs)
	assert.NilError(t, err)
	assert.DeepEqual(t, itemIDs(iv.Items), []string{"pack:live/2"})

	assert.Check(t, errors.Is(fx.lib.Reindex(ctx, "pack:nope"), model.ErrNotFound))
}

func TestPersistFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	fx.flags.FailWrites = errors.New("disk full")

	on, err := fx.lib.ToggleFavorite(ctx, prefs.KindItem, "world/s1")
	assert.Check(t, errors.Is(err, model.ErrPersistenceFailed))
	assert.Check(t, on, "in-memory change is kept")
	assert.Check(t, fx.lib.Prefs().Favorites.IsFavorite(prefs.KindItem, "world/s1"))
}

func TestViewStateIsImmutable(t *testing.T) {
	base := library.NewViewState()
	opened := base.WithExpanded("world/f1", true)

	assert.Check(t, !base.Expanded["world/f1"])
	assert.Check(t, opened.Expanded["world/f1"])
	assert.Check(t, !opened.ToggleExpanded("world/f1").Expanded["world/f1"])
	assert.Check(t, opened.Expanded["world/f1"])

	scoped := opened.WithPage(4).WithScope(model.RecentScope)
	assert.Check(t, is.Equal(scoped.Page, 1))
	assert.Check(t, is.Len(scoped.WithSource("pack:x").Expanded, 0))
}
