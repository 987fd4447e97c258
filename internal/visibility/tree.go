// Package visibility decides which folders of a source are shown in the
// folder tree for a given search term, favorite set and expansion state.
package visibility

import (
	"cmp"
	"slices"
	"strings"

	"github.com/nikbrunner/scenelib/internal/model"
	"github.com/nikbrunner/scenelib/internal/prefs"
)

// Favorites reports favorite membership of folders and items.
type Favorites interface {
	IsFavorite(kind prefs.Kind, id string) bool
}

// Input is everything a tree computation depends on.
type Input struct {
	Folders   []model.Folder
	Items     []model.Item
	Favorites Favorites
	// Expanded holds the ids of folders the user opened.
	Expanded map[string]bool
	// Term filters folders by name.
	Term string
}

// Node is one rendered folder of the tree.
type Node struct {
	Folder      model.Folder
	Depth       int
	Count       int
	IsFavorite  bool
	HasFavorite bool
	MatchName   bool
	Expanded    bool
	ForceExpand bool
	// ShowChildren is set when Children holds the visible subfolders.
	ShowChildren bool
	HasChildren  bool
	Children     []Node
}

// Verdict is the per-folder outcome of the visibility rules.
type Verdict struct {
	Visible            bool
	ForceExpand        bool
	ShowChildren       bool
	OnlyFavoritesBelow bool
}

// facts are the inputs of evaluate for one folder.
type facts struct {
	isFav            bool
	hasFavDescendant bool
	matchName        bool
	hasMatchInside   bool
	userExpanded     bool
}

// evaluate applies the visibility rules to a single folder.
func evaluate(f facts, onlyFavorites, searchActive bool) Verdict {
	if onlyFavorites && !f.isFav && !f.hasFavDescendant {
		return Verdict{}
	}
	if searchActive && !f.matchName && !f.hasMatchInside {
		return Verdict{}
	}

	forceExpand := searchActive && f.hasMatchInside
	return Verdict{
		Visible:            true,
		ForceExpand:        forceExpand,
		ShowChildren:       f.userExpanded || forceExpand || f.hasFavDescendant,
		OnlyFavoritesBelow: onlyFavorites || (!f.userExpanded && !forceExpand && f.hasFavDescendant),
	}
}

type summary struct {
	hasFav      bool
	matchInside bool
}

type tree struct {
	in       Input
	term     string
	byID     map[string]model.Folder
	children map[string][]model.Folder
	roots    []model.Folder
	counts   map[string]int
	favItems map[string]bool
	summary  map[string]summary
}

// Build returns the visible root folders with their visible subtrees.
func Build(in Input) []Node {
	t := newTree(in)
	for _, f := range t.roots {
		t.summarize(f.ID, map[string]bool{})
	}
	return t.visible(t.roots, 0, false, map[string]bool{})
}

func newTree(in Input) *tree {
	t := &tree{
		in:       in,
		term:     model.FoldCase(strings.TrimSpace(in.Term)),
		byID:     make(map[string]model.Folder, len(in.Folders)),
		children: map[string][]model.Folder{},
		counts:   map[string]int{},
		favItems: map[string]bool{},
		summary:  map[string]summary{},
	}
	for _, f := range in.Folders {
		t.byID[f.ID] = f
	}
	for _, f := range in.Folders {
		if f.ParentID == nil {
			t.roots = append(t.roots, f)
			continue
		}
		if _, ok := t.byID[*f.ParentID]; !ok {
			// Orphans surface at the root.
			t.roots = append(t.roots, f)
			continue
		}
		t.children[*f.ParentID] = append(t.children[*f.ParentID], f)
	}
	for _, it := range in.Items {
		if it.FolderID == nil {
			continue
		}
		t.counts[*it.FolderID]++
		if it.IsFavorite || t.isFav(prefs.KindItem, it.ID) {
			t.favItems[*it.FolderID] = true
		}
	}
	return t
}

func (t *tree) isFav(kind prefs.Kind, id string) bool {
	return t.in.Favorites != nil && t.in.Favorites.IsFavorite(kind, id)
}

func (t *tree) matches(name string) bool {
	return t.term != "" && strings.Contains(model.FoldCase(name), t.term)
}

// summarize computes favorite and search facts for the subtree of id.
// Folders already on the current path are skipped.
func (t *tree) summarize(id string, path map[string]bool) summary {
	if s, ok := t.summary[id]; ok {
		return s
	}
	if path[id] {
		return summary{}
	}
	path[id] = true
	defer delete(path, id)

	s := summary{hasFav: t.isFav(prefs.KindFolder, id) || t.favItems[id]}
	for _, c := range t.children[id] {
		cs := t.summarize(c.ID, path)
		s.hasFav = s.hasFav || cs.hasFav
		s.matchInside = s.matchInside || cs.matchInside || t.matches(c.Name)
	}
	t.summary[id] = s
	return s
}

func (t *tree) sorted(folders []model.Folder) []model.Folder {
	out := slices.Clone(folders)
	slices.SortStableFunc(out, func(a, b model.Folder) int {
		af, bf := t.isFav(prefs.KindFolder, a.ID), t.isFav(prefs.KindFolder, b.ID)
		if af != bf {
			if af {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.Sort, b.Sort)
	})
	return out
}

func (t *tree) visible(folders []model.Folder, depth int, onlyFavorites bool, path map[string]bool) []Node {
	nodes := []Node{}
	for _, f := range t.sorted(folders) {
		if path[f.ID] {
			continue
		}
		s := t.summary[f.ID]
		fc := facts{
			isFav:            t.isFav(prefs.KindFolder, f.ID),
			hasFavDescendant: s.hasFav,
			matchName:        t.matches(f.Name),
			hasMatchInside:   s.matchInside,
			userExpanded:     t.in.Expanded[f.ID],
		}
		v := evaluate(fc, onlyFavorites, t.term != "")
		if !v.Visible {
			continue
		}

		n := Node{
			Folder:       f,
			Depth:        depth,
			Count:        t.count(f),
			IsFavorite:   fc.isFav,
			HasFavorite:  fc.hasFavDescendant,
			MatchName:    fc.matchName,
			Expanded:     fc.userExpanded,
			ForceExpand:  v.ForceExpand,
			ShowChildren: v.ShowChildren,
			HasChildren:  len(t.children[f.ID]) > 0,
		}
		if v.ShowChildren {
			path[f.ID] = true
			n.Children = t.visible(t.children[f.ID], depth+1, v.OnlyFavoritesBelow, path)
			delete(path, f.ID)
		}
		nodes = append(nodes, n)
	}
	return nodes
}

// count prefers the count declared by the source over counting items.
func (t *tree) count(f model.Folder) int {
	if f.DeclaredCount != nil {
		return *f.DeclaredCount
	}
	return t.counts[f.ID]
}

// Flatten lists nodes depth first in render order.
func Flatten(nodes []Node) []Node {
	var out []Node
	for _, n := range nodes {
		out = append(out, n)
		out = append(out, Flatten(n.Children)...)
	}
	return out
}

// Find returns the visible node for a folder id.
func Find(nodes []Node, id string) (Node, bool) {
	for _, n := range Flatten(nodes) {
		if n.Folder.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
