package library

import (
	"maps"

	"github.com/nikbrunner/scenelib/internal/model"
)

// ViewState is the browser state a query is computed for. It is a value;
// the With methods return modified copies and never touch the receiver.
type ViewState struct {
	// Source is the source id; empty selects the world.
	Source       string
	Scope        model.Scope
	FolderSearch string
	ItemSearch   string
	Expanded     map[string]bool
	Page         int
}

// NewViewState returns the initial state: world source, favorites scope, page 1.
func NewViewState() ViewState {
	return ViewState{
		Source:   model.WorldSourceID,
		Scope:    model.FavoritesScope,
		Expanded: map[string]bool{},
		Page:     1,
	}
}

// WithSource switches source. Expansion and page are reset since folder ids
// differ per source.
func (v ViewState) WithSource(id string) ViewState {
	v.Source = id
	v.Expanded = map[string]bool{}
	v.Page = 1
	return v
}

// WithScope switches scope and returns to the first page.
func (v ViewState) WithScope(s model.Scope) ViewState {
	v.Scope = s
	v.Page = 1
	return v
}

// WithFolderSearch sets the folder tree filter.
func (v ViewState) WithFolderSearch(term string) ViewState {
	v.FolderSearch = term
	return v
}

// WithItemSearch sets the item query. The page is kept and clamped by the next listing.
func (v ViewState) WithItemSearch(raw string) ViewState {
	v.ItemSearch = raw
	return v
}

// WithExpanded opens or closes a folder.
func (v ViewState) WithExpanded(folderID string, open bool) ViewState {
	next := maps.Clone(v.Expanded)
	if next == nil {
		next = map[string]bool{}
	}
	if open {
		next[folderID] = true
	} else {
		delete(next, folderID)
	}
	v.Expanded = next
	return v
}

// ToggleExpanded flips the expansion of a folder.
func (v ViewState) ToggleExpanded(folderID string) ViewState {
	return v.WithExpanded(folderID, !v.Expanded[folderID])
}

// WithPage sets the requested page.
func (v ViewState) WithPage(page int) ViewState {
	v.Page = page
	return v
}
