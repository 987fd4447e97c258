// Package compose selects, filters, sorts and paginates the items shown for
// a scope.
package compose

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/nikbrunner/scenelib/internal/model"
	"github.com/nikbrunner/scenelib/internal/search"
)

// DefaultPageSize is used when a request carries no page size.
const DefaultPageSize = 24

// Request describes one item listing.
type Request struct {
	Scope model.Scope
	Query search.Query
	// Recent is the recency list, most recent first.
	Recent   []string
	Page     int
	PageSize int
	Paginate bool
}

// Result is one page of items.
type Result struct {
	Items      []model.Item
	Page       int
	TotalPages int
	Total      int
}

// Compose runs the listing pipeline over items. Favorite state is read from
// Item.IsFavorite.
func Compose(items []model.Item, req Request) Result {
	candidates := Select(items, req.Scope, req.Recent)
	filtered := search.Filter(candidates, req.Query)
	if req.Scope.Kind != model.ScopeRecent {
		SortItems(filtered)
	}

	if !req.Paginate {
		return Result{Items: filtered, Page: 1, TotalPages: 1, Total: len(filtered)}
	}

	size := req.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	p := Paginate(len(filtered), req.Page, size)
	return Result{
		Items:      filtered[p.Start:p.End],
		Page:       p.Page,
		TotalPages: p.TotalPages,
		Total:      len(filtered),
	}
}

// Select returns the candidate items of a scope. Recent keeps the order of
// the recency list and skips ids that are not present.
func Select(items []model.Item, scope model.Scope, recent []string) []model.Item {
	out := []model.Item{}
	switch scope.Kind {
	case model.ScopeFavorites:
		for _, it := range items {
			if it.IsFavorite {
				out = append(out, it)
			}
		}
	case model.ScopeAll:
		out = append(out, items...)
	case model.ScopeUnsorted:
		for _, it := range items {
			if it.FolderID == nil {
				out = append(out, it)
			}
		}
	case model.ScopeRecent:
		byID := make(map[string]model.Item, len(items))
		for _, it := range items {
			byID[it.ID] = it
		}
		for _, id := range recent {
			if it, ok := byID[id]; ok {
				out = append(out, it)
			}
		}
	case model.ScopeFolder:
		for _, it := range items {
			if it.InFolder(&scope.FolderID) {
				out = append(out, it)
			}
		}
	}
	return out
}

// SortItems orders favorites first, then by ascending sort key. Equal items
// keep their relative order.
func SortItems(items []model.Item) {
	slices.SortStableFunc(items, func(a, b model.Item) int {
		if a.IsFavorite != b.IsFavorite {
			if a.IsFavorite {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.Sort, b.Sort)
	})
}

// Page is the window of one page over n items.
type Page struct {
	Page       int
	TotalPages int
	Start      int
	End        int
}

// Paginate clamps page into [1, TotalPages] and returns its bounds. An empty
// list still has one (empty) page.
func Paginate(n, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := max(1, (n+pageSize-1)/pageSize)
	page = min(max(page, 1), total)

	start := min((page-1)*pageSize, n)
	end := min(start+pageSize, n)
	return Page{Page: page, TotalPages: total, Start: start, End: end}
}

// Counts are the item totals of the system scopes.
type Counts struct {
	Favorites int
	All       int
	Unsorted  int
	Recent    int
}

// CountScopes totals the system scopes over items.
func CountScopes(items []model.Item, recent []string) Counts {
	c := Counts{All: len(items)}
	live := make(map[string]struct{}, len(items))
	for _, it := range items {
		live[it.ID] = struct{}{}
		if it.IsFavorite {
			c.Favorites++
		}
		if it.FolderID == nil {
			c.Unsorted++
		}
	}
	for _, id := range recent {
		if _, ok := live[id]; ok {
			c.Recent++
		}
	}
	return c
}

// CheckMove reports whether folderID may be reparented under newParent.
// A nil newParent moves to the root. Moving a folder under itself or under
// one of its descendants fails with model.ErrWouldCreateCycle.
func CheckMove(folders []model.Folder, folderID string, newParent *string) error {
	parents := make(map[string]*string, len(folders))
	for _, f := range folders {
		parents[f.ID] = f.ParentID
	}
	if _, ok := parents[folderID]; !ok {
		return model.NotFoundf("folder %s", folderID)
	}
	if newParent == nil {
		return nil
	}
	if _, ok := parents[*newParent]; !ok {
		return model.NotFoundf("folder %s", *newParent)
	}

	seen := map[string]bool{}
	for cur := newParent; cur != nil; cur = parents[*cur] {
		if *cur == folderID {
			return fmt.Errorf("move %s under %s: %w", folderID, *newParent, model.ErrWouldCreateCycle)
		}
		if seen[*cur] {
			break
		}
		seen[*cur] = true
	}
	return nil
}
