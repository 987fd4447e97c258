package model

// ScopeKind selects the candidate item set.
type ScopeKind int

const (
	ScopeFavorites ScopeKind = iota
	ScopeAll
	ScopeUnsorted
	ScopeRecent
	ScopeFolder
)

// Scope is the active top-level selector. FolderID is only set for ScopeFolder.
type Scope struct {
	Kind     ScopeKind
	FolderID string
}

// Well-known scope ids as used by the browser sidebar.
const (
	ScopeIDFavorites = "favorites"
	ScopeIDAll       = "all"
	ScopeIDUnsorted  = "root"
	ScopeIDRecent    = "recent"
)

// FavoritesScope, AllScope, UnsortedScope and RecentScope are the system scopes.
var (
	FavoritesScope = Scope{Kind: ScopeFavorites}
	AllScope       = Scope{Kind: ScopeAll}
	UnsortedScope  = Scope{Kind: ScopeUnsorted}
	RecentScope    = Scope{Kind: ScopeRecent}
)

// FolderScope selects the items of a single folder.
func FolderScope(id string) Scope {
	return Scope{Kind: ScopeFolder, FolderID: id}
}

// ParseScope maps a sidebar id to a Scope. Anything that is not a system
// scope id is treated as a folder id; an empty id means favorites.
func ParseScope(id string) Scope {
	switch id {
	case "", ScopeIDFavorites:
		return FavoritesScope
	case ScopeIDAll:
		return AllScope
	case ScopeIDUnsorted, "unsorted":
		return UnsortedScope
	case ScopeIDRecent:
		return RecentScope
	default:
		return FolderScope(id)
	}
}

// String returns the sidebar id of the scope.
func (s Scope) String() string {
	switch s.Kind {
	case ScopeFavorites:
		return ScopeIDFavorites
	case ScopeAll:
		return ScopeIDAll
	case ScopeUnsorted:
		return ScopeIDUnsorted
	case ScopeRecent:
		return ScopeIDRecent
	default:
		return s.FolderID
	}
}

// IsSystem reports whether the scope is one of the built-in scopes.
func (s Scope) IsSystem() bool {
	return s.Kind != ScopeFolder
}
