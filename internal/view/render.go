package view

import (
	"fmt"
	"strings"

	"github.com/nikbrunner/scenelib/internal/compose"
	"github.com/nikbrunner/scenelib/internal/model"
	"github.com/nikbrunner/scenelib/internal/visibility"
)

const (
	favoriteMark = "★"
	openMark     = "▾ "
	closedMark   = "▸ "
	leafMark     = "  "
)

// Tree renders the system scopes followed by the visible folder tree.
func Tree(nodes []visibility.Node, counts compose.Counts, st Styles) string {
	var b strings.Builder

	b.WriteString(st.Title.Render("Scenes") + "\n")
	for _, s := range []struct {
		name  string
		count int
	}{
		{"Favorites", counts.Favorites},
		{"All", counts.All},
		{"Unsorted", counts.Unsorted},
		{"Recent", counts.Recent},
	} {
		fmt.Fprintf(&b, "  %s %s\n", st.Folder.Render(s.name), st.Count.Render(fmt.Sprintf("(%d)", s.count)))
	}

	b.WriteString("\n" + st.Title.Render("Folders") + "\n")
	if len(nodes) == 0 {
		b.WriteString(st.Empty.Render("No folders.") + "\n")
		return b.String()
	}
	for _, n := range visibility.Flatten(nodes) {
		b.WriteString(TreeLine(n, st) + "\n")
	}
	return b.String()
}

// TreeLine renders a single folder node with indentation and markers.
func TreeLine(n visibility.Node, st Styles) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", n.Depth))

	switch {
	case n.HasChildren && n.ShowChildren:
		b.WriteString(openMark)
	case n.HasChildren:
		b.WriteString(closedMark)
	default:
		b.WriteString(leafMark)
	}

	if n.IsFavorite {
		b.WriteString(st.Favorite.Render(favoriteMark) + " ")
	}
	name := st.Folder
	if n.MatchName {
		name = st.Match
	}
	b.WriteString(name.Render(n.Folder.Name))
	b.WriteString(" " + st.Count.Render(fmt.Sprintf("(%d)", n.Count)))
	return b.String()
}

// ItemOptions controls item rendering.
type ItemOptions struct {
	ShowTags     bool
	ShowIDs      bool
	ShowImage    bool
	UseFullImage bool
	// Width truncates item names; zero disables truncation.
	Width int
}

// Items renders one page of items followed by a page footer.
func Items(res compose.Result, opts ItemOptions, st Styles) string {
	if len(res.Items) == 0 {
		return st.Empty.Render("No scenes.") + "\n"
	}

	var b strings.Builder
	for _, it := range res.Items {
		b.WriteString(ItemLine(it, opts, st) + "\n")
	}
	b.WriteString("\n" + st.Footer.Render(fmt.Sprintf("Page %d/%d, %d scenes", res.Page, res.TotalPages, res.Total)) + "\n")
	return b.String()
}

// ItemLine renders a single item.
func ItemLine(it model.Item, opts ItemOptions, st Styles) string {
	parts := make([]string, 0, 4+len(it.Tags))
	if it.IsFavorite {
		parts = append(parts, st.Favorite.Render(favoriteMark))
	} else {
		parts = append(parts, " ")
	}
	if opts.ShowIDs {
		parts = append(parts, st.ID.Render(it.ID))
	}
	parts = append(parts, st.Item.Render(Truncate(it.Name, opts.Width)))
	if opts.ShowTags {
		for _, t := range it.Tags {
			parts = append(parts, st.Tag.Render("#"+t))
		}
	}
	if opts.ShowImage {
		parts = append(parts, st.Image.Render(it.Image(opts.UseFullImage)))
	}
	return strings.Join(parts, " ")
}
