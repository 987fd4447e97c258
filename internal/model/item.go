package model

// PlaceholderImage is substituted when a scene has no usable image.
const PlaceholderImage = "icons/svg/mystery-man.svg"

// Item is a source-agnostic scene record as seen by the query core.
type Item struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	FolderID   *string  `json:"folderId"` // nil = unsorted
	SourceID   string   `json:"sourceId"`
	Tags       []string `json:"tags"`
	Sort       int      `json:"sort"`
	Thumb      string   `json:"thumb,omitempty"`
	Background string   `json:"background,omitempty"`
	Active     bool     `json:"active"`
	Navigation bool     `json:"navigation"`
	HasGrid    bool     `json:"hasGrid"`
	HasVision  bool     `json:"hasVision"`
	IsFavorite bool     `json:"isFavorite"` // derived from the favorites store
}

// Image returns the image reference to display for the item.
// With useFull the background is preferred, otherwise the thumbnail,
// falling back to the background when the thumbnail is missing or is
// the placeholder itself.
func (it Item) Image(useFull bool) string {
	img := it.Thumb
	if useFull || img == "" || img == PlaceholderImage {
		img = it.Background
	}
	if img == "" {
		return PlaceholderImage
	}
	return img
}

// InFolder reports whether the item belongs to the given folder.
// Pass nil for unsorted items.
func (it Item) InFolder(folderID *string) bool {
	return ptrEqual(it.FolderID, folderID)
}
