package model

// Folder is a source-agnostic folder record as seen by the query core.
type Folder struct {
	ID            string  `json:"id"`       // composite: source id + "/" + raw id
	Name          string  `json:"name"`
	ParentID      *string `json:"parentId"` // nil = root level
	Color         string  `json:"color,omitempty"`
	Sort          int     `json:"sort"`
	SourceID      string  `json:"sourceId"`
	DeclaredCount *int    `json:"declaredCount,omitempty"` // aggregate supplied by the source
}

// IsRoot reports whether the folder has no parent.
func (f Folder) IsRoot() bool {
	return f.ParentID == nil
}
