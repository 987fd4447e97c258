package model

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// WorldSourceID identifies the primary, mutable collection.
const WorldSourceID = "world"

// PackSourceID returns the source id for a read-only pack.
// A "/" in name is replaced with "-" so the source part of a composite id
// never contains the separator.
func PackSourceID(name string) string {
	return "pack:" + strings.ReplaceAll(name, "/", "-")
}

// NewID generates a raw id for a new host document.
func NewID() string {
	return uuid.New().String()
}

// JoinID builds a composite id so records from different sources never collide.
func JoinID(sourceID, rawID string) string {
	return sourceID + "/" + rawID
}

// SplitID splits a composite id into source id and raw id at the first "/".
// Raw ids may contain "/" themselves. ok is false when id carries no source prefix.
func SplitID(id string) (sourceID, rawID string, ok bool) {
	src, raw, found := strings.Cut(id, "/")
	if !found || src == "" || raw == "" {
		return "", id, false
	}
	return src, raw, true
}

// SourceOf returns the source part of a composite id, or "" if there is none.
func SourceOf(id string) string {
	src, _, _ := SplitID(id)
	return src
}

// FoldCase returns the case-folded form used for every case-insensitive comparison.
func FoldCase(s string) string {
	return cases.Fold().String(s)
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// ptrEqual compares two string pointers for equality.
func ptrEqual(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
