package search

import (
	"strings"

	"github.com/nikbrunner/scenelib/internal/model"
)

// Mode selects how a query matches items.
type Mode int

const (
	// MatchAll applies no filtering.
	MatchAll Mode = iota
	// NameOnly matches a substring of the item name ("$term").
	NameOnly
	// TagAll requires every term as an exact tag ("#a b").
	TagAll
	// Mixed matches a substring of the name or of any tag.
	Mixed
)

// Query is a parsed search string. Terms are case-folded.
type Query struct {
	Mode  Mode
	Terms []string
}

// Parse turns a raw search string into a Query.
//
//	""          matches everything
//	"#a #b c"   items tagged with every one of a, b and c (exact tags)
//	"$castle"   items whose name contains "castle"
//	"dragon"    items whose name or any tag contains "dragon"
func Parse(raw string) Query {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return Query{Mode: MatchAll}

	case strings.HasPrefix(raw, "#"):
		var terms []string
		for _, tok := range strings.Fields(raw[1:]) {
			tok = strings.TrimLeft(tok, "#")
			if tok == "" {
				continue
			}
			terms = append(terms, model.FoldCase(tok))
		}
		return Query{Mode: TagAll, Terms: terms}

	case strings.HasPrefix(raw, "$"):
		term := strings.TrimSpace(raw[1:])
		return Query{Mode: NameOnly, Terms: []string{model.FoldCase(term)}}

	default:
		return Query{Mode: Mixed, Terms: []string{model.FoldCase(raw)}}
	}
}

// IsEmpty reports whether the query lets every item through.
func (q Query) IsEmpty() bool {
	switch q.Mode {
	case MatchAll:
		return true
	case TagAll:
		return len(q.Terms) == 0
	default:
		return len(q.Terms) == 0 || q.Terms[0] == ""
	}
}

// Match reports whether an item with the given name and tags satisfies the query.
func (q Query) Match(name string, tags []string) bool {
	if q.IsEmpty() {
		return true
	}

	switch q.Mode {
	case TagAll:
		have := make(map[string]struct{}, len(tags))
		for _, t := range tags {
			have[model.FoldCase(t)] = struct{}{}
		}
		for _, term := range q.Terms {
			if _, ok := have[term]; !ok {
				return false
			}
		}
		return true

	case NameOnly:
		return strings.Contains(model.FoldCase(name), q.Terms[0])

	default:
		term := q.Terms[0]
		if strings.Contains(model.FoldCase(name), term) {
			return true
		}
		// Substring, unlike the exact test of "#" queries.
		for _, t := range tags {
			if strings.Contains(model.FoldCase(t), term) {
				return true
			}
		}
		return false
	}
}

// Filter returns the items matching q, preserving order. The input is not modified.
func Filter(items []model.Item, q Query) []model.Item {
	result := make([]model.Item, 0, len(items))
	for _, it := range items {
		if q.Match(it.Name, it.Tags) {
			result = append(result, it)
		}
	}
	return result
}
