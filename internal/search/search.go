package search

import (
	"github.com/nikbrunner/scenelib/internal/model"
	"github.com/sahilm/fuzzy"
)

// SearchResult represents a fuzzy search match.
type SearchResult struct {
	Item           *model.Item
	MatchedIndexes []int
	Score          int
}

// itemNames implements fuzzy.Source for an item slice.
type itemNames []*model.Item

func (in itemNames) String(i int) string {
	return in[i].Name
}

func (in itemNames) Len() int {
	return len(in)
}

// FuzzyItems ranks items against a query written in the search language
// understood by Parse. "#" queries keep their exact tag test and return the
// matches in input order. Other queries rank names by fuzzy score; for mixed
// queries, items matched only through a tag follow the name matches.
func FuzzyItems(items []model.Item, query string) []SearchResult {
	q := Parse(query)
	if q.IsEmpty() {
		return nil
	}

	if q.Mode == TagAll {
		var results []SearchResult
		for i := range items {
			if q.Match(items[i].Name, items[i].Tags) {
				results = append(results, SearchResult{Item: &items[i]})
			}
		}
		return results
	}

	names := make(itemNames, len(items))
	for i := range items {
		names[i] = &items[i]
	}

	matches := fuzzy.FindFrom(q.Terms[0], names)

	results := make([]SearchResult, 0, len(matches))
	ranked := make(map[int]bool, len(matches))
	for _, m := range matches {
		ranked[m.Index] = true
		results = append(results, SearchResult{
			Item:           names[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		})
	}

	if q.Mode == Mixed {
		byTag := Query{Mode: Mixed, Terms: q.Terms}
		for i, it := range names {
			if !ranked[i] && byTag.Match("", it.Tags) {
				results = append(results, SearchResult{Item: it})
			}
		}
	}

	return results
}
