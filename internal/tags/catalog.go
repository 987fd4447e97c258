// Package tags keeps per-scene tag assignments and the global tag vocabulary.
//
// The vocabulary is built by one full scan on first use and then maintained
// incrementally: adding tags inserts them, removing a tag drops it only when
// no other live scene still carries it.
package tags

import (
	"context"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/scenelib/internal/logging"
	"github.com/nikbrunner/scenelib/internal/metrics"
	"github.com/nikbrunner/scenelib/internal/model"
	"github.com/nikbrunner/scenelib/internal/storage"
)

// LiveItems lists the ids of every live scene of the primary source.
type LiveItems interface {
	ItemIDs() []string
}

// Catalog owns tag assignments of the primary source.
type Catalog struct {
	live   LiveItems
	store  storage.FlagStore
	logger *log.Logger

	assigned map[string][]string // scene id -> tags, original spelling
	vocab    map[string]struct{} // folded tags; nil until first use
}

// Load reads the persisted assignments. The vocabulary is built lazily.
func Load(ctx context.Context, live LiveItems, store storage.FlagStore, logger *log.Logger) (*Catalog, error) {
	assigned := map[string][]string{}
	if _, err := store.Get(ctx, storage.KeySceneTags, &assigned); err != nil {
		return nil, err
	}
	return &Catalog{
		live:     live,
		store:    store,
		logger:   logging.OrDiscard(logger),
		assigned: assigned,
	}, nil
}

// Tags returns the tags of a scene; empty if the scene is unknown or untagged.
func (c *Catalog) Tags(id string) []string {
	return slices.Clone(c.assigned[id])
}

// SetTags replaces the tags of a live scene.
// Tags are trimmed and deduplicated case-insensitively, keeping the first spelling.
// A persistence failure returns a *model.PersistError; the in-memory change stays.
func (c *Catalog) SetTags(ctx context.Context, id string, tags []string) error {
	live := c.liveSet()
	if _, ok := live[id]; !ok {
		return model.NotFoundf("scene %s", id)
	}
	c.ensureVocabulary(live)

	next := Normalize(tags)
	removed := difference(foldAll(c.assigned[id]), foldAll(next))

	if len(next) == 0 {
		delete(c.assigned, id)
	} else {
		c.assigned[id] = next
	}

	c.dropUnreferenced(removed, id, live)
	for _, t := range next {
		c.vocab[model.FoldCase(t)] = struct{}{}
	}

	return c.save(ctx)
}

// OnItemDeleted forgets the tags of a deleted scene and prunes the vocabulary.
func (c *Catalog) OnItemDeleted(ctx context.Context, id string) error {
	old, ok := c.assigned[id]
	if !ok {
		return nil
	}
	delete(c.assigned, id)
	if c.vocab != nil {
		c.dropUnreferenced(foldAll(old), id, c.liveSet())
	}
	return c.save(ctx)
}

// Vocabulary returns the sorted, deduplicated, case-folded tags in use.
func (c *Catalog) Vocabulary() []string {
	c.ensureVocabulary(c.liveSet())
	return sortedSet(c.vocab)
}

// Rescan computes the vocabulary from scratch without touching the cache.
func (c *Catalog) Rescan() []string {
	return sortedSet(c.scan(c.liveSet()))
}

// Suggest ranks vocabulary tags against a partial query for autocompletion.
// An empty query returns the first limit tags in order.
func (c *Catalog) Suggest(query string, limit int) []string {
	vocab := c.Vocabulary()
	query = strings.TrimLeft(strings.TrimSpace(query), "#")
	if query == "" {
		return truncate(vocab, limit)
	}

	matches := fuzzy.Find(model.FoldCase(query), vocab)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Str)
	}
	return truncate(out, limit)
}

func (c *Catalog) ensureVocabulary(live map[string]struct{}) {
	if c.vocab != nil {
		return
	}
	c.vocab = c.scan(live)
	metrics.VocabularyRebuildsTotal.Inc()
	c.logger.Debug("built tag vocabulary", "tags", len(c.vocab), "scenes", len(live))
}

func (c *Catalog) scan(live map[string]struct{}) map[string]struct{} {
	vocab := map[string]struct{}{}
	for id, tags := range c.assigned {
		if _, ok := live[id]; !ok {
			continue
		}
		for _, t := range tags {
			vocab[model.FoldCase(t)] = struct{}{}
		}
	}
	return vocab
}

// dropUnreferenced removes each folded tag no live scene other than except still uses.
func (c *Catalog) dropUnreferenced(removed []string, except string, live map[string]struct{}) {
	for _, tag := range removed {
		if !c.referenced(tag, except, live) {
			delete(c.vocab, tag)
		}
	}
}

func (c *Catalog) referenced(folded, except string, live map[string]struct{}) bool {
	for id, tags := range c.assigned {
		if id == except {
			continue
		}
		if _, ok := live[id]; !ok {
			continue
		}
		for _, t := range tags {
			if model.FoldCase(t) == folded {
				return true
			}
		}
	}
	return false
}

func (c *Catalog) liveSet() map[string]struct{} {
	ids := c.live.ItemIDs()
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (c *Catalog) save(ctx context.Context) error {
	if err := c.store.Set(ctx, storage.KeySceneTags, c.assigned); err != nil {
		metrics.PersistFailuresTotal.WithLabelValues(storage.KeySceneTags).Inc()
		return &model.PersistError{Key: storage.KeySceneTags, Err: err}
	}
	return nil
}

// Normalize trims tags, drops empty ones and removes case-insensitive duplicates.
func Normalize(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := model.FoldCase(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

func foldAll(tags []string) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = model.FoldCase(t)
	}
	return out
}

// difference returns the elements of a not present in b.
func difference(a, b []string) []string {
	var out []string
	for _, t := range a {
		if !slices.Contains(b, t) && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

func truncate(tags []string, limit int) []string {
	if limit > 0 && len(tags) > limit {
		return tags[:limit]
	}
	return tags
}
