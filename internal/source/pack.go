package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/nikbrunner/scenelib/internal/logging"
	"github.com/nikbrunner/scenelib/internal/metrics"
	"github.com/nikbrunner/scenelib/internal/model"
)

// PackIndex is the index document of a read-only pack.
// Folders is nil when the pack has no folder sub-index.
type PackIndex struct {
	Name    string       `json:"name"`
	Folders []PackFolder `json:"folders,omitempty"`
	Items   []PackEntry  `json:"items"`
}

// PackFolder is one folder entry of a pack index.
type PackFolder struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Parent *string `json:"parent,omitempty"`
	Color  string  `json:"color,omitempty"`
	Sort   int     `json:"sort"`
	Count  *int    `json:"count,omitempty"`
}

// PackEntry is one scene entry of a pack index.
type PackEntry struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Folder *string  `json:"folder,omitempty"`
	Tags   []string `json:"tags,omitempty"`
	Sort   int      `json:"sort"`
	Thumb  string   `json:"thumb,omitempty"`
	Img    string   `json:"img,omitempty"`
}

// IndexFetcher retrieves a pack index. Implementations may block.
type IndexFetcher interface {
	FetchIndex(ctx context.Context) (*PackIndex, error)
}

// IndexFetcherFunc adapts a function to IndexFetcher.
type IndexFetcherFunc func(ctx context.Context) (*PackIndex, error)

// FetchIndex implements IndexFetcher.
func (f IndexFetcherFunc) FetchIndex(ctx context.Context) (*PackIndex, error) {
	return f(ctx)
}

// FileFetcher reads a pack index from a JSON file.
type FileFetcher struct {
	Path string
}

// FetchIndex implements IndexFetcher.
func (f FileFetcher) FetchIndex(ctx context.Context) (*PackIndex, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	var idx PackIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parse pack index %s: %w", f.Path, err)
	}
	return &idx, nil
}

// Pack adapts a read-only pack. The index is fetched on first use and
// cached until Invalidate.
type Pack struct {
	id      string
	fetcher IndexFetcher
	logger  *log.Logger

	mu    sync.Mutex
	index *PackIndex
}

// NewPack creates a pack adapter named name.
func NewPack(name string, fetcher IndexFetcher, logger *log.Logger) *Pack {
	return &Pack{
		id:      model.PackSourceID(name),
		fetcher: fetcher,
		logger:  logging.OrDiscard(logger),
	}
}

// ID implements Adapter.
func (p *Pack) ID() string { return p.id }

// ReadOnly implements Adapter.
func (p *Pack) ReadOnly() bool { return true }

// Invalidate drops the cached index so the next listing refetches it.
func (p *Pack) Invalidate() {
	p.mu.Lock()
	p.index = nil
	p.mu.Unlock()
}

// Index returns the pack index, fetching it if needed.
func (p *Pack) Index(ctx context.Context) (*PackIndex, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.index != nil {
		return p.index, nil
	}

	idx, err := p.fetcher.FetchIndex(ctx)
	metrics.ObserveFetch(p.id, err)
	if err != nil {
		p.logger.Warn("pack index unavailable", "source", p.id, "err", err)
		return nil, &model.SourceError{SourceID: p.id, Err: err}
	}
	p.logger.Debug("fetched pack index", "source", p.id, "items", len(idx.Items), "folders", len(idx.Folders))
	p.index = idx
	return idx, nil
}

// ListFolders implements Adapter. Packs without a folder sub-index get
// placeholder folders synthesized from the folder refs of their items.
func (p *Pack) ListFolders(ctx context.Context) ([]model.Folder, error) {
	idx, err := p.Index(ctx)
	if err != nil {
		return []model.Folder{}, err
	}
	if idx.Folders == nil {
		return p.placeholderFolders(idx), nil
	}

	folders := make([]model.Folder, 0, len(idx.Folders))
	for _, f := range idx.Folders {
		folders = append(folders, model.Folder{
			ID:            model.JoinID(p.id, f.ID),
			Name:          f.Name,
			ParentID:      p.ref(f.Parent),
			Color:         f.Color,
			Sort:          f.Sort,
			SourceID:      p.id,
			DeclaredCount: f.Count,
		})
	}
	return folders, nil
}

// ListItems implements Adapter.
func (p *Pack) ListItems(ctx context.Context, folderID *string) ([]model.Item, error) {
	idx, err := p.Index(ctx)
	if err != nil {
		return []model.Item{}, err
	}

	items := make([]model.Item, 0, len(idx.Items))
	for _, e := range idx.Items {
		it := p.entryToItem(e)
		if folderID != nil && !it.InFolder(folderID) {
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

// placeholderFolders names distinct item folder refs positionally, in order of first appearance.
func (p *Pack) placeholderFolders(idx *PackIndex) []model.Folder {
	seen := map[string]struct{}{}
	folders := []model.Folder{}
	for _, e := range idx.Items {
		if e.Folder == nil || *e.Folder == "" {
			continue
		}
		if _, ok := seen[*e.Folder]; ok {
			continue
		}
		seen[*e.Folder] = struct{}{}
		folders = append(folders, model.Folder{
			ID:       model.JoinID(p.id, *e.Folder),
			Name:     fmt.Sprintf("Folder %d", len(folders)+1),
			Sort:     len(folders),
			SourceID: p.id,
		})
	}
	return folders
}

func (p *Pack) entryToItem(e PackEntry) model.Item {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return model.Item{
		ID:         model.JoinID(p.id, e.ID),
		Name:       e.Name,
		FolderID:   p.ref(e.Folder),
		SourceID:   p.id,
		Tags:       tags,
		Sort:       e.Sort,
		Thumb:      e.Thumb,
		Background: e.Img,
		Navigation: true,
	}
}

func (p *Pack) ref(raw *string) *string {
	if raw == nil || *raw == "" {
		return nil
	}
	id := model.JoinID(p.id, *raw)
	return &id
}
