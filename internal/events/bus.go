// Package events carries change notifications from content sources to the
// caches that depend on them.
package events

import (
	"context"
	"errors"
	"sync"
)

// Kind names what changed.
type Kind int

const (
	FolderCreated Kind = iota
	FolderUpdated
	FolderDeleted
	ItemCreated
	ItemUpdated
	ItemDeleted
	PackReindexed
)

func (k Kind) String() string {
	switch k {
	case FolderCreated:
		return "folder-created"
	case FolderUpdated:
		return "folder-updated"
	case FolderDeleted:
		return "folder-deleted"
	case ItemCreated:
		return "item-created"
	case ItemUpdated:
		return "item-updated"
	case ItemDeleted:
		return "item-deleted"
	case PackReindexed:
		return "pack-reindexed"
	default:
		return "unknown"
	}
}

// SourceChanged reports a change to records of one source.
type SourceChanged struct {
	Kind     Kind
	SourceID string
	// IDs are the composite ids of the affected records.
	IDs []string
}

// Handler reacts to a change.
type Handler func(ctx context.Context, ev SourceChanged) error

// Bus fans out SourceChanged notifications to subscribers in subscription order.
type Bus struct {
	mu       sync.Mutex
	next     int
	handlers map[int]Handler
	order    []int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: map[int]Handler{}}
}

// Subscribe registers h and returns a function that removes it again.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	b.handlers[id] = h
	b.order = append(b.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers ev to every subscriber. All handlers run even when some
// fail; their errors are joined.
func (b *Bus) Publish(ctx context.Context, ev SourceChanged) error {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.handlers[id])
	}
	b.mu.Unlock()

	var errs []error
	for _, h := range handlers {
		if err := h(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
