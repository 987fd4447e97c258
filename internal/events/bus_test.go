package events

import (
	"context"
	"errors"
	"testing"
)

func TestBus_PublishInOrder(t *testing.T) {
	b := NewBus()
	var got []string
	b.Subscribe(func(_ context.Context, ev SourceChanged) error {
		got = append(got, "first:"+ev.Kind.String())
		return nil
	})
	b.Subscribe(func(_ context.Context, ev SourceChanged) error {
		got = append(got, "second:"+ev.IDs[0])
		return nil
	})

	err := b.Publish(context.Background(), SourceChanged{Kind: ItemDeleted, SourceID: "world", IDs: []string{"world/a"}})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(got) != 2 || got[0] != "first:item-deleted" || got[1] != "second:world/a" {
		t.Errorf("got %v", got)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	b := NewBus()
	calls := 0
	unsubscribe := b.Subscribe(func(context.Context, SourceChanged) error {
		calls++
		return nil
	})

	_ = b.Publish(context.Background(), SourceChanged{Kind: ItemCreated})
	unsubscribe()
	unsubscribe()
	_ = b.Publish(context.Background(), SourceChanged{Kind: ItemCreated})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestBus_JoinsHandlerErrors(t *testing.T) {
	b := NewBus()
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	ran := 0
	b.Subscribe(func(context.Context, SourceChanged) error { ran++; return errA })
	b.Subscribe(func(context.Context, SourceChanged) error { ran++; return nil })
	b.Subscribe(func(context.Context, SourceChanged) error { ran++; return errB })

	err := b.Publish(context.Background(), SourceChanged{Kind: PackReindexed})
	if ran != 3 {
		t.Errorf("ran = %d handlers, want 3", ran)
	}
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("err = %v, want both handler errors", err)
	}
}

func TestKind_String(t *testing.T) {
	if got := FolderUpdated.String(); got != "folder-updated" {
		t.Errorf("String() = %q", got)
	}
	if got := Kind(99).String(); got != "unknown" {
		t.Errorf("String() = %q", got)
	}
}
