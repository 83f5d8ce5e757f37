package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStoreSetGetDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(time.Minute)

	if _, ok := store.Get(ctx, "standings:liga-1"); ok {
		t.Fatal("unexpected hit on empty store")
	}

	store.Set(ctx, "standings:liga-1", 42)
	value, ok := store.Get(ctx, "standings:liga-1")
	if !ok || value != 42 {
		t.Fatalf("got (%v, %t), want (42, true)", value, ok)
	}

	store.Delete(ctx, "standings:liga-1")
	if _, ok := store.Get(ctx, "standings:liga-1"); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestStoreExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(10 * time.Millisecond)
	store.Set(ctx, "k", "v")

	time.Sleep(25 * time.Millisecond)
	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestStoreGetOrLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(time.Minute)

	loads := 0
	loader := func(context.Context) (any, error) {
		loads++
		return "snapshot", nil
	}

	for i := 0; i < 3; i++ {
		value, err := store.GetOrLoad(ctx, "standings", loader)
		if err != nil {
			t.Fatalf("GetOrLoad: %v", err)
		}
		if value != "snapshot" {
			t.Fatalf("value = %v, want snapshot", value)
		}
	}
	if loads != 1 {
		t.Fatalf("loader ran %d times, want 1", loads)
	}
}

func TestStoreGetOrLoadPropagatesError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(time.Minute)
	wantErr := errors.New("load failed")

	_, err := store.GetOrLoad(ctx, "k", func(context.Context) (any, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}

	// A failed load must not poison the cache.
	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatal("error result was cached")
	}
}
