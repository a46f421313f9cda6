package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore(time.Minute)

	if _, ok := store.Get(ctx, "missing"); ok {
		t.Fatalf("did not expect value for missing key")
	}

	store.Set(ctx, "match:id:1", "one")
	v, ok := store.Get(ctx, "match:id:1")
	if !ok || v != "one" {
		t.Fatalf("expected cached value, got %v ok=%t", v, ok)
	}

	store.Delete(ctx, "match:id:1")
	if _, ok := store.Get(ctx, "match:id:1"); ok {
		t.Fatalf("expected value deleted")
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	store := NewStore(time.Minute)

	store.Set(ctx, "match:id:1", "one")
	store.Set(ctx, "match:id:2", "two")
	store.Set(ctx, "other:key", "keep")

	store.DeletePrefix(ctx, "match:")

	if _, ok := store.Get(ctx, "match:id:1"); ok {
		t.Fatalf("expected match:id:1 evicted")
	}
	if _, ok := store.Get(ctx, "match:id:2"); ok {
		t.Fatalf("expected match:id:2 evicted")
	}
	if _, ok := store.Get(ctx, "other:key"); !ok {
		t.Fatalf("expected other:key kept")
	}
}

func TestStore_GetOrLoad_Singleflight(t *testing.T) {
	ctx := context.Background()
	store := NewStore(time.Minute)

	var loads atomic.Int32
	loader := func(context.Context) (any, error) {
		loads.Add(1)
		time.Sleep(10 * time.Millisecond)
		return "loaded", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := store.GetOrLoad(ctx, "hot-key", loader)
			if err != nil {
				t.Errorf("get or load: %v", err)
				return
			}
			if v != "loaded" {
				t.Errorf("unexpected value %v", v)
			}
		}()
	}
	wg.Wait()

	if got := loads.Load(); got != 1 {
		t.Fatalf("expected a single load, got %d", got)
	}
}

func TestStore_GetOrLoad_ErrorNotCached(t *testing.T) {
	ctx := context.Background()
	store := NewStore(time.Minute)

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		if calls == 1 {
			return nil, fmt.Errorf("boom")
		}
		return "ok", nil
	}

	if _, err := store.GetOrLoad(ctx, "key", loader); err == nil {
		t.Fatalf("expected first load to fail")
	}
	v, err := store.GetOrLoad(ctx, "key", loader)
	if err != nil {
		t.Fatalf("expected second load to succeed: %v", err)
	}
	if v != "ok" {
		t.Fatalf("unexpected value %v", v)
	}
}
