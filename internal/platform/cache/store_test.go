package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "matches:IN_PLAY", loader)
			if err != nil {
				errCh <- err
				return
			}
			if v != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore[[]byte](time.Minute)
	boom := errors.New("feed down")
	var calls atomic.Int32

	loader := func(context.Context) ([]byte, error) {
		if calls.Add(1) == 1 {
			return nil, boom
		}
		return []byte(`{"ok":true}`), nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	got, err := store.GetOrLoad(context.Background(), "k", loader)
	if err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}
	if string(got) != `{"ok":true}` {
		t.Fatalf("unexpected value %q", got)
	}
	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("third GetOrLoad error: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("loader called %d times, want 2", calls.Load())
	}
}

func TestStore_Expiry(t *testing.T) {
	t.Parallel()

	store := NewStore[int](30 * time.Second)
	now := time.Date(2026, 5, 16, 15, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "matches:42", 7)
	if v, ok := store.Get(context.Background(), "matches:42"); !ok || v != 7 {
		t.Fatalf("expected fresh entry, got %d ok=%t", v, ok)
	}

	now = now.Add(31 * time.Second)
	if _, ok := store.Get(context.Background(), "matches:42"); ok {
		t.Fatalf("expected entry to expire")
	}
	if store.Len() != 0 {
		t.Fatalf("expired entry should be evicted, len=%d", store.Len())
	}

	store.Set(context.Background(), "matches:1", 1)
	store.Set(context.Background(), "matches:2", 2)
	store.Set(context.Background(), "events:1", 3)
	store.DeletePrefix(context.Background(), "matches:")
	if store.Len() != 1 {
		t.Fatalf("expected only events entry to remain, len=%d", store.Len())
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
