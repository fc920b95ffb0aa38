package store

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func entry(data string) Entry {
	return Entry{Data: json.RawMessage(data), Timestamp: time.Now()}
}

func TestMemoryStore_GetSetDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	// Get on empty store
	if _, ok := s.Get(ctx, "nonexistent"); ok {
		t.Error("Get on empty store should return ok=false")
	}

	e := entry(`{"id":"42"}`)
	if err := s.Set(ctx, "k", e); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok := s.Get(ctx, "k")
	if !ok {
		t.Fatal("Get after Set should return ok=true")
	}
	if !bytes.Equal(got.Data, e.Data) {
		t.Errorf("Get returned %s, want %s", got.Data, e.Data)
	}
	if !got.Timestamp.Equal(e.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, e.Timestamp)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := s.Get(ctx, "k"); ok {
		t.Error("Get after Delete should return ok=false")
	}

	// Delete is idempotent
	if err := s.Delete(ctx, "nonexistent"); err != nil {
		t.Errorf("Delete on missing key should not error, got: %v", err)
	}
}

func TestMemoryStore_SetOverwrite(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_ = s.Set(ctx, "k", entry(`1`))
	second := entry(`2`)
	_ = s.Set(ctx, "k", second)

	got, ok := s.Get(ctx, "k")
	if !ok || !bytes.Equal(got.Data, second.Data) {
		t.Errorf("Get = %s, %v; want full overwrite with %s", got.Data, ok, second.Data)
	}
}

func TestMemoryStore_Clear(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_ = s.Set(ctx, "a", entry(`1`))
	_ = s.Set(ctx, "b", entry(`2`))

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := s.Get(ctx, "a"); ok {
		t.Error("Get after Clear should return ok=false")
	}
	if _, ok := s.Get(ctx, "b"); ok {
		t.Error("Get after Clear should return ok=false")
	}
}

func TestMemoryStore_ForEach(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_ = s.Set(ctx, "a", entry(`1`))
	_ = s.Set(ctx, "b", entry(`2`))

	seen := make(map[string]string)
	err := s.ForEach(ctx, func(key string, e Entry) {
		seen[key] = string(e.Data)
	})
	if err != nil {
		t.Fatalf("ForEach failed: %v", err)
	}
	if len(seen) != 2 || seen["a"] != "1" || seen["b"] != "2" {
		t.Errorf("ForEach visited %v", seen)
	}
}

func TestMemoryStore_ForEachReentrant(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_ = s.Set(ctx, "a", entry(`1`))

	// fn may call back into the store without deadlocking
	err := s.ForEach(ctx, func(key string, e Entry) {
		_ = s.Set(ctx, key, Entry{Data: e.Data, Timestamp: time.Now()})
	})
	if err != nil {
		t.Fatalf("ForEach failed: %v", err)
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	const numGoroutines = 50
	const opsPerGoroutine = 200

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				switch j % 4 {
				case 0:
					_ = s.Set(ctx, "shared", entry(`1`))
				case 1:
					_, _ = s.Get(ctx, "shared")
				case 2:
					_ = s.Delete(ctx, "shared")
				case 3:
					_ = s.ForEach(ctx, func(string, Entry) {})
				}
			}
		}()
	}

	wg.Wait()
}

func TestNew_Strategies(t *testing.T) {
	if _, err := New(StrategyMemory, Options{}); err != nil {
		t.Errorf("New(memory) error = %v", err)
	}
	if _, err := New(StrategyFile, Options{Dir: t.TempDir()}); err != nil {
		t.Errorf("New(file) error = %v", err)
	}
	if _, err := New(StrategyNone, Options{}); err == nil {
		t.Error("New(none) should error; callers skip store construction instead")
	}
	if _, err := New("redis", Options{}); err == nil {
		t.Error("New(redis) should error")
	}
}
