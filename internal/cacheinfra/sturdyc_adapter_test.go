package cacheinfra

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
	if cfg.TTL != 5*time.Minute {
		t.Errorf("unexpected default TTL: %v", cfg.TTL)
	}
}

func TestConfig_Validate(t *testing.T) {
	base := DefaultConfig()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero capacity", func(c *Config) { c.Capacity = 0 }, true},
		{"negative capacity", func(c *Config) { c.Capacity = -1 }, true},
		{"zero shards", func(c *Config) { c.NumShards = 0 }, true},
		{"zero ttl", func(c *Config) { c.TTL = 0 }, true},
		{"eviction percentage too low", func(c *Config) { c.EvictionPercentage = 0 }, true},
		{"eviction percentage too high", func(c *Config) { c.EvictionPercentage = 101 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func newTestService(t *testing.T, ttl time.Duration) *sturdycService {
	t.Helper()

	cfg := DefaultConfig()
	cfg.TTL = ttl
	svc, err := NewSturdycService(cfg)
	if err != nil {
		t.Fatalf("NewSturdycService: %v", err)
	}
	return svc
}

func TestSturdycService_GetOrFetch(t *testing.T) {
	svc := newTestService(t, time.Minute)
	ctx := context.Background()

	var calls int32
	fetch := func(ctx context.Context) ([]string, error) {
		atomic.AddInt32(&calls, 1)
		return []string{"a", "b"}, nil
	}

	first, err := svc.GetOrFetch(ctx, "k", fetch)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if got := first.([]string); len(got) != 2 {
		t.Errorf("unexpected value: %v", got)
	}

	if _, err := svc.GetOrFetch(ctx, "k", fetch); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected 1 upstream call, got %d", n)
	}
}

func TestSturdycService_GetOrFetch_TTLExpiry(t *testing.T) {
	svc := newTestService(t, 30*time.Millisecond)
	ctx := context.Background()

	var calls int32
	fetch := func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 7, nil
	}

	if _, err := svc.GetOrFetch(ctx, "k", fetch); err != nil {
		t.Fatal(err)
	}

	time.Sleep(60 * time.Millisecond)

	if _, err := svc.GetOrFetch(ctx, "k", fetch); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("expected the expired entry to refetch exactly once, got %d calls", n)
	}
}

func TestSturdycService_GetOrFetch_CoalescesInFlight(t *testing.T) {
	svc := newTestService(t, time.Minute)
	ctx := context.Background()

	var calls int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "v", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.GetOrFetch(ctx, "same-key", fetch); err != nil {
				t.Errorf("GetOrFetch: %v", err)
			}
		}()
	}

	// Give the goroutines a moment to pile up on the same key.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected concurrent identical fetches to coalesce into 1 call, got %d", n)
	}
}

func TestSturdycService_GetOrFetch_FetchError(t *testing.T) {
	svc := newTestService(t, time.Minute)
	ctx := context.Background()

	wantErr := errors.New("upstream down")
	_, err := svc.GetOrFetch(ctx, "k", func(ctx context.Context) (int, error) {
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected upstream error, got %v", err)
	}

	// Failure must not poison the key.
	got, err := svc.GetOrFetch(ctx, "k", func(ctx context.Context) (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.(int) != 42 {
		t.Errorf("unexpected value after recovery: %v", got)
	}
}

func TestSturdycService_GetOrFetch_InvalidFetchFn(t *testing.T) {
	svc := newTestService(t, time.Minute)
	ctx := context.Background()

	tests := []struct {
		name    string
		fetchFn any
	}{
		{"nil", nil},
		{"not a function", "nope"},
		{"wrong arity", func() (int, error) { return 0, nil }},
		{"wrong second return", func(ctx context.Context) (int, string) { return 0, "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.GetOrFetch(ctx, "k", tt.fetchFn); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSturdycService_LookupAndStore(t *testing.T) {
	svc := newTestService(t, time.Minute)
	ctx := context.Background()

	if _, ok := svc.Lookup(ctx, "k"); ok {
		t.Error("expected a miss on an empty cache")
	}

	svc.Store(ctx, "k", []int{1, 2})

	got, ok := svc.Lookup(ctx, "k")
	if !ok {
		t.Fatal("expected a hit after Store")
	}
	if v := got.([]int); len(v) != 2 {
		t.Errorf("unexpected value: %v", v)
	}
}

func TestSturdycService_Lookup_ExpiredIsMiss(t *testing.T) {
	svc := newTestService(t, 20*time.Millisecond)
	ctx := context.Background()

	svc.Store(ctx, "k", "v")
	time.Sleep(50 * time.Millisecond)

	if _, ok := svc.Lookup(ctx, "k"); ok {
		t.Error("expected an expired entry to report a miss")
	}
}

func TestSturdycService_Delete(t *testing.T) {
	svc := newTestService(t, time.Minute)
	ctx := context.Background()

	svc.Store(ctx, "k", "v")
	if err := svc.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, ok := svc.Lookup(ctx, "k"); ok {
		t.Error("expected a miss after Delete")
	}
}

func TestSturdycService_DeleteByPrefix(t *testing.T) {
	svc := newTestService(t, time.Minute)
	ctx := context.Background()

	svc.Store(ctx, "Menus.List::r1", "a")
	svc.Store(ctx, "Menus.List::r2", "b")
	svc.Store(ctx, "Restaurants.List::q", "c")

	if err := svc.DeleteByPrefix(ctx, "Menus."); err != nil {
		t.Fatal(err)
	}

	if _, ok := svc.Lookup(ctx, "Menus.List::r1"); ok {
		t.Error("expected Menus entries to be gone")
	}
	if _, ok := svc.Lookup(ctx, "Restaurants.List::q"); !ok {
		t.Error("expected other namespaces to survive")
	}
}
