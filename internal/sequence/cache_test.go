package sequence

import (
	"context"
	"testing"
)

func TestBaseCacheHitsAndMisses(t *testing.T) {
	t.Parallel()
	cache, err := NewBaseCache(2)
	if err != nil {
		t.Fatalf("NewBaseCache: %v", err)
	}
	ctx := context.Background()

	first, err := cache.BaseSequence(ctx, 100, nil)
	if err != nil {
		t.Fatalf("BaseSequence: %v", err)
	}
	second, err := cache.BaseSequence(ctx, 100, nil)
	if err != nil {
		t.Fatalf("BaseSequence: %v", err)
	}
	if &first[0] != &second[0] {
		t.Error("second call should return the cached slice")
	}

	stats := cache.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Entries != 1 {
		t.Errorf("stats = %+v, want 1 hit, 1 miss, 1 entry", stats)
	}
}

func TestBaseCachePrefix(t *testing.T) {
	t.Parallel()
	cache, err := NewBaseCache(0)
	if err != nil {
		t.Fatalf("NewBaseCache: %v", err)
	}
	ctx := context.Background()

	if _, err := cache.BaseSequence(ctx, 300, nil); err != nil {
		t.Fatalf("BaseSequence: %v", err)
	}
	var reported float64
	short, err := cache.BaseSequence(ctx, 50, func(p float64) { reported = p })
	if err != nil {
		t.Fatalf("BaseSequence: %v", err)
	}
	if len(short) != 50 || cap(short) != 50 {
		t.Fatalf("len/cap = %d/%d, want 50/50", len(short), cap(short))
	}
	if reported != 1.0 {
		t.Errorf("reporter got %v, want 1.0", reported)
	}

	want, err := BaseSequence(ctx, 50, nil)
	if err != nil {
		t.Fatalf("BaseSequence: %v", err)
	}
	for i := range want {
		if short[i].Cmp(want[i]) != 0 {
			t.Fatalf("term %d = %s, want %s", i+1, short[i], want[i])
		}
	}
	if stats := cache.Stats(); stats.Hits != 1 || stats.Entries != 1 {
		t.Errorf("stats = %+v, want the prefix served from the single entry", stats)
	}

	cache.Purge()
	if stats := cache.Stats(); stats.Entries != 0 {
		t.Errorf("entries after Purge = %d, want 0", stats.Entries)
	}
}

func TestBaseCacheDoesNotStoreFailures(t *testing.T) {
	t.Parallel()
	cache, err := NewBaseCache(2)
	if err != nil {
		t.Fatalf("NewBaseCache: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := cache.BaseSequence(ctx, 100, nil); err == nil {
		t.Fatal("expected a context error")
	}
	if stats := cache.Stats(); stats.Entries != 0 {
		t.Errorf("entries = %d, want 0", stats.Entries)
	}
}
