package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheTypedRoundTrip(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	type bar struct {
		Close float64
	}
	in := []bar{{Close: 101.5}, {Close: 102.25}}
	if err := mc.Set(ctx, "bars", in, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out []bar
	if err := mc.Get(ctx, "bars", &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(out) != 2 || out[1].Close != 102.25 {
		t.Fatalf("round trip = %+v, want the stored slice", out)
	}
}

func TestMemoryCacheMissingKey(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	var out string
	if err := mc.Get(context.Background(), "absent", &out); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get absent = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheTypeMismatchReadsAsMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", int64(7), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var out []string
	if err := mc.Get(ctx, "k", &out); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("mismatched Get = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "a", "1", time.Minute); err != nil {
		t.Fatalf("Set a: %v", err)
	}
	time.Sleep(time.Millisecond)
	if err := mc.Set(ctx, "b", "2", time.Minute); err != nil {
		t.Fatalf("Set b: %v", err)
	}
	time.Sleep(time.Millisecond)

	// Touch "a" so "b" is the least recently used entry.
	var s string
	if err := mc.Get(ctx, "a", &s); err != nil {
		t.Fatalf("Get a: %v", err)
	}
	time.Sleep(time.Millisecond)
	if err := mc.Set(ctx, "c", "3", time.Minute); err != nil {
		t.Fatalf("Set c: %v", err)
	}

	if err := mc.Get(ctx, "b", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("want b evicted, got %v", err)
	}
	if err := mc.Get(ctx, "a", &s); err != nil || s != "1" {
		t.Fatalf("a must survive eviction, got %q, %v", s, err)
	}
}
