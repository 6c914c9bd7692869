package cache

import (
	"strings"
	"testing"
	"time"
)

func TestKeyIsStableAndSafe(t *testing.T) {
	a := Key("captions:dQw4w9WgXcQ")
	b := Key("captions:dQw4w9WgXcQ")
	if a != b {
		t.Error("Expected identical keys for identical identifiers")
	}
	if !strings.HasPrefix(a, "podsift:v1:") {
		t.Errorf("Expected versioned prefix, got %q", a)
	}
	if a == Key("captions:other") {
		t.Error("Expected distinct keys for distinct identifiers")
	}
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("Expected a miss for an unknown key")
	}

	if err := c.Set("k", []byte("caption data"), time.Minute); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	val, found := c.Get("k")
	if !found || string(val) != "caption data" {
		t.Errorf("Expected cached value, got %q (found=%v)", val, found)
	}

	c.Delete("k")
	if _, found := c.Get("k"); found {
		t.Error("Expected a miss after delete")
	}
}

func TestDiskCacheExpiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	if err := c.Set("fresh", []byte("keep"), time.Hour); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if val, found := c.Get("fresh"); !found || string(val) != "keep" {
		t.Error("Expected a fresh entry to survive")
	}

	if err := c.Set("stale", []byte("drop"), -time.Second); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, found := c.Get("stale"); found {
		t.Error("Expected an expired entry to miss")
	}
}

func TestLayeredCachePromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Hour)

	if err := c.Set("k", []byte("transcript"), time.Hour); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Fresh layered cache over the same directory: memory is cold, the
	// value must come from disk and be promoted
	c2 := NewLayeredCache(time.Minute, dir, time.Hour)
	val, found := c2.Get("k")
	if !found || string(val) != "transcript" {
		t.Fatalf("Expected a disk hit, got %q (found=%v)", val, found)
	}
	if _, found := c2.memory.Get("k"); !found {
		t.Error("Expected the disk hit to be promoted to memory")
	}
}
