package cache

import (
	"testing"
	"time"
)

func TestLRUSetGet(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)
	c.Set("u1:monthly:2024-01-01:", "analysis")
	got, ok := c.Get("u1:monthly:2024-01-01:")
	if !ok || got != "analysis" {
		t.Fatalf("expected hit, got %q %v", got, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatalf("expected miss")
	}
}

func TestLRUEvictsOldest(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a is now most recently used
	c.Set("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("expected a to survive")
	}
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)
	c.Set("k", 1)
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected expired entry to miss")
	}
}

func TestDeletePrefixInvalidatesOneUser(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("u1:monthly:2024-01-01:", 1)
	c.Set("u1:weekly:2024-01-01:", 2)
	c.Set("u2:monthly:2024-01-01:", 3)

	if n := c.DeletePrefix("u1:"); n != 2 {
		t.Fatalf("expected 2 dropped, got %d", n)
	}
	if _, ok := c.Get("u2:monthly:2024-01-01:"); !ok {
		t.Fatalf("other users' entries must survive")
	}
	if c.Size() != 1 {
		t.Fatalf("expected size 1, got %d", c.Size())
	}
}

func TestCleanExpired(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)
	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(20 * time.Millisecond)
	if n := c.CleanExpired(); n != 2 {
		t.Fatalf("expected 2 cleaned, got %d", n)
	}
	if c.Size() != 0 {
		t.Fatalf("expected empty cache")
	}
}
