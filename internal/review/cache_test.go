package review

import (
	"slices"
	"testing"

	"github.com/mmcdole/culler/internal/domain"
)

func rendition(id string) *domain.Rendition {
	return &domain.Rendition{ItemID: id, Quality: domain.QualityPreview, Art: id}
}

func TestPrefetchCache_GetConsumesEntry(t *testing.T) {
	c := NewPrefetchCache(3)
	c.Put("a", rendition("a"))

	r, ok := c.Get("a")
	if !ok || r.ItemID != "a" {
		t.Fatalf("Get(a) = %v, %v", r, ok)
	}
	if _, ok := c.Get("a"); ok {
		t.Error("second Get(a) hit; entries are consumed once")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}

func TestPrefetchCache_CapacityDropsOldest(t *testing.T) {
	c := NewPrefetchCache(2)
	c.Put("a", rendition("a"))
	c.Put("b", rendition("b"))
	c.Put("c", rendition("c"))

	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if c.Has("a") {
		t.Error("oldest entry survived an insert past capacity")
	}
	if got := c.Keys(); !slices.Equal(got, []string{"b", "c"}) {
		t.Errorf("Keys = %v, want [b c]", got)
	}
}

func TestPrefetchCache_HasDoesNotRefresh(t *testing.T) {
	c := NewPrefetchCache(2)
	c.Put("a", rendition("a"))
	c.Put("b", rendition("b"))
	c.Has("a")
	c.Put("c", rendition("c"))

	if c.Has("a") {
		t.Error("Has refreshed recency")
	}
}

func TestPrefetchCache_PurgeAndMinimumCapacity(t *testing.T) {
	c := NewPrefetchCache(0)
	c.Put("a", rendition("a"))
	c.Put("b", rendition("b"))
	if c.Len() != 1 || !c.Has("b") {
		t.Errorf("zero capacity cache: len=%d keys=%v", c.Len(), c.Keys())
	}

	c.Purge()
	if c.Len() != 0 {
		t.Errorf("Len after Purge = %d", c.Len())
	}
}
