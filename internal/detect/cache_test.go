package detect

import (
	"image"
	"testing"
)

func TestCache(t *testing.T) {
	cache := NewCache()

	if _, ok := cache.Get(0); ok {
		t.Error("Expected miss on an empty cache")
	}

	regions := []ProtectedRegion{{Bbox: image.Rect(0, 0, 10, 10), Label: "title", Confidence: 0.9}}
	cache.Put(0, regions)

	got, ok := cache.Get(0)
	if !ok || len(got) != 1 {
		t.Fatalf("Expected cached regions, got %v (hit=%v)", got, ok)
	}

	// An empty result is a valid hit: detection ran and found nothing,
	// it must not run again.
	cache.Put(1, nil)
	if got, ok := cache.Get(1); !ok || len(got) != 0 {
		t.Errorf("Expected empty hit for page 1, got %v (hit=%v)", got, ok)
	}

	cache.Clear()
	if _, ok := cache.Get(0); ok {
		t.Error("Expected miss after Clear")
	}
}
