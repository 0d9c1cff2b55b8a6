package detect

import "sync"

// Cache stores detection results per page so model inference runs at
// most once per page. Safe for concurrent workers.
type Cache struct {
	mu      sync.RWMutex
	regions map[int][]ProtectedRegion
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{regions: make(map[int][]ProtectedRegion)}
}

// Get returns the cached regions for a page, and whether any were stored.
// An empty stored slice is a valid hit: it means detection ran and found
// nothing.
func (c *Cache) Get(pageIndex int) ([]ProtectedRegion, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	regions, ok := c.regions[pageIndex]
	return regions, ok
}

// Put stores the regions detected for a page.
func (c *Cache) Put(pageIndex int, regions []ProtectedRegion) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.regions[pageIndex] = regions
}

// Clear drops all cached pages.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.regions = make(map[int][]ProtectedRegion)
}
