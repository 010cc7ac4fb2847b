package raster

import "sync"

// Cache keeps one open Source per raster path so repeated zonal runs, and
// the per-geometry window reads within a run, decode each raster only once.
// It is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	sources map[string]Source
}

// NewCache creates an empty source cache.
func NewCache() *Cache {
	return &Cache{sources: make(map[string]Source)}
}

// Load returns the cached source for path, opening it on first use.
func (c *Cache) Load(path string) (Source, error) {
	c.mu.RLock()
	if src, ok := c.sources[path]; ok {
		c.mu.RUnlock()
		return src, nil
	}
	c.mu.RUnlock()

	src, err := Open(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have opened it meanwhile; keep the first.
	if existing, ok := c.sources[path]; ok {
		return existing, nil
	}
	c.sources[path] = src
	return src, nil
}

// Evict closes and removes one cached source.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if src, ok := c.sources[path]; ok {
		src.Close()
		delete(c.sources, path)
	}
}

// Close closes every cached source and empties the cache.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var first error
	for path, src := range c.sources {
		if err := src.Close(); err != nil && first == nil {
			first = err
		}
		delete(c.sources, path)
	}
	return first
}
