package mustache

import "sync"

// TemplateCache stores parsed token trees keyed by template text and
// delimiter pair. Entries never expire except through Clear. The renderer
// never mutates a cached tree, so implementations may hand the same slice
// to every caller.
type TemplateCache interface {
	Get(key string) ([]*Token, bool)
	Set(key string, tokens []*Token)
	Clear()
}

// cacheKey builds the lookup key for one (template, delimiters) pair.
func cacheKey(template string, tags Tags) string {
	return template + ":" + tags.Open + ":" + tags.Close
}

// memoryCache is the default TemplateCache: an unbounded in-memory map
// guarded by a read/write mutex.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string][]*Token
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]*Token)}
}

func (c *memoryCache) Get(key string) ([]*Token, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tokens, ok := c.entries[key]
	return tokens, ok
}

func (c *memoryCache) Set(key string, tokens []*Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = tokens
}

func (c *memoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]*Token)
}
