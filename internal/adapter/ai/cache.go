package ai

import (
	"strings"
	"sync"
)

// EmbeddingCache is a bounded, process-local text→vector cache.
//
// Eviction is FIFO by insertion order, not LRU: a read hit never
// promotes its key, so eviction timing depends only on insertion
// history. This is a known limitation kept on purpose — callers depend
// on the current eviction timing.
type EmbeddingCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string][]float32
	order    []string
}

// NewEmbeddingCache creates a cache holding at most capacity entries.
func NewEmbeddingCache(capacity int) *EmbeddingCache {
	if capacity < 1 {
		capacity = 1
	}
	return &EmbeddingCache{
		capacity: capacity,
		entries:  make(map[string][]float32, capacity),
	}
}

// Get returns the cached vector for the normalized text, if present.
func (c *EmbeddingCache) Get(text string) ([]float32, bool) {
	key := normalizeKey(text)
	c.mu.Lock()
	defer c.mu.Unlock()
	vec, ok := c.entries[key]
	return vec, ok
}

// Put stores a vector under the normalized text, evicting the
// earliest-inserted entry when at capacity. Updating an existing key
// keeps its original insertion position.
func (c *EmbeddingCache) Put(text string, vector []float32) {
	key := normalizeKey(text)
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = vector
		return
	}

	if len(c.entries) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = vector
	c.order = append(c.order, key)
}

// Len returns the number of resident entries.
func (c *EmbeddingCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// normalizeKey folds near-duplicate casing/whitespace onto one key.
func normalizeKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
