package extract

import "sync"

// cacheLimit bounds the extraction memo. On overflow one arbitrary entry
// is evicted (not strict LRU): misses only cost a re-call, so eviction
// order is not correctness-critical.
const cacheLimit = 128

// resultCache is safe for concurrent use; Extract is reached from one
// goroutine per HTTP request.
type resultCache struct {
	mu      sync.Mutex
	entries map[string]Result
}

func newResultCache() *resultCache {
	return &resultCache{entries: make(map[string]Result)}
}

func (c *resultCache) get(key string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[key]
	return r, ok
}

func (c *resultCache) put(key string, r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= cacheLimit {
		for k := range c.entries {
			delete(c.entries, k)
			break
		}
	}
	c.entries[key] = r
}

func (c *resultCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
