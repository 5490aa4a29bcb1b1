package workspace

import (
	"sync"
	"time"

	"github.com/mj1618/uiarec/internal/model"
	"github.com/mj1618/uiarec/internal/store"
)

// cacheEntry holds a loaded scenario with its timestamp.
type cacheEntry struct {
	scenario  *model.Scenario
	timestamp time.Time
}

// scenarioCache provides a TTL-based cache of loaded scenario files.
// Cached scenarios are shared and must be treated as read-only.
type scenarioCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	load    func(path string) (*model.Scenario, error)
}

// newScenarioCache creates a new cache. A ttl of 0 disables caching.
func newScenarioCache(ttl time.Duration) *scenarioCache {
	return &scenarioCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		load:    store.LoadOrNew,
	}
}

// get returns the cached scenario if within TTL, otherwise reads fresh.
func (c *scenarioCache) get(path string) (*model.Scenario, error) {
	if c.ttl == 0 {
		return c.load(path)
	}

	c.mu.Lock()
	if entry, ok := c.entries[path]; ok && time.Since(entry.timestamp) < c.ttl {
		sc := entry.scenario
		c.mu.Unlock()
		return sc, nil
	}
	c.mu.Unlock()

	sc, err := c.load(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[path] = cacheEntry{scenario: sc, timestamp: time.Now()}
	c.mu.Unlock()

	return sc, nil
}

// invalidate removes the entry for path.
func (c *scenarioCache) invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}
