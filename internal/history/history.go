package history

import (
	"sync"

	"github.com/matheus3301/nikki/internal/snapshot"
	"go.uber.org/zap"
)

// MaxEntries bounds the cache.
const MaxEntries = 10

// Cache is a bounded newest-first list of texts persisted as a JSON array.
type Cache struct {
	mu     sync.Mutex
	path   string
	items  []string
	logger *zap.Logger
}

// Open loads the cache at path; load failures leave it empty.
func Open(path string, logger *zap.Logger) *Cache {
	c := &Cache{path: path, logger: logger}
	var items []string
	if _, err := snapshot.Read(path, &items); err != nil {
		logger.Warn("failed to load local history", zap.String("path", path), zap.Error(err))
		return c
	}
	if len(items) > MaxEntries {
		items = items[:MaxEntries]
	}
	c.items = items
	return c
}

// Add inserts text at the head unless it equals the current head. It
// reports whether the cache changed. Empty text is ignored.
func (c *Cache) Add(text string) bool {
	if text == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) > 0 && c.items[0] == text {
		return false
	}
	items := make([]string, 0, min(len(c.items)+1, MaxEntries))
	items = append(items, text)
	for _, it := range c.items {
		if len(items) == MaxEntries {
			break
		}
		items = append(items, it)
	}
	c.items = items
	c.persist()
	return true
}

// GetLatest returns up to count texts, newest first. A non-positive count
// returns everything.
func (c *Cache) GetLatest(count int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if count <= 0 || count > len(c.items) {
		count = len(c.items)
	}
	out := make([]string, count)
	copy(out, c.items[:count])
	return out
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.persist()
}

func (c *Cache) persist() {
	items := c.items
	if items == nil {
		items = []string{}
	}
	if err := snapshot.Write(c.path, items); err != nil {
		c.logger.Error("failed to save local history", zap.String("path", c.path), zap.Error(err))
	}
}
