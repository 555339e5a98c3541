package cache

import (
	"context"
	"sync"
	"time"

	"sandwichcheck/config"
	"sandwichcheck/types"
)

type memoryEntry struct {
	report    *types.WalletReportJSON
	expiresAt time.Time
}

// MemoryCache is a bounded in-process report cache. When full, the oldest inserted
// wallet is evicted first.
type MemoryCache struct {
	mu       sync.Mutex
	set      map[string]memoryEntry
	order    []string
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

var _ ReportCache = (*MemoryCache)(nil)

func NewMemoryCache(capacity int, ttl time.Duration) *MemoryCache {
	if capacity <= 0 {
		capacity = config.REPORT_CACHE_ENTRIES
	}
	if ttl <= 0 {
		ttl = config.REPORT_CACHE_TTL
	}
	return &MemoryCache{
		set:      make(map[string]memoryEntry),
		order:    make([]string, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, wallet string) (*types.WalletReportJSON, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := reportKey(wallet)
	e, ok := c.set[key]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		c.remove(key)
		return nil, false, nil
	}
	return e.report, true, nil
}

func (c *MemoryCache) Set(_ context.Context, wallet string, report *types.WalletReportJSON) error {
	if report == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := reportKey(wallet)
	if _, exists := c.set[key]; exists {
		c.remove(key)
	}
	for len(c.order) >= c.capacity {
		old := c.order[0]
		c.order = c.order[1:]
		delete(c.set, old)
	}
	c.set[key] = memoryEntry{report: report, expiresAt: c.now().Add(c.ttl)}
	c.order = append(c.order, key)
	return nil
}

func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.set)
}

func (c *MemoryCache) remove(key string) {
	delete(c.set, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
