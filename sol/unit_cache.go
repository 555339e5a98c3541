package sol

import (
	"sync"
)

type unitEntry struct {
	Slot       uint64
	Signatures []string
}

// UnitCache keeps the signature lists of the most recently fetched slots. A finalized
// slot never changes, so a wallet with several trades in one slot, or two wallets hit by
// the same bot, share a single getBlock call.
type UnitCache struct {
	mu      sync.RWMutex
	size    int
	entries []*unitEntry
	index   int
}

func NewUnitCache(size int) *UnitCache {
	if size <= 0 {
		size = 1
	}
	return &UnitCache{
		size:    size,
		entries: make([]*unitEntry, 0, size),
	}
}

func (c *UnitCache) Put(slot uint64, sigs []string) {
	if sigs == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if e.Slot == slot {
			e.Signatures = sigs
			return
		}
	}

	entry := &unitEntry{Slot: slot, Signatures: sigs}
	if len(c.entries) < c.size {
		c.entries = append(c.entries, entry)
	} else {
		c.entries[c.index] = entry
		c.index = (c.index + 1) % c.size
	}
}

func (c *UnitCache) Get(slot uint64) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.entries {
		if e.Slot == slot {
			return e.Signatures, true
		}
	}
	return nil, false
}

func (c *UnitCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *UnitCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make([]*unitEntry, 0, c.size)
	c.index = 0
}
