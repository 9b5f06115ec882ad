package server

import (
	"os"
	"sync"
	"time"

	"github.com/GNOME/orca-sub019/internal/action"
	"github.com/GNOME/orca-sub019/internal/fixture"
)

// cacheEntry holds the parsed sequences of one fixture file.
type cacheEntry struct {
	seqs      []*action.Sequence
	modTime   time.Time
	size      int64
	timestamp time.Time
}

// FixtureCache keeps parsed fixtures between tool calls. An entry is reused
// while it is younger than the TTL and the file's size and modification
// time are unchanged.
type FixtureCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewFixtureCache creates a new cache. A ttl of 0 disables caching.
func NewFixtureCache(ttl time.Duration) *FixtureCache {
	return &FixtureCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Load returns the sequences in path, parsing the file only when no fresh
// entry exists.
func (c *FixtureCache) Load(path string) ([]*action.Sequence, error) {
	if c.ttl == 0 {
		return fixture.LoadAll([]string{path})
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return fixture.LoadAll([]string{path})
	}

	c.mu.Lock()
	if e, ok := c.entries[path]; ok && c.now().Sub(e.timestamp) < c.ttl &&
		e.modTime.Equal(info.ModTime()) && e.size == info.Size() {
		seqs := e.seqs
		c.mu.Unlock()
		return seqs, nil
	}
	c.mu.Unlock()

	seqs, err := fixture.Load(path)
	if err != nil {
		c.Invalidate(path)
		return nil, err
	}

	c.mu.Lock()
	c.entries[path] = cacheEntry{seqs: seqs, modTime: info.ModTime(), size: info.Size(), timestamp: c.now()}
	c.mu.Unlock()
	return seqs, nil
}

// Invalidate drops the entry for path.
func (c *FixtureCache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// InvalidateAll clears the entire cache.
func (c *FixtureCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
