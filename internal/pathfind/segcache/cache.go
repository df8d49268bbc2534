// Package segcache stores the cost and shape of forced track runs so repeated
// searches can skip re-walking them.
package segcache

import (
	"sync"

	"github.com/google/btree"

	"trackroute/internal/track"
)

// DefaultMaxSegments bounds a cache built with a non-positive capacity.
const DefaultMaxSegments = 65536

// Stats is a snapshot of cache activity.
type Stats struct {
	Segments    int
	Hits        uint64
	Misses      uint64
	Stores      uint64
	Invalidated uint64
	Flushes     uint64
}

type posting struct {
	y, x int
	id   uint64
}

func postingLess(a, b posting) bool {
	if a.y != b.y {
		return a.y < b.y
	}
	if a.x != b.x {
		return a.x < b.x
	}
	return a.id < b.id
}

type entry struct {
	id    uint64
	key   Key
	seg   Segment
	tiles []track.Tile
}

// Cache maps (profile, entry state) to segments and indexes them by the
// tiles they cover so map edits can drop exactly the affected ones. It is
// safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	max     int
	nextID  uint64
	entries map[Key]*entry
	byID    map[uint64]*entry
	index   *btree.BTreeG[posting]
	stats   Stats
}

// New returns a cache holding at most maxSegments segments. When full, the
// next store flushes everything.
func New(maxSegments int) *Cache {
	if maxSegments <= 0 {
		maxSegments = DefaultMaxSegments
	}
	return &Cache{
		max:     maxSegments,
		entries: make(map[Key]*entry),
		byID:    make(map[uint64]*entry),
		index:   btree.NewG[posting](32, postingLess),
	}
}

// Lookup returns the cached segment for key.
func (c *Cache) Lookup(p Profile, entryState track.State) (Segment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[Key{Profile: p, Entry: entryState}]
	if !ok {
		c.stats.Misses++
		return Segment{}, false
	}
	c.stats.Hits++
	return e.seg, true
}

// Store records seg under its entry state. Segments whose end depends on the
// query are ignored.
func (c *Cache) Store(p Profile, seg Segment) bool {
	if !seg.End.Cacheable() {
		return false
	}
	key := Key{Profile: p, Entry: seg.Entry}
	tiles := uniqueTiles(seg.Tiles())

	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.entries[key]; ok {
		c.removeLocked(old)
	}
	if len(c.entries) >= c.max {
		c.clearLocked()
		c.stats.Flushes++
	}
	c.nextID++
	e := &entry{id: c.nextID, key: key, seg: seg, tiles: tiles}
	c.entries[key] = e
	c.byID[e.id] = e
	for _, t := range tiles {
		c.index.ReplaceOrInsert(posting{y: t.Y, x: t.X, id: e.id})
	}
	c.stats.Stores++
	return true
}

// Invalidate drops every segment passing over a tile inside r and returns how
// many were removed.
func (c *Cache) Invalidate(r track.Rect) int {
	r = r.Normalize()

	c.mu.Lock()
	defer c.mu.Unlock()
	var hit []uint64
	seen := make(map[uint64]struct{})
	// One pass over the postings from the first row of r; the walk is
	// bounded by what is indexed, not by the size of r.
	c.index.AscendGreaterOrEqual(posting{y: r.Min.Y, x: r.Min.X}, func(p posting) bool {
		if p.y > r.Max.Y {
			return false
		}
		if p.x < r.Min.X || p.x > r.Max.X {
			return true
		}
		if _, dup := seen[p.id]; !dup {
			seen[p.id] = struct{}{}
			hit = append(hit, p.id)
		}
		return true
	})
	for _, id := range hit {
		if e, ok := c.byID[id]; ok {
			c.removeLocked(e)
		}
	}
	c.stats.Invalidated += uint64(len(hit))
	return len(hit)
}

// InvalidateAll empties the cache.
func (c *Cache) InvalidateAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.clearLocked()
	c.stats.Invalidated += uint64(n)
	return n
}

// Len returns the number of cached segments.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Segments = len(c.entries)
	return s
}

func (c *Cache) removeLocked(e *entry) {
	for _, t := range e.tiles {
		c.index.Delete(posting{y: t.Y, x: t.X, id: e.id})
	}
	delete(c.entries, e.key)
	delete(c.byID, e.id)
}

func (c *Cache) clearLocked() {
	clear(c.entries)
	clear(c.byID)
	c.index.Clear(false)
}

func uniqueTiles(tiles []track.Tile) []track.Tile {
	seen := make(map[track.Tile]struct{}, len(tiles))
	out := tiles[:0:0]
	for _, t := range tiles {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
