package engine

// Cache constants
const (
	DefaultCacheSize = 1 << 16 // Entries per search (~1.5MB)
)

// CacheEntry is a stored search result.
type CacheEntry struct {
	Key   uint64 // Zobrist fingerprint
	Depth int32  // Depth from the root at which the score was computed
	Score int32  // Exact negamax score for the side to move
	valid bool
}

// cacheNode holds primary and secondary entries for two-way associative cache
type cacheNode struct {
	primary   CacheEntry
	secondary CacheEntry
}

// TransCache is a transposition cache keyed by Zobrist fingerprint.
// It uses a two-way associative table; a new entry demotes the primary
// slot's entry to the secondary slot. A TransCache belongs to one search
// and is not safe for concurrent use.
type TransCache struct {
	entries  []cacheNode
	size     uint32
	hashMask uint64

	// Statistics
	lookups uint64
	hits    uint64
	adds    uint64
}

// NewTransCache creates a cache with room for size entries. Size is
// rounded up to a power of two, with a minimum of 2.
func NewTransCache(size uint32) *TransCache {
	if size > 1<<30 {
		size = 1 << 30
	}
	p := uint32(2)
	for p < size {
		p <<= 1
	}

	c := &TransCache{
		entries:  make([]cacheNode, p/2),
		size:     p,
		hashMask: uint64(p/2) - 1,
	}
	return c
}

// Size returns the number of entries the cache can hold.
func (c *TransCache) Size() uint32 { return c.size }

// Flush clears all entries and statistics.
func (c *TransCache) Flush() {
	for i := range c.entries {
		c.entries[i] = cacheNode{}
	}
	c.lookups = 0
	c.hits = 0
	c.adds = 0
}

// slot mixes the fingerprint with the murmur3 64-bit finalizer.
func (c *TransCache) slot(key uint64) *cacheNode {
	h := key
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return &c.entries[h&c.hashMask]
}

// Lookup returns the stored score for key if it was computed at a depth
// from the root of at least depth.
func (c *TransCache) Lookup(key uint64, depth int) (int, bool) {
	c.lookups++
	node := c.slot(key)
	for _, e := range [2]*CacheEntry{&node.primary, &node.secondary} {
		if e.valid && e.Key == key {
			if int(e.Depth) >= depth {
				c.hits++
				return int(e.Score), true
			}
			return 0, false
		}
	}
	return 0, false
}

// Add stores a score computed at the given depth from the root.
func (c *TransCache) Add(key uint64, depth, score int) {
	node := c.slot(key)
	entry := CacheEntry{Key: key, Depth: int32(depth), Score: int32(score), valid: true}

	switch {
	case node.primary.valid && node.primary.Key == key:
		node.primary = entry
	case node.secondary.valid && node.secondary.Key == key:
		node.secondary = node.primary
		node.primary = entry
	default:
		node.secondary = node.primary
		node.primary = entry
	}
	c.adds++
}

// Stats returns cache statistics
func (c *TransCache) Stats() (lookups, hits, adds uint64) {
	return c.lookups, c.hits, c.adds
}

// HitRate returns the cache hit rate as a percentage
func (c *TransCache) HitRate() float64 {
	if c.lookups == 0 {
		return 0
	}
	return float64(c.hits) / float64(c.lookups) * 100
}
