package hdbscan

import (
	"github.com/tidwall/btree"
)

// density holds the products of one minPts value over one dataset: core
// distances, the mutual reachability MST and its dendrogram. They do not
// depend on minClusterSize and are reused by every extraction with the same
// minPts.
type density struct {
	minPts     int
	core       []float64
	mst        []Edge
	dendrogram *Dendrogram
	lastUsed   uint64
}

// densityCache keeps up to capacity density entries keyed by minPts and
// evicts the least recently used one when full.
type densityCache struct {
	capacity int
	tick     uint64
	entries  btree.Map[int, *density]
}

func newDensityCache(capacity int) *densityCache {
	return &densityCache{capacity: max(capacity, 1)}
}

func (c *densityCache) get(minPts int) (*density, bool) {
	d, ok := c.entries.Get(minPts)
	if ok {
		c.tick++
		d.lastUsed = c.tick
	}
	return d, ok
}

// put stores d and returns the minPts value evicted to make room, or 0.
func (c *densityCache) put(d *density) (evicted int) {
	c.tick++
	d.lastUsed = c.tick
	c.entries.Set(d.minPts, d)
	if c.entries.Len() <= c.capacity {
		return 0
	}

	victim, oldest := 0, uint64(0)
	c.entries.Scan(func(minPts int, e *density) bool {
		if victim == 0 || e.lastUsed < oldest {
			victim, oldest = minPts, e.lastUsed
		}
		return true
	})
	c.entries.Delete(victim)
	return victim
}

func (c *densityCache) len() int { return c.entries.Len() }

// keys returns the cached minPts values in ascending order.
func (c *densityCache) keys() []int {
	keys := make([]int, 0, c.entries.Len())
	c.entries.Scan(func(minPts int, _ *density) bool {
		keys = append(keys, minPts)
		return true
	})
	return keys
}
