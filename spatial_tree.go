package hdbscan

import (
	"container/heap"
)

// Neighbor is one result of a k-nearest-neighbor query.
type Neighbor struct {
	Index    int
	Distance float64
}

// SpatialIndex answers k-nearest-neighbor queries over the points of a
// Dataset. It is built once and may be queried repeatedly with different k.
type SpatialIndex interface {
	// KNearest returns the k nearest points to point, excluding point itself,
	// ordered by ascending distance with ties broken by ascending index.
	// It fails with ErrInvalidInput when k < 0 or k >= Len().
	KNearest(point, k int) ([]Neighbor, error)

	// Len returns the number of indexed points.
	Len() int
}

// NodeData describes a single node in a spatial tree.
type NodeData struct {
	IdxStart, IdxEnd int
	IsLeaf           bool
	Radius           float64 // ball tree radius; 0 for KD-tree
}

func checkQuery(point, k, n int) error {
	if point < 0 || point >= n {
		return invalidInput("query point %d out of range [0, %d)", point, n)
	}
	if k < 0 || k >= n {
		return invalidInput("k must be in [0, %d), got %d", n, k)
	}
	return nil
}

// --- bounded max-heap for KNN queries ---

// neighborWorse orders neighbors by (distance, index); a is worse than b when
// it would be evicted first.
func neighborWorse(a, b Neighbor) bool {
	if a.Distance != b.Distance {
		return a.Distance > b.Distance
	}
	return a.Index > b.Index
}

// knnHeap is a max-heap of Neighbor (worst on top) used as a bounded
// priority queue for KNN queries.
type knnHeap []Neighbor

func (h knnHeap) Len() int            { return len(h) }
func (h knnHeap) Less(i, j int) bool  { return neighborWorse(h[i], h[j]) }
func (h knnHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *knnHeap) Push(x interface{}) { *h = append(*h, x.(Neighbor)) }
func (h *knnHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// knnSet keeps the k best neighbors seen so far.
type knnSet struct {
	k int
	h knnHeap
}

func newKNNSet(k int) *knnSet {
	return &knnSet{k: k, h: make(knnHeap, 0, k)}
}

func (s *knnSet) offer(index int, dist float64) {
	if s.k == 0 {
		return
	}
	nb := Neighbor{Index: index, Distance: dist}
	if len(s.h) < s.k {
		heap.Push(&s.h, nb)
		return
	}
	if neighborWorse(s.h[0], nb) {
		s.h[0] = nb
		heap.Fix(&s.h, 0)
	}
}

// boundSlack absorbs rounding differences between a node's lower bound and
// the exact point distances it stands for.
const boundSlack = 1e-12

// admits reports whether a point at distance lowerBound could still enter the
// set. Equal distances are admitted because a lower index wins the tie.
func (s *knnSet) admits(lowerBound float64) bool {
	return len(s.h) < s.k || lowerBound*(1-boundSlack) <= s.h[0].Distance
}

// sorted drains the set in ascending (distance, index) order.
func (s *knnSet) sorted() []Neighbor {
	out := make([]Neighbor, len(s.h))
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&s.h).(Neighbor)
	}
	return out
}
