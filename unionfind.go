package hdbscan

// UnionFind is a disjoint-set structure over the 2*n - 1 node ids of a
// dendrogram: points 0..n-1 and merge nodes n..2n-2. Merging two roots makes
// a fresh merge node their common parent, so a root id is also the dendrogram
// node standing for the whole set.
type UnionFind struct {
	parent []int
	size   []int
	// nextLabel is the ID for the next merged cluster, starting at n.
	nextLabel int
}

// NewUnionFind creates a UnionFind for n initial elements.
func NewUnionFind(n int) *UnionFind {
	total := max(2*n-1, 1)
	parent := make([]int, total)
	size := make([]int, total)
	for i := range parent {
		parent[i] = -1 // -1 means "is a root"
	}
	for i := 0; i < n; i++ {
		size[i] = 1
	}
	return &UnionFind{
		parent:    parent,
		size:      size,
		nextLabel: n,
	}
}

// Find returns the root of the set containing x, with path compression.
func (uf *UnionFind) Find(x int) int {
	root := x
	for uf.parent[root] != -1 {
		root = uf.parent[root]
	}
	for uf.parent[x] != -1 {
		x, uf.parent[x] = uf.parent[x], root
	}
	return root
}

// Size returns the number of points under root.
func (uf *UnionFind) Size(root int) int { return uf.size[root] }

// Merge joins the distinct roots a and b under a new node and returns its id.
func (uf *UnionFind) Merge(a, b int) int {
	id := uf.nextLabel
	uf.nextLabel++
	uf.size[id] = uf.size[a] + uf.size[b]
	uf.parent[a] = id
	uf.parent[b] = id
	return id
}
