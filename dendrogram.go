package hdbscan

import (
	"sort"
)

// Merge is one dendrogram merge event. Left and Right are node ids: values
// below n are points, values n and above refer to Merges[id-n].
type Merge struct {
	Left, Right int
	Level       float64 // mutual reachability distance of the merging edge
	Size        int     // points under this node
}

// Dendrogram is the single-linkage hierarchy over n points. Merges are in
// construction order, so Merges[i] is node n+i and the root is node 2n-2.
type Dendrogram struct {
	N      int
	Merges []Merge
}

// Clone returns a deep copy of d.
func (d *Dendrogram) Clone() *Dendrogram {
	return &Dendrogram{N: d.N, Merges: append([]Merge(nil), d.Merges...)}
}

// Root returns the id of the node containing every point.
func (d *Dendrogram) Root() int { return 2*d.N - 2 }

// IsLeaf reports whether node is a single point.
func (d *Dendrogram) IsLeaf(node int) bool { return node < d.N }

// Size returns the number of points under node.
func (d *Dendrogram) Size(node int) int {
	if d.IsLeaf(node) {
		return 1
	}
	return d.Merges[node-d.N].Size
}

// Node returns the merge event of an internal node.
func (d *Dendrogram) Node(node int) Merge { return d.Merges[node-d.N] }

// Points appends the points under node to dst, in left-to-right order.
func (d *Dendrogram) Points(dst []int, node int) []int {
	stack := []int{node}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if d.IsLeaf(top) {
			dst = append(dst, top)
			continue
		}
		m := d.Node(top)
		stack = append(stack, m.Right, m.Left)
	}
	return dst
}

// BuildDendrogram sorts the n-1 MST edges with the MST tie-break order and
// replays them through a union-find, producing one merge per edge. Merge
// levels are therefore non-decreasing. It fails with ErrInvalidInput if the
// edges do not form a spanning tree over n points.
func BuildDendrogram(mst []Edge, n int) (*Dendrogram, error) {
	if n < 2 {
		return nil, degenerateInput("dendrogram needs at least 2 points, got %d", n)
	}
	if len(mst) != n-1 {
		return nil, invalidInput("spanning tree over %d points needs %d edges, got %d", n, n-1, len(mst))
	}

	sorted := make([]Edge, len(mst))
	copy(sorted, mst)
	sort.SliceStable(sorted, func(i, j int) bool {
		return edgeLess(sorted[i], sorted[j])
	})

	uf := NewUnionFind(n)
	merges := make([]Merge, 0, n-1)
	for _, e := range sorted {
		if e.A < 0 || e.B >= n || e.A >= e.B {
			return nil, invalidInput("edge (%d, %d) is not a valid edge over %d points", e.A, e.B, n)
		}
		ra, rb := uf.Find(e.A), uf.Find(e.B)
		if ra == rb {
			return nil, invalidInput("edge (%d, %d) closes a cycle", e.A, e.B)
		}
		id := uf.Merge(ra, rb)
		merges = append(merges, Merge{Left: ra, Right: rb, Level: e.Weight, Size: uf.Size(id)})
	}
	return &Dendrogram{N: n, Merges: merges}, nil
}
