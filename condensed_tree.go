package hdbscan

import (
	"math"
)

// CondensedCluster is one persistent cluster of a condensed tree. Clusters
// live in CondensedTree.Clusters and refer to each other by index.
type CondensedCluster struct {
	ID       int
	Parent   int // -1 for the root
	Children []int
	// Birth is the level at which the cluster split off its parent; +Inf for
	// the root.
	Birth float64
	// Death is the level at which the cluster split into child clusters or
	// lost its last point.
	Death float64
	// Size is the number of points in the cluster at birth.
	Size int
	// Stability is filled in by ComputeStability.
	Stability float64
}

// IsLeaf reports whether the cluster has no child clusters.
func (c *CondensedCluster) IsLeaf() bool { return len(c.Children) == 0 }

// CondensedTree is a dendrogram with every split that leaves fewer than
// MinClusterSize points on one side collapsed. Each point leaves exactly one
// cluster, the deepest one it belongs to, at ExitLevel.
type CondensedTree struct {
	N              int
	MinClusterSize int
	Clusters       []CondensedCluster
	ExitCluster    []int     // per point: the cluster it fell out of
	ExitLevel      []float64 // per point: the level at which it fell out
}

// CondensedTreeEntry is one parent→child edge of the condensed tree in the
// flat form used for plotting and export. Child is a point index when
// ChildSize is 1 and the entry records a point falling out; otherwise it is
// a cluster id offset by N.
type CondensedTreeEntry struct {
	Parent    int
	Child     int
	LambdaVal float64
	ChildSize int
}

// CondenseTree walks the dendrogram top-down and builds the condensed tree
// for minClusterSize. core holds the core distance of every point; a point
// that forms a cluster on its own (only possible when minClusterSize <= 1)
// leaves it at its core distance.
//
// Consecutive merges at the same level L form one multi-way split: its parts
// are the subtrees merged below L and the single points joined at L. A part
// is big enough when it has at least minClusterSize points and, if it is a
// single point, its core distance is below L. Then:
//   - two or more parts are big enough: the current cluster dies at L, each
//     big part starts a new cluster born at L and the other points fall out
//     at L
//   - one part is: the other points fall out at L and the big part keeps the
//     current cluster identity
//   - none is: all points fall out at L and the cluster dies
//
// With minClusterSize <= 1 no point may end up as noise, so when some part
// is big enough the points that are not go together into one extra cluster
// born and dead at L. Points at distance zero merge exactly at their shared
// core distance, so they always leave the same cluster.
func CondenseTree(d *Dendrogram, core []float64, minClusterSize int) (*CondensedTree, error) {
	n := d.N
	if len(core) != n {
		return nil, invalidInput("core distances length %d does not match %d points", len(core), n)
	}
	t := &CondensedTree{
		N:              n,
		MinClusterSize: minClusterSize,
		Clusters: []CondensedCluster{{
			ID:     0,
			Parent: -1,
			Birth:  math.Inf(1),
			Size:   n,
		}},
		ExitCluster: make([]int, n),
		ExitLevel:   make([]float64, n),
	}

	type item struct{ node, cluster int }
	queue := []item{{node: d.Root(), cluster: 0}}
	var scratch, parts, big, small []int

	fallOut := func(node, cluster int, level float64) {
		scratch = d.Points(scratch[:0], node)
		for _, p := range scratch {
			t.ExitCluster[p] = cluster
			t.ExitLevel[p] = level
		}
	}

	// counts reports whether node can become a cluster at a split at level.
	// A point whose core distance equals the level would leave its new
	// cluster the moment it is born.
	counts := func(node int, level float64) bool {
		if d.Size(node) < minClusterSize {
			return false
		}
		return !d.IsLeaf(node) || core[node] < level
	}

	newCluster := func(parent int, birth float64, size int) int {
		id := len(t.Clusters)
		t.Clusters = append(t.Clusters, CondensedCluster{
			ID:     id,
			Parent: parent,
			Birth:  birth,
			Size:   size,
		})
		t.Clusters[parent].Children = append(t.Clusters[parent].Children, id)
		return id
	}

	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		c := it.cluster

		if d.IsLeaf(it.node) {
			level := core[it.node]
			t.ExitCluster[it.node] = c
			t.ExitLevel[it.node] = level
			t.Clusters[c].Death = level
			continue
		}

		level := d.Node(it.node).Level
		parts = splitParts(d, it.node, level, parts[:0])
		big, small = big[:0], small[:0]
		smallSize := 0
		for _, part := range parts {
			if counts(part, level) {
				big = append(big, part)
			} else {
				small = append(small, part)
				smallSize += d.Size(part)
			}
		}

		// Points left over at L form their own short-lived cluster.
		group := minClusterSize <= 1 && len(big) > 0 && len(small) > 0

		switch {
		case len(big) >= 2 || group:
			t.Clusters[c].Death = level
			for _, part := range big {
				id := newCluster(c, level, d.Size(part))
				queue = append(queue, item{node: part, cluster: id})
			}
			exit := c
			if group {
				exit = newCluster(c, level, smallSize)
				t.Clusters[exit].Death = level
			}
			for _, part := range small {
				fallOut(part, exit, level)
			}

		case len(big) == 1:
			for _, part := range small {
				fallOut(part, c, level)
			}
			queue = append(queue, item{node: big[0], cluster: c})

		default:
			for _, part := range small {
				fallOut(part, c, level)
			}
			t.Clusters[c].Death = level
		}
	}

	return t, nil
}

// splitParts appends to dst the parts of the multi-way split at node: the
// dendrogram nodes below node that are reached through merges at exactly
// level and are not such merges themselves. Parts come in left-to-right
// order.
func splitParts(d *Dendrogram, node int, level float64, dst []int) []int {
	stack := []int{node}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !d.IsLeaf(top) {
			if m := d.Node(top); m.Level == level {
				stack = append(stack, m.Right, m.Left)
				continue
			}
		}
		dst = append(dst, top)
	}
	return dst
}

// Clone returns a deep copy of t.
func (t *CondensedTree) Clone() *CondensedTree {
	out := &CondensedTree{
		N:              t.N,
		MinClusterSize: t.MinClusterSize,
		Clusters:       make([]CondensedCluster, len(t.Clusters)),
		ExitCluster:    append([]int(nil), t.ExitCluster...),
		ExitLevel:      append([]float64(nil), t.ExitLevel...),
	}
	for i, c := range t.Clusters {
		c.Children = append([]int(nil), c.Children...)
		out.Clusters[i] = c
	}
	return out
}

// Root returns the root cluster.
func (t *CondensedTree) Root() *CondensedCluster { return &t.Clusters[0] }

// FallenOut returns the points that leave cluster c directly, in ascending
// index order.
func (t *CondensedTree) FallenOut(c int) []int {
	var pts []int
	for p, ec := range t.ExitCluster {
		if ec == c {
			pts = append(pts, p)
		}
	}
	return pts
}

// Descendants returns c and every cluster below it, parents before children.
func (t *CondensedTree) Descendants(c int) []int {
	out := []int{c}
	for i := 0; i < len(out); i++ {
		out = append(out, t.Clusters[out[i]].Children...)
	}
	return out
}

// Entries flattens the tree into parent→child rows ordered by cluster, with
// cluster ids offset by N so they never collide with point indices.
func (t *CondensedTree) Entries() []CondensedTreeEntry {
	entries := make([]CondensedTreeEntry, 0, len(t.Clusters)+t.N)
	byCluster := make([][]int, len(t.Clusters))
	for p, c := range t.ExitCluster {
		byCluster[c] = append(byCluster[c], p)
	}
	for i := range t.Clusters {
		c := &t.Clusters[i]
		for _, child := range c.Children {
			entries = append(entries, CondensedTreeEntry{
				Parent:    t.N + c.ID,
				Child:     t.N + child,
				LambdaVal: lambdaOf(t.Clusters[child].Birth, 0),
				ChildSize: t.Clusters[child].Size,
			})
		}
		for _, p := range byCluster[i] {
			entries = append(entries, CondensedTreeEntry{
				Parent:    t.N + c.ID,
				Child:     p,
				LambdaVal: lambdaOf(t.ExitLevel[p], 0),
				ChildSize: 1,
			})
		}
	}
	return entries
}
