package hdbscan

import (
	"math"
)

// Edge is an undirected weighted edge between points A < B.
type Edge struct {
	A, B   int
	Weight float64
}

func newEdge(i, j int, w float64) Edge {
	if i > j {
		i, j = j, i
	}
	return Edge{A: i, B: j, Weight: w}
}

// edgeLess is the strict total order on edges: weight, then lower endpoint,
// then higher endpoint. Under it the minimum spanning tree is unique.
func edgeLess(a, b Edge) bool {
	if a.Weight != b.Weight {
		return a.Weight < b.Weight
	}
	if a.A != b.A {
		return a.A < b.A
	}
	return a.B < b.B
}

// PrimMST computes the minimum spanning tree of the complete mutual
// reachability graph over len(core) points without materializing it.
// dist(i, j) returns the raw (possibly scaled) distance between points.
//
// Prim's algorithm grows the tree from point 0. For every outside point j it
// keeps the best known edge into the tree; a new tree point cur can only
// improve it when max(core[cur], core[j]) does not already exceed that edge's
// weight, so the distance is not computed otherwise. Ties follow edgeLess, so
// the result is deterministic. It fails with ErrDegenerateInput if fewer than
// two points are given.
func PrimMST(core []float64, dist func(i, j int) float64) ([]Edge, error) {
	n := len(core)
	if n < 2 {
		return nil, degenerateInput("minimum spanning tree needs at least 2 points, got %d", n)
	}

	inTree := make([]bool, n)
	best := make([]Edge, n)
	known := make([]bool, n)

	edges := make([]Edge, 0, n-1)
	current := 0
	for len(edges) < n-1 {
		inTree[current] = true
		coreCur := core[current]

		next := -1
		for j := 0; j < n; j++ {
			if inTree[j] {
				continue
			}
			if !known[j] || max(coreCur, core[j]) <= best[j].Weight {
				candidate := newEdge(current, j, MutualReachability(dist(current, j), coreCur, core[j]))
				if !known[j] || edgeLess(candidate, best[j]) {
					best[j] = candidate
					known[j] = true
				}
			}
			if next == -1 || edgeLess(best[j], best[next]) {
				next = j
			}
		}

		edges = append(edges, best[next])
		current = next
	}
	return edges, nil
}

// TotalWeight sums the weights of edges.
func TotalWeight(edges []Edge) float64 {
	var total float64
	for _, e := range edges {
		total += e.Weight
	}
	return total
}

// hasInfiniteEdge reports whether any edge has +Inf weight, which means the
// graph was disconnected under the metric.
func hasInfiniteEdge(edges []Edge) bool {
	for _, e := range edges {
		if math.IsInf(e.Weight, 1) {
			return true
		}
	}
	return false
}
