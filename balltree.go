package hdbscan

import (
	"math"
	"sort"
)

// BallTree is a ball tree spatial index for nearest-neighbor queries. Each
// node stores a centroid and radius defining an enclosing ball for its
// points, so any metric obeying the triangle inequality can prune with it.
//
// The tree is stored as a binary tree in array form:
//   - node i has children at 2*i+1 and 2*i+2
type BallTree struct {
	ds       *Dataset
	dims     int
	leafSize int
	metric   DistanceMetric
	idxArray []int      // permutation: tree-order position → original index
	nodes    []NodeData // one entry per tree node; Radius is used
	// centroids[node*dims .. (node+1)*dims) = centroid of node
	centroids []float64
	used      []bool
}

// NewBallTree builds a ball tree over ds. leafSize controls the max points
// per leaf node.
func NewBallTree(ds *Dataset, metric DistanceMetric, leafSize int) *BallTree {
	if leafSize < 1 {
		leafSize = 1
	}

	n, dims := ds.Len(), ds.Dims()
	idxArray := make([]int, n)
	for i := range idxArray {
		idxArray[i] = i
	}

	maxNodes := kdMaxNodes(n, leafSize) // same shape bound as the KD-tree
	t := &BallTree{
		ds:        ds,
		dims:      dims,
		leafSize:  leafSize,
		metric:    metric,
		idxArray:  idxArray,
		nodes:     make([]NodeData, maxNodes),
		centroids: make([]float64, maxNodes*dims),
		used:      make([]bool, maxNodes),
	}
	t.buildNode(0, 0, n)
	return t
}

// buildNode recursively builds the ball tree for points in idxArray[start:end].
func (t *BallTree) buildNode(nodeID, start, end int) {
	for nodeID >= len(t.nodes) {
		t.nodes = append(t.nodes, NodeData{})
		t.used = append(t.used, false)
		t.centroids = append(t.centroids, make([]float64, t.dims)...)
	}
	t.used[nodeID] = true

	t.computeCentroid(nodeID, start, end)

	// Radius: max distance from centroid to any point in this node.
	centroid := t.centroid(nodeID)
	var radius float64
	for i := start; i < end; i++ {
		if d := t.metric.Distance(centroid, t.ds.Point(t.idxArray[i])); d > radius {
			radius = d
		}
	}

	count := end - start
	if count <= t.leafSize {
		t.nodes[nodeID] = NodeData{IdxStart: start, IdxEnd: end, IsLeaf: true, Radius: radius}
		return
	}
	t.nodes[nodeID] = NodeData{IdxStart: start, IdxEnd: end, Radius: radius}

	splitDim := t.findSpreadDim(start, end)
	t.sortByDim(start, end, splitDim)
	mid := start + count/2

	t.buildNode(2*nodeID+1, start, mid)
	t.buildNode(2*nodeID+2, mid, end)
}

func (t *BallTree) centroid(nodeID int) []float64 {
	return t.centroids[nodeID*t.dims : (nodeID+1)*t.dims]
}

// computeCentroid stores the mean of points idxArray[start:end].
func (t *BallTree) computeCentroid(nodeID, start, end int) {
	c := t.centroid(nodeID)
	for d := range c {
		c[d] = 0
	}
	for i := start; i < end; i++ {
		for d, v := range t.ds.Point(t.idxArray[i]) {
			c[d] += v
		}
	}
	count := float64(end - start)
	for d := range c {
		c[d] /= count
	}
}

// findSpreadDim returns the dimension with the greatest spread among
// points in idxArray[start:end].
func (t *BallTree) findSpreadDim(start, end int) int {
	bestDim := 0
	bestSpread := -1.0
	for d := 0; d < t.dims; d++ {
		minVal := math.Inf(1)
		maxVal := math.Inf(-1)
		for i := start; i < end; i++ {
			v := t.ds.Point(t.idxArray[i])[d]
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
		if spread := maxVal - minVal; spread > bestSpread {
			bestSpread = spread
			bestDim = d
		}
	}
	return bestDim
}

// sortByDim sorts idxArray[start:end] by the given dimension, then by index.
func (t *BallTree) sortByDim(start, end, dim int) {
	sub := t.idxArray[start:end]
	flat := t.ds.Flat()
	dims := t.dims
	sort.Slice(sub, func(i, j int) bool {
		a, b := flat[sub[i]*dims+dim], flat[sub[j]*dims+dim]
		if a != b {
			return a < b
		}
		return sub[i] < sub[j]
	})
}

// Len returns the number of indexed points.
func (t *BallTree) Len() int { return t.ds.Len() }

// IdxArray returns the permutation array mapping tree-order positions
// back to original point indices.
func (t *BallTree) IdxArray() []int { return t.idxArray }

// NodeDataArray returns the metadata for every node in the tree, in array
// order. Unused slots have IdxStart == IdxEnd == 0.
func (t *BallTree) NodeDataArray() []NodeData { return t.nodes }

// KNearest implements SpatialIndex.
func (t *BallTree) KNearest(point, k int) ([]Neighbor, error) {
	if err := checkQuery(point, k, t.Len()); err != nil {
		return nil, err
	}
	set := newKNNSet(k)
	if k > 0 {
		t.knnSearch(0, point, t.ds.Point(point), set)
	}
	return set.sorted(), nil
}

// knnSearch performs a single-tree KNN traversal for the ball tree.
func (t *BallTree) knnSearch(nodeID, self int, query []float64, set *knnSet) {
	if nodeID >= len(t.nodes) || !t.used[nodeID] {
		return
	}
	node := t.nodes[nodeID]

	if node.IsLeaf {
		for i := node.IdxStart; i < node.IdxEnd; i++ {
			ptIdx := t.idxArray[i]
			if ptIdx == self {
				continue
			}
			set.offer(ptIdx, t.metric.Distance(query, t.ds.Point(ptIdx)))
		}
		return
	}

	left := 2*nodeID + 1
	right := 2*nodeID + 2
	leftDist := t.minDistPoint(left, query)
	rightDist := t.minDistPoint(right, query)

	nearChild, farChild := left, right
	nearDist, farDist := leftDist, rightDist
	if rightDist < leftDist {
		nearChild, farChild = right, left
		nearDist, farDist = rightDist, leftDist
	}

	if set.admits(nearDist) {
		t.knnSearch(nearChild, self, query, set)
	}
	if set.admits(farDist) {
		t.knnSearch(farChild, self, query, set)
	}
}

// minDistPoint returns max(0, dist(point, centroid) - radius), a lower bound
// on the distance between point and anything in the node.
func (t *BallTree) minDistPoint(node int, point []float64) float64 {
	if node >= len(t.nodes) || !t.used[node] {
		return math.Inf(1)
	}
	dist := t.metric.Distance(point, t.centroid(node)) - t.nodes[node].Radius
	if dist < 0 {
		dist = 0
	}
	return dist
}
