package hdbscan

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// KDTree is a KD-tree spatial index for nearest-neighbor queries. Points
// stay in the Dataset; the tree only reorders an index permutation.
//
// The tree is stored as a binary tree in array form:
//   - node i has children at 2*i+1 and 2*i+2
//   - node bounds are stored as min/max per dimension per node
type KDTree struct {
	ds       *Dataset
	dims     int
	leafSize int
	metric   DistanceMetric
	p        float64    // norm applied to per-axis gaps
	idxArray []int      // permutation: tree-order position → original index
	nodes    []NodeData // one entry per tree node
	// nodeBoundsMin[node*dims + j] = min value of feature j in node
	nodeBoundsMin []float64
	// nodeBoundsMax[node*dims + j] = max value of feature j in node
	nodeBoundsMax []float64
	used          []bool
}

// NewKDTree builds a KD-tree over ds. leafSize controls the max points per
// leaf node. The metric must decompose along coordinate axes (Euclidean,
// Manhattan, Chebyshev or Minkowski).
func NewKDTree(ds *Dataset, metric DistanceMetric, leafSize int) (*KDTree, error) {
	p, ok := axisNorm(metric)
	if !ok {
		return nil, invalidArgument("metric %T is not supported by the KD-tree", metric)
	}
	if leafSize < 1 {
		leafSize = 1
	}

	n, dims := ds.Len(), ds.Dims()
	idxArray := make([]int, n)
	for i := range idxArray {
		idxArray[i] = i
	}

	maxNodes := kdMaxNodes(n, leafSize)
	t := &KDTree{
		ds:            ds,
		dims:          dims,
		leafSize:      leafSize,
		metric:        metric,
		p:             p,
		idxArray:      idxArray,
		nodes:         make([]NodeData, maxNodes),
		nodeBoundsMin: make([]float64, maxNodes*dims),
		nodeBoundsMax: make([]float64, maxNodes*dims),
		used:          make([]bool, maxNodes),
	}
	t.buildNode(0, 0, n)
	return t, nil
}

// kdMaxNodes returns an upper bound on the number of nodes needed for a
// binary tree with n points and the given leaf size.
func kdMaxNodes(n, leafSize int) int {
	if n == 0 {
		return 1
	}
	leaves := (n + leafSize - 1) / leafSize
	depth := 0
	v := 1
	for v < leaves {
		v *= 2
		depth++
	}
	return (1 << (depth + 1)) - 1 + 2
}

func (t *KDTree) grow(nodeID int) {
	for nodeID >= len(t.nodes) {
		t.nodes = append(t.nodes, NodeData{})
		t.used = append(t.used, false)
		t.nodeBoundsMin = append(t.nodeBoundsMin, make([]float64, t.dims)...)
		t.nodeBoundsMax = append(t.nodeBoundsMax, make([]float64, t.dims)...)
	}
}

// buildNode recursively builds the tree for points in idxArray[start:end].
func (t *KDTree) buildNode(nodeID, start, end int) {
	t.grow(nodeID)
	t.used[nodeID] = true
	t.computeNodeBounds(nodeID, start, end)

	count := end - start
	if count <= t.leafSize {
		t.nodes[nodeID] = NodeData{IdxStart: start, IdxEnd: end, IsLeaf: true}
		return
	}

	// Split along the dimension with greatest spread.
	splitDim := 0
	maxSpread := -1.0
	for d := 0; d < t.dims; d++ {
		spread := t.nodeBoundsMax[nodeID*t.dims+d] - t.nodeBoundsMin[nodeID*t.dims+d]
		if spread > maxSpread {
			maxSpread = spread
			splitDim = d
		}
	}

	t.sortByDimension(start, end, splitDim)
	mid := start + count/2

	t.nodes[nodeID] = NodeData{IdxStart: start, IdxEnd: end}
	t.buildNode(2*nodeID+1, start, mid)
	t.buildNode(2*nodeID+2, mid, end)
}

// computeNodeBounds computes min/max per dimension for points idxArray[start:end].
func (t *KDTree) computeNodeBounds(nodeID, start, end int) {
	base := nodeID * t.dims
	for d := 0; d < t.dims; d++ {
		t.nodeBoundsMin[base+d] = math.Inf(1)
		t.nodeBoundsMax[base+d] = math.Inf(-1)
	}
	for i := start; i < end; i++ {
		pt := t.ds.Point(t.idxArray[i])
		for d, v := range pt {
			if v < t.nodeBoundsMin[base+d] {
				t.nodeBoundsMin[base+d] = v
			}
			if v > t.nodeBoundsMax[base+d] {
				t.nodeBoundsMax[base+d] = v
			}
		}
	}
}

// sortByDimension sorts idxArray[start:end] by the given dimension, then by
// index so that builds are reproducible.
func (t *KDTree) sortByDimension(start, end, dim int) {
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
func (t *KDTree) Len() int { return t.ds.Len() }

// IdxArray returns the permutation array mapping tree-order positions
// back to original point indices.
func (t *KDTree) IdxArray() []int { return t.idxArray }

// NodeDataArray returns the metadata for every node in the tree, in array
// order. Unused slots have IdxStart == IdxEnd == 0.
func (t *KDTree) NodeDataArray() []NodeData { return t.nodes }

// KNearest implements SpatialIndex.
func (t *KDTree) KNearest(point, k int) ([]Neighbor, error) {
	if err := checkQuery(point, k, t.Len()); err != nil {
		return nil, err
	}
	set := newKNNSet(k)
	if k > 0 {
		t.knnSearch(0, point, t.ds.Point(point), set)
	}
	return set.sorted(), nil
}

// knnSearch performs a single-tree KNN traversal, nearer child first.
func (t *KDTree) knnSearch(nodeID, self int, query []float64, set *knnSet) {
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

// minDistPoint returns a lower bound on the distance between a point and any
// point in the given node: the metric's norm of the per-axis gaps to the box.
func (t *KDTree) minDistPoint(node int, point []float64) float64 {
	if node >= len(t.nodes) || !t.used[node] {
		return math.Inf(1)
	}
	base := node * t.dims
	gaps := make([]float64, t.dims)
	for j := 0; j < t.dims; j++ {
		lo := t.nodeBoundsMin[base+j]
		hi := t.nodeBoundsMax[base+j]
		if point[j] < lo {
			gaps[j] = lo - point[j]
		} else if point[j] > hi {
			gaps[j] = point[j] - hi
		}
	}
	return floats.Norm(gaps, t.p)
}
