package hdbscan

import (
	"testing"
)

// checkPermutation fails unless idx is a permutation of 0..n-1.
func checkPermutation(t *testing.T, idx []int, n int) {
	t.Helper()
	if len(idx) != n {
		t.Fatalf("IdxArray length = %d, want %d", len(idx), n)
	}
	seen := make(map[int]bool)
	for _, v := range idx {
		if v < 0 || v >= n {
			t.Errorf("IdxArray contains out-of-range index %d", v)
		}
		if seen[v] {
			t.Errorf("IdxArray contains duplicate index %d", v)
		}
		seen[v] = true
	}
}

// checkLeavesCover fails unless the leaves partition every tree position.
func checkLeavesCover(t *testing.T, nodes []NodeData, n int) {
	t.Helper()
	covered := make([]int, n)
	for _, nd := range nodes {
		if !nd.IsLeaf {
			continue
		}
		for i := nd.IdxStart; i < nd.IdxEnd; i++ {
			covered[i]++
		}
	}
	for i, c := range covered {
		if c != 1 {
			t.Errorf("position %d covered by %d leaves, want 1", i, c)
		}
	}
}

// checkMatchesBrute compares every KNN query of index against a brute-force
// scan of the same dataset, including neighbor order under ties.
func checkMatchesBrute(t *testing.T, index SpatialIndex, ds *Dataset, metric DistanceMetric) {
	t.Helper()
	brute := NewBruteIndex(ds, metric, nil)
	n := ds.Len()
	for k := 0; k < n; k++ {
		for q := 0; q < n; q++ {
			got, err := index.KNearest(q, k)
			if err != nil {
				t.Fatalf("KNearest(%d, %d): %v", q, k, err)
			}
			want, _ := brute.KNearest(q, k)
			if len(got) != len(want) {
				t.Fatalf("k=%d query=%d: got %d neighbors, want %d", k, q, len(got), len(want))
			}
			for i := range want {
				if got[i].Index != want[i].Index || !almostEqual(got[i].Distance, want[i].Distance, floatTol) {
					t.Fatalf("metric=%T k=%d query=%d: tree %v, brute %v", metric, k, q, got, want)
				}
			}
		}
	}
}

func TestKDTree_Construction_BasicProperties(t *testing.T) {
	ds := mustDataset(t, [][]float64{{0, 0}, {1, 0}, {2, 0}, {0, 3}, {1, 3}, {2, 3}})
	tree, err := NewKDTree(ds, EuclideanMetric{}, 2)
	if err != nil {
		t.Fatalf("NewKDTree: %v", err)
	}
	if tree.Len() != 6 {
		t.Errorf("Len() = %d, want 6", tree.Len())
	}
	checkPermutation(t, tree.IdxArray(), 6)
	checkLeavesCover(t, tree.NodeDataArray(), 6)
}

func TestKDTree_Construction_LeafSize1(t *testing.T) {
	ds := mustDataset(t, [][]float64{{0, 0}, {1, 1}, {2, 2}, {3, 3}})
	tree, err := NewKDTree(ds, EuclideanMetric{}, 1)
	if err != nil {
		t.Fatalf("NewKDTree: %v", err)
	}
	for _, nd := range tree.NodeDataArray() {
		if nd.IsLeaf && (nd.IdxEnd-nd.IdxStart) != 1 {
			t.Errorf("leaf has %d points, want 1", nd.IdxEnd-nd.IdxStart)
		}
	}
}

func TestKDTree_Construction_LeafSizeLargerThanN(t *testing.T) {
	ds := mustDataset(t, [][]float64{{0, 0}, {1, 1}, {2, 2}})
	tree, err := NewKDTree(ds, EuclideanMetric{}, 40)
	if err != nil {
		t.Fatalf("NewKDTree: %v", err)
	}
	root := tree.NodeDataArray()[0]
	if !root.IsLeaf || root.IdxEnd-root.IdxStart != 3 {
		t.Errorf("root = %+v, want a single leaf of 3 points", root)
	}
}

func TestKDTree_RejectsCosine(t *testing.T) {
	ds := mustDataset(t, [][]float64{{0, 1}, {1, 0}})
	if _, err := NewKDTree(ds, CosineMetric{}, 2); err == nil {
		t.Error("expected an error for cosine metric")
	}
}

func TestKDTree_KNN_BruteForceMatch(t *testing.T) {
	ds := mustDataset(t, [][]float64{{0, 0}, {3, 0}, {0, 4}, {3, 4}, {1.5, 2}})
	for _, metric := range []DistanceMetric{
		EuclideanMetric{}, ManhattanMetric{}, ChebyshevMetric{}, MinkowskiMetric{P: 3},
	} {
		tree, err := NewKDTree(ds, metric, 1)
		if err != nil {
			t.Fatalf("NewKDTree: %v", err)
		}
		checkMatchesBrute(t, tree, ds, metric)
	}
}

func TestKDTree_KNN_LargerDataset(t *testing.T) {
	ds := mustDataset(t, generateBenchData(120, 3))
	tree, err := NewKDTree(ds, EuclideanMetric{}, 5)
	if err != nil {
		t.Fatalf("NewKDTree: %v", err)
	}
	checkMatchesBrute(t, tree, ds, EuclideanMetric{})
}

func TestKDTree_KNN_TiesBreakByIndex(t *testing.T) {
	// Every neighbor of point 0 is at distance 1.
	ds := mustDataset(t, [][]float64{{0, 0}, {1, 0}, {0, 1}, {-1, 0}, {0, -1}})
	tree, err := NewKDTree(ds, EuclideanMetric{}, 1)
	if err != nil {
		t.Fatalf("NewKDTree: %v", err)
	}
	got, err := tree.KNearest(0, 2)
	if err != nil {
		t.Fatalf("KNearest: %v", err)
	}
	if got[0].Index != 1 || got[1].Index != 2 {
		t.Errorf("neighbors = %v, want indices [1 2]", got)
	}
}

func TestKDTree_KNN_AllSamePoints(t *testing.T) {
	ds := mustDataset(t, [][]float64{{1, 1}, {1, 1}, {1, 1}, {1, 1}})
	tree, err := NewKDTree(ds, EuclideanMetric{}, 1)
	if err != nil {
		t.Fatalf("NewKDTree: %v", err)
	}
	got, err := tree.KNearest(2, 3)
	if err != nil {
		t.Fatalf("KNearest: %v", err)
	}
	want := []int{0, 1, 3}
	for i, nb := range got {
		if nb.Index != want[i] || nb.Distance != 0 {
			t.Errorf("neighbor %d = %+v, want index %d at 0", i, nb, want[i])
		}
	}
}

func TestKDTree_KNN_InvalidK(t *testing.T) {
	ds := mustDataset(t, [][]float64{{0}, {1}, {2}})
	tree, err := NewKDTree(ds, EuclideanMetric{}, 1)
	if err != nil {
		t.Fatalf("NewKDTree: %v", err)
	}
	for _, k := range []int{-1, 3, 4} {
		if _, err := tree.KNearest(0, k); err == nil {
			t.Errorf("k=%d: expected error", k)
		}
	}
}
