package hdbscan

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// matrixDist returns a dist callback over a square matrix.
func matrixDist(m [][]float64) func(i, j int) float64 {
	return func(i, j int) float64 { return m[i][j] }
}

func TestPrimMST_FourPointKnownMST(t *testing.T) {
	// Known MST edges: {0,1}=1, {2,3}=1, {1,2}=2, total 4.
	dist := matrixDist([][]float64{
		{0, 1, 3, 4},
		{1, 0, 2, 5},
		{3, 2, 0, 1},
		{4, 5, 1, 0},
	})
	edges, err := PrimMST(make([]float64, 4), dist)
	if err != nil {
		t.Fatalf("PrimMST: %v", err)
	}
	if len(edges) != 3 {
		t.Fatalf("got %d edges, want 3", len(edges))
	}
	if got := TotalWeight(edges); !almostEqual(got, 4, floatTol) {
		t.Errorf("total weight = %v, want 4", got)
	}
}

func TestPrimMST_MutualReachabilityWeights(t *testing.T) {
	// Core distances dominate the small raw distance between 0 and 1.
	dist := matrixDist([][]float64{
		{0, 1, 4},
		{1, 0, 3},
		{4, 3, 0},
	})
	core := []float64{2, 2, 3}
	edges, err := PrimMST(core, dist)
	if err != nil {
		t.Fatalf("PrimMST: %v", err)
	}
	want := []Edge{{A: 0, B: 1, Weight: 2}, {A: 1, B: 2, Weight: 3}}
	for i, e := range edges {
		if e != want[i] {
			t.Errorf("edge %d = %+v, want %+v", i, e, want[i])
		}
	}
}

func TestPrimMST_TiesBreakByEndpoints(t *testing.T) {
	// Unit square: four sides of weight 1.
	ds := mustDataset(t, [][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}})
	pd := &pointDistances{ds: ds, metric: EuclideanMetric{}}
	edges, err := PrimMST(make([]float64, 4), pd.at)
	if err != nil {
		t.Fatalf("PrimMST: %v", err)
	}
	want := []Edge{{0, 1, 1}, {0, 2, 1}, {1, 3, 1}}
	for i, e := range edges {
		if e != want[i] {
			t.Errorf("edge %d = %+v, want %+v", i, e, want[i])
		}
	}
}

func TestPrimMST_MatchesKruskal(t *testing.T) {
	for _, n := range []int{2, 5, 17, 50} {
		ds := mustDataset(t, generateBenchData(n, 3))
		pd := &pointDistances{ds: ds, metric: EuclideanMetric{}}
		core := make([]float64, n)
		for i := range core {
			core[i] = float64(i%4) * 7.5
		}

		edges, err := PrimMST(core, pd.at)
		if err != nil {
			t.Fatalf("n=%d: PrimMST: %v", n, err)
		}
		if len(edges) != n-1 {
			t.Fatalf("n=%d: got %d edges, want %d", n, len(edges), n-1)
		}

		g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
		for i := 0; i < n; i++ {
			g.AddNode(simple.Node(i))
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				w := MutualReachability(pd.at(i, j), core[i], core[j])
				g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(i), simple.Node(j), w))
			}
		}
		dst := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
		want := path.Kruskal(dst, g)

		if got := TotalWeight(edges); !almostEqual(got, want, 1e-9) {
			t.Errorf("n=%d: Prim weight %v, Kruskal weight %v", n, got, want)
		}
		if _, err := BuildDendrogram(edges, n); err != nil {
			t.Errorf("n=%d: MST is not a spanning tree: %v", n, err)
		}
	}
}

func TestPrimMST_TooFewPoints(t *testing.T) {
	_, err := PrimMST([]float64{0}, func(i, j int) float64 { return 0 })
	if !errors.Is(err, ErrDegenerateInput) {
		t.Errorf("got %v, want ErrDegenerateInput", err)
	}
}

func TestMutualReachability(t *testing.T) {
	tests := []struct {
		dist, a, b, want float64
	}{
		{1, 0, 0, 1},
		{1, 2, 0, 2},
		{1, 0, 3, 3},
		{5, 2, 3, 5},
		{0, 0, 0, 0},
	}
	for _, tt := range tests {
		if got := MutualReachability(tt.dist, tt.a, tt.b); got != tt.want {
			t.Errorf("MutualReachability(%v, %v, %v) = %v, want %v", tt.dist, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestHasInfiniteEdge(t *testing.T) {
	if hasInfiniteEdge([]Edge{{0, 1, 1}, {1, 2, 2}}) {
		t.Error("finite edges reported as infinite")
	}
	if !hasInfiniteEdge([]Edge{{0, 1, 1}, {1, 2, math.Inf(1)}}) {
		t.Error("infinite edge not reported")
	}
}
