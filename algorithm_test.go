package hdbscan

import (
	"testing"
)

func TestSelectIndexAuto(t *testing.T) {
	tests := []struct {
		name       string
		metric     DistanceMetric
		dims       int
		haveMatrix bool
		expected   IndexKind
	}{
		{"euclidean low dim → kdtree", EuclideanMetric{}, 3, false, IndexKDTree},
		{"euclidean dim=60 → kdtree", EuclideanMetric{}, 60, false, IndexKDTree},
		{"euclidean dim=61 → balltree", EuclideanMetric{}, 61, false, IndexBallTree},
		{"manhattan low dim → kdtree", ManhattanMetric{}, 10, false, IndexKDTree},
		{"minkowski low dim → kdtree", MinkowskiMetric{P: 3}, 5, false, IndexKDTree},
		{"chebyshev high dim → balltree", ChebyshevMetric{}, 100, false, IndexBallTree},
		{"cosine → brute", CosineMetric{}, 5, false, IndexBrute},
		{"custom DistanceFunc → brute", DistanceFunc(func(a, b []float64) float64 { return 0 }), 2, false, IndexBrute},
		{"cached matrix → brute", EuclideanMetric{}, 3, true, IndexBrute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Metric = tt.metric
			got, err := selectIndex(cfg, tt.dims, tt.haveMatrix)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSelectIndexExplicit(t *testing.T) {
	tests := []struct {
		name    string
		index   IndexKind
		metric  DistanceMetric
		wantErr bool
	}{
		{"kdtree + euclidean", IndexKDTree, EuclideanMetric{}, false},
		{"kdtree + cosine", IndexKDTree, CosineMetric{}, true},
		{"balltree + chebyshev", IndexBallTree, ChebyshevMetric{}, false},
		{"balltree + cosine", IndexBallTree, CosineMetric{}, true},
		{"brute + cosine", IndexBrute, CosineMetric{}, false},
		{"brute + custom", IndexBrute, DistanceFunc(func(a, b []float64) float64 { return 1 }), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Index = tt.index
			cfg.Metric = tt.metric
			got, err := selectIndex(cfg, 4, false)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.index {
				t.Errorf("got %q, want %q", got, tt.index)
			}
		})
	}
}

func TestKDTreeValidMetric(t *testing.T) {
	valid := []DistanceMetric{EuclideanMetric{}, ManhattanMetric{}, ChebyshevMetric{}, MinkowskiMetric{P: 1.5}}
	for _, m := range valid {
		if !KDTreeValidMetric(m) {
			t.Errorf("KDTreeValidMetric(%T) = false, want true", m)
		}
	}
	if KDTreeValidMetric(CosineMetric{}) {
		t.Error("KDTreeValidMetric(CosineMetric) = true, want false")
	}
}

func TestBallTreeValidMetric(t *testing.T) {
	if !BallTreeValidMetric(ChebyshevMetric{}) {
		t.Error("BallTreeValidMetric(ChebyshevMetric) = false, want true")
	}
	if BallTreeValidMetric(CosineMetric{}) {
		t.Error("BallTreeValidMetric(CosineMetric) = true, want false")
	}
}

func TestNewSpatialIndex_Kinds(t *testing.T) {
	ds := mustDataset(t, [][]float64{{0, 0}, {1, 1}, {2, 2}})

	cfg := DefaultConfig()
	idx, err := NewSpatialIndex(ds, cfg, nil)
	if err != nil {
		t.Fatalf("NewSpatialIndex: %v", err)
	}
	if _, ok := idx.(*KDTree); !ok {
		t.Errorf("auto without matrix: got %T, want *KDTree", idx)
	}

	idx, err = NewSpatialIndex(ds, cfg, make([]float64, 9))
	if err != nil {
		t.Fatalf("NewSpatialIndex: %v", err)
	}
	if _, ok := idx.(*BruteIndex); !ok {
		t.Errorf("auto with matrix: got %T, want *BruteIndex", idx)
	}

	cfg.Index = IndexBallTree
	idx, err = NewSpatialIndex(ds, cfg, nil)
	if err != nil {
		t.Fatalf("NewSpatialIndex: %v", err)
	}
	if _, ok := idx.(*BallTree); !ok {
		t.Errorf("balltree: got %T, want *BallTree", idx)
	}
}
