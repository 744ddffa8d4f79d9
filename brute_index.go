package hdbscan

// BruteIndex answers KNN queries by scanning every point. It serves metrics
// that neither tree can bound, and small datasets whose pairwise matrix is
// already cached.
type BruteIndex struct {
	dist *pointDistances
}

// NewBruteIndex builds a brute-force index over ds. matrix may be nil or a
// flat n×n pairwise distance matrix of ds under metric.
func NewBruteIndex(ds *Dataset, metric DistanceMetric, matrix []float64) *BruteIndex {
	return &BruteIndex{dist: &pointDistances{ds: ds, metric: metric, matrix: matrix}}
}

// Len returns the number of indexed points.
func (b *BruteIndex) Len() int { return b.dist.ds.Len() }

// KNearest implements SpatialIndex.
func (b *BruteIndex) KNearest(point, k int) ([]Neighbor, error) {
	n := b.Len()
	if err := checkQuery(point, k, n); err != nil {
		return nil, err
	}
	set := newKNNSet(k)
	for j := 0; j < n; j++ {
		if j == point {
			continue
		}
		set.offer(j, b.dist.at(point, j))
	}
	return set.sorted(), nil
}
