package hdbscan

// KDTreeValidMetric reports whether the metric supports KD-tree acceleration.
// KD-trees require metrics that decompose along coordinate axes:
// Euclidean, Manhattan, Chebyshev, Minkowski.
func KDTreeValidMetric(m DistanceMetric) bool {
	_, ok := axisNorm(m)
	return ok
}

// BallTreeValidMetric reports whether the metric supports Ball tree acceleration.
// Ball trees work with any metric that satisfies the triangle inequality;
// cosine distance does not, so it is left to the brute index.
func BallTreeValidMetric(m DistanceMetric) bool {
	switch m.(type) {
	case EuclideanMetric, ManhattanMetric, ChebyshevMetric, MinkowskiMetric:
		return true
	default:
		return false
	}
}

// selectIndex resolves IndexAuto into a concrete index kind based on the
// metric, the data dimensionality and whether a pairwise matrix is cached,
// and validates that user-forced choices are compatible with the metric.
func selectIndex(cfg Config, dims int, haveMatrix bool) (IndexKind, error) {
	switch cfg.Index {
	case IndexAuto:
		if haveMatrix || !BallTreeValidMetric(cfg.Metric) {
			return IndexBrute, nil
		}
		if KDTreeValidMetric(cfg.Metric) && dims <= 60 {
			return IndexKDTree, nil
		}
		return IndexBallTree, nil
	case IndexKDTree:
		if !KDTreeValidMetric(cfg.Metric) {
			return "", invalidArgument("metric %T is not supported by the KD-tree", cfg.Metric)
		}
	case IndexBallTree:
		if !BallTreeValidMetric(cfg.Metric) {
			return "", invalidArgument("metric %T is not supported by the ball tree", cfg.Metric)
		}
	}
	return cfg.Index, nil
}

// NewSpatialIndex builds the index selected by cfg over ds. matrix, when
// non-nil, is the cached pairwise distance matrix of ds.
func NewSpatialIndex(ds *Dataset, cfg Config, matrix []float64) (SpatialIndex, error) {
	kind, err := selectIndex(cfg, ds.Dims(), matrix != nil)
	if err != nil {
		return nil, err
	}
	switch kind {
	case IndexKDTree:
		return NewKDTree(ds, cfg.Metric, cfg.LeafSize)
	case IndexBallTree:
		return NewBallTree(ds, cfg.Metric, cfg.LeafSize), nil
	default:
		return NewBruteIndex(ds, cfg.Metric, matrix), nil
	}
}
