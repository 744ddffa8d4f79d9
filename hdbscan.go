package hdbscan

import (
	"context"
	"runtime"

	"go.uber.org/zap"
)

// IndexKind selects the spatial index used for core distance queries.
type IndexKind string

const (
	IndexAuto     IndexKind = "auto"
	IndexKDTree   IndexKind = "kdtree"
	IndexBallTree IndexKind = "balltree"
	IndexBrute    IndexKind = "brute"
)

// Cluster selection methods.
const (
	SelectionEOM  = "eom"
	SelectionLeaf = "leaf"
)

const (
	defaultLeafSize        = 40
	defaultMatrixThreshold = 4096
	defaultCacheSize       = 16
)

// Config controls HDBSCAN clustering behavior.
// Start with [DefaultConfig] and override the fields you need; zero fields
// are filled with defaults.
type Config struct {
	// MinClusterSize is the smallest number of points a dendrogram split must
	// leave on both sides to count as a genuine cluster division.
	// 0 means "same as minPts", which is then kept in step by Rerun.
	// Must be >= 0. Default: 0.
	MinClusterSize int

	// Metric is the distance function used to measure point similarity.
	// Built-in: EuclideanMetric, ManhattanMetric, CosineMetric, ChebyshevMetric,
	// MinkowskiMetric. Use DistanceFunc to wrap a custom function.
	// Default: EuclideanMetric.
	Metric DistanceMetric

	// Index selects the spatial index for neighbor queries. "auto" picks a
	// KD-tree for axis-aligned metrics in up to 60 dimensions, a ball tree
	// above that, and brute force for every other metric or whenever the
	// pairwise matrix is cached. Default: "auto".
	Index IndexKind

	// LeafSize controls the maximum number of points in a spatial tree leaf node.
	// Default: 40.
	LeafSize int

	// Workers controls the number of goroutines for the parallel stages
	// (pairwise distances, core distances, cluster statistics).
	// 0 means runtime.NumCPU().
	Workers int

	// ClusterSelectionMethod chooses how flat clusters are extracted from the
	// condensed tree. "eom" (Excess of Mass) maximizes cluster stability.
	// "leaf" selects the leaves, producing many small homogeneous clusters.
	// Default: "eom".
	ClusterSelectionMethod string

	// ClusterSelectionEpsilon sets a distance threshold below which clusters
	// will not be split further. 0 means no threshold. Must be >= 0.
	ClusterSelectionEpsilon float64

	// ClusterSelectionPersistence removes leaf clusters whose lambda span
	// above their parent's birth is below this value before selection, which
	// merges short-lived splits back into their parents. 0 disables it.
	// Must be >= 0.
	ClusterSelectionPersistence float64

	// AllowSingleCluster lets the root compete in excess-of-mass selection even
	// when it has child clusters. Without it the root is only selected when it
	// is the sole cluster. Default: false.
	AllowSingleCluster bool

	// Alpha scales pairwise distances before computing mutual reachability:
	// mr(a,b) = max(core(a), core(b), dist(a,b)/Alpha). Must be > 0. Default: 1.0.
	Alpha float64

	// MaxLambda caps lambda = 1/level, so that zero-distance merges yield a
	// finite stability. 0 means uncapped (coincident points produce +Inf).
	MaxLambda float64

	// MatrixThreshold is the largest dataset size for which the full pairwise
	// distance matrix is computed once and reused across reruns. A negative
	// value disables the matrix. Default: 4096.
	MatrixThreshold int

	// CacheSize is the number of distinct minPts values whose core distances,
	// MST and dendrogram are kept by a Session. Default: 16.
	CacheSize int

	// Logger receives structured logs. Default: zap.NewNop().
	Logger *zap.Logger

	// Metrics, if non-nil, records operation counts, cache lookups and phase
	// durations.
	Metrics *Metrics
}

// Result contains the output of one clustering extraction.
type Result struct {
	// Labels assigns each point to a cluster (0-indexed cluster ID) or -1 for
	// noise (points not assigned to any cluster).
	Labels []int

	// Probabilities indicates how strongly each point belongs to its assigned
	// cluster, in [0, 1]. Noise points have probability 0.
	Probabilities []float64

	// Stabilities maps cluster labels to their stability values.
	Stabilities map[int]float64

	// OutlierScores is the GLOSH (Global-Local Outlier Score from Hierarchies)
	// score for each point, in [0, 1]. Values near 0 indicate inliers; values
	// near 1 indicate strong outliers.
	OutlierScores []float64

	// CoreDistances holds each point's core distance for the run's minPts.
	CoreDistances []float64

	// MST is the minimum spanning tree of the mutual reachability graph.
	MST []Edge

	// Dendrogram is the single-linkage hierarchy built from MST.
	Dendrogram *Dendrogram

	// CondensedTree is the condensed cluster hierarchy.
	CondensedTree *CondensedTree
}

// Noise is the label given to points outside every selected cluster.
const Noise = -1

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Metric:                 EuclideanMetric{},
		Index:                  IndexAuto,
		LeafSize:               defaultLeafSize,
		ClusterSelectionMethod: SelectionEOM,
		Alpha:                  1.0,
		MatrixThreshold:        defaultMatrixThreshold,
		CacheSize:              defaultCacheSize,
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if cfg.MinClusterSize < 0 {
		return invalidArgument("MinClusterSize must be >= 0 (0 means follow minPts), got %d", cfg.MinClusterSize)
	}
	if m, ok := cfg.Metric.(MinkowskiMetric); ok && m.P < 1 {
		return invalidArgument("MinkowskiMetric.P must be >= 1, got %v", m.P)
	}
	switch cfg.Index {
	case IndexAuto, IndexKDTree, IndexBallTree, IndexBrute:
	default:
		return invalidArgument("invalid Index %q", cfg.Index)
	}
	if cfg.LeafSize < 1 {
		return invalidArgument("LeafSize must be >= 1, got %d", cfg.LeafSize)
	}
	if cfg.Workers < 0 {
		return invalidArgument("Workers must be >= 0, got %d", cfg.Workers)
	}
	if cfg.ClusterSelectionMethod != SelectionEOM && cfg.ClusterSelectionMethod != SelectionLeaf {
		return invalidArgument("ClusterSelectionMethod must be %q or %q, got %q",
			SelectionEOM, SelectionLeaf, cfg.ClusterSelectionMethod)
	}
	if cfg.ClusterSelectionEpsilon < 0 {
		return invalidArgument("ClusterSelectionEpsilon must be >= 0, got %f", cfg.ClusterSelectionEpsilon)
	}
	if cfg.ClusterSelectionPersistence < 0 {
		return invalidArgument("ClusterSelectionPersistence must be >= 0, got %f", cfg.ClusterSelectionPersistence)
	}
	if cfg.Alpha <= 0 {
		return invalidArgument("Alpha must be > 0, got %f", cfg.Alpha)
	}
	if cfg.MaxLambda < 0 {
		return invalidArgument("MaxLambda must be >= 0, got %f", cfg.MaxLambda)
	}
	if cfg.CacheSize < 1 {
		return invalidArgument("CacheSize must be >= 1, got %d", cfg.CacheSize)
	}
	return nil
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Metric == nil {
		cfg.Metric = EuclideanMetric{}
	}
	if cfg.Index == "" {
		cfg.Index = IndexAuto
	}
	if cfg.LeafSize == 0 {
		cfg.LeafSize = defaultLeafSize
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.ClusterSelectionMethod == "" {
		cfg.ClusterSelectionMethod = SelectionEOM
	}
	if cfg.Alpha == 0 {
		cfg.Alpha = 1.0
	}
	if cfg.MatrixThreshold == 0 {
		cfg.MatrixThreshold = defaultMatrixThreshold
	}
	if cfg.CacheSize == 0 {
		cfg.CacheSize = defaultCacheSize
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
}

// Cluster runs the full pipeline once on data with the given minPts and
// returns every intermediate product. It is a convenience wrapper around a
// single-use Session.
func Cluster(ctx context.Context, data [][]float64, minPts int, cfg Config) (*Result, error) {
	s, err := NewSession(minPts, cfg)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	if _, err := s.Run(ctx, data); err != nil {
		return nil, err
	}
	return s.Result()
}
