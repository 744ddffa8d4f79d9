package hdbscan

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session holds a dataset and everything derived from it across repeated
// extractions. Run loads a dataset and clusters it; Rerun and
// RerunClusterSize re-extract with new parameters, reusing cached core
// distances, MSTs and dendrograms keyed by minPts.
//
// A Session is not safe for concurrent use. Operations that fail leave the
// session exactly as it was.
type Session struct {
	cfg Config
	id  string
	log *zap.SugaredLogger

	minPts int
	// clusterSize is the fixed minClusterSize, or 0 to follow minPts.
	clusterSize int

	data    *Dataset
	dist    *pointDistances
	index   SpatialIndex
	cache   *densityCache
	current *extraction
}

// extraction is the flat clustering for one (minPts, minClusterSize) pair.
type extraction struct {
	minPts         int
	minClusterSize int
	density        *density
	tree           *CondensedTree
	selected       []bool
	labels         []int
	clusterOf      []int // label → condensed cluster id
	probabilities  []float64
	outlierScores  []float64
}

// NewSession creates a session whose first Run uses minPts. Unless
// cfg.MinClusterSize is set, minClusterSize equals minPts. It fails with
// ErrInvalidArgument if minPts < 1 or cfg is invalid.
func NewSession(minPts int, cfg Config) (*Session, error) {
	if minPts < 1 {
		return nil, invalidArgument("minPts must be >= 1, got %d", minPts)
	}
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	return &Session{
		cfg:         cfg,
		id:          id,
		log:         cfg.Logger.Sugar().With("session", id),
		minPts:      minPts,
		clusterSize: cfg.MinClusterSize,
	}, nil
}

// ID returns the session's unique identifier, also attached to its logs.
func (s *Session) ID() string { return s.id }

// MinPts returns the minPts of the current labels, or the constructor value
// before the first Run.
func (s *Session) MinPts() int {
	if s.current != nil {
		return s.current.minPts
	}
	return s.minPts
}

// MinClusterSize returns the minClusterSize of the current labels, or the
// value the next Run would use.
func (s *Session) MinClusterSize() int {
	if s.current != nil {
		return s.current.minClusterSize
	}
	return s.clusterSizeFor(s.minPts)
}

func (s *Session) clusterSizeFor(minPts int) int {
	if s.clusterSize > 0 {
		return s.clusterSize
	}
	return minPts
}

// Rows returns the number of points in the loaded dataset, or 0.
func (s *Session) Rows() int {
	if s.data == nil {
		return 0
	}
	return s.data.Len()
}

// Labels returns a copy of the current labels, one per row, or nil before
// the first successful Run.
func (s *Session) Labels() []int {
	if s.current == nil {
		return nil
	}
	return append([]int(nil), s.current.labels...)
}

// Probabilities returns a copy of the current membership probabilities.
func (s *Session) Probabilities() []float64 {
	if s.current == nil {
		return nil
	}
	return append([]float64(nil), s.current.probabilities...)
}

// OutlierScores returns a copy of the current GLOSH outlier scores.
func (s *Session) OutlierScores() []float64 {
	if s.current == nil {
		return nil
	}
	return append([]float64(nil), s.current.outlierScores...)
}

// CondensedTree returns the condensed tree behind the current labels. It is
// shared with the session and must not be modified; Clone it first or use
// Result for a private copy.
func (s *Session) CondensedTree() *CondensedTree {
	if s.current == nil {
		return nil
	}
	return s.current.tree
}

// CachedMinPts returns the minPts values whose density products are cached.
func (s *Session) CachedMinPts() []int {
	if s.cache == nil {
		return nil
	}
	return s.cache.keys()
}

// Result returns a snapshot of the current extraction and its intermediate
// products. Every slice and tree in it is a copy the caller may modify.
func (s *Session) Result() (*Result, error) {
	if s.current == nil {
		return nil, noPriorRun("result")
	}
	ext := s.current
	return &Result{
		Labels:        s.Labels(),
		Probabilities: s.Probabilities(),
		Stabilities:   labelStabilities(ext.tree, ext.clusterOf),
		OutlierScores: s.OutlierScores(),
		CoreDistances: append([]float64(nil), ext.density.core...),
		MST:           append([]Edge(nil), ext.density.mst...),
		Dendrogram:    ext.density.dendrogram.Clone(),
		CondensedTree: ext.tree.Clone(),
	}, nil
}

// Run loads data and clusters it with the session's minPts. It replaces any
// previously loaded dataset and drops every cache built from it.
//
// It fails with ErrInvalidInput for an empty, ragged or non-finite dataset
// and with ErrDegenerateInput when there are fewer than 2 rows or fewer rows
// than minPts.
func (s *Session) Run(ctx context.Context, data [][]float64) (labels []int, err error) {
	defer func() { s.cfg.Metrics.operation("run", err) }()

	ds, err := NewDataset(data)
	if err != nil {
		return nil, err
	}
	n := ds.Len()
	if n < 2 {
		return nil, degenerateInput("clustering needs at least 2 points, got %d", n)
	}
	if n < s.minPts {
		return nil, degenerateInput("dataset has %d points, fewer than minPts %d", n, s.minPts)
	}

	var matrix []float64
	if s.cfg.MatrixThreshold >= 0 && n <= s.cfg.MatrixThreshold {
		err = s.timed("pairwise", func() error {
			var perr error
			matrix, perr = PairwiseDistances(ctx, ds, s.cfg.Metric, s.cfg.Workers)
			return perr
		})
		if err != nil {
			return nil, err
		}
	}
	dist := &pointDistances{ds: ds, metric: s.cfg.Metric, matrix: matrix}

	var index SpatialIndex
	err = s.timed("index", func() error {
		var ierr error
		index, ierr = NewSpatialIndex(ds, s.cfg, matrix)
		return ierr
	})
	if err != nil {
		return nil, err
	}

	dens, err := s.computeDensity(ctx, index, dist, s.minPts)
	if err != nil {
		return nil, err
	}
	ext, err := s.extract(ctx, dens, s.minPts, s.clusterSizeFor(s.minPts))
	if err != nil {
		return nil, err
	}

	cache := newDensityCache(s.cfg.CacheSize)
	cache.put(dens)

	s.data, s.dist, s.index, s.cache = ds, dist, index, cache
	s.commit(ext)
	s.log.Infow("run complete",
		"rows", n, "dims", ds.Dims(), "min_pts", ext.minPts,
		"min_cluster_size", ext.minClusterSize, "clusters", len(ext.clusterOf),
		"noise", countNoise(ext.labels), "pairwise_matrix", matrix != nil)
	return s.Labels(), nil
}

// Rerun re-extracts labels for a new minPts over the loaded dataset. Density
// products are reused when minPts was seen before and recomputed otherwise;
// an unchanged (minPts, minClusterSize) pair returns the current labels.
// minClusterSize follows minPts unless it was fixed by Config.MinClusterSize
// or RerunClusterSize.
//
// It fails with ErrNoPriorRun before Run, ErrInvalidArgument if minPts < 1
// and ErrDegenerateInput if minPts exceeds the row count.
func (s *Session) Rerun(ctx context.Context, minPts int) (labels []int, err error) {
	defer func() { s.cfg.Metrics.operation("rerun", err) }()

	if s.current == nil {
		return nil, noPriorRun("rerun")
	}
	if minPts < 1 {
		return nil, invalidArgument("minPts must be >= 1, got %d", minPts)
	}
	if minPts > s.data.Len() {
		return nil, degenerateInput("dataset has %d points, fewer than minPts %d", s.data.Len(), minPts)
	}
	if err := s.recluster(ctx, minPts, s.clusterSizeFor(minPts)); err != nil {
		return nil, err
	}
	return s.Labels(), nil
}

// RerunClusterSize re-extracts labels with a new minClusterSize and the
// current minPts, reusing the cached dendrogram. The new size stays fixed for
// later reruns.
//
// It fails with ErrNoPriorRun before Run and ErrInvalidArgument if
// minClusterSize < 1.
func (s *Session) RerunClusterSize(ctx context.Context, minClusterSize int) (labels []int, err error) {
	defer func() { s.cfg.Metrics.operation("rerun_cluster_size", err) }()

	if s.current == nil {
		return nil, noPriorRun("rerun cluster size")
	}
	if minClusterSize < 1 {
		return nil, invalidArgument("minClusterSize must be >= 1, got %d", minClusterSize)
	}
	if err := s.recluster(ctx, s.current.minPts, minClusterSize); err != nil {
		return nil, err
	}
	s.clusterSize = minClusterSize
	return s.Labels(), nil
}

// ClusterMap groups the points in [from, to) by their current label. It
// fails with ErrNoPriorRun before Run and ErrRange unless
// 0 <= from <= to <= Rows().
func (s *Session) ClusterMap(from, to int) (*ClusterMap, error) {
	if s.current == nil {
		return nil, noPriorRun("cluster map")
	}
	if from < 0 || from > to || to > s.data.Len() {
		return nil, rangeError("range [%d, %d) is not within [0, %d]", from, to, s.data.Len())
	}
	return newClusterMap(s.current.labels, from, to), nil
}

// Close releases the dataset, index and caches. Later operations behave as
// if Run had never been called.
func (s *Session) Close() {
	s.data, s.dist, s.index, s.cache, s.current = nil, nil, nil, nil, nil
}

// recluster computes the extraction for (minPts, minClusterSize) and commits
// it, and any new density entry, only on success.
func (s *Session) recluster(ctx context.Context, minPts, minClusterSize int) error {
	if s.current.minPts == minPts && s.current.minClusterSize == minClusterSize {
		s.cfg.Metrics.cacheLookup("extraction", true)
		s.log.Debugw("extraction cache hit", "min_pts", minPts, "min_cluster_size", minClusterSize)
		return nil
	}
	s.cfg.Metrics.cacheLookup("extraction", false)

	dens, hit := s.cache.get(minPts)
	s.cfg.Metrics.cacheLookup("density", hit)
	if !hit {
		var err error
		if dens, err = s.computeDensity(ctx, s.index, s.dist, minPts); err != nil {
			return err
		}
	} else {
		s.log.Debugw("density cache hit", "min_pts", minPts)
	}

	ext, err := s.extract(ctx, dens, minPts, minClusterSize)
	if err != nil {
		return err
	}

	if !hit {
		if evicted := s.cache.put(dens); evicted != 0 {
			s.log.Debugw("density cache eviction", "min_pts", evicted)
		}
	}
	s.commit(ext)
	s.log.Infow("rerun complete",
		"min_pts", minPts, "min_cluster_size", minClusterSize,
		"clusters", len(ext.clusterOf), "noise", countNoise(ext.labels), "density_cached", hit)
	return nil
}

func (s *Session) commit(ext *extraction) {
	s.current = ext
	s.minPts = ext.minPts
	s.cfg.Metrics.extraction(len(ext.clusterOf), countNoise(ext.labels))
}

// computeDensity runs the parallel core distance phase, then the sequential
// MST and dendrogram phases, checking ctx between them.
func (s *Session) computeDensity(ctx context.Context, index SpatialIndex, dist *pointDistances, minPts int) (*density, error) {
	d := &density{minPts: minPts}

	err := s.timed("core_distances", func() error {
		var err error
		d.core, err = ComputeCoreDistances(ctx, index, minPts, s.cfg.Workers)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "hdbscan: before minimum spanning tree")
	}

	alpha := s.cfg.Alpha
	err = s.timed("mst", func() error {
		var err error
		d.mst, err = PrimMST(d.core, func(i, j int) float64 {
			if alpha != 1.0 {
				return dist.at(i, j) / alpha
			}
			return dist.at(i, j)
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if hasInfiniteEdge(d.mst) {
		s.log.Warnw("MST contains edge(s) with +Inf weight (disconnected components)", "min_pts", minPts)
	}

	err = s.timed("dendrogram", func() error {
		var err error
		d.dendrogram, err = BuildDendrogram(d.mst, len(d.core))
		return err
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// extract condenses the dendrogram for minClusterSize and selects labels.
func (s *Session) extract(ctx context.Context, d *density, minPts, minClusterSize int) (*extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "hdbscan: before extraction")
	}
	ext := &extraction{minPts: minPts, minClusterSize: minClusterSize, density: d}

	err := s.timed("condense", func() error {
		var err error
		ext.tree, err = CondenseTree(d.dendrogram, d.core, minClusterSize)
		if err == nil && s.cfg.ClusterSelectionPersistence > 0 {
			before := len(ext.tree.Clusters)
			ext.tree = SimplifyHierarchy(ext.tree, s.cfg.ClusterSelectionPersistence, s.cfg.MaxLambda)
			s.log.Debugw("hierarchy simplified", "clusters_before", before, "clusters_after", len(ext.tree.Clusters))
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	err = s.timed("extract", func() error {
		ComputeStability(ext.tree, s.cfg.MaxLambda)
		if inf := infiniteStabilities(ext.tree); len(inf) > 0 {
			s.log.Warnw("clusters with infinite stability (coincident points)",
				"clusters", inf, "min_pts", minPts)
		}
		ext.selected = SelectClusters(ext.tree, SelectionOptions{
			Method:             s.cfg.ClusterSelectionMethod,
			Epsilon:            s.cfg.ClusterSelectionEpsilon,
			AllowSingleCluster: s.cfg.AllowSingleCluster,
		})
		ext.labels, ext.clusterOf = AssignLabels(ext.tree, ext.selected)
		ext.probabilities = MembershipProbabilities(ext.tree, ext.labels, ext.clusterOf, s.cfg.MaxLambda)
		ext.outlierScores = OutlierScores(ext.tree, s.cfg.MaxLambda)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ext, nil
}

// timed runs fn, records its duration under phase and logs it.
func (s *Session) timed(phase string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	s.cfg.Metrics.phase(phase, elapsed)
	if err != nil {
		s.log.Debugw("phase failed", "phase", phase, "duration", elapsed, "error", err)
		return err
	}
	s.log.Debugw("phase finished", "phase", phase, "duration", elapsed)
	return nil
}

func countNoise(labels []int) int {
	noise := 0
	for _, l := range labels {
		if l == Noise {
			noise++
		}
	}
	return noise
}
