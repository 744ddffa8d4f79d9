package hdbscan

import (
	"context"
	"math"
	"sort"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// DistanceKind selects which per-cluster distance confidence to use.
type DistanceKind int

const (
	// CoreDistanceKind uses the spread of members' core distances.
	CoreDistanceKind DistanceKind = iota
	// IntraDistanceKind uses the spread of pairwise distances between members.
	IntraDistanceKind
)

// ClusterDistance summarizes the distances inside one cluster.
type ClusterDistance struct {
	Label int
	Size  int

	MinCore, MaxCore float64
	// CoreConfidence is (MaxCore - MinCore) / MaxCore * 100, or 0 when
	// MaxCore is 0.
	CoreConfidence float64

	MinIntra, MaxIntra float64
	// IntraConfidence is (MaxIntra - MinIntra) / MaxIntra * 100, or 0 when
	// MaxIntra is 0.
	IntraConfidence float64
}

func (c ClusterDistance) confidence(kind DistanceKind) float64 {
	if kind == IntraDistanceKind {
		return c.IntraConfidence
	}
	return c.CoreConfidence
}

// DistributionStats describes a sample of confidence values.
type DistributionStats struct {
	Mean     float64
	StdDev   float64
	Variance float64
	Max      float64
	// Kurtosis is the excess kurtosis; NaN for fewer than 4 values.
	Kurtosis float64
	// Skewness is NaN for fewer than 3 values.
	Skewness float64
}

// ClusteringStats describes the confidence distributions over all clusters
// of one extraction.
type ClusteringStats struct {
	Count         int
	CoreDistance  DistributionStats
	IntraDistance DistributionStats
}

// Validity scores how well separated the clusters look from the shape of the
// confidence distributions. Positive skewness and kurtosis mean most clusters
// are tight with a few loose ones. Intra-distance skewness and core-distance
// skewness add 2 when positive, each kurtosis adds 1 when positive, and each
// negative value subtracts 1. NaN values do not count.
func (cs *ClusteringStats) Validity() int {
	score := func(v float64, weight int) int {
		switch {
		case v > 0:
			return weight
		case v < 0:
			return -1
		default:
			return 0
		}
	}
	return score(cs.IntraDistance.Skewness, 2) +
		score(cs.IntraDistance.Kurtosis, 1) +
		score(cs.CoreDistance.Skewness, 2) +
		score(cs.CoreDistance.Kurtosis, 1)
}

func describe(values []float64) DistributionStats {
	nan := math.NaN()
	ds := DistributionStats{Mean: nan, StdDev: nan, Variance: nan, Max: nan, Kurtosis: nan, Skewness: nan}
	if len(values) == 0 {
		return ds
	}
	ds.Mean = stat.Mean(values, nil)
	ds.Max = values[0]
	for _, v := range values[1:] {
		ds.Max = math.Max(ds.Max, v)
	}
	if len(values) >= 2 {
		ds.Variance = stat.Variance(values, nil)
		ds.StdDev = stat.StdDev(values, nil)
	}
	if len(values) >= 3 && ds.Variance > 0 {
		ds.Skewness = stat.Skew(values, nil)
	}
	if len(values) >= 4 && ds.Variance > 0 {
		ds.Kurtosis = stat.ExKurtosis(values, nil)
	}
	return ds
}

// ClusterDistances computes the distance summary of every non-noise label of
// the current extraction, ordered by label. Clusters are processed
// concurrently.
func (s *Session) ClusterDistances(ctx context.Context) ([]ClusterDistance, error) {
	if s.current == nil {
		return nil, noPriorRun("cluster distances")
	}
	return clusterDistances(ctx, s.current, s.dist, s.cfg.Workers)
}

func clusterDistances(ctx context.Context, ext *extraction, dist *pointDistances, workers int) ([]ClusterDistance, error) {
	members := make([][]int, len(ext.clusterOf))
	for p, label := range ext.labels {
		if label != Noise {
			members[label] = append(members[label], p)
		}
	}

	out := make([]ClusterDistance, len(members))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for label, pts := range members {
		g.Go(func() error {
			cd := ClusterDistance{Label: label, Size: len(pts)}
			cd.MinCore, cd.MaxCore = math.Inf(1), math.Inf(-1)
			for _, p := range pts {
				c := ext.density.core[p]
				cd.MinCore = math.Min(cd.MinCore, c)
				cd.MaxCore = math.Max(cd.MaxCore, c)
			}

			if len(pts) > 1 {
				cd.MinIntra, cd.MaxIntra = math.Inf(1), math.Inf(-1)
				for i, a := range pts {
					if err := checkRow(gctx, i); err != nil {
						return err
					}
					for _, b := range pts[i+1:] {
						d := dist.at(a, b)
						cd.MinIntra = math.Min(cd.MinIntra, d)
						cd.MaxIntra = math.Max(cd.MaxIntra, d)
					}
				}
			}

			cd.CoreConfidence = confidence(cd.MinCore, cd.MaxCore)
			cd.IntraConfidence = confidence(cd.MinIntra, cd.MaxIntra)
			out[label] = cd
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "hdbscan: cluster distances")
	}
	return out, nil
}

func confidence(lo, hi float64) float64 {
	if hi == 0 {
		return 0
	}
	return (hi - lo) / hi * 100
}

// Stats computes the confidence distributions of the current extraction.
func (s *Session) Stats(ctx context.Context) (*ClusteringStats, error) {
	cds, err := s.ClusterDistances(ctx)
	if err != nil {
		return nil, err
	}
	return statsOf(cds), nil
}

func statsOf(cds []ClusterDistance) *ClusteringStats {
	core := make([]float64, len(cds))
	intra := make([]float64, len(cds))
	for i, cd := range cds {
		core[i] = cd.CoreConfidence
		intra[i] = cd.IntraConfidence
	}
	return &ClusteringStats{
		Count:         len(cds),
		CoreDistance:  describe(core),
		IntraDistance: describe(intra),
	}
}

// SortBySimilarity orders cds by ascending confidence of the given kind, so
// the most homogeneous clusters come first. Ties keep label order.
func SortBySimilarity(cds []ClusterDistance, kind DistanceKind) {
	sort.SliceStable(cds, func(i, j int) bool {
		return cds[i].confidence(kind) < cds[j].confidence(kind)
	})
}
