package hdbscan

import (
	"context"
)

// SelectMinPts reruns the clustering for every minPts in [lo, hi], scores
// each extraction with ClusteringStats.Validity and leaves the session at the
// best one; ties go to the smaller minPts. It returns the chosen minPts.
//
// It fails with ErrNoPriorRun before Run, ErrInvalidArgument unless
// 1 <= lo <= hi, and ErrDegenerateInput if hi exceeds the row count. On any
// failure the previous labels are restored.
func (s *Session) SelectMinPts(ctx context.Context, lo, hi int) (best int, err error) {
	defer func() { s.cfg.Metrics.operation("select_min_pts", err) }()

	if s.current == nil {
		return 0, noPriorRun("select min pts")
	}
	if lo < 1 || lo > hi {
		return 0, invalidArgument("minPts range [%d, %d] is invalid", lo, hi)
	}
	if hi > s.data.Len() {
		return 0, degenerateInput("dataset has %d points, fewer than minPts %d", s.data.Len(), hi)
	}

	saved := s.current
	restore := func() {
		s.commit(saved)
	}

	bestScore := 0
	for minPts := lo; minPts <= hi; minPts++ {
		if err := s.recluster(ctx, minPts, s.clusterSizeFor(minPts)); err != nil {
			restore()
			return 0, err
		}
		cds, err := clusterDistances(ctx, s.current, s.dist, s.cfg.Workers)
		if err != nil {
			restore()
			return 0, err
		}
		score := statsOf(cds).Validity()
		s.log.Debugw("min pts candidate", "min_pts", minPts, "validity", score, "clusters", len(cds))
		if minPts == lo || score > bestScore {
			best, bestScore = minPts, score
		}
	}

	if err := s.recluster(ctx, best, s.clusterSizeFor(best)); err != nil {
		restore()
		return 0, err
	}
	s.log.Infow("min pts selected", "min_pts", best, "validity", bestScore, "range_lo", lo, "range_hi", hi)
	return best, nil
}
