package hdbscan

import (
	"context"

	"github.com/cockroachdb/errors"
)

// ComputeCoreDistances returns, for every point p of the index, the distance
// to its (minPts-1)-th nearest other point. The point itself counts as the
// 0th neighbor, so minPts == 1 yields all zeros.
//
// Points are split into contiguous ranges queried concurrently by workers
// goroutines (0 means runtime.NumCPU()); the index is only read. ctx is
// checked periodically and its error is returned on cancellation.
func ComputeCoreDistances(ctx context.Context, index SpatialIndex, minPts, workers int) ([]float64, error) {
	if minPts < 1 {
		return nil, invalidArgument("minPts must be >= 1, got %d", minPts)
	}
	n := index.Len()
	core := make([]float64, n)
	k := minPts - 1
	if k == 0 {
		return core, nil
	}

	err := parallelRows(ctx, n, workers, func(ctx context.Context, start, end int) error {
		for i := start; i < end; i++ {
			if err := checkRow(ctx, i-start); err != nil {
				return err
			}
			nbrs, err := index.KNearest(i, k)
			if err != nil {
				return err
			}
			core[i] = nbrs[k-1].Distance
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "hdbscan: core distances")
	}
	return core, nil
}
