package hdbscan

import (
	"context"
	"runtime"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

// cancelCheckEvery is how many rows a worker processes between context checks.
const cancelCheckEvery = 64

// parallelRows splits [0, n) into contiguous row ranges, one per worker, and
// runs fn on each range concurrently. The first error cancels the shared
// context and is returned after every worker has finished.
func parallelRows(ctx context.Context, n, workers int, fn func(ctx context.Context, start, end int) error) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		return fn(ctx, 0, n)
	}

	g, gctx := errgroup.WithContext(ctx)
	rowsPerWorker := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := min(start+rowsPerWorker, n)
		if start >= n {
			break
		}
		g.Go(func() error {
			return fn(gctx, start, end)
		})
	}
	return g.Wait()
}

// checkRow returns the context error every cancelCheckEvery rows.
func checkRow(ctx context.Context, i int) error {
	if i%cancelCheckEvery != 0 {
		return nil
	}
	return ctx.Err()
}

// PairwiseDistances computes the full n×n distance matrix of ds in parallel.
// Each worker owns a contiguous range of source rows and writes dist(i,j) and
// dist(j,i) for every j > i, so writes never overlap. The result is flat
// row-major and identical for every worker count.
func PairwiseDistances(ctx context.Context, ds *Dataset, metric DistanceMetric, workers int) ([]float64, error) {
	n := ds.Len()
	result := make([]float64, n*n)
	err := parallelRows(ctx, n, workers, func(ctx context.Context, start, end int) error {
		for i := start; i < end; i++ {
			if err := checkRow(ctx, i-start); err != nil {
				return err
			}
			pi := ds.Point(i)
			for j := i + 1; j < n; j++ {
				d := metric.Distance(pi, ds.Point(j))
				result[i*n+j] = d
				result[j*n+i] = d
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "hdbscan: pairwise distances")
	}
	return result, nil
}

// pointDistances answers dist(i, j) for points of one dataset, from the
// cached pairwise matrix when one exists and from the metric otherwise.
type pointDistances struct {
	ds     *Dataset
	metric DistanceMetric
	matrix []float64 // n*n, or nil
}

func (d *pointDistances) at(i, j int) float64 {
	if d.matrix != nil {
		return d.matrix[i*d.ds.Len()+j]
	}
	if i == j {
		return 0
	}
	return d.metric.Distance(d.ds.Point(i), d.ds.Point(j))
}
