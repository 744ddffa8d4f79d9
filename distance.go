package hdbscan

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// DistanceMetric computes the dissimilarity between two points of equal
// dimensionality. Implementations must be symmetric, non-negative and
// return 0 for identical points.
type DistanceMetric interface {
	Distance(a, b []float64) float64
}

// DistanceFunc adapts a plain function into a DistanceMetric.
type DistanceFunc func(a, b []float64) float64

func (f DistanceFunc) Distance(a, b []float64) float64 { return f(a, b) }

// EuclideanMetric computes the Euclidean (L2) distance.
type EuclideanMetric struct{}

func (EuclideanMetric) Distance(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// ManhattanMetric computes the Manhattan (L1 / city-block) distance.
type ManhattanMetric struct{}

func (ManhattanMetric) Distance(a, b []float64) float64 {
	return floats.Distance(a, b, 1)
}

// ChebyshevMetric computes the Chebyshev (L-infinity) distance.
type ChebyshevMetric struct{}

func (ChebyshevMetric) Distance(a, b []float64) float64 {
	return floats.Distance(a, b, math.Inf(1))
}

// MinkowskiMetric computes the Minkowski distance parameterized by P.
// P must be >= 1; validateConfig rejects anything smaller.
type MinkowskiMetric struct {
	P float64
}

func (m MinkowskiMetric) Distance(a, b []float64) float64 {
	return floats.Distance(a, b, m.P)
}

// CosineMetric computes the cosine distance: 1 - cosine_similarity.
// Two zero vectors are at distance 0; a zero vector and a non-zero vector
// are at distance 1.
type CosineMetric struct{}

func (CosineMetric) Distance(a, b []float64) float64 {
	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	switch {
	case normA == 0 && normB == 0:
		return 0
	case normA == 0 || normB == 0:
		return 1
	}
	d := 1.0 - floats.Dot(a, b)/(normA*normB)
	if d < 0 {
		// rounding on parallel vectors
		return 0
	}
	return d
}

// axisNorm reports the L-norm that metric m applies to per-axis gaps, for
// metrics that decompose along coordinate axes. ok is false otherwise.
func axisNorm(m DistanceMetric) (p float64, ok bool) {
	switch v := m.(type) {
	case EuclideanMetric:
		return 2, true
	case ManhattanMetric:
		return 1, true
	case ChebyshevMetric:
		return math.Inf(1), true
	case MinkowskiMetric:
		return v.P, true
	default:
		return 0, false
	}
}

// ParseMetric resolves a metric by name. p is only used by "minkowski".
func ParseMetric(name string, p float64) (DistanceMetric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "euclidean", "l2":
		return EuclideanMetric{}, nil
	case "manhattan", "cityblock", "l1":
		return ManhattanMetric{}, nil
	case "chebyshev", "linf":
		return ChebyshevMetric{}, nil
	case "cosine":
		return CosineMetric{}, nil
	case "minkowski":
		if p < 1 {
			return nil, invalidArgument("minkowski p must be >= 1, got %v", p)
		}
		return MinkowskiMetric{P: p}, nil
	default:
		return nil, invalidArgument("unknown metric %q", name)
	}
}
