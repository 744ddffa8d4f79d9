package hdbscan

import "math"

// lambdaOf converts a distance level into a density lambda = 1/level. A zero
// level maps to +Inf and +Inf maps to 0. A positive maxLambda caps the result.
func lambdaOf(level, maxLambda float64) float64 {
	var lambda float64
	switch {
	case math.IsInf(level, 1):
		lambda = 0
	case level <= 0:
		lambda = math.Inf(1)
	default:
		lambda = 1.0 / level
	}
	if maxLambda > 0 && lambda > maxLambda {
		lambda = maxLambda
	}
	return lambda
}

// lambdaSpan returns exit - birth, treating equal lambdas (including two
// infinities) as a zero span.
func lambdaSpan(exit, birth float64) float64 {
	if exit == birth {
		return 0
	}
	return exit - birth
}

// ComputeStability fills in Stability for every cluster of t and returns the
// values indexed by cluster id.
//
// The stability of a cluster C is
//
//	sum over points p leaving C of (lambda(exit level of p) - lambda(birth of C))
//
// where a point leaves C either by falling out of it directly or, when C
// splits into child clusters, by moving into a child at C's death level.
// Levels are distances, so lambdas grow towards the leaves and stability is
// non-negative. The root is born at +Inf (lambda 0).
func ComputeStability(t *CondensedTree, maxLambda float64) []float64 {
	stab := make([]float64, len(t.Clusters))

	for p, c := range t.ExitCluster {
		birth := lambdaOf(t.Clusters[c].Birth, maxLambda)
		stab[c] += lambdaSpan(lambdaOf(t.ExitLevel[p], maxLambda), birth)
	}

	for i := range t.Clusters {
		c := &t.Clusters[i]
		if !c.IsLeaf() {
			remaining := 0
			for _, child := range c.Children {
				remaining += t.Clusters[child].Size
			}
			span := lambdaSpan(lambdaOf(c.Death, maxLambda), lambdaOf(c.Birth, maxLambda))
			if span != 0 {
				stab[i] += float64(remaining) * span
			}
		}
		c.Stability = stab[i]
	}

	return stab
}

// infiniteStabilities returns the ids of clusters whose stability is +Inf,
// which happens when coincident points merge at level 0.
func infiniteStabilities(t *CondensedTree) []int {
	var ids []int
	for _, c := range t.Clusters {
		if math.IsInf(c.Stability, 1) {
			ids = append(ids, c.ID)
		}
	}
	return ids
}
