package hdbscan

import "math"

// OutlierScores computes GLOSH outlier scores for each point from the
// condensed tree: 1 - lambda(p) / lambdaMax(C), where C is the cluster the
// point falls out of and lambdaMax(C) the largest exit lambda anywhere in C's
// subtree. Scores are in [0, 1]; 0 means the point is as dense as the densest
// part of its cluster.
func OutlierScores(t *CondensedTree, maxLambda float64) []float64 {
	// deaths[c] = max exit lambda over c's subtree. Children have larger ids
	// than their parent, so a reverse walk folds children in first.
	deaths := make([]float64, len(t.Clusters))
	for p, c := range t.ExitCluster {
		if l := lambdaOf(t.ExitLevel[p], maxLambda); l > deaths[c] {
			deaths[c] = l
		}
	}
	for id := len(t.Clusters) - 1; id > 0; id-- {
		parent := t.Clusters[id].Parent
		if deaths[id] > deaths[parent] {
			deaths[parent] = deaths[id]
		}
	}

	result := make([]float64, t.N)
	for p, c := range t.ExitCluster {
		lambda := lambdaOf(t.ExitLevel[p], maxLambda)
		lambdaMax := deaths[c]
		switch {
		case lambdaMax == 0 || math.IsInf(lambda, 1):
			result[p] = 0.0
		case math.IsInf(lambdaMax, 1):
			result[p] = 1.0
		default:
			result[p] = (lambdaMax - lambda) / lambdaMax
		}
	}
	return result
}
