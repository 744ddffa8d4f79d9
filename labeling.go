package hdbscan

import (
	"math"
	"sort"
)

// AssignLabels turns a cluster selection into one label per point. A point
// takes the label of the selected cluster that is its exit cluster or an
// ancestor of it; every other point is Noise.
//
// Labels are numbered 0..k-1 by ascending birth level of the selected
// cluster, then by ascending smallest member index, so identical inputs give
// identical numbering. clusterOf maps each label back to its cluster id.
func AssignLabels(t *CondensedTree, selected []bool) (labels []int, clusterOf []int) {
	// owner[c] is the selected cluster covering c, or -1.
	owner := make([]int, len(t.Clusters))
	for id := range t.Clusters {
		switch {
		case selected[id]:
			owner[id] = id
		case t.Clusters[id].Parent >= 0:
			owner[id] = owner[t.Clusters[id].Parent]
		default:
			owner[id] = -1
		}
	}

	minPoint := make(map[int]int)
	for p := t.N - 1; p >= 0; p-- {
		if o := owner[t.ExitCluster[p]]; o >= 0 {
			minPoint[o] = p
		}
	}

	clusterOf = make([]int, 0, len(minPoint))
	for c := range minPoint {
		clusterOf = append(clusterOf, c)
	}
	sort.Slice(clusterOf, func(i, j int) bool {
		a, b := &t.Clusters[clusterOf[i]], &t.Clusters[clusterOf[j]]
		if a.Birth != b.Birth {
			return a.Birth < b.Birth
		}
		return minPoint[a.ID] < minPoint[b.ID]
	})

	labelOf := make(map[int]int, len(clusterOf))
	for label, c := range clusterOf {
		labelOf[c] = label
	}

	labels = make([]int, t.N)
	for p := range labels {
		if o := owner[t.ExitCluster[p]]; o >= 0 {
			labels[p] = labelOf[o]
		} else {
			labels[p] = Noise
		}
	}
	return labels, clusterOf
}

// MembershipProbabilities computes, for each labelled point, how strongly it
// belongs to its cluster: its exit lambda relative to the largest exit lambda
// among the cluster's members. Noise points get 0.
func MembershipProbabilities(t *CondensedTree, labels []int, clusterOf []int, maxLambda float64) []float64 {
	deaths := make([]float64, len(clusterOf))
	for p, label := range labels {
		if label == Noise {
			continue
		}
		if l := lambdaOf(t.ExitLevel[p], maxLambda); l > deaths[label] {
			deaths[label] = l
		}
	}

	result := make([]float64, len(labels))
	for p, label := range labels {
		if label == Noise {
			continue
		}
		lambda := lambdaOf(t.ExitLevel[p], maxLambda)
		top := deaths[label]
		switch {
		case top == 0 || lambda >= top:
			result[p] = 1.0
		case math.IsInf(top, 1):
			result[p] = 0.0
		default:
			result[p] = lambda / top
		}
	}
	return result
}

// labelStabilities maps each label to its cluster's stability.
func labelStabilities(t *CondensedTree, clusterOf []int) map[int]float64 {
	out := make(map[int]float64, len(clusterOf))
	for label, c := range clusterOf {
		out[label] = t.Clusters[c].Stability
	}
	return out
}
