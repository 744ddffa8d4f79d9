package hdbscan

import "math"

// SimplifyHierarchy returns a copy of t without low-persistence leaf
// clusters. The persistence of a cluster is lambda(birth) - lambda(birth of
// its parent). Leaves below threshold are removed repeatedly until none is
// left; their points then fall out of the nearest surviving ancestor at their
// original levels. Surviving clusters are renumbered in their original order,
// so parents still precede children. Stabilities must be recomputed.
func SimplifyHierarchy(t *CondensedTree, threshold, maxLambda float64) *CondensedTree {
	removed := make([]bool, len(t.Clusters))
	childCount := make([]int, len(t.Clusters))
	for i := range t.Clusters {
		childCount[i] = len(t.Clusters[i].Children)
	}

	changed := threshold > 0
	for changed {
		changed = false
		for id := len(t.Clusters) - 1; id > 0; id-- {
			c := &t.Clusters[id]
			if removed[id] || childCount[id] > 0 {
				continue
			}
			persistence := lambdaOf(c.Birth, maxLambda) - lambdaOf(t.Clusters[c.Parent].Birth, maxLambda)
			if persistence < threshold {
				removed[id] = true
				childCount[c.Parent]--
				changed = true
			}
		}
	}

	// survivor[id] is the surviving cluster standing in for id.
	survivor := make([]int, len(t.Clusters))
	newID := make([]int, len(t.Clusters))
	next := 0
	for id := range t.Clusters {
		if removed[id] {
			survivor[id] = survivor[t.Clusters[id].Parent]
			continue
		}
		survivor[id] = id
		newID[id] = next
		next++
	}

	out := &CondensedTree{
		N:              t.N,
		MinClusterSize: t.MinClusterSize,
		Clusters:       make([]CondensedCluster, 0, next),
		ExitCluster:    make([]int, t.N),
		ExitLevel:      append([]float64(nil), t.ExitLevel...),
	}
	for id, c := range t.Clusters {
		if removed[id] {
			continue
		}
		nc := c
		nc.ID = newID[id]
		if c.Parent >= 0 {
			nc.Parent = newID[c.Parent]
		}
		nc.Children = nil
		for _, child := range c.Children {
			if !removed[child] {
				nc.Children = append(nc.Children, newID[child])
			}
		}
		out.Clusters = append(out.Clusters, nc)
	}
	for p, c := range t.ExitCluster {
		nc := newID[survivor[c]]
		out.ExitCluster[p] = nc
		// A cluster that lost every child now dies with its last point.
		if survivor[c] != c && out.Clusters[nc].IsLeaf() {
			out.Clusters[nc].Death = math.Min(out.Clusters[nc].Death, t.ExitLevel[p])
		}
	}
	return out
}
