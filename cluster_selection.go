package hdbscan

// SelectionOptions controls how a flat clustering is extracted from a
// condensed tree.
type SelectionOptions struct {
	// Method is SelectionEOM or SelectionLeaf.
	Method string
	// Epsilon merges selected clusters born below this level into their
	// nearest ancestor born above it. 0 disables the merge.
	Epsilon float64
	// AllowSingleCluster lets the root compete in EOM selection.
	AllowSingleCluster bool
}

// SelectClusters returns, per cluster id of t, whether the cluster is part of
// the flat clustering. Stabilities must already be computed.
//
// The root is selected when it is the sole cluster and the tree holds at
// least MinClusterSize points; otherwise it is only a candidate under EOM
// with AllowSingleCluster.
func SelectClusters(t *CondensedTree, opts SelectionOptions) []bool {
	selected := make([]bool, len(t.Clusters))
	if t.Root().IsLeaf() {
		selected[0] = t.N >= t.MinClusterSize
		return selected
	}

	switch opts.Method {
	case SelectionLeaf:
		for i := 1; i < len(t.Clusters); i++ {
			selected[i] = t.Clusters[i].IsLeaf()
		}
	default:
		selectEOM(t, selected, opts.AllowSingleCluster)
	}

	if opts.Epsilon > 0 {
		epsilonSearch(t, selected, opts.Epsilon, opts.AllowSingleCluster)
	}
	return selected
}

// selectEOM performs Excess-of-Mass selection bottom-up. Cluster ids are
// assigned parents-first, so a reverse id walk visits children before their
// parent. A node is selected when its own stability is at least the summed
// effective stability of its children, in which case every descendant is
// deselected; otherwise its effective stability becomes that sum.
func selectEOM(t *CondensedTree, selected []bool, allowSingleCluster bool) {
	effective := make([]float64, len(t.Clusters))
	for id := len(t.Clusters) - 1; id >= 0; id-- {
		c := &t.Clusters[id]
		if c.IsLeaf() {
			selected[id] = true
			effective[id] = c.Stability
			continue
		}

		subtree := 0.0
		for _, child := range c.Children {
			subtree += effective[child]
		}

		if id == 0 && !allowSingleCluster {
			break
		}

		if c.Stability >= subtree {
			selected[id] = true
			effective[id] = c.Stability
			for _, d := range t.Descendants(id)[1:] {
				selected[d] = false
			}
		} else {
			effective[id] = subtree
		}
	}
}

// epsilonSearch replaces every selected cluster born below epsilon with its
// nearest ancestor born above epsilon, and deselects what lies under it.
func epsilonSearch(t *CondensedTree, selected []bool, epsilon float64, allowSingleCluster bool) {
	var candidates []int
	for id, ok := range selected {
		if ok {
			candidates = append(candidates, id)
		}
	}

	processed := make([]bool, len(t.Clusters))
	for _, id := range candidates {
		if processed[id] || t.Clusters[id].Birth >= epsilon {
			continue
		}
		target := traverseUpwards(t, id, epsilon, allowSingleCluster)
		for _, d := range t.Descendants(target) {
			selected[d] = false
			if d != target {
				processed[d] = true
			}
		}
		selected[target] = true
	}
}

// traverseUpwards walks from a cluster towards the root and returns the first
// ancestor born above epsilon. It stops below the root unless single clusters
// are allowed.
func traverseUpwards(t *CondensedTree, id int, epsilon float64, allowSingleCluster bool) int {
	for {
		parent := t.Clusters[id].Parent
		if parent < 0 {
			return id
		}
		if parent == 0 {
			if allowSingleCluster {
				return parent
			}
			return id
		}
		if t.Clusters[parent].Birth > epsilon {
			return parent
		}
		id = parent
	}
}
