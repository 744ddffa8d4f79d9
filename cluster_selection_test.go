package hdbscan

import (
	"testing"
)

// Two groups of three that only just separate at level 1.25, so the root is
// far more stable than either child.
func weakSplitMST() []Edge {
	return []Edge{
		{0, 1, 1}, {1, 2, 1},
		{3, 4, 1}, {4, 5, 1},
		{2, 3, 1.25},
	}
}

func checkSelection(t *testing.T, got, want []bool) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("selection length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("selection = %v, want %v", got, want)
			return
		}
	}
}

func TestSelectClustersEOM_TwoCluster(t *testing.T) {
	tree := condensedFromMST(t, twoGroupMST(), ones(6), 2)
	got := SelectClusters(tree, SelectionOptions{Method: SelectionEOM})
	checkSelection(t, got, []bool{false, true, true})
}

func TestSelectClustersEOM_ParentVsChildren(t *testing.T) {
	// {0,1,2,3} (2.8) beats its children (0.4 + 0.4).
	tree := condensedFromMST(t, nestedMST(), ones(7), 2)
	got := SelectClusters(tree, SelectionOptions{Method: SelectionEOM})
	checkSelection(t, got, []bool{false, true, true, false, false})
}

func TestSelectClustersEOM_ParentWinsTies(t *testing.T) {
	tree := condensedFromMST(t, nestedMST(), ones(7), 2)
	// Make the children exactly as stable as their parent.
	half := tree.Clusters[1].Stability / 2
	tree.Clusters[3].Stability = half
	tree.Clusters[4].Stability = half
	got := SelectClusters(tree, SelectionOptions{Method: SelectionEOM})
	checkSelection(t, got, []bool{false, true, true, false, false})
}

func TestSelectClusters_RootOnly(t *testing.T) {
	tree := condensedFromMST(t, twoGroupMST(), ones(6), 4)
	got := SelectClusters(tree, SelectionOptions{Method: SelectionEOM})
	checkSelection(t, got, []bool{true})
}

func TestSelectClusters_RootTooSmall(t *testing.T) {
	tree := condensedFromMST(t, twoGroupMST(), ones(6), 7)
	got := SelectClusters(tree, SelectionOptions{Method: SelectionEOM})
	checkSelection(t, got, []bool{false})
}

func TestSelectClustersEOM_AllowSingleCluster(t *testing.T) {
	tree := condensedFromMST(t, weakSplitMST(), ones(6), 2)

	got := SelectClusters(tree, SelectionOptions{Method: SelectionEOM})
	checkSelection(t, got, []bool{false, true, true})

	got = SelectClusters(tree, SelectionOptions{Method: SelectionEOM, AllowSingleCluster: true})
	checkSelection(t, got, []bool{true, false, false})
}

func TestSelectClustersLeaf_CorrectLeaves(t *testing.T) {
	tree := condensedFromMST(t, nestedMST(), ones(7), 2)
	got := SelectClusters(tree, SelectionOptions{Method: SelectionLeaf})
	checkSelection(t, got, []bool{false, false, true, true, true})
}

func TestSelectClustersLeaf_WithEpsilon(t *testing.T) {
	// The leaves born at 1.25 are merged up into their parent born at 10.
	tree := condensedFromMST(t, nestedMST(), ones(7), 2)
	got := SelectClusters(tree, SelectionOptions{Method: SelectionLeaf, Epsilon: 2})
	checkSelection(t, got, []bool{false, true, true, false, false})
}

func TestEpsilonSearch_StopsBelowRoot(t *testing.T) {
	tree := condensedFromMST(t, nestedMST(), ones(7), 2)

	got := SelectClusters(tree, SelectionOptions{Method: SelectionEOM, Epsilon: 20})
	checkSelection(t, got, []bool{false, true, true, false, false})

	got = SelectClusters(tree, SelectionOptions{Method: SelectionEOM, Epsilon: 20, AllowSingleCluster: true})
	checkSelection(t, got, []bool{true, false, false, false, false})
}
