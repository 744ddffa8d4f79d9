package hdbscan

import (
	"sort"

	"github.com/tidwall/btree"
)

// ClusterMap groups the points of an index range [from, to) by label. Labels
// iterate in ascending order (Noise first) and each label's points are in
// ascending index order. It is a read-only view built from a label slice.
type ClusterMap struct {
	from, to int
	groups   btree.Map[int, []int]
}

func newClusterMap(labels []int, from, to int) *ClusterMap {
	cm := &ClusterMap{from: from, to: to}
	for p := from; p < to; p++ {
		pts, _ := cm.groups.Get(labels[p])
		cm.groups.Set(labels[p], append(pts, p))
	}
	return cm
}

// Bounds returns the half-open index range the map was built over.
func (cm *ClusterMap) Bounds() (from, to int) { return cm.from, cm.to }

// Len returns the number of distinct labels, Noise included.
func (cm *ClusterMap) Len() int { return cm.groups.Len() }

// Labels returns the distinct labels in ascending order.
func (cm *ClusterMap) Labels() []int {
	labels := make([]int, 0, cm.groups.Len())
	cm.groups.Scan(func(label int, _ []int) bool {
		labels = append(labels, label)
		return true
	})
	return labels
}

// Points returns a copy of the point indices carrying label.
func (cm *ClusterMap) Points(label int) []int {
	pts, ok := cm.groups.Get(label)
	if !ok {
		return nil
	}
	out := make([]int, len(pts))
	copy(out, pts)
	return out
}

// Size returns how many points carry label.
func (cm *ClusterMap) Size(label int) int {
	pts, _ := cm.groups.Get(label)
	return len(pts)
}

// Range calls fn for each label in ascending order until fn returns false.
// points must not be modified.
func (cm *ClusterMap) Range(fn func(label int, points []int) bool) {
	cm.groups.Scan(fn)
}

// SortByLength returns the labels ordered by descending member count, ties
// broken by ascending label.
func (cm *ClusterMap) SortByLength() []int {
	labels := cm.Labels()
	sort.SliceStable(labels, func(i, j int) bool {
		return cm.Size(labels[i]) > cm.Size(labels[j])
	})
	return labels
}
