package hdbscan

// MutualReachability returns max(coreA, coreB, dist), the weight of the
// mutual reachability edge between two points. Coincident points with zero
// core distance merge at level 0.
func MutualReachability(dist, coreA, coreB float64) float64 {
	return max(dist, coreA, coreB)
}
