// Package hdbscan implements Hierarchical Density-Based Spatial Clustering
// of Applications with Noise (HDBSCAN) with cheap re-extraction.
//
// HDBSCAN builds a minimum spanning tree over the mutual reachability graph,
// turns it into a single-linkage dendrogram, condenses away splits that leave
// fewer than minClusterSize points on one side, and extracts the flat
// clustering that maximizes total cluster stability. Points outside every
// selected cluster are labelled Noise (-1).
//
// A Session keeps the dataset and everything derived from it, so trying new
// parameters does not start over:
//
//	s, err := hdbscan.NewSession(3, hdbscan.DefaultConfig())
//	labels, err := s.Run(ctx, data)       // full pipeline
//	labels, err = s.Rerun(ctx, 5)         // new minPts; cached per value
//	labels, err = s.RerunClusterSize(ctx, 8) // reuse the dendrogram
//	cm, err := s.ClusterMap(0, s.Rows())  // label → point indices
//
// For a single clustering:
//
//	result, err := hdbscan.Cluster(ctx, data, 5, hdbscan.DefaultConfig())
//	// result.Labels[i] is the cluster ID for point i (-1 = noise)
//	// result.Probabilities[i] is how strongly point i belongs to its cluster
//	// result.OutlierScores[i] is how outlier-like point i is (0 = inlier, 1 = outlier)
//
// # Index selection
//
// Core distances come from a spatial index. By default (Index: "auto") small
// datasets get a cached pairwise distance matrix and a brute-force index,
// larger ones a KD-tree in up to 60 dimensions and a ball tree above that.
// Metrics the trees cannot bound, such as cosine, always use brute force.
//
// # Determinism
//
// Neighbor ties break by ascending point index, MST ties by (weight, lower
// index, higher index), and labels are numbered by ascending birth level then
// smallest member index, so identical inputs give identical labels.
package hdbscan
