package ports

// Statistic computes a per-location test statistic from one or more groups of
// observations. groups[g] is an n_observations x n_locations matrix; all
// groups share the same location count. The result has one value per
// location. Implementations must be safe for concurrent use: the permutation
// engine calls Compute from many workers at once.
//
// Zero-variance locations may legitimately produce NaN or Inf values; callers
// treat NaN as below any cluster-forming threshold rather than an error.
type Statistic interface {
	// Name identifies the statistic in logs, reports and stored runs
	Name() string

	// Compute returns one statistic value per location
	Compute(groups [][][]float64) ([]float64, error)
}
