package clustering

// SumScore reduces a cluster to the signed sum of statistic values at its
// locations. The sum is monotonic in both extent and magnitude: adding a
// member or strengthening one always moves the score further from zero for
// same-direction clusters, which the significance evaluation relies on.
func SumScore(stat []float64, indices []int) float64 {
	sum := 0.0
	for _, i := range indices {
		sum += stat[i]
	}
	return sum
}

// SignedExtremum returns the score with the largest magnitude, keeping its
// sign, or 0 for an empty slice. One such value per permutation forms the
// null distribution.
func SignedExtremum(scores []float64) float64 {
	best := 0.0
	bestAbs := 0.0
	for _, s := range scores {
		a := s
		if a < 0 {
			a = -a
		}
		if a > bestAbs {
			bestAbs = a
			best = s
		}
	}
	return best
}
