package permutation

import (
	"math"

	"clusterperm/domain/cluster"
)

// PValues computes one empirical p-value per observed cluster against the
// null distribution. H0 holds the signed extremum cluster score of every
// permutation (identity included), so comparisons are directional: a
// positive cluster counts null entries at or above its score, a negative
// cluster counts entries at or below. Family-wise error across clusters is
// controlled by the max-statistic construction itself, so no further
// correction applies.
func PValues(clusters []cluster.Cluster, h0 []float64) []float64 {
	out := make([]float64, len(clusters))
	for i, c := range clusters {
		out[i] = directionalP(c.Score, h0)
	}
	return out
}

// LocationPValues evaluates per-location TFCE scores against H0 the same way
func LocationPValues(scores, h0 []float64) []float64 {
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = directionalP(s, h0)
	}
	return out
}

// directionalP counts null entries at least as extreme as s in s's direction.
// The identity permutation sits in H0, so the extremal score's p is bounded
// below by 1/len(h0) and the (count+1)/(n+1) small-sample correction is
// deliberately omitted.
func directionalP(s float64, h0 []float64) float64 {
	if math.IsNaN(s) {
		return 1
	}
	count := 0
	if s >= 0 {
		for _, v := range h0 {
			if v >= s {
				count++
			}
		}
	} else {
		for _, v := range h0 {
			if v <= s {
				count++
			}
		}
	}
	return float64(count) / float64(len(h0))
}
