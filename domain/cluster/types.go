package cluster

import (
	"clusterperm/domain/core"
	"clusterperm/domain/field"
)

// Tail selects which side(s) of the statistic distribution form clusters
type Tail int

const (
	TailLeft  Tail = -1 // statistic < -threshold
	TailBoth  Tail = 0  // both sides, pooled
	TailRight Tail = 1  // statistic > threshold
)

// Valid reports whether the tail indicator is one of -1, 0, +1
func (t Tail) Valid() bool {
	return t == TailLeft || t == TailBoth || t == TailRight
}

// Cluster is a maximal connected set of same-direction suprathreshold
// locations. Indices address the flattened location space, sorted ascending.
type Cluster struct {
	Indices []int   `json:"indices"`
	Sign    int     `json:"sign"`  // +1 positive tail, -1 negative tail
	Score   float64 `json:"score"` // signed sum of statistic values over Indices
}

// Size returns the number of locations in the cluster
func (c *Cluster) Size() int {
	return len(c.Indices)
}

// Result is the complete outcome of one permutation cluster test.
// PValues aligns positionally with Clusters; for TFCE runs Clusters is empty
// and PValues aligns with TFCEScores locations instead.
type Result struct {
	RunID     core.RunID   `json:"run_id"`
	Statistic *field.Field `json:"statistic"`
	Clusters  []Cluster    `json:"clusters"`
	PValues   []float64    `json:"p_values"`
	H0        []float64    `json:"h0"`

	// TFCEScores holds per-location enhanced scores when the run used
	// threshold-free cluster enhancement.
	TFCEScores *field.Field `json:"tfce_scores,omitempty"`

	NumPermutations int  `json:"num_permutations"`
	Exhaustive      bool `json:"exhaustive"`
	Seed            int64 `json:"seed"`
}

// SignificantClusters returns the indices (into Clusters) of clusters at or
// below alpha. Family-wise error across all clusters is already controlled by
// the max-statistic construction of H0, so no further correction applies.
func (r *Result) SignificantClusters(alpha float64) []int {
	if r.TFCEScores != nil {
		return nil
	}
	var out []int
	for i, p := range r.PValues {
		if p <= alpha {
			out = append(out, i)
		}
	}
	return out
}

// SignificantMask returns a boolean mask over the location space marking
// members of clusters (or TFCE locations) significant at alpha.
func (r *Result) SignificantMask(alpha float64) []bool {
	mask := make([]bool, r.Statistic.Len())
	if r.TFCEScores != nil {
		for i, p := range r.PValues {
			if p <= alpha {
				mask[i] = true
			}
		}
		return mask
	}
	for i, c := range r.Clusters {
		if r.PValues[i] <= alpha {
			for _, idx := range c.Indices {
				mask[idx] = true
			}
		}
	}
	return mask
}
