package stats

import (
	"fmt"

	"clusterperm/domain/core"
)

// FOneway computes a one-way ANOVA F statistic per location across two or
// more independent groups. F is always non-negative, so it pairs with
// tail = +1 cluster formation.
type FOneway struct{}

// NewFOneway creates a one-way F statistic
func NewFOneway() *FOneway {
	return &FOneway{}
}

// Name returns the statistic name
func (s *FOneway) Name() string {
	return "f_oneway"
}

// Compute returns the per-location F statistic
func (s *FOneway) Compute(groups [][][]float64) ([]float64, error) {
	k := len(groups)
	if k < 2 {
		return nil, fmt.Errorf("one-way F needs at least 2 groups, got %d", k)
	}
	nTotal := 0
	for _, g := range groups {
		if len(g) < 2 {
			return nil, core.ErrTooFewObservations
		}
		nTotal += len(g)
	}
	nLoc := len(groups[0][0])
	out := make([]float64, nLoc)

	dfBetween := float64(k - 1)
	dfWithin := float64(nTotal - k)

	for j := 0; j < nLoc; j++ {
		grand := 0.0
		for _, g := range groups {
			for i := range g {
				grand += g[i][j]
			}
		}
		grand /= float64(nTotal)

		ssBetween := 0.0
		ssWithin := 0.0
		for _, g := range groups {
			n := float64(len(g))
			sum := 0.0
			for i := range g {
				sum += g[i][j]
			}
			mean := sum / n
			d := mean - grand
			ssBetween += n * d * d
			for i := range g {
				e := g[i][j] - mean
				ssWithin += e * e
			}
		}

		// Zero within-group variance propagates as Inf or NaN here;
		// cluster formation excludes NaN locations.
		msBetween := ssBetween / dfBetween
		msWithin := ssWithin / dfWithin
		out[j] = msBetween / msWithin
	}
	return out, nil
}

// DegreesOfFreedom returns (between, within) degrees of freedom for the
// given group sizes, used to derive cluster-forming thresholds.
func (s *FOneway) DegreesOfFreedom(groupSizes []int) (float64, float64) {
	total := 0
	for _, n := range groupSizes {
		total += n
	}
	return float64(len(groupSizes) - 1), float64(total - len(groupSizes))
}
