package stats

import (
	"fmt"
	"math"

	"clusterperm/domain/core"
)

// IndependentT compares the means of exactly two independent groups per
// location using Welch's unequal-variance t. The sign reflects
// group 1 minus group 2.
type IndependentT struct{}

// NewIndependentT creates a two-sample t statistic
func NewIndependentT() *IndependentT {
	return &IndependentT{}
}

// Name returns the statistic name
func (s *IndependentT) Name() string {
	return "independent_t"
}

// Compute returns the per-location Welch t statistic
func (s *IndependentT) Compute(groups [][][]float64) ([]float64, error) {
	if len(groups) != 2 {
		return nil, fmt.Errorf("independent t needs exactly 2 groups, got %d", len(groups))
	}
	a, b := groups[0], groups[1]
	if len(a) < 2 || len(b) < 2 {
		return nil, core.ErrTooFewObservations
	}
	nLoc := len(a[0])
	out := make([]float64, nLoc)
	n1 := float64(len(a))
	n2 := float64(len(b))

	for j := 0; j < nLoc; j++ {
		mean1, var1 := meanVarAt(a, j)
		mean2, var2 := meanVarAt(b, j)

		// Welch's t: (mean1 - mean2) / sqrt(var1/n1 + var2/n2)
		se := math.Sqrt(var1/n1 + var2/n2)
		out[j] = (mean1 - mean2) / se
	}
	return out, nil
}

// meanVarAt computes mean and sample variance of one location column
func meanVarAt(obs [][]float64, j int) (float64, float64) {
	n := float64(len(obs))
	sum := 0.0
	for i := range obs {
		sum += obs[i][j]
	}
	mean := sum / n

	sumSq := 0.0
	for i := range obs {
		d := obs[i][j] - mean
		sumSq += d * d
	}
	return mean, sumSq / (n - 1)
}
