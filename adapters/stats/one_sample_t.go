package stats

import (
	"fmt"
	"math"

	"clusterperm/domain/core"
)

// OneSampleT tests each location's values against a population mean.
// Degrees of freedom = n_observations - 1.
type OneSampleT struct {
	PopMean float64 // tested-against value, zero by default
}

// NewOneSampleT creates a one-sample t statistic against zero
func NewOneSampleT() *OneSampleT {
	return &OneSampleT{}
}

// Name returns the statistic name
func (s *OneSampleT) Name() string {
	return "one_sample_t"
}

// Compute returns the per-location t statistic for a single group.
// Zero-variance locations yield +/-Inf (non-zero mean) or NaN (zero mean);
// downstream cluster formation treats NaN as below threshold.
func (s *OneSampleT) Compute(groups [][][]float64) ([]float64, error) {
	if len(groups) != 1 {
		return nil, fmt.Errorf("one-sample t needs exactly 1 group, got %d", len(groups))
	}
	obs := groups[0]
	n := len(obs)
	if n < 2 {
		return nil, core.ErrTooFewObservations
	}
	nLoc := len(obs[0])
	out := make([]float64, nLoc)
	sqrtN := math.Sqrt(float64(n))

	for j := 0; j < nLoc; j++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += obs[i][j] - s.PopMean
		}
		mean := sum / float64(n)

		sumSq := 0.0
		for i := 0; i < n; i++ {
			d := obs[i][j] - s.PopMean - mean
			sumSq += d * d
		}
		sd := math.Sqrt(sumSq / float64(n-1))

		out[j] = mean / (sd / sqrtN)
	}
	return out, nil
}
