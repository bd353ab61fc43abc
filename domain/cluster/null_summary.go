package cluster

import (
	"math"

	"github.com/montanaflynn/stats"
)

// NullSummary describes the empirical null distribution of the maximum
// cluster statistic, for reporting and persistence.
type NullSummary struct {
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Percentile95 float64 `json:"percentile_95"`
	Percentile99 float64 `json:"percentile_99"`
}

// SummarizeNull reduces H0 to its summary statistics
func SummarizeNull(h0 []float64) NullSummary {
	if len(h0) == 0 {
		return NullSummary{}
	}
	mean, _ := stats.Mean(h0)
	stdDev, _ := stats.StandardDeviationSample(h0)
	min, _ := stats.Min(h0)
	max, _ := stats.Max(h0)
	p95, _ := stats.Percentile(h0, 95)
	p99, _ := stats.Percentile(h0, 99)
	if math.IsNaN(stdDev) {
		stdDev = 0
	}
	return NullSummary{
		Mean:         mean,
		StdDev:       stdDev,
		Min:          min,
		Max:          max,
		Percentile95: p95,
		Percentile99: p99,
	}
}
