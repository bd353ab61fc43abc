package clustering

import (
	"fmt"
	"math"

	"clusterperm/domain/cluster"
	"clusterperm/domain/core"
	"clusterperm/internal/adjacency"
)

// TFCEParams configures threshold-free cluster enhancement. Instead of one
// hard threshold, cluster mass is integrated over height increments: each
// location accumulates Step * extent^E * height^H for every height level at
// which it belongs to a cluster.
type TFCEParams struct {
	Start float64 `json:"start"` // first height level
	Step  float64 `json:"step"`  // height increment
	H     float64 `json:"h"`     // height exponent
	E     float64 `json:"e"`     // extent exponent
}

// DefaultTFCEParams returns the conventional exponents (H=2, E=0.5)
func DefaultTFCEParams() TFCEParams {
	return TFCEParams{Start: 0, Step: 0.2, H: 2, E: 0.5}
}

// Validate checks the parameter ranges
func (p TFCEParams) Validate() error {
	if p.Step <= 0 {
		return fmt.Errorf("%w: TFCE step must be positive, got %v", core.ErrInvalidThreshold, p.Step)
	}
	if p.Start < 0 {
		return fmt.Errorf("%w: TFCE start must be non-negative, got %v", core.ErrInvalidThreshold, p.Start)
	}
	if p.H < 0 || p.E < 0 {
		return fmt.Errorf("%w: TFCE exponents must be non-negative, got H=%v E=%v", core.ErrInvalidThreshold, p.H, p.E)
	}
	return nil
}

// Enhance computes the per-location TFCE score for the requested tail(s).
// Positive-tail mass accumulates positively, negative-tail mass negatively,
// so scores keep directionality the way signed cluster sums do. Integration
// stops at the largest finite statistic magnitude; +/-Inf locations simply
// participate at every level.
func Enhance(stat []float64, adj *adjacency.Adjacency, p TFCEParams, tail cluster.Tail) []float64 {
	scores := make([]float64, len(stat))
	former := NewFormer(adj, 0)

	limit := maxFiniteAbs(stat)
	for h := p.Start; h < limit; h += p.Step {
		weight := p.Step * math.Pow(h, p.H)
		if tail != cluster.TailLeft {
			for _, c := range former.Form(stat, h, cluster.TailRight) {
				mass := weight * math.Pow(float64(len(c.Indices)), p.E)
				for _, i := range c.Indices {
					scores[i] += mass
				}
			}
		}
		if tail != cluster.TailRight {
			for _, c := range former.Form(stat, h, cluster.TailLeft) {
				mass := weight * math.Pow(float64(len(c.Indices)), p.E)
				for _, i := range c.Indices {
					scores[i] -= mass
				}
			}
		}
	}
	return scores
}

// maxFiniteAbs returns the largest finite absolute value, ignoring NaN/Inf
func maxFiniteAbs(stat []float64) float64 {
	limit := 0.0
	for _, v := range stat {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if a := math.Abs(v); a > limit {
			limit = a
		}
	}
	return limit
}
