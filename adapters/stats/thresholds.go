package stats

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"

	"clusterperm/domain/cluster"
)

// TThreshold returns the positive cluster-forming threshold magnitude for a
// t statistic at the given per-location alpha. Two-tailed requests split
// alpha across both tails; the cluster former applies the sign per tail.
func TThreshold(df float64, alpha float64, tail cluster.Tail) (float64, error) {
	if df <= 0 {
		return 0, fmt.Errorf("t threshold needs positive degrees of freedom, got %v", df)
	}
	if alpha <= 0 || alpha >= 1 {
		return 0, fmt.Errorf("alpha must be in (0, 1), got %v", alpha)
	}
	if !tail.Valid() {
		return 0, fmt.Errorf("invalid tail %d", int(tail))
	}
	p := alpha
	if tail == cluster.TailBoth {
		p = alpha / 2
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return dist.Quantile(1 - p), nil
}

// FThreshold returns the cluster-forming threshold for a one-way F statistic
// at the given per-location alpha. F tests are right-tailed by construction.
func FThreshold(dfBetween, dfWithin float64, alpha float64) (float64, error) {
	if dfBetween <= 0 || dfWithin <= 0 {
		return 0, fmt.Errorf("F threshold needs positive degrees of freedom, got (%v, %v)", dfBetween, dfWithin)
	}
	if alpha <= 0 || alpha >= 1 {
		return 0, fmt.Errorf("alpha must be in (0, 1), got %v", alpha)
	}
	dist := distuv.F{D1: dfBetween, D2: dfWithin}
	return dist.Quantile(1 - alpha), nil
}
