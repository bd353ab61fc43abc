package stats

import (
	"errors"
	"math"
	"testing"

	"clusterperm/domain/cluster"
	"clusterperm/domain/core"
)

func col(values ...float64) [][]float64 {
	out := make([][]float64, len(values))
	for i, v := range values {
		out[i] = []float64{v}
	}
	return out
}

func TestOneSampleT_KnownValue(t *testing.T) {
	// mean 3, sd sqrt(2.5), n 5 -> t = 3 / (sd/sqrt(5)) = 4.2426
	s := NewOneSampleT()
	out, err := s.Compute([][][]float64{col(1, 2, 3, 4, 5)})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	want := 3.0 / (math.Sqrt(2.5) / math.Sqrt(5))
	if math.Abs(out[0]-want) > 1e-12 {
		t.Errorf("t = %v, want %v", out[0], want)
	}
}

func TestOneSampleT_PopMean(t *testing.T) {
	s := &OneSampleT{PopMean: 3}
	out, err := s.Compute([][][]float64{col(1, 2, 3, 4, 5)})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if math.Abs(out[0]) > 1e-12 {
		t.Errorf("t against own mean = %v, want 0", out[0])
	}
}

func TestOneSampleT_ZeroVariance(t *testing.T) {
	s := NewOneSampleT()

	out, err := s.Compute([][][]float64{col(2, 2, 2)})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if !math.IsInf(out[0], 1) {
		t.Errorf("constant positive data: t = %v, want +Inf", out[0])
	}

	out, err = s.Compute([][][]float64{col(0, 0, 0)})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if !math.IsNaN(out[0]) {
		t.Errorf("constant zero data: t = %v, want NaN", out[0])
	}
}

func TestOneSampleT_InputValidation(t *testing.T) {
	s := NewOneSampleT()
	if _, err := s.Compute([][][]float64{col(1)}); !errors.Is(err, core.ErrTooFewObservations) {
		t.Errorf("single observation: err = %v, want ErrTooFewObservations", err)
	}
	if _, err := s.Compute([][][]float64{col(1, 2), col(3, 4)}); err == nil {
		t.Error("two groups accepted, want error")
	}
}

func TestIndependentT_KnownValue(t *testing.T) {
	// means 2 and 5, both variances 1, n 3 each:
	// t = -3 / sqrt(1/3 + 1/3) = -3.6742
	s := NewIndependentT()
	out, err := s.Compute([][][]float64{col(1, 2, 3), col(4, 5, 6)})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	want := -3.0 / math.Sqrt(2.0/3.0)
	if math.Abs(out[0]-want) > 1e-12 {
		t.Errorf("t = %v, want %v", out[0], want)
	}
}

func TestFOneway_MatchesSquaredT(t *testing.T) {
	// For 2 groups, one-way F equals the pooled-variance t squared
	f := NewFOneway()
	out, err := f.Compute([][][]float64{col(1, 2, 3), col(4, 5, 6)})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if math.Abs(out[0]-13.5) > 1e-12 {
		t.Errorf("F = %v, want 13.5", out[0])
	}
}

func TestFOneway_DegreesOfFreedom(t *testing.T) {
	f := NewFOneway()
	dfB, dfW := f.DegreesOfFreedom([]int{5, 7, 4})
	if dfB != 2 || dfW != 13 {
		t.Errorf("df = (%v, %v), want (2, 13)", dfB, dfW)
	}
}

func TestTThreshold(t *testing.T) {
	tests := []struct {
		name  string
		df    float64
		alpha float64
		tail  cluster.Tail
		want  float64
	}{
		{"two-tailed df=10", 10, 0.05, cluster.TailBoth, 2.2281},
		{"right-tailed df=10", 10, 0.05, cluster.TailRight, 1.8125},
		{"left-tailed df=10", 10, 0.05, cluster.TailLeft, 1.8125},
		{"two-tailed df=30", 30, 0.05, cluster.TailBoth, 2.0423},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TThreshold(tt.df, tt.alpha, tt.tail)
			if err != nil {
				t.Fatalf("TThreshold failed: %v", err)
			}
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("threshold = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := TThreshold(0, 0.05, cluster.TailBoth); err == nil {
		t.Error("df=0 accepted, want error")
	}
	if _, err := TThreshold(10, 1.5, cluster.TailBoth); err == nil {
		t.Error("alpha=1.5 accepted, want error")
	}
}

func TestFThreshold(t *testing.T) {
	got, err := FThreshold(1, 10, 0.05)
	if err != nil {
		t.Fatalf("FThreshold failed: %v", err)
	}
	if math.Abs(got-4.9646) > 0.001 {
		t.Errorf("threshold = %v, want 4.9646", got)
	}

	// F(1, df) quantile is the square of the two-tailed t(df) quantile
	tThr, _ := TThreshold(10, 0.05, cluster.TailBoth)
	if math.Abs(got-tThr*tThr) > 1e-6 {
		t.Errorf("F(1,10) = %v, want t(10)^2 = %v", got, tThr*tThr)
	}
}
