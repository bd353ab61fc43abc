package permutation

import (
	"math"
	"testing"

	"clusterperm/domain/cluster"
)

func TestPValues_Directional(t *testing.T) {
	h0 := []float64{5, 0, 0, -3, 2, 0, 0, -6}

	clusters := []cluster.Cluster{
		{Indices: []int{0}, Sign: 1, Score: 5},
		{Indices: []int{1}, Sign: 1, Score: 2},
		{Indices: []int{2}, Sign: -1, Score: -3},
		{Indices: []int{3}, Sign: -1, Score: -10},
	}

	got := PValues(clusters, h0)
	want := []float64{
		1.0 / 8, // only 5 itself is >= 5
		2.0 / 8, // 5 and 2
		2.0 / 8, // -3 and -6
		0.0 / 8, // nothing <= -10
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("p[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPValues_ZeroScoreCountsWholeUpperSide(t *testing.T) {
	// A zero score is treated as non-negative; every non-negative null
	// entry is at least as extreme.
	h0 := []float64{0, 1, -1, 0}
	got := PValues([]cluster.Cluster{{Score: 0}}, h0)
	if got[0] != 0.75 {
		t.Errorf("p = %v, want 0.75", got[0])
	}
}

func TestLocationPValues(t *testing.T) {
	h0 := []float64{4, 1, -2, 0}
	got := LocationPValues([]float64{4, -2, math.NaN()}, h0)

	if got[0] != 0.25 {
		t.Errorf("p for 4 = %v, want 0.25", got[0])
	}
	if got[1] != 0.25 {
		t.Errorf("p for -2 = %v, want 0.25", got[1])
	}
	if got[2] != 1 {
		t.Errorf("p for NaN = %v, want 1", got[2])
	}
}

func TestPValues_MonotoneInScoreMagnitude(t *testing.T) {
	// For a fixed null distribution, a stronger same-direction cluster can
	// never receive a higher p-value than a weaker one.
	h0 := []float64{8, 5.5, 3, 1, -2, -4, 0.5, 2.5, -1, 6}

	scores := []float64{0.5, 1.5, 3, 4.5, 7, 9}
	clusters := make([]cluster.Cluster, len(scores))
	for i, s := range scores {
		clusters[i] = cluster.Cluster{Score: s, Sign: 1}
	}
	ps := PValues(clusters, h0)
	for i := 1; i < len(ps); i++ {
		if ps[i] > ps[i-1] {
			t.Errorf("p rose with score: score %v -> p %v, score %v -> p %v",
				scores[i-1], ps[i-1], scores[i], ps[i])
		}
	}

	for i, s := range scores {
		clusters[i] = cluster.Cluster{Score: -s, Sign: -1}
	}
	ps = PValues(clusters, h0)
	for i := 1; i < len(ps); i++ {
		if ps[i] > ps[i-1] {
			t.Errorf("negative tail: p rose with magnitude at step %d: %v", i, ps)
		}
	}
}

func TestPValues_InfScores(t *testing.T) {
	h0 := []float64{math.Inf(1), 0, math.Inf(-1), 0}
	got := PValues([]cluster.Cluster{
		{Score: math.Inf(1)},
		{Score: math.Inf(-1)},
	}, h0)

	if got[0] != 0.25 {
		t.Errorf("p for +Inf = %v, want 0.25", got[0])
	}
	if got[1] != 0.25 {
		t.Errorf("p for -Inf = %v, want 0.25", got[1])
	}
}
