package permutation

import (
	"math/rand"
	"reflect"
	"sort"
	"testing"
)

func TestSignFlipDesign_ExhaustiveSwitch(t *testing.T) {
	obs := [][]float64{{1}, {2}, {3}}
	master := rand.New(rand.NewSource(1))

	d := newSignFlipDesign(obs, 1024, master)
	if !d.exhaustive() || d.count() != 8 {
		t.Errorf("n=3, requested 1024: exhaustive=%v count=%d, want true/8", d.exhaustive(), d.count())
	}

	d = newSignFlipDesign(obs, 5, master)
	if d.exhaustive() || d.count() != 5 {
		t.Errorf("n=3, requested 5: exhaustive=%v count=%d, want false/5", d.exhaustive(), d.count())
	}
}

func TestSignFlipDesign_IdentityAndFlips(t *testing.T) {
	obs := [][]float64{{1, 2}, {3, 4}}
	d := newSignFlipDesign(obs, 100, rand.New(rand.NewSource(1)))
	sc := newScratch(d.nObs(), 2, d.nGroups())

	got := d.materialize(0, nil, sc)
	if len(got) != 1 || !reflect.DeepEqual(got[0][0], []float64{1, 2}) || !reflect.DeepEqual(got[0][1], []float64{3, 4}) {
		t.Fatalf("identity arrangement altered the data: %v", got)
	}

	// Exhaustive indices are bit masks: index 1 flips observation 0 only
	got = d.materialize(1, nil, sc)
	if !reflect.DeepEqual(got[0][0], []float64{-1, -2}) {
		t.Errorf("index 1 row 0 = %v, want negated", got[0][0])
	}
	if !reflect.DeepEqual(got[0][1], []float64{3, 4}) {
		t.Errorf("index 1 row 1 = %v, want unchanged", got[0][1])
	}

	got = d.materialize(3, nil, sc)
	if !reflect.DeepEqual(got[0][0], []float64{-1, -2}) || !reflect.DeepEqual(got[0][1], []float64{-3, -4}) {
		t.Errorf("index 3 should negate both rows: %v", got[0])
	}
}

func TestSignFlipDesign_SourceDataUntouched(t *testing.T) {
	obs := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	d := newSignFlipDesign(obs, 100, rand.New(rand.NewSource(2)))
	sc := newScratch(d.nObs(), 2, d.nGroups())

	for i := 0; i < d.count(); i++ {
		d.materialize(i, nil, sc)
	}
	if !reflect.DeepEqual(obs, [][]float64{{1, 2}, {3, 4}, {5, 6}}) {
		t.Errorf("materialization mutated the source data: %v", obs)
	}
}

func TestSignFlipDesign_SampledMasksMostlyDistinct(t *testing.T) {
	obs := make([][]float64, 20)
	for i := range obs {
		obs[i] = []float64{float64(i)}
	}
	d := newSignFlipDesign(obs, 500, rand.New(rand.NewSource(3)))
	if d.masks == nil {
		t.Fatal("expected sampled masks for n=20")
	}
	if d.masks[0] != 0 {
		t.Errorf("masks[0] = %d, want identity 0", d.masks[0])
	}

	seen := make(map[uint64]int)
	for _, m := range d.masks {
		seen[m]++
	}
	// Dedup is best-effort; with 2^20 patterns and 500 draws collisions
	// should be absent or nearly so.
	if len(seen) < 490 {
		t.Errorf("only %d distinct masks of 500", len(seen))
	}
}

func TestLabelShuffleDesign_PreservesSizesAndRows(t *testing.T) {
	a := [][]float64{{1}, {2}, {3}}
	b := [][]float64{{4}, {5}}
	d := newLabelShuffleDesign([][][]float64{a, b}, 50)
	sc := newScratch(d.nObs(), 1, d.nGroups())

	// Identity keeps the original assignment
	got := d.materialize(0, nil, sc)
	if !reflect.DeepEqual(got[0][0], []float64{1}) || !reflect.DeepEqual(got[1][0], []float64{4}) {
		t.Fatalf("identity arrangement altered group membership: %v", got)
	}

	rng := rand.New(rand.NewSource(9))
	got = d.materialize(7, rng, sc)
	if len(got) != 2 || len(got[0]) != 3 || len(got[1]) != 2 {
		t.Fatalf("group sizes not preserved: %d/%d", len(got[0]), len(got[1]))
	}

	// The pooled multiset of values must survive any shuffle
	var values []float64
	for _, g := range got {
		for _, row := range g {
			values = append(values, row[0])
		}
	}
	sort.Float64s(values)
	if !reflect.DeepEqual(values, []float64{1, 2, 3, 4, 5}) {
		t.Errorf("pooled values = %v, want 1..5", values)
	}
}

func TestLabelShuffleDesign_DeterministicPerStream(t *testing.T) {
	a := [][]float64{{1}, {2}, {3}, {4}}
	b := [][]float64{{5}, {6}, {7}}
	d := newLabelShuffleDesign([][][]float64{a, b}, 50)

	arrangement := func() [][]float64 {
		sc := newScratch(d.nObs(), 1, d.nGroups())
		groups := d.materialize(3, rand.New(rand.NewSource(77)), sc)
		var flat [][]float64
		for _, g := range groups {
			flat = append(flat, g...)
		}
		return flat
	}

	if !reflect.DeepEqual(arrangement(), arrangement()) {
		t.Error("same stream produced different arrangements")
	}
}
