package permutation

import (
	"math/rand"
)

// design produces the group arrangement for each permutation index.
// Index 0 is always the identity (observed) arrangement.
type design interface {
	// count returns the total number of permutations including the identity
	count() int

	// exhaustive reports whether the full permutation space is enumerated
	exhaustive() bool

	// materialize builds the groups for one permutation index. rng is the
	// per-index stream; implementations that pre-draw their randomness may
	// ignore it. scratch is worker-owned reusable storage.
	materialize(index int, rng *rand.Rand, sc *scratch) [][][]float64

	// nObs and nGroups size the scratch buffers workers allocate
	nObs() int
	nGroups() int
}

// scratch holds worker-local buffers so materialization does not allocate
// per permutation.
type scratch struct {
	rows   [][]float64 // negation buffers for sign flips
	groups [][][]float64
	order  []int
}

func newScratch(nObs, nLoc, nGroups int) *scratch {
	rows := make([][]float64, nObs)
	for i := range rows {
		rows[i] = make([]float64, nLoc)
	}
	return &scratch{
		rows:   rows,
		groups: make([][][]float64, nGroups),
		order:  make([]int, nObs),
	}
}

// signFlipDesign implements the one-sample design: each permutation flips
// the sign of a subset of observations. When the full space 2^n fits within
// the requested count it is enumerated exactly; otherwise sign patterns are
// sampled, deduplicated best-effort against previously drawn patterns.
type signFlipDesign struct {
	obs     [][]float64
	total   int
	exhaust bool
	masks   []uint64 // sampled patterns; nil when exhaustive or n > 62
}

func newSignFlipDesign(obs [][]float64, requested int, masterRNG *rand.Rand) *signFlipDesign {
	n := len(obs)
	d := &signFlipDesign{obs: obs}

	if n <= 62 && (uint64(1)<<uint(n)) <= uint64(requested) {
		d.exhaust = true
		d.total = 1 << uint(n)
		return d
	}

	d.total = requested
	if n > 62 {
		// Pattern space too large for mask bookkeeping; draw bits from the
		// per-index stream in materialize instead.
		return d
	}

	space := uint64(1) << uint(n)
	seen := make(map[uint64]struct{}, requested)
	seen[0] = struct{}{}
	masks := make([]uint64, requested)
	for i := 1; i < requested; i++ {
		mask := masterRNG.Uint64() & (space - 1)
		for attempt := 0; attempt < 100; attempt++ {
			if _, dup := seen[mask]; !dup {
				break
			}
			mask = masterRNG.Uint64() & (space - 1)
		}
		seen[mask] = struct{}{}
		masks[i] = mask
	}
	d.masks = masks
	return d
}

func (d *signFlipDesign) count() int       { return d.total }
func (d *signFlipDesign) exhaustive() bool { return d.exhaust }
func (d *signFlipDesign) nObs() int        { return len(d.obs) }
func (d *signFlipDesign) nGroups() int     { return 1 }

func (d *signFlipDesign) materialize(index int, rng *rand.Rand, sc *scratch) [][][]float64 {
	group := sc.groups[:1]
	if group[0] == nil {
		group[0] = make([][]float64, len(d.obs))
	}
	rows := group[0]

	flip := func(i int) bool { return false }
	switch {
	case index == 0:
		// identity
	case d.exhaust || d.masks != nil:
		mask := uint64(index)
		if d.masks != nil {
			mask = d.masks[index]
		}
		flip = func(i int) bool { return mask&(1<<uint(i)) != 0 }
	default:
		// n > 62: flip each observation with probability 0.5
		bits := make([]bool, len(d.obs))
		for i := range bits {
			bits[i] = rng.Float64() < 0.5
		}
		flip = func(i int) bool { return bits[i] }
	}

	for i, row := range d.obs {
		if !flip(i) {
			rows[i] = row
			continue
		}
		buf := sc.rows[i]
		for j, v := range row {
			buf[j] = -v
		}
		rows[i] = buf
	}
	return group
}

// labelShuffleDesign implements the independent-samples design: each
// permutation reassigns pooled observations to groups while preserving the
// original group sizes. Rows are shared by reference; nothing is copied.
type labelShuffleDesign struct {
	pooled [][]float64
	sizes  []int
	total  int
}

func newLabelShuffleDesign(groups [][][]float64, requested int) *labelShuffleDesign {
	d := &labelShuffleDesign{total: requested}
	for _, g := range groups {
		d.sizes = append(d.sizes, len(g))
		d.pooled = append(d.pooled, g...)
	}
	return d
}

func (d *labelShuffleDesign) count() int       { return d.total }
func (d *labelShuffleDesign) exhaustive() bool { return false }
func (d *labelShuffleDesign) nObs() int        { return len(d.pooled) }
func (d *labelShuffleDesign) nGroups() int     { return len(d.sizes) }

func (d *labelShuffleDesign) materialize(index int, rng *rand.Rand, sc *scratch) [][][]float64 {
	order := sc.order
	for i := range order {
		order[i] = i
	}
	if index != 0 {
		// Fisher-Yates over the pooled observation order
		for i := len(order) - 1; i > 0; i-- {
			j := rng.Intn(i + 1)
			order[i], order[j] = order[j], order[i]
		}
	}

	groups := sc.groups[:len(d.sizes)]
	at := 0
	for g, size := range d.sizes {
		if groups[g] == nil {
			groups[g] = make([][]float64, size)
		}
		rows := groups[g]
		for i := 0; i < size; i++ {
			rows[i] = d.pooled[order[at]]
			at++
		}
	}
	return groups
}
