package permutation

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"clusterperm/adapters/rng"
	"clusterperm/adapters/stats"
	"clusterperm/domain/cluster"
	"clusterperm/domain/core"
	"clusterperm/domain/field"
	"clusterperm/internal"
	"clusterperm/internal/adjacency"
	"clusterperm/internal/clustering"
	"clusterperm/ports"
)

// batchSize is the granularity of work dispatch, progress reporting and
// cancellation checks.
const batchSize = 64

// Options configures one permutation cluster test run
type Options struct {
	// Statistic computes the per-location test statistic; nil selects the
	// default for the design (one-sample t, or one-way F across groups).
	Statistic ports.Statistic

	// Threshold is the cluster-forming magnitude: tail +1 selects
	// statistic > Threshold, tail -1 selects statistic < -Threshold.
	// Ignored when TFCE is set.
	Threshold float64

	// TFCE switches to threshold-free cluster enhancement
	TFCE *clustering.TFCEParams

	Tail cluster.Tail

	// Adjacency over the flattened location space; nil assumes the lattice
	// adjacency of the group shape.
	Adjacency *adjacency.Adjacency

	NumPermutations int
	Seed            int64
	Workers         int // <=0 uses all CPUs
	MinClusterSize  int

	Progress ports.ProgressReporter
	RNG      ports.RNGPort // nil uses the deterministic default adapter
}

// Engine orchestrates permutation cluster tests: observed statistic,
// cluster formation and scoring, the permutation loop building the null
// distribution, and significance evaluation.
type Engine struct {
	log *internal.Logger
}

// NewEngine creates an engine with the default logger
func NewEngine() *Engine {
	return &Engine{log: internal.DefaultLogger}
}

// RunOneSample tests a single group against zero (or the statistic's
// population mean) using the sign-flip design.
func (e *Engine) RunOneSample(ctx context.Context, g *field.Group, opts Options) (*cluster.Result, error) {
	if err := field.ValidateGroups([]*field.Group{g}); err != nil {
		return nil, err
	}
	if opts.Statistic == nil {
		opts.Statistic = stats.NewOneSampleT()
	}
	rngPort, err := e.prepare(&opts, g.Shape)
	if err != nil {
		return nil, err
	}
	master, err := rngPort.SeededStream("sign-flip-masks", opts.Seed)
	if err != nil {
		return nil, err
	}
	d := newSignFlipDesign(g.Obs, opts.NumPermutations, master)
	return e.run(ctx, d, g.Shape, opts, rngPort)
}

// RunIndependent tests two or more independent groups using the
// label-shuffle design.
func (e *Engine) RunIndependent(ctx context.Context, groups []*field.Group, opts Options) (*cluster.Result, error) {
	if len(groups) < 2 {
		return nil, fmt.Errorf("independent test needs at least 2 groups, got %d", len(groups))
	}
	if err := field.ValidateGroups(groups); err != nil {
		return nil, err
	}
	if opts.Statistic == nil {
		opts.Statistic = stats.NewFOneway()
	}
	rngPort, err := e.prepare(&opts, groups[0].Shape)
	if err != nil {
		return nil, err
	}
	raw := make([][][]float64, len(groups))
	for i, g := range groups {
		raw[i] = g.Obs
	}
	d := newLabelShuffleDesign(raw, opts.NumPermutations)
	return e.run(ctx, d, groups[0].Shape, opts, rngPort)
}

// prepare validates shared options and fills defaults
func (e *Engine) prepare(opts *Options, shape []int) (ports.RNGPort, error) {
	if !opts.Tail.Valid() {
		return nil, core.NewTailError(int(opts.Tail))
	}
	if opts.NumPermutations < 1 {
		return nil, fmt.Errorf("%w: got %d", core.ErrInvalidPermutation, opts.NumPermutations)
	}
	if opts.TFCE != nil {
		if err := opts.TFCE.Validate(); err != nil {
			return nil, err
		}
	} else if math.IsNaN(opts.Threshold) || opts.Threshold < 0 {
		// The threshold is a magnitude; direction comes from the tail.
		return nil, fmt.Errorf("%w: got %v", core.ErrInvalidThreshold, opts.Threshold)
	}
	nLoc := field.Size(shape)
	if opts.Adjacency == nil {
		opts.Adjacency = adjacency.Lattice(shape)
	}
	if err := opts.Adjacency.Validate(nLoc); err != nil {
		return nil, err
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.RNG == nil {
		return rng.NewDeterministic(), nil
	}
	return opts.RNG, nil
}

// run executes the observed pass, the permutation loop and the evaluation
func (e *Engine) run(ctx context.Context, d design, shape []int, opts Options, rngPort ports.RNGPort) (*cluster.Result, error) {
	nLoc := field.Size(shape)
	total := d.count()
	former := clustering.NewFormer(opts.Adjacency, opts.MinClusterSize)

	// Observed (identity) pass - permutation index 0
	observedScratch := newScratch(d.nObs(), nLoc, d.nGroups())
	statValues, err := opts.Statistic.Compute(d.materialize(0, nil, observedScratch))
	if err != nil {
		return nil, err
	}
	statField, err := field.FromData(shape, statValues)
	if err != nil {
		return nil, err
	}

	res := &cluster.Result{
		RunID:           core.NewRunID(),
		Statistic:       statField,
		NumPermutations: total,
		Exhaustive:      d.exhaustive(),
		Seed:            opts.Seed,
	}

	h0 := make([]float64, total)
	var tfceScores []float64
	if opts.TFCE != nil {
		tfceScores = clustering.Enhance(statValues, opts.Adjacency, *opts.TFCE, opts.Tail)
		h0[0] = clustering.SignedExtremum(tfceScores)
	} else {
		res.Clusters = former.Form(statValues, opts.Threshold, opts.Tail)
		h0[0] = signedExtremumOf(res.Clusters)
	}

	e.log.Debug("run %s: %d permutations (%d workers, exhaustive=%v)",
		res.RunID, total, opts.Workers, d.exhaustive())

	if err := e.permutationLoop(ctx, d, h0, former, opts, rngPort); err != nil {
		return nil, err
	}

	res.H0 = h0
	if opts.TFCE != nil {
		res.TFCEScores = &field.Field{Shape: statField.Shape, Data: tfceScores}
		res.PValues = LocationPValues(tfceScores, h0)
	} else {
		res.PValues = PValues(res.Clusters, h0)
	}
	return res, nil
}

// permutationLoop fills h0[1:] using a pool of workers. Each worker claims
// contiguous batches of permutation indices, writes its maxima into disjoint
// h0 slots and bumps the shared progress counter between batches. A failing
// worker cancels the group and surfaces its error; a partial H0 is never
// returned.
func (e *Engine) permutationLoop(ctx context.Context, d design, h0 []float64, former *clustering.Former, opts Options, rngPort ports.RNGPort) error {
	total := len(h0)
	if total <= 1 {
		return ctx.Err()
	}

	nLoc := opts.Adjacency.Len()
	var next atomic.Int64
	next.Store(1) // index 0 is the observed arrangement
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < opts.Workers; w++ {
		g.Go(func() error {
			sc := newScratch(d.nObs(), nLoc, d.nGroups())
			for {
				start := int(next.Add(batchSize)) - batchSize
				if start >= total {
					return nil
				}
				end := start + batchSize
				if end > total {
					end = total
				}
				// Cooperative cancellation between batches
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				for i := start; i < end; i++ {
					stream, err := rngPort.PermutationStream(opts.Seed, i)
					if err != nil {
						return err
					}
					statValues, err := opts.Statistic.Compute(d.materialize(i, stream, sc))
					if err != nil {
						return fmt.Errorf("permutation %d: %w", i, err)
					}
					if opts.TFCE != nil {
						scores := clustering.Enhance(statValues, opts.Adjacency, *opts.TFCE, opts.Tail)
						h0[i] = clustering.SignedExtremum(scores)
						continue
					}
					h0[i] = signedExtremumOf(former.Form(statValues, opts.Threshold, opts.Tail))
				}
				completed := done.Add(int64(end - start))
				if opts.Progress != nil {
					opts.Progress.Report(int(completed), total-1)
				}
			}
		})
	}
	return g.Wait()
}

// signedExtremumOf returns the cluster score with the largest magnitude,
// keeping its sign, or 0 when no clusters formed.
func signedExtremumOf(clusters []cluster.Cluster) float64 {
	best := 0.0
	bestAbs := 0.0
	for _, c := range clusters {
		a := c.Score
		if a < 0 {
			a = -a
		}
		if a > bestAbs {
			bestAbs = a
			best = c.Score
		}
	}
	return best
}
