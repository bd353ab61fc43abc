package app

import (
	"context"

	"clusterperm/adapters/stats"
	"clusterperm/domain/cluster"
	"clusterperm/domain/core"
	"clusterperm/domain/field"
	"clusterperm/internal"
	"clusterperm/internal/permutation"
	"clusterperm/ports"
)

// ClusterService is the public call contract for permutation cluster
// testing. It owns the engine, resolves statistic defaults, and optionally
// persists finished runs through a repository.
type ClusterService struct {
	engine *permutation.Engine
	repo   ports.RunRepository // nil disables persistence
	log    *internal.Logger
}

// NewClusterService creates the service; repo may be nil
func NewClusterService(repo ports.RunRepository) *ClusterService {
	return &ClusterService{
		engine: permutation.NewEngine(),
		repo:   repo,
		log:    internal.DefaultLogger.Named("ClusterService"),
	}
}

// PermutationCluster1SampTest runs the one-sample (sign-flip) cluster test
// of a single group against zero or the statistic's population mean.
func (s *ClusterService) PermutationCluster1SampTest(ctx context.Context, g *field.Group, opts permutation.Options) (*cluster.Result, error) {
	if opts.Statistic == nil {
		opts.Statistic = stats.NewOneSampleT()
	}
	res, err := s.engine.RunOneSample(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	s.persist(ctx, res, "one_sample", opts, [][][]float64{g.Obs})
	return res, nil
}

// PermutationClusterTest runs the independent-samples (label-shuffle)
// cluster test across two or more groups.
func (s *ClusterService) PermutationClusterTest(ctx context.Context, groups []*field.Group, opts permutation.Options) (*cluster.Result, error) {
	if opts.Statistic == nil {
		opts.Statistic = stats.NewFOneway()
	}
	res, err := s.engine.RunIndependent(ctx, groups, opts)
	if err != nil {
		return nil, err
	}
	raw := make([][][]float64, len(groups))
	for i, g := range groups {
		raw[i] = g.Obs
	}
	s.persist(ctx, res, "independent", opts, raw)
	return res, nil
}

// persist stores the finished run when a repository is configured. Storage
// failure never invalidates a computed result; it is logged and dropped.
func (s *ClusterService) persist(ctx context.Context, res *cluster.Result, method string, opts permutation.Options, raw [][][]float64) {
	if s.repo == nil {
		return
	}
	record := cluster.NewRunRecord(res, method, opts.Statistic.Name(), opts.Tail, opts.Threshold,
		core.ComputeDataFingerprint(raw))
	if err := s.repo.Save(ctx, record); err != nil {
		s.log.Warn("failed to persist run %s: %v", res.RunID, err)
	}
}
