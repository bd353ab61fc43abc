package ports

import (
	"context"

	"clusterperm/domain/cluster"
	"clusterperm/domain/core"
)

// RunRepository persists completed run records. The statistical core never
// touches storage; cmd and api surfaces wire a repository when configured.
type RunRepository interface {
	Save(ctx context.Context, record *cluster.RunRecord) error
	GetByID(ctx context.Context, id core.RunID) (*cluster.RunRecord, error)
	List(ctx context.Context, limit, offset int) ([]*cluster.RunRecord, error)
	Delete(ctx context.Context, id core.RunID) error
}
