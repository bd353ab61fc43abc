package memory

import (
	"context"
	"sort"
	"sync"

	"clusterperm/domain/cluster"
	"clusterperm/domain/core"
	"clusterperm/ports"
)

// RunRepositoryImpl keeps run records in process memory. It backs the API
// when no DATABASE_URL is configured and the service tests.
type RunRepositoryImpl struct {
	mu      sync.RWMutex
	records map[core.RunID]*cluster.RunRecord
}

// NewRunRepository creates an empty in-memory run repository
func NewRunRepository() ports.RunRepository {
	return &RunRepositoryImpl{records: make(map[core.RunID]*cluster.RunRecord)}
}

func (r *RunRepositoryImpl) Save(_ context.Context, record *cluster.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.ID] = record
	return nil
}

func (r *RunRepositoryImpl) GetByID(_ context.Context, id core.RunID) (*cluster.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	if !ok {
		return nil, core.ErrRunNotFound
	}
	return record, nil
}

func (r *RunRepositoryImpl) List(_ context.Context, limit, offset int) ([]*cluster.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*cluster.RunRecord, 0, len(r.records))
	for _, record := range r.records {
		all = append(all, record)
	}
	// Newest first, matching the SQL repository
	sort.Slice(all, func(i, j int) bool { return all[j].CreatedAt.Before(all[i].CreatedAt) })

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *RunRepositoryImpl) Delete(_ context.Context, id core.RunID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return core.ErrRunNotFound
	}
	delete(r.records, id)
	return nil
}
