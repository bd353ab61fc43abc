package memory

import (
	"context"
	"testing"
	"time"

	"clusterperm/domain/cluster"
	"clusterperm/domain/core"
)

func record(id string, createdAt time.Time) *cluster.RunRecord {
	return &cluster.RunRecord{
		ID:        core.RunID(id),
		Method:    "one_sample",
		Statistic: "one_sample_t",
		CreatedAt: core.NewTimestamp(createdAt),
	}
}

func TestRunRepository_SaveAndGet(t *testing.T) {
	repo := NewRunRepository()
	ctx := context.Background()

	rec := record("run-1", time.Now())
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ID != "run-1" || got.Method != "one_sample" {
		t.Errorf("got %+v", got)
	}

	if _, err := repo.GetByID(ctx, "missing"); !core.IsNotFoundError(err) {
		t.Errorf("missing run: err = %v, want not-found", err)
	}
}

func TestRunRepository_ListNewestFirst(t *testing.T) {
	repo := NewRunRepository()
	ctx := context.Background()
	base := time.Now()

	repo.Save(ctx, record("old", base.Add(-2*time.Hour)))
	repo.Save(ctx, record("mid", base.Add(-1*time.Hour)))
	repo.Save(ctx, record("new", base))

	got, err := repo.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 3 || got[0].ID != "new" || got[2].ID != "old" {
		ids := make([]core.RunID, len(got))
		for i, r := range got {
			ids[i] = r.ID
		}
		t.Errorf("order = %v, want [new mid old]", ids)
	}

	page, _ := repo.List(ctx, 1, 1)
	if len(page) != 1 || page[0].ID != "mid" {
		t.Errorf("pagination returned %+v, want [mid]", page)
	}

	empty, _ := repo.List(ctx, 10, 99)
	if len(empty) != 0 {
		t.Errorf("offset past end returned %d records", len(empty))
	}
}

func TestRunRepository_Delete(t *testing.T) {
	repo := NewRunRepository()
	ctx := context.Background()

	repo.Save(ctx, record("run-1", time.Now()))
	if err := repo.Delete(ctx, "run-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.GetByID(ctx, "run-1"); !core.IsNotFoundError(err) {
		t.Error("record survived deletion")
	}
	if err := repo.Delete(ctx, "run-1"); !core.IsNotFoundError(err) {
		t.Errorf("double delete: err = %v, want not-found", err)
	}
}
