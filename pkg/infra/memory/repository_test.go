package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/itam-hack/checkpoint/pkg/domain/model"
	"github.com/itam-hack/checkpoint/pkg/infra/memory"
)

func TestRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Put and Get round trip", func(t *testing.T) {
		repo := memory.New()
		record := &model.RunRecord{
			ID:         "run-1",
			Kind:       model.TriggerGate,
			Repository: "itam-hack/service",
			Status:     model.StatusRunning,
			Steps: []model.StepResult{
				{Name: "install-deps", Status: model.StatusSucceeded},
			},
			StartedAt: time.Now(),
		}
		gt.NoError(t, repo.Put(ctx, record))

		got, err := repo.Get(ctx, "run-1")
		gt.NoError(t, err)
		gt.NotNil(t, got)
		gt.V(t, got.Repository).Equal("itam-hack/service")
		gt.V(t, len(got.Steps)).Equal(1)
	})

	t.Run("Get returns nil for unknown ID", func(t *testing.T) {
		repo := memory.New()
		got, err := repo.Get(ctx, "missing")
		gt.NoError(t, err)
		gt.Value(t, got).Nil()
	})

	t.Run("Stored record is isolated from the caller", func(t *testing.T) {
		repo := memory.New()
		record := &model.RunRecord{ID: "run-1", Status: model.StatusRunning}
		gt.NoError(t, repo.Put(ctx, record))

		record.Status = model.StatusFailed
		got, err := repo.Get(ctx, "run-1")
		gt.NoError(t, err)
		gt.V(t, got.Status).Equal(model.StatusRunning)
	})

	t.Run("List is newest first and honors limit", func(t *testing.T) {
		repo := memory.New()
		base := time.Now()
		for i, id := range []string{"oldest", "middle", "newest"} {
			gt.NoError(t, repo.Put(ctx, &model.RunRecord{
				ID:        id,
				StartedAt: base.Add(time.Duration(i) * time.Minute),
			}))
		}

		records, err := repo.List(ctx, 2)
		gt.NoError(t, err)
		gt.V(t, len(records)).Equal(2)
		gt.V(t, records[0].ID).Equal("newest")
		gt.V(t, records[1].ID).Equal("middle")
	})
}
