package interfaces

import (
	"context"

	"github.com/itam-hack/checkpoint/pkg/domain/model"
)

// Runner executes pipeline steps sequentially in a checkout directory.
// Execution stops at the first failing step; remaining steps are
// reported as skipped. The returned error carries the failing step's
// exit status.
type Runner interface {
	Run(ctx context.Context, dir string, pipeline *model.Pipeline) ([]model.StepResult, error)
}

// RunRepository persists run history
type RunRepository interface {
	Put(ctx context.Context, record *model.RunRecord) error
	Get(ctx context.Context, id string) (*model.RunRecord, error)
	List(ctx context.Context, limit int) ([]*model.RunRecord, error)
}

// LogArchive stores full step output outside the run record
type LogArchive interface {
	Save(ctx context.Context, runID, stepName string, output []byte) error
}

// Notifier delivers run outcome notifications
type Notifier interface {
	NotifyRun(ctx context.Context, record *model.RunRecord) error
}
