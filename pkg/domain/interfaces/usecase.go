package interfaces

import (
	"context"

	"github.com/itam-hack/checkpoint/pkg/domain/model"
)

// WebhookUseCase defines the interface for webhook event processing
type WebhookUseCase interface {
	// ProcessEvent evaluates trigger rules and dispatches matching runs
	ProcessEvent(ctx context.Context, event *model.WebhookEvent) error
}

// GateUseCase runs the test gate pipeline for a pull request head
type GateUseCase interface {
	RunGate(ctx context.Context, req *GateRequest) (*model.RunRecord, error)
}

// PublishUseCase builds and pushes the container image for a ref
type PublishUseCase interface {
	RunPublish(ctx context.Context, req *PublishRequest) (*model.RunRecord, error)
}

// GateRequest describes one test gate run. Number is zero for manual
// dispatch without an associated pull request; reporting back to GitHub
// is skipped in that case.
type GateRequest struct {
	Repository string
	Ref        string
	Number     int
	Source     model.TriggerSource
}

// PublishRequest describes one publish run. Manual dispatch fills this
// directly; webhook events are translated by the webhook use case.
type PublishRequest struct {
	Repository string
	Ref        string
	Number     int
	Source     model.TriggerSource
}

// FailureAnalyzer annotates a failed run with a human-readable summary
type FailureAnalyzer interface {
	Analyze(ctx context.Context, record *model.RunRecord) (string, error)
}
