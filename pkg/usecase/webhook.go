package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"

	"github.com/itam-hack/checkpoint/pkg/domain/interfaces"
	"github.com/itam-hack/checkpoint/pkg/domain/model"
	"github.com/itam-hack/checkpoint/pkg/utils/async"
)

type webhookUseCase struct {
	gateUC        interfaces.GateUseCase
	publishUC     interfaces.PublishUseCase
	publishBranch string
}

// NewWebhook creates a new instance of WebhookUseCase. Runs are
// dispatched asynchronously so the webhook delivery returns immediately.
func NewWebhook(gateUC interfaces.GateUseCase, publishUC interfaces.PublishUseCase, publishBranch string) interfaces.WebhookUseCase {
	return &webhookUseCase{
		gateUC:        gateUC,
		publishUC:     publishUC,
		publishBranch: publishBranch,
	}
}

// ProcessEvent evaluates trigger rules for the event and dispatches the
// matching pipeline run. Events that match no rule are acknowledged and
// dropped so GitHub does not retry the delivery.
func (uc *webhookUseCase) ProcessEvent(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx)

	logger.Info("Processing webhook event",
		"id", event.ID,
		"type", event.Type,
		"action", event.Action,
		"repository", event.Repository,
		"sender", event.Sender,
		"merged", event.Merged,
	)

	switch {
	case event.TriggersGate():
		req := &interfaces.GateRequest{
			Repository: event.Repository,
			Ref:        event.HeadSHA,
			Number:     event.Number,
			Source:     model.SourcePullRequest,
		}
		async.Dispatch(ctx, func(ctx context.Context) error {
			_, err := uc.gateUC.RunGate(ctx, req)
			return err
		})

	case event.TriggersPublish(uc.publishBranch):
		req := &interfaces.PublishRequest{
			Repository: event.Repository,
			Ref:        event.PublishRef(),
			Number:     event.Number,
			Source:     publishSource(event),
		}
		async.Dispatch(ctx, func(ctx context.Context) error {
			_, err := uc.publishUC.RunPublish(ctx, req)
			return err
		})

	default:
		logger.Info("Event matches no trigger, ignoring",
			"type", event.Type,
			"action", event.Action,
		)
	}

	return nil
}

func publishSource(event *model.WebhookEvent) model.TriggerSource {
	if event.Type == model.EventTypePush {
		return model.SourcePush
	}
	return model.SourcePullRequest
}
