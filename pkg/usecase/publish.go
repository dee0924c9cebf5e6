package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/itam-hack/checkpoint/pkg/domain/interfaces"
	"github.com/itam-hack/checkpoint/pkg/domain/model"
	"github.com/itam-hack/checkpoint/pkg/pipeline"
)

type publishUseCase struct {
	githubClient  interfaces.GitHubClient
	runner        interfaces.Runner
	definition    *pipeline.Definition
	repo          interfaces.RunRepository
	image         model.ImageRef
	registryToken string
	archive       interfaces.LogArchive
	notifier      interfaces.Notifier
}

// PublishOption configures optional collaborators of the publish use case
type PublishOption func(*publishUseCase)

// WithPublishArchive enables log archiving
func WithPublishArchive(archive interfaces.LogArchive) PublishOption {
	return func(uc *publishUseCase) {
		uc.archive = archive
	}
}

// WithPublishNotifier enables run notifications
func WithPublishNotifier(notifier interfaces.Notifier) PublishOption {
	return func(uc *publishUseCase) {
		uc.notifier = notifier
	}
}

// NewPublish creates the build-and-publish use case
func NewPublish(
	githubClient interfaces.GitHubClient,
	runner interfaces.Runner,
	definition *pipeline.Definition,
	repo interfaces.RunRepository,
	image model.ImageRef,
	registryToken string,
	opts ...PublishOption,
) interfaces.PublishUseCase {
	uc := &publishUseCase{
		githubClient:  githubClient,
		runner:        runner,
		definition:    definition,
		repo:          repo,
		image:         image,
		registryToken: registryToken,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// RunPublish checks out the requested ref, logs in to the registry,
// builds the image from the repository's build descriptor and pushes it
// under the fixed tag. The local checkout is discarded afterwards; the
// registry holds the only surviving artifact.
func (uc *publishUseCase) RunPublish(ctx context.Context, req *interfaces.PublishRequest) (*model.RunRecord, error) {
	logger := ctxlog.From(ctx)

	record := &model.RunRecord{
		ID:         uuid.NewString(),
		Kind:       model.TriggerPublish,
		Source:     req.Source,
		Repository: req.Repository,
		Ref:        req.Ref,
		Number:     req.Number,
		Image:      uc.image.Tag(),
		Status:     model.StatusRunning,
		StartedAt:  time.Now(),
	}

	if err := uc.image.Validate(); err != nil {
		record.Finish(err)
		uc.saveRecord(ctx, record)
		return record, goerr.Wrap(err, "invalid image reference")
	}
	uc.saveRecord(ctx, record)

	logger.Info("Starting publish run",
		"run_id", record.ID,
		"repository", record.Repository,
		"ref", record.Ref,
		"image", record.Image,
		"source", record.Source,
	)

	owner, repo, found := strings.Cut(req.Repository, "/")
	if !found {
		err := goerr.New("repository must be owner/name", goerr.V("repository", req.Repository))
		record.Finish(err)
		uc.saveRecord(ctx, record)
		return record, err
	}

	checkout, err := checkoutSource(ctx, uc.githubClient, owner, repo, req.Ref)
	if err != nil {
		record.Finish(err)
		uc.saveRecord(ctx, record)
		uc.notify(ctx, record)
		return record, goerr.Wrap(err, "failed to check out source", goerr.V("run_id", record.ID))
	}
	defer cleanupCheckout(ctx, checkout)

	p := uc.definition.PublishPipeline(uc.image, uc.registryToken)
	results, runErr := uc.runner.Run(ctx, checkout.RootDir, p)
	record.Steps = results
	record.Finish(runErr)

	uc.archiveSteps(ctx, record)
	uc.saveRecord(ctx, record)
	uc.notify(ctx, record)

	logger.Info("Publish run finished",
		"run_id", record.ID,
		"status", record.Status,
		"image", record.Image,
	)

	return record, nil
}

func (uc *publishUseCase) saveRecord(ctx context.Context, record *model.RunRecord) {
	if err := uc.repo.Put(ctx, record); err != nil {
		ctxlog.From(ctx).Error("Failed to persist run record",
			"run_id", record.ID,
			"error", err,
		)
	}
}

func (uc *publishUseCase) archiveSteps(ctx context.Context, record *model.RunRecord) {
	if uc.archive == nil {
		return
	}
	for i := range record.Steps {
		step := &record.Steps[i]
		if step.Output == "" {
			continue
		}
		if err := uc.archive.Save(ctx, record.ID, step.Name, []byte(step.Output)); err != nil {
			ctxlog.From(ctx).Warn("Failed to archive step output",
				"run_id", record.ID,
				"step", step.Name,
				"error", err,
			)
		}
	}
}

func (uc *publishUseCase) notify(ctx context.Context, record *model.RunRecord) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.NotifyRun(ctx, record); err != nil {
		ctxlog.From(ctx).Warn("Failed to send notification",
			"run_id", record.ID,
			"error", err,
		)
	}
}
