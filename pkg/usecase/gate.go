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
	"github.com/itam-hack/checkpoint/pkg/domain/types"
	"github.com/itam-hack/checkpoint/pkg/pipeline"
)

type gateUseCase struct {
	githubClient  interfaces.GitHubClient
	runner        interfaces.Runner
	definition    *pipeline.Definition
	repo          interfaces.RunRepository
	archive       interfaces.LogArchive
	analyzer      interfaces.FailureAnalyzer
	notifier      interfaces.Notifier
	statusContext string
}

// GateOption configures optional collaborators of the gate use case
type GateOption func(*gateUseCase)

// WithGateArchive enables log archiving
func WithGateArchive(archive interfaces.LogArchive) GateOption {
	return func(uc *gateUseCase) {
		uc.archive = archive
	}
}

// WithGateAnalyzer enables LLM failure annotation
func WithGateAnalyzer(analyzer interfaces.FailureAnalyzer) GateOption {
	return func(uc *gateUseCase) {
		uc.analyzer = analyzer
	}
}

// WithGateNotifier enables run notifications
func WithGateNotifier(notifier interfaces.Notifier) GateOption {
	return func(uc *gateUseCase) {
		uc.notifier = notifier
	}
}

// NewGate creates the test gate use case
func NewGate(
	githubClient interfaces.GitHubClient,
	runner interfaces.Runner,
	definition *pipeline.Definition,
	repo interfaces.RunRepository,
	opts ...GateOption,
) interfaces.GateUseCase {
	uc := &gateUseCase{
		githubClient:  githubClient,
		runner:        runner,
		definition:    definition,
		repo:          repo,
		statusContext: types.CommitStatusContext,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// RunGate executes the test gate pipeline for a pull request head and
// reports the outcome back as a PR comment and a commit status. The
// returned error signals infrastructure failure; a failing test run is a
// regular outcome carried by the record.
func (uc *gateUseCase) RunGate(ctx context.Context, req *interfaces.GateRequest) (*model.RunRecord, error) {
	logger := ctxlog.From(ctx)

	record := &model.RunRecord{
		ID:         uuid.NewString(),
		Kind:       model.TriggerGate,
		Source:     req.Source,
		Repository: req.Repository,
		Ref:        req.Ref,
		Number:     req.Number,
		Status:     model.StatusRunning,
		StartedAt:  time.Now(),
	}
	uc.saveRecord(ctx, record)

	logger.Info("Starting test gate run",
		"run_id", record.ID,
		"repository", record.Repository,
		"number", record.Number,
		"head_sha", record.Ref,
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
		uc.reportGate(ctx, req, record, "")
		return record, goerr.Wrap(err, "failed to check out source", goerr.V("run_id", record.ID))
	}
	defer cleanupCheckout(ctx, checkout)

	results, runErr := uc.runner.Run(ctx, checkout.RootDir, uc.definition.GatePipeline())
	record.Steps = results
	record.Finish(runErr)

	uc.archiveSteps(ctx, record)

	var analysis string
	if record.Failed() && uc.analyzer != nil {
		analysis, err = uc.analyzer.Analyze(ctx, record)
		if err != nil {
			// Annotation is best effort and never fails the run
			logger.Warn("Failure analysis failed", "run_id", record.ID, "error", err)
			analysis = ""
		}
	}

	uc.saveRecord(ctx, record)
	uc.reportGate(ctx, req, record, analysis)
	uc.notify(ctx, record)

	logger.Info("Test gate run finished",
		"run_id", record.ID,
		"status", record.Status,
	)

	return record, nil
}

// reportGate posts the PR comment and the commit status. Reporting
// failures are logged, not propagated: the run outcome stands on its
// own. Manual runs without a pull request number report nothing.
func (uc *gateUseCase) reportGate(ctx context.Context, req *interfaces.GateRequest, record *model.RunRecord, analysis string) {
	if req.Number == 0 {
		return
	}
	logger := ctxlog.From(ctx)
	owner, repo, _ := strings.Cut(req.Repository, "/")

	body := record.Report()
	if analysis != "" {
		body += "\n### 🔍 Failure analysis\n\n" + analysis + "\n"
	}

	if err := uc.githubClient.CreateComment(ctx, owner, repo, req.Number, body); err != nil {
		logger.Error("Failed to post report comment",
			"run_id", record.ID,
			"error", err,
		)
	}

	if err := uc.githubClient.CreateCommitStatus(ctx, owner, repo, req.Ref,
		record.GateStatus(uc.statusContext)); err != nil {
		logger.Error("Failed to set commit status",
			"run_id", record.ID,
			"error", err,
		)
	}
}

func (uc *gateUseCase) saveRecord(ctx context.Context, record *model.RunRecord) {
	if err := uc.repo.Put(ctx, record); err != nil {
		ctxlog.From(ctx).Error("Failed to persist run record",
			"run_id", record.ID,
			"error", err,
		)
	}
}

func (uc *gateUseCase) archiveSteps(ctx context.Context, record *model.RunRecord) {
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

func (uc *gateUseCase) notify(ctx context.Context, record *model.RunRecord) {
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
