package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem/llm/gemini"

	"github.com/itam-hack/checkpoint/pkg/cli/config"
	"github.com/itam-hack/checkpoint/pkg/domain/interfaces"
	execinfra "github.com/itam-hack/checkpoint/pkg/infra/exec"
	fsinfra "github.com/itam-hack/checkpoint/pkg/infra/firestore"
	"github.com/itam-hack/checkpoint/pkg/infra/gcs"
	githubinfra "github.com/itam-hack/checkpoint/pkg/infra/github"
	"github.com/itam-hack/checkpoint/pkg/infra/memory"
	"github.com/itam-hack/checkpoint/pkg/infra/notify"
	"github.com/itam-hack/checkpoint/pkg/pipeline"
	"github.com/itam-hack/checkpoint/pkg/usecase"
)

// runtimeConfig bundles the per-concern config structs shared by the
// serve and run commands
type runtimeConfig struct {
	github    config.GitHub
	registry  config.Registry
	pipeline  config.Pipeline
	google    config.Google
	firestore config.Firestore
	storage   config.Storage
	gemini    config.Gemini
	slack     config.Slack
}

// runtime holds the assembled use cases and their closers
type runtime struct {
	gateUC     interfaces.GateUseCase
	publishUC  interfaces.PublishUseCase
	runRepo    interfaces.RunRepository
	definition *pipeline.Definition
	closers    []func() error
}

func (r *runtime) Close(ctx context.Context) {
	for _, closer := range r.closers {
		if err := closer(); err != nil {
			ctxlog.From(ctx).Warn("Failed to close component", "error", err)
		}
	}
}

// buildRuntime wires infrastructure and use cases from configuration.
// Optional components (history, archive, notifier, analyzer) are only
// created when their configuration is present.
func buildRuntime(ctx context.Context, cfg *runtimeConfig) (*runtime, error) {
	logger := ctxlog.From(ctx)
	rt := &runtime{}

	appID, installationID, privateKey, err := cfg.github.Credentials()
	if err != nil {
		return nil, err
	}
	githubClient, err := githubinfra.NewClient(appID, installationID, privateKey)
	if err != nil {
		return nil, err
	}

	definition, err := cfg.pipeline.Load()
	if err != nil {
		return nil, err
	}
	rt.definition = definition

	runner := execinfra.New(execinfra.WithTimeout(cfg.pipeline.Timeout))

	var runRepo interfaces.RunRepository
	if cfg.firestore.ProjectID != "" {
		fsClient, err := fsinfra.New(ctx, cfg.firestore.ProjectID, cfg.google.CredentialsFile)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create run history store")
		}
		rt.closers = append(rt.closers, fsClient.Close)
		runRepo = fsClient
		logger.Info("Run history: firestore", slog.String("project_id", cfg.firestore.ProjectID))
	} else {
		runRepo = memory.New()
		logger.Info("Run history: in-memory")
	}
	rt.runRepo = runRepo

	var gateOpts []usecase.GateOption
	var publishOpts []usecase.PublishOption

	if cfg.storage.Bucket != "" {
		archive, err := gcs.New(ctx, cfg.storage.Bucket, cfg.google.CredentialsFile)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create log archive")
		}
		rt.closers = append(rt.closers, archive.Close)
		gateOpts = append(gateOpts, usecase.WithGateArchive(archive))
		publishOpts = append(publishOpts, usecase.WithPublishArchive(archive))
		logger.Info("Log archive enabled", slog.String("bucket", cfg.storage.Bucket))
	}

	if cfg.slack.WebhookURL != "" {
		notifier := notify.NewSlack(cfg.slack.WebhookURL)
		gateOpts = append(gateOpts, usecase.WithGateNotifier(notifier))
		publishOpts = append(publishOpts, usecase.WithPublishNotifier(notifier))
		logger.Info("Slack notifications enabled")
	}

	if cfg.gemini.ProjectID != "" {
		llmClient, err := gemini.New(ctx, cfg.gemini.ProjectID, cfg.gemini.Location,
			gemini.WithModel(cfg.gemini.Model))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create LLM client")
		}
		analyzer, err := usecase.NewFailureAnalyzer(llmClient)
		if err != nil {
			return nil, err
		}
		gateOpts = append(gateOpts, usecase.WithGateAnalyzer(analyzer))
		logger.Info("Failure analysis enabled", slog.String("model", cfg.gemini.Model))
	}

	rt.gateUC = usecase.NewGate(githubClient, runner, definition, runRepo, gateOpts...)
	rt.publishUC = usecase.NewPublish(githubClient, runner, definition, runRepo,
		cfg.registry.ImageRef(), cfg.registry.Token, publishOpts...)

	return rt, nil
}
