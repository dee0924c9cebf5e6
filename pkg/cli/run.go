package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/itam-hack/checkpoint/pkg/domain/interfaces"
	"github.com/itam-hack/checkpoint/pkg/domain/model"
)

// cmdRun is the manual dispatch trigger: it executes one pipeline run
// directly, without a webhook event, and exits non-zero on failure.
func cmdRun() *cli.Command {
	var (
		rtCfg  runtimeConfig
		repo   string
		ref    string
		number int
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "repo",
			Usage:       "Repository full name (owner/name)",
			Required:    true,
			Destination: &repo,
			Sources:     cli.EnvVars("CHECKPOINT_REPO"),
		},
		&cli.StringFlag{
			Name:        "ref",
			Usage:       "Commit SHA or branch to run against",
			Required:    true,
			Destination: &ref,
			Sources:     cli.EnvVars("CHECKPOINT_REF"),
		},
		&cli.IntFlag{
			Name:        "number",
			Usage:       "Pull request number for report posting (gate only, no report when 0)",
			Destination: &number,
		},
	}
	flags = append(flags, rtCfg.github.Flags()...)
	flags = append(flags, rtCfg.registry.Flags()...)
	flags = append(flags, rtCfg.pipeline.Flags()...)
	flags = append(flags, rtCfg.google.Flags()...)
	flags = append(flags, rtCfg.firestore.Flags()...)
	flags = append(flags, rtCfg.storage.Flags()...)
	flags = append(flags, rtCfg.gemini.Flags()...)
	flags = append(flags, rtCfg.slack.Flags()...)

	return &cli.Command{
		Name:  "run",
		Usage: "Dispatch a pipeline run manually",
		Commands: []*cli.Command{
			{
				Name:  "gate",
				Usage: "Run the test gate pipeline once",
				Flags: flags,
				Action: func(ctx context.Context, c *cli.Command) error {
					rt, err := buildRuntime(ctx, &rtCfg)
					if err != nil {
						return err
					}
					defer rt.Close(ctx)

					record, err := rt.gateUC.RunGate(ctx, &interfaces.GateRequest{
						Repository: repo,
						Ref:        ref,
						Number:     int(number),
						Source:     model.SourceManual,
					})
					return finishManualRun(ctx, record, err)
				},
			},
			{
				Name:  "publish",
				Usage: "Run the build-and-publish pipeline once",
				Flags: flags,
				Action: func(ctx context.Context, c *cli.Command) error {
					rt, err := buildRuntime(ctx, &rtCfg)
					if err != nil {
						return err
					}
					defer rt.Close(ctx)

					record, err := rt.publishUC.RunPublish(ctx, &interfaces.PublishRequest{
						Repository: repo,
						Ref:        ref,
						Source:     model.SourceManual,
					})
					return finishManualRun(ctx, record, err)
				},
			},
		},
	}
}

// finishManualRun prints the run summary and converts a failed run into
// a non-zero exit
func finishManualRun(ctx context.Context, record *model.RunRecord, err error) error {
	if err != nil {
		return err
	}
	printSummary(record)
	if record.Failed() {
		ctxlog.From(ctx).Error("Run failed", "run_id", record.ID)
		return goerr.New("run failed", goerr.V("run_id", record.ID))
	}
	return nil
}

// printSummary writes a colored per-step summary to the terminal
func printSummary(record *model.RunRecord) {
	header := color.New(color.Bold)
	header.Printf("Run %s (%s) on %s @ %s\n", record.ID, record.Kind, record.Repository, record.Ref)

	for i := range record.Steps {
		step := &record.Steps[i]
		switch step.Status {
		case model.StatusSucceeded:
			color.Green("  ✔ %s (%s)", step.Name, step.Duration().Round(10*time.Millisecond))
		case model.StatusFailed:
			color.Red("  ✘ %s (exit %d)", step.Name, step.ExitCode)
		case model.StatusSkipped:
			color.Yellow("  - %s (skipped)", step.Name)
		default:
			fmt.Printf("  ? %s (%s)\n", step.Name, step.Status)
		}
	}

	if record.Failed() {
		color.Red("Result: FAILED")
		if failed := record.FailedStep(); failed != nil && failed.Output != "" {
			fmt.Println(failed.Output)
		}
	} else {
		color.Green("Result: OK")
		if record.Image != "" {
			fmt.Printf("Pushed image: %s\n", record.Image)
		}
	}
}
