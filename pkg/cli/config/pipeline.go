package config

import (
	"time"

	"github.com/urfave/cli/v3"

	"github.com/itam-hack/checkpoint/pkg/domain/types"
	"github.com/itam-hack/checkpoint/pkg/pipeline"
)

// Pipeline holds pipeline execution configuration
type Pipeline struct {
	File          string
	PublishBranch string
	Timezone      string
	Timeout       time.Duration
}

// Flags returns CLI flags for pipeline configuration
func (c *Pipeline) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "pipeline-file",
			Usage:       "Path to checkpoint.toml pipeline definition (built-in defaults when empty)",
			Destination: &c.File,
			Sources:     cli.EnvVars("CHECKPOINT_PIPELINE_FILE"),
		},
		&cli.StringFlag{
			Name:        "publish-branch",
			Usage:       "Branch whose pushes trigger publish runs",
			Value:       types.DefaultPublishBranch,
			Destination: &c.PublishBranch,
			Sources:     cli.EnvVars("CHECKPOINT_PUBLISH_BRANCH"),
		},
		&cli.StringFlag{
			Name:        "timezone",
			Usage:       "Timezone exported as TZ to pipeline steps",
			Destination: &c.Timezone,
			Sources:     cli.EnvVars("CHECKPOINT_TIMEZONE"),
		},
		&cli.DurationFlag{
			Name:        "run-timeout",
			Usage:       "Deadline for a single pipeline run",
			Value:       30 * time.Minute,
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("CHECKPOINT_RUN_TIMEOUT"),
		},
	}
}

// Load resolves the pipeline definition, with the timezone flag taking
// precedence over the file
func (c *Pipeline) Load() (*pipeline.Definition, error) {
	def := pipeline.Default()
	if c.File != "" {
		loaded, err := pipeline.Load(c.File)
		if err != nil {
			return nil, err
		}
		def = loaded
	}
	if c.Timezone != "" {
		def.Timezone = c.Timezone
	}
	return def, nil
}
