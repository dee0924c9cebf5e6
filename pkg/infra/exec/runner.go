// Package exec runs pipeline steps as host processes.
package exec

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/itam-hack/checkpoint/pkg/domain/model"
)

// maxCapturedOutput caps combined stdout+stderr kept per step.
const maxCapturedOutput = 1 << 20 // 1 MiB

type runner struct {
	timeout time.Duration
}

// Option configures the runner
type Option func(*runner)

// WithTimeout sets the per-run deadline. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(r *runner) {
		r.timeout = d
	}
}

// New creates a process-based pipeline runner
func New(opts ...Option) *runner {
	r := &runner{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the pipeline steps in order inside dir. The first failing
// step stops execution; steps after it are recorded as skipped. The
// returned error wraps the failing step's exit status.
func (r *runner) Run(ctx context.Context, dir string, pipeline *model.Pipeline) ([]model.StepResult, error) {
	logger := ctxlog.From(ctx)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	results := make([]model.StepResult, 0, len(pipeline.Steps))
	var runErr error

	for _, step := range pipeline.Steps {
		if runErr != nil {
			results = append(results, model.StepResult{
				Name:   step.Name,
				Status: model.StatusSkipped,
			})
			continue
		}

		logger.Info("Running pipeline step",
			"pipeline", pipeline.Name,
			"step", step.Name,
			"command", step.Command,
			"args", strings.Join(step.Args, " "),
		)

		result := r.runStep(ctx, dir, step)
		results = append(results, result)

		if result.Status == model.StatusFailed {
			runErr = goerr.New("pipeline step failed",
				goerr.V("pipeline", pipeline.Name),
				goerr.V("step", step.Name),
				goerr.V("exit_code", result.ExitCode),
			)
			logger.Error("Pipeline step failed",
				"pipeline", pipeline.Name,
				"step", step.Name,
				"exit_code", result.ExitCode,
			)
		}
	}

	return results, runErr
}

func (r *runner) runStep(ctx context.Context, dir string, step model.Step) model.StepResult {
	result := model.StepResult{
		Name:      step.Name,
		Status:    model.StatusRunning,
		StartedAt: time.Now(),
	}

	cmd := exec.CommandContext(ctx, step.Command, step.Args...)
	cmd.Dir = dir
	if step.Dir != "" {
		cmd.Dir = filepath.Join(dir, step.Dir)
	}

	// Run the step in its own process group and kill the whole group on
	// cancellation. Killing only the direct child leaves grandchildren
	// (e.g. a test runner spawned by sh) holding the output pipe, and
	// cmd.Run would block past the deadline waiting for it to close.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 10 * time.Second

	cmd.Env = os.Environ()
	for k, v := range step.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	if step.Stdin != "" {
		cmd.Stdin = strings.NewReader(step.Stdin)
	}

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()

	result.FinishedAt = time.Now()
	result.Output = truncate(output.String(), maxCapturedOutput)

	if err == nil {
		result.Status = model.StatusSucceeded
		return result
	}

	result.Status = model.StatusFailed
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	} else {
		// Command never started (not found, context deadline, ...)
		result.ExitCode = -1
		result.Output = result.Output + "\n" + err.Error()
	}

	return result
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[len(s)-max:]
}
