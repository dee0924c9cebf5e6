package model

import "time"

// RunStatus is the lifecycle state of a run or a single step
type RunStatus string

const (
	StatusPending   RunStatus = "pending"
	StatusRunning   RunStatus = "running"
	StatusSucceeded RunStatus = "succeeded"
	StatusFailed    RunStatus = "failed"
	StatusSkipped   RunStatus = "skipped"
)

// StepResult captures the outcome of one executed step
type StepResult struct {
	Name       string    `json:"name" firestore:"name"`
	Status     RunStatus `json:"status" firestore:"status"`
	ExitCode   int       `json:"exit_code" firestore:"exit_code"`
	Output     string    `json:"output,omitempty" firestore:"output,omitempty"`
	StartedAt  time.Time `json:"started_at" firestore:"started_at"`
	FinishedAt time.Time `json:"finished_at" firestore:"finished_at"`
}

// Duration returns how long the step ran.
func (s *StepResult) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// RunRecord is the persisted history entry of one pipeline run
type RunRecord struct {
	ID         string        `json:"id" firestore:"id"`
	Kind       TriggerKind   `json:"kind" firestore:"kind"`
	Source     TriggerSource `json:"source" firestore:"source"`
	Repository string        `json:"repository" firestore:"repository"`
	Ref        string        `json:"ref" firestore:"ref"`
	Number     int           `json:"number,omitempty" firestore:"number,omitempty"`
	Image      string        `json:"image,omitempty" firestore:"image,omitempty"`
	Status     RunStatus     `json:"status" firestore:"status"`
	Error      string        `json:"error,omitempty" firestore:"error,omitempty"`
	Steps      []StepResult  `json:"steps" firestore:"steps"`
	StartedAt  time.Time     `json:"started_at" firestore:"started_at"`
	FinishedAt time.Time     `json:"finished_at" firestore:"finished_at"`
}

// Failed reports whether the run finished unsuccessfully.
func (r *RunRecord) Failed() bool {
	return r.Status == StatusFailed
}

// FailedStep returns the first failed step result, or nil.
func (r *RunRecord) FailedStep() *StepResult {
	for i := range r.Steps {
		if r.Steps[i].Status == StatusFailed {
			return &r.Steps[i]
		}
	}
	return nil
}

// Finish seals the record with a final status derived from step results.
func (r *RunRecord) Finish(err error) {
	r.FinishedAt = time.Now()
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
		return
	}
	r.Status = StatusSucceeded
}
