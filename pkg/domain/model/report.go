package model

import (
	"fmt"
	"strings"
	"time"
)

// maxOutputInReport caps the amount of step output quoted in a PR
// comment so a noisy test run does not blow past GitHub's comment limit.
const maxOutputInReport = 4000

// CommitStatus is the commit status posted on the PR head SHA
type CommitStatus struct {
	State       string // success, failure, pending, error
	Description string
	Context     string
}

// Report renders the run as a human-readable markdown summary suitable
// for a pull request comment.
func (r *RunRecord) Report() string {
	var sb strings.Builder

	if r.Failed() {
		sb.WriteString("## ❌ Test gate failed\n\n")
	} else {
		sb.WriteString("## ✅ Test gate passed\n\n")
	}

	fmt.Fprintf(&sb, "**Run**: `%s` on `%s` @ `%s`\n\n", r.ID, r.Repository, shortSHA(r.Ref))

	sb.WriteString("| Step | Status | Exit | Duration |\n")
	sb.WriteString("|------|--------|------|----------|\n")
	for i := range r.Steps {
		s := &r.Steps[i]
		duration := "-"
		if s.Status != StatusSkipped {
			duration = s.Duration().Round(10 * time.Millisecond).String()
		}
		fmt.Fprintf(&sb, "| %s | %s | %d | %s |\n", s.Name, statusBadge(s.Status), s.ExitCode, duration)
	}

	if failed := r.FailedStep(); failed != nil && failed.Output != "" {
		sb.WriteString("\n<details><summary>Output of failed step</summary>\n\n")
		sb.WriteString("```\n")
		sb.WriteString(truncateHead(failed.Output, maxOutputInReport))
		sb.WriteString("\n```\n\n</details>\n")
	}

	sb.WriteString("\n---\n")
	sb.WriteString("🤖 Reported by checkpoint\n")

	return sb.String()
}

// GateStatus maps the run outcome to the commit status shown on the PR.
func (r *RunRecord) GateStatus(statusContext string) *CommitStatus {
	if r.Failed() {
		return &CommitStatus{
			State:       "failure",
			Description: "test gate failed",
			Context:     statusContext,
		}
	}
	return &CommitStatus{
		State:       "success",
		Description: "test gate passed",
		Context:     statusContext,
	}
}

func statusBadge(s RunStatus) string {
	switch s {
	case StatusSucceeded:
		return "✅"
	case StatusFailed:
		return "❌"
	case StatusSkipped:
		return "⏭️"
	default:
		return string(s)
	}
}

func shortSHA(ref string) string {
	if len(ref) > 12 {
		return ref[:12]
	}
	return ref
}

// truncateHead keeps the tail of the output, which is where test
// harnesses print their failure summary.
func truncateHead(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "...(truncated)...\n" + s[len(s)-max:]
}
