package model

import (
	"strings"
	"time"
)

// WebhookEventType represents the type of webhook event received
type WebhookEventType string

const (
	EventTypePullRequest WebhookEventType = "pull_request"
	EventTypePush        WebhookEventType = "push"
	EventTypeUnknown     WebhookEventType = "unknown"
)

// WebhookEvent represents a webhook event received from GitHub
type WebhookEvent struct {
	ID         string           // Retrieved from X-GitHub-Delivery header
	Type       WebhookEventType // Retrieved from X-GitHub-Event header
	Action     string           // Event action (e.g., opened, closed)
	Repository string           // Repository full name (owner/name)
	Sender     string           // Sender username
	Number     int              // Pull request number, 0 for push events
	HeadSHA    string           // PR head SHA or push head commit
	MergeSHA   string           // Merge commit SHA for merged PRs
	Ref        string           // Git ref for push events (refs/heads/...)
	Merged     bool             // Whether a closed PR was merged
	ReceivedAt time.Time        // Time when the event was received
	RawPayload []byte           // Raw JSON payload
}

// Owner returns the owner part of the repository full name.
func (e *WebhookEvent) Owner() string {
	owner, _, _ := strings.Cut(e.Repository, "/")
	return owner
}

// Repo returns the name part of the repository full name.
func (e *WebhookEvent) Repo() string {
	_, repo, _ := strings.Cut(e.Repository, "/")
	return repo
}

// Branch returns the branch name for push events, stripping the
// refs/heads/ prefix. Empty for non-branch refs.
func (e *WebhookEvent) Branch() string {
	if branch, ok := strings.CutPrefix(e.Ref, "refs/heads/"); ok {
		return branch
	}
	return ""
}
