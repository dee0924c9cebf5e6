package model_test

import (
	"testing"

	"github.com/itam-hack/checkpoint/pkg/domain/model"
)

func TestWebhookEvent_TriggersGate(t *testing.T) {
	tests := []struct {
		name     string
		event    *model.WebhookEvent
		expected bool
	}{
		{
			name: "Pull Request opened - triggers",
			event: &model.WebhookEvent{
				Type:   model.EventTypePullRequest,
				Action: "opened",
			},
			expected: true,
		},
		{
			name: "Pull Request synchronize - ignored",
			event: &model.WebhookEvent{
				Type:   model.EventTypePullRequest,
				Action: "synchronize",
			},
			expected: false,
		},
		{
			name: "Pull Request reopened - ignored",
			event: &model.WebhookEvent{
				Type:   model.EventTypePullRequest,
				Action: "reopened",
			},
			expected: false,
		},
		{
			name: "Pull Request closed - ignored",
			event: &model.WebhookEvent{
				Type:   model.EventTypePullRequest,
				Action: "closed",
				Merged: true,
			},
			expected: false,
		},
		{
			name: "Push event - ignored",
			event: &model.WebhookEvent{
				Type: model.EventTypePush,
				Ref:  "refs/heads/main",
			},
			expected: false,
		},
		{
			name: "Unknown event type - ignored",
			event: &model.WebhookEvent{
				Type:   model.EventTypeUnknown,
				Action: "opened",
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.event.TriggersGate()
			if got != tt.expected {
				t.Errorf("TriggersGate() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestWebhookEvent_TriggersPublish(t *testing.T) {
	tests := []struct {
		name     string
		event    *model.WebhookEvent
		branch   string
		expected bool
	}{
		{
			name: "Closed and merged PR - triggers",
			event: &model.WebhookEvent{
				Type:   model.EventTypePullRequest,
				Action: "closed",
				Merged: true,
			},
			branch:   "main",
			expected: true,
		},
		{
			name: "Closed without merge - ignored",
			event: &model.WebhookEvent{
				Type:   model.EventTypePullRequest,
				Action: "closed",
				Merged: false,
			},
			branch:   "main",
			expected: false,
		},
		{
			name: "Opened PR with merged flag - ignored",
			event: &model.WebhookEvent{
				Type:   model.EventTypePullRequest,
				Action: "opened",
				Merged: true,
			},
			branch:   "main",
			expected: false,
		},
		{
			name: "Push to publish branch - triggers",
			event: &model.WebhookEvent{
				Type: model.EventTypePush,
				Ref:  "refs/heads/main",
			},
			branch:   "main",
			expected: true,
		},
		{
			name: "Push to another branch - ignored",
			event: &model.WebhookEvent{
				Type: model.EventTypePush,
				Ref:  "refs/heads/feature/x",
			},
			branch:   "main",
			expected: false,
		},
		{
			name: "Push of a tag - ignored",
			event: &model.WebhookEvent{
				Type: model.EventTypePush,
				Ref:  "refs/tags/v1.0.0",
			},
			branch:   "main",
			expected: false,
		},
		{
			name: "Unknown event type - ignored",
			event: &model.WebhookEvent{
				Type:   model.EventTypeUnknown,
				Action: "closed",
				Merged: true,
			},
			branch:   "main",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.event.TriggersPublish(tt.branch)
			if got != tt.expected {
				t.Errorf("TriggersPublish(%q) = %v, want %v", tt.branch, got, tt.expected)
			}
		})
	}
}

func TestWebhookEvent_PublishRef(t *testing.T) {
	tests := []struct {
		name     string
		event    *model.WebhookEvent
		expected string
	}{
		{
			name: "Merged PR uses merge commit",
			event: &model.WebhookEvent{
				Type:     model.EventTypePullRequest,
				HeadSHA:  "head-sha",
				MergeSHA: "merge-sha",
			},
			expected: "merge-sha",
		},
		{
			name: "Push uses head commit",
			event: &model.WebhookEvent{
				Type:    model.EventTypePush,
				HeadSHA: "push-sha",
			},
			expected: "push-sha",
		},
		{
			name: "Merged PR without merge SHA falls back to head",
			event: &model.WebhookEvent{
				Type:    model.EventTypePullRequest,
				HeadSHA: "head-sha",
			},
			expected: "head-sha",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.PublishRef(); got != tt.expected {
				t.Errorf("PublishRef() = %v, want %v", got, tt.expected)
			}
		})
	}
}
