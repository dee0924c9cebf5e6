package model

// TriggerKind identifies which automation a run belongs to
type TriggerKind string

const (
	// TriggerGate is the test gate fired when a pull request is opened.
	TriggerGate TriggerKind = "gate"
	// TriggerPublish is the image build-and-push fired when a pull
	// request is merged, a commit is pushed to the publish branch, or a
	// run is dispatched manually.
	TriggerPublish TriggerKind = "publish"
)

// TriggerSource records how a run was started
type TriggerSource string

const (
	SourcePullRequest TriggerSource = "pull_request"
	SourcePush        TriggerSource = "push"
	SourceManual      TriggerSource = "manual"
)

// TriggersGate reports whether the event starts a test gate run.
// Only freshly opened pull requests qualify; synchronize, reopened and
// every other action is ignored.
func (e *WebhookEvent) TriggersGate() bool {
	return e.Type == EventTypePullRequest && e.Action == "opened"
}

// TriggersPublish reports whether the event starts a publish run.
// A closed pull request qualifies only when it was actually merged.
// A push qualifies only when it targets the given branch.
func (e *WebhookEvent) TriggersPublish(publishBranch string) bool {
	switch e.Type {
	case EventTypePullRequest:
		return e.Action == "closed" && e.Merged
	case EventTypePush:
		return e.Branch() == publishBranch
	default:
		return false
	}
}

// PublishRef returns the commit checkpoints should build for a publish
// run: the merge commit for merged PRs, the pushed head otherwise.
func (e *WebhookEvent) PublishRef() string {
	if e.Type == EventTypePullRequest && e.MergeSHA != "" {
		return e.MergeSHA
	}
	return e.HeadSHA
}
