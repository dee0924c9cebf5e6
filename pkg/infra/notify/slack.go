// Package notify delivers run outcome notifications to Slack.
package notify

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/itam-hack/checkpoint/pkg/domain/model"
)

// SlackNotifier posts run summaries to an incoming webhook
type SlackNotifier struct {
	webhookURL string
}

// NewSlack creates a Slack webhook notifier
func NewSlack(webhookURL string) *SlackNotifier {
	return &SlackNotifier{webhookURL: webhookURL}
}

// NotifyRun posts a short summary of the finished run
func (n *SlackNotifier) NotifyRun(ctx context.Context, record *model.RunRecord) error {
	var text string
	switch {
	case record.Kind == model.TriggerPublish && !record.Failed():
		text = fmt.Sprintf(":rocket: Published `%s` from `%s` (run `%s`)",
			record.Image, record.Repository, record.ID)
	case record.Kind == model.TriggerPublish:
		text = fmt.Sprintf(":boom: Publish failed for `%s` (run `%s`): %s",
			record.Repository, record.ID, record.Error)
	case record.Failed():
		text = fmt.Sprintf(":x: Test gate failed for `%s` #%d (run `%s`)",
			record.Repository, record.Number, record.ID)
	default:
		text = fmt.Sprintf(":white_check_mark: Test gate passed for `%s` #%d (run `%s`)",
			record.Repository, record.Number, record.ID)
	}

	msg := &slack.WebhookMessage{Text: text}
	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post slack notification")
	}
	return nil
}
