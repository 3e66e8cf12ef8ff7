package slack

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tagpack/pkg/domain/model"
	"github.com/slack-go/slack"
)

// Notifier posts packaging results to a Slack incoming webhook
type Notifier struct {
	webhookURL string
	channel    string
}

// Option configures a Notifier
type Option func(*Notifier)

// WithChannel overrides the webhook's default channel
func WithChannel(channel string) Option {
	return func(n *Notifier) {
		n.channel = channel
	}
}

// New returns a notifier posting to webhookURL
func New(webhookURL string, opts ...Option) (*Notifier, error) {
	if webhookURL == "" {
		return nil, goerr.New("slack webhook URL is required")
	}

	n := &Notifier{webhookURL: webhookURL}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// NotifyReleases posts one message listing every packaged release. Nothing is
// sent for an empty run.
func (n *Notifier) NotifyReleases(ctx context.Context, results []*model.ReleaseResult) error {
	if len(results) == 0 {
		return nil
	}

	msg := buildMessage(results)
	msg.Channel = n.channel

	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post slack message", goerr.V("releases", len(results)))
	}
	return nil
}

func buildMessage(results []*model.ReleaseResult) *slack.WebhookMessage {
	attachments := make([]slack.Attachment, 0, len(results))
	for _, r := range results {
		attachments = append(attachments, slack.Attachment{
			Color:     "good",
			Title:     fmt.Sprintf("%s %s", r.ShortName, r.Version),
			TitleLink: r.DownloadURL,
			Fields: []slack.AttachmentField{
				{Title: "Ref", Value: r.Ref, Short: true},
				{Title: "Core", Value: r.Core, Short: true},
				{Title: "MD5", Value: r.MD5, Short: false},
				{Title: "Size", Value: strconv.FormatInt(r.Size, 10) + " bytes", Short: true},
			},
			Footer: "packaged at " + r.Date.UTC().Format(time.RFC3339),
		})
	}

	return &slack.WebhookMessage{
		Text:        fmt.Sprintf("Packaged %d release(s) of %s", len(results), results[0].ShortName),
		Attachments: attachments,
	}
}
