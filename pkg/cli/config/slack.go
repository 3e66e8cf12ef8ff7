package config

import (
	"github.com/m-mizutani/tagpack/pkg/infra/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds release notification configuration
type Slack struct {
	WebhookURL string `masq:"secret"`
	Channel    string
}

// Flags returns CLI flags for Slack configuration
func (c *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook announcing packaged releases",
			Destination: &c.WebhookURL,
			Sources:     cli.EnvVars("TAGPACK_SLACK_WEBHOOK_URL"),
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Channel overriding the webhook's default",
			Destination: &c.Channel,
			Sources:     cli.EnvVars("TAGPACK_SLACK_CHANNEL"),
		},
	}
}

// Configure returns a notifier, or nil when no webhook is set
func (c *Slack) Configure() (*slack.Notifier, error) {
	if c.WebhookURL == "" {
		return nil, nil
	}

	var opts []slack.Option
	if c.Channel != "" {
		opts = append(opts, slack.WithChannel(c.Channel))
	}
	return slack.New(c.WebhookURL, opts...)
}
