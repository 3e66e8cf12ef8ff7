package config

import "github.com/urfave/cli/v3"

// GitHub holds push webhook configuration
type GitHub struct {
	WebhookSecret string `masq:"secret"`
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "webhook-secret",
			Usage:       "Secret push webhooks are signed with; POST /hooks/push is disabled without it",
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("TAGPACK_WEBHOOK_SECRET"),
		},
	}
}

// Enabled reports whether push hooks can be verified
func (c *GitHub) Enabled() bool {
	return c.WebhookSecret != ""
}
