package config

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tagpack/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Sentry holds error reporting configuration
type Sentry struct {
	DSN string `masq:"secret"`
	Env string

	enabled bool
}

// Flags returns CLI flags for Sentry configuration
func (c *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN; failures are reported when set",
			Destination: &c.DSN,
			Sources:     cli.EnvVars("TAGPACK_SENTRY_DSN"),
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment",
			Value:       "production",
			Destination: &c.Env,
			Sources:     cli.EnvVars("TAGPACK_SENTRY_ENV"),
		},
	}
}

// Configure initializes the Sentry client when a DSN is set
func (c *Sentry) Configure() error {
	if c.DSN == "" {
		return nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         c.DSN,
		Environment: c.Env,
		Release:     types.ServiceName + "@" + types.Version,
	}); err != nil {
		return goerr.Wrap(err, "failed to initialize sentry")
	}
	c.enabled = true
	return nil
}

// Capture reports err and waits for delivery
func (c *Sentry) Capture(err error) {
	if !c.enabled || err == nil {
		return
	}
	sentry.CaptureException(err)
	sentry.Flush(2 * time.Second)
}
