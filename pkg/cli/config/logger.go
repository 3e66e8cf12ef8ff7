package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
	"github.com/urfave/cli/v3"
)

// Logger holds logger configuration
type Logger struct {
	Level  string
	Format string
	Output string

	file *os.File
}

// Flags returns CLI flags for logger configuration
func (c *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &c.Level,
			Sources:     cli.EnvVars("TAGPACK_LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (text, json)",
			Value:       "text",
			Destination: &c.Format,
			Sources:     cli.EnvVars("TAGPACK_LOG_FORMAT"),
		},
		&cli.StringFlag{
			Name:        "log-file",
			Usage:       "Append logs to this file instead of stderr",
			Destination: &c.Output,
			Sources:     cli.EnvVars("TAGPACK_LOG_FILE"),
		},
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, goerr.New("invalid log level", goerr.V("level", s))
	}
}

// Configure configures and returns a logger. Secrets tagged with masq:"secret"
// and webhook URLs are redacted from every record.
func (c *Logger) Configure() (*slog.Logger, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	var w io.Writer = os.Stderr
	if c.Output != "" {
		f, err := os.OpenFile(c.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open log file", goerr.V("path", c.Output))
		}
		c.file = f
		w = f
	}

	redact := masq.New(
		masq.WithTag("secret"),
		masq.WithFieldName("WebhookURL"),
		masq.WithFieldName("DSN"),
	)

	var handler slog.Handler
	switch strings.ToLower(c.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: redact,
		})
	case "text", "":
		handler = clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithColor(c.Output == "" && !color.NoColor),
			clog.WithReplaceAttr(redact),
		)
	default:
		return nil, goerr.New("invalid log format", goerr.V("format", c.Format))
	}

	return slog.New(handler), nil
}

// Close releases the log file, if any
func (c *Logger) Close() error {
	if c.file == nil {
		return nil
	}
	if err := c.file.Close(); err != nil {
		return goerr.Wrap(err, "failed to close log file", goerr.V("path", c.Output))
	}
	c.file = nil
	return nil
}
