package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Release holds the links and attribution written into descriptors
type Release struct {
	ReleaseBaseURL  string
	DownloadBaseURL string
	ProjectLink     string
	Creator         string
	Indent          int
}

// Flags returns CLI flags for release descriptor configuration
func (c *Release) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "release-base-url",
			Usage:       "Base URL release history is served under, e.g. https://updates.example.com/release-history",
			Destination: &c.ReleaseBaseURL,
			Sources:     cli.EnvVars("TAGPACK_RELEASE_BASE_URL"),
		},
		&cli.StringFlag{
			Name:        "download-base-url",
			Usage:       "Base URL archives are served under, e.g. https://updates.example.com/files",
			Destination: &c.DownloadBaseURL,
			Sources:     cli.EnvVars("TAGPACK_DOWNLOAD_BASE_URL"),
		},
		&cli.StringFlag{
			Name:        "project-link",
			Usage:       "Project page URL (default: release base URL)",
			Destination: &c.ProjectLink,
			Sources:     cli.EnvVars("TAGPACK_PROJECT_LINK"),
		},
		&cli.StringFlag{
			Name:        "creator",
			Usage:       "dc:creator of the project (default: package of the info file)",
			Destination: &c.Creator,
			Sources:     cli.EnvVars("TAGPACK_CREATOR"),
		},
		&cli.IntFlag{
			Name:        "indent",
			Usage:       "Indent descriptors by this many spaces; 0 writes them compact",
			Destination: &c.Indent,
			Sources:     cli.EnvVars("TAGPACK_INDENT"),
		},
	}
}

// IndentString returns the indent unit for the descriptor encoder
func (c *Release) IndentString() (string, error) {
	if c.Indent < 0 || c.Indent > 8 {
		return "", goerr.New("indent must be between 0 and 8", goerr.V("indent", c.Indent))
	}
	return spaces[:c.Indent], nil
}

const spaces = "        "
